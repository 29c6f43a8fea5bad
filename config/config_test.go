package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("SECRET", "s3cr3t")
		t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

		cfg, err := FromEnv()
		require.NoError(t, err)

		assert.Equal(t, "3001", cfg.Port)
		assert.Equal(t, []byte("s3cr3t"), cfg.Secret)
		assert.Equal(t, time.Hour, cfg.TokenTTL)
		assert.Equal(t, UserIDIgnore, cfg.UserIDPolicy)
		assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
		assert.Equal(t, MongoDB, cfg.DatabaseType)
		assert.Equal(t, "mongodb://localhost:27017", cfg.DatabaseURI)
		assert.Equal(t, "noteApp", cfg.DatabaseName)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("sql backends read DATABASE_DSN", func(t *testing.T) {
		t.Setenv("SECRET", "s3cr3t")
		t.Setenv("DATABASE_TYPE", "mysql")
		t.Setenv("DATABASE_DSN", "notes:notes@tcp(localhost:3306)/notes")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, MySQL, cfg.DatabaseType)
		assert.Equal(t, "notes:notes@tcp(localhost:3306)/notes", cfg.DatabaseURI)
	})

	t.Run("all problems are reported", func(t *testing.T) {
		t.Setenv("SECRET", "")
		t.Setenv("TOKEN_TTL", "soon")
		t.Setenv("USERID_POLICY", "maybe")

		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SECRET is not set")
		assert.Contains(t, err.Error(), "TOKEN_TTL")
		assert.Contains(t, err.Error(), "unsupported USERID_POLICY")
	})

	t.Run("missing connection string", func(t *testing.T) {
		t.Setenv("SECRET", "s3cr3t")
		t.Setenv("MONGODB_URI", "")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.EqualError(t, cfg.Validate(), "MONGODB_URI is not set")
	})
}

func TestSwitchDatabase(t *testing.T) {
	t.Setenv("SECRET", "s3cr3t")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("DATABASE_DSN", "/tmp/notes.db")

	t.Run("re-reads the connection string of the new backend", func(t *testing.T) {
		cfg, err := FromEnv()
		require.NoError(t, err)

		cfg.SwitchDatabase(SQLite, false)
		assert.Equal(t, SQLite, cfg.DatabaseType)
		assert.Equal(t, "/tmp/notes.db", cfg.DatabaseURI)
	})

	t.Run("keeps an explicit connection string", func(t *testing.T) {
		cfg, err := FromEnv()
		require.NoError(t, err)
		cfg.DatabaseURI = "notes.db"

		cfg.SwitchDatabase(SQLite, true)
		assert.Equal(t, "notes.db", cfg.DatabaseURI)
	})

	t.Run("same backend is a no-op", func(t *testing.T) {
		cfg, err := FromEnv()
		require.NoError(t, err)
		cfg.DatabaseURI = "mongodb://elsewhere:27017"

		cfg.SwitchDatabase(MongoDB, false)
		assert.Equal(t, "mongodb://elsewhere:27017", cfg.DatabaseURI)
	})
}
