package testutils

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"notes-api/config"
	"notes-api/db"

	"github.com/stretchr/testify/require"
)

// SetupTestStore opens a SQLite-backed store in a temporary directory. It is
// closed when the test ends.
func SetupTestStore(t *testing.T) *db.Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "notes.db") + "?_journal_mode=WAL&_timeout=10000"

	store, err := db.Open(context.Background(), &config.Config{
		DatabaseType: config.SQLite,
		DatabaseURI:  dsn,
		DatabaseName: "notes_test",
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close(context.Background())
	})
	return store
}

func GetTestConfig() *config.Config {
	return &config.Config{
		Port:         "0",
		Secret:       []byte("test_secret_for_testing_only"),
		TokenTTL:     time.Hour,
		UserIDPolicy: config.UserIDIgnore,
		DatabaseType: config.SQLite,
		DatabaseName: "notes_test",
	}
}
