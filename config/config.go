package config

import (
	errs "errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/oliverisaac/goli"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type DatabaseType string

const (
	MongoDB DatabaseType = "mongodb"
	MySQL   DatabaseType = "mysql"
	SQLite  DatabaseType = "sqlite"
)

// UserIDPolicy decides what happens to the userId field of a note
// creation body, which is redundant with the token subject.
type UserIDPolicy string

const (
	// UserIDIgnore requires the field but always trusts the token.
	UserIDIgnore UserIDPolicy = "ignore"
	// UserIDMatch rejects bodies whose userId differs from the token subject.
	UserIDMatch UserIDPolicy = "match"
)

type Config struct {
	Port         string
	Secret       []byte
	TokenTTL     time.Duration
	UserIDPolicy UserIDPolicy
	LogLevel     logrus.Level

	DatabaseType DatabaseType
	// MongoDB connection string or SQL DSN, depending on DatabaseType.
	DatabaseURI  string
	DatabaseName string
}

// Load reads .env (if any) and the process environment. Every problem is
// reported, not only the first one.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errs.Is(err, os.ErrNotExist) {
		logrus.Warn(errors.Wrap(err, "loading .env"))
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:         goli.DefaultEnv("PORT", "3001"),
		DatabaseName: goli.DefaultEnv("DATABASE_NAME", "noteApp"),
	}
	var retErr error

	secret, ok := os.LookupEnv("SECRET")
	if !ok || secret == "" {
		retErr = errs.Join(retErr, fmt.Errorf("SECRET is not set"))
	}
	cfg.Secret = []byte(secret)

	ttl, err := time.ParseDuration(goli.DefaultEnv("TOKEN_TTL", "1h"))
	if err != nil {
		retErr = errs.Join(retErr, errors.Wrap(err, "parsing TOKEN_TTL"))
	}
	cfg.TokenTTL = ttl

	cfg.LogLevel, err = logrus.ParseLevel(goli.DefaultEnv("LOG_LEVEL", "info"))
	if err != nil {
		retErr = errs.Join(retErr, errors.Wrap(err, "parsing LOG_LEVEL"))
	}

	cfg.UserIDPolicy = UserIDPolicy(goli.DefaultEnv("USERID_POLICY", string(UserIDIgnore)))
	if cfg.UserIDPolicy != UserIDIgnore && cfg.UserIDPolicy != UserIDMatch {
		retErr = errs.Join(retErr, fmt.Errorf("unsupported USERID_POLICY: %s", cfg.UserIDPolicy))
	}

	cfg.DatabaseType = DatabaseType(goli.DefaultEnv("DATABASE_TYPE", string(MongoDB)))
	switch cfg.DatabaseType {
	case MongoDB, MySQL, SQLite:
		cfg.DatabaseURI = DatabaseURIFromEnv(cfg.DatabaseType)
	default:
		retErr = errs.Join(retErr, fmt.Errorf("unsupported DATABASE_TYPE: %s", cfg.DatabaseType))
	}

	return cfg, retErr
}

// DatabaseURIFromEnv reads the connection string variable that belongs to
// the given backend: MONGODB_URI for MongoDB, DATABASE_DSN otherwise.
func DatabaseURIFromEnv(t DatabaseType) string {
	if t == MongoDB {
		return os.Getenv("MONGODB_URI")
	}
	return os.Getenv("DATABASE_DSN")
}

// SwitchDatabase selects another backend. Unless keepURI is set, the
// connection string is re-read from that backend's variable.
func (c *Config) SwitchDatabase(t DatabaseType, keepURI bool) {
	if t == c.DatabaseType {
		return
	}
	c.DatabaseType = t
	if !keepURI {
		c.DatabaseURI = DatabaseURIFromEnv(t)
	}
}

// Validate checks the settings that flags may still override after FromEnv.
func (c *Config) Validate() error {
	switch c.DatabaseType {
	case MongoDB, MySQL, SQLite:
	default:
		return fmt.Errorf("unsupported DATABASE_TYPE: %s", c.DatabaseType)
	}
	if c.DatabaseURI == "" {
		if c.DatabaseType == MongoDB {
			return fmt.Errorf("MONGODB_URI is not set")
		}
		return fmt.Errorf("DATABASE_DSN is not set")
	}
	return nil
}
