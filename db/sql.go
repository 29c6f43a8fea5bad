package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Dialect is the database/sql driver name of a SQL backend.
type Dialect string

const (
	MySQLDialect  Dialect = "mysql"
	SQLiteDialect Dialect = "sqlite3"
)

// Object ids are stored as their 24-character hex form and dates as unix
// milliseconds so both dialects share the same queries. The seq columns
// keep insertion order.
var schemas = map[Dialect][]string{
	MySQLDialect: {
		`CREATE TABLE IF NOT EXISTS users (
			seq BIGINT AUTO_INCREMENT PRIMARY KEY,
			id CHAR(24) NOT NULL UNIQUE,
			username VARCHAR(255) NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notes (
			seq BIGINT AUTO_INCREMENT PRIMARY KEY,
			id CHAR(24) NOT NULL UNIQUE,
			content TEXT NOT NULL,
			important BOOLEAN NOT NULL DEFAULT FALSE,
			created_at BIGINT NOT NULL,
			user_id CHAR(24) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_notes (
			seq BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id CHAR(24) NOT NULL,
			note_id CHAR(24) NOT NULL
		)`,
	},
	SQLiteDialect: {
		`CREATE TABLE IF NOT EXISTS users (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notes (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL,
			important BOOLEAN NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			user_id TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_notes (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			note_id TEXT NOT NULL
		)`,
	},
}

// ConnectToSQL opens a MySQL or SQLite database and creates missing tables.
func ConnectToSQL(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	sqlDB, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s database", dialect)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, errors.Wrapf(err, "pinging %s database", dialect)
	}

	if err := InitializeSchema(ctx, sqlDB, dialect); err != nil {
		sqlDB.Close()
		return nil, err
	}

	logrus.Infof("Connected to %s database", dialect)
	return sqlDB, nil
}

func InitializeSchema(ctx context.Context, sqlDB *sql.DB, dialect Dialect) error {
	statements, ok := schemas[dialect]
	if !ok {
		return errors.Errorf("unsupported SQL dialect %q", dialect)
	}
	for _, stmt := range statements {
		if _, err := sqlDB.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "creating schema")
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
