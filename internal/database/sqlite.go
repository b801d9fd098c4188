package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/CosmoTheDev/gl2gh/internal/config"
)

// SQLiteDB implements DB using SQLite via mattn/go-sqlite3.
type SQLiteDB struct {
	sqlDB
	path string
}

// NewSQLite opens (or creates) the SQLite database at cfg.Path.
func NewSQLite(cfg config.DatabaseConfig) (*SQLiteDB, error) {
	path := cfg.Path
	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, config.DefaultDBFile)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	s := &SQLiteDB{path: path}
	s.sqlDB = sqlDB{
		db:     db,
		driver: "sqlite",
		trackingTable: `CREATE TABLE IF NOT EXISTS schema_migrations (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			filename    TEXT    NOT NULL UNIQUE,
			applied_at  TEXT    NOT NULL
		)`,
		// go-sqlite3 executes multi-statement scripts in one call.
		applyMigration: func(ctx context.Context, body string) error {
			_, err := db.ExecContext(ctx, body)
			return err
		},
	}
	if err := s.Ping(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}
	return s, nil
}

// Path is the database file location.
func (s *SQLiteDB) Path() string { return s.path }
