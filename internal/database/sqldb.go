package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// sqlDB holds what SQLite and MySQL share: the query helpers and the
// migration runner. Dialect differences are injected.
type sqlDB struct {
	db     *sql.DB
	driver string

	// trackingTable creates schema_migrations in the dialect.
	trackingTable string
	// applyMigration runs one migration file.
	applyMigration func(ctx context.Context, body string) error
}

func (s *sqlDB) Driver() string { return s.driver }

func (s *sqlDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlDB) Close() error {
	return s.db.Close()
}

// Migrate applies every migrations/*.sql file not yet recorded in
// schema_migrations, in file name order.
func (s *sqlDB) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.trackingTable); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		var count int
		row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE filename = ?`, name)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("checking migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(ctx, string(data)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}

		_, err = s.db.ExecContext(ctx,
			`INSERT INTO schema_migrations (filename, applied_at) VALUES (?, ?)`,
			name, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		slog.Debug("Applied migration", "file", name, "driver", s.driver)
	}
	return nil
}

// Select executes query and scans all rows into dest (pointer to a slice of structs).
func (s *sqlDB) Select(ctx context.Context, dest any, query string, args ...any) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer rows.Close()
	return scanRows(rows, dest)
}

// Get executes query and scans a single row into dest.
func (s *sqlDB) Get(ctx context.Context, dest any, query string, args ...any) error {
	return scanRow(s.db.QueryRowContext(ctx, query, args...), dest)
}

func (s *sqlDB) Exec(ctx context.Context, query string, args ...any) error {
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// Insert inserts a struct into table using its `db:` tags and returns the
// last inserted row ID.
func (s *sqlDB) Insert(ctx context.Context, table string, record any) (int64, error) {
	cols, vals := columns(record, true)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	// Table and column names come from application code; values are bound.
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), placeholders)
	res, err := s.db.ExecContext(ctx, query, vals...)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	return res.LastInsertId()
}

// Update sets every db-tagged column except id on rows matching where.
func (s *sqlDB) Update(ctx context.Context, table string, record any, where string, args ...any) error {
	cols, vals := columns(record, false)
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(sets, ", "), where)
	if _, err := s.db.ExecContext(ctx, query, append(vals, args...)...); err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}
