package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"vmforge/internal/resource"

	// SQLite driver
	_ "modernc.org/sqlite"
)

// SQLiteStore persists each table as an SQLite table of JSON documents
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a store for the database at path. Call Init before use.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	return &SQLiteStore{path: path}, nil
}

// Init opens the database and creates missing tables
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", s.path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	for _, table := range Tables() {
		stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			seq      INTEGER PRIMARY KEY AUTOINCREMENT,
			id       TEXT NOT NULL UNIQUE,
			document TEXT NOT NULL
		)`, table)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Insert(ctx context.Context, table string, rec resource.Record) error {
	key, err := recordKey(table, rec)
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", table, err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, document) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET document = excluded.document`, table)
	if _, err := s.db.ExecContext(ctx, query, key, string(data)); err != nil {
		return fmt.Errorf("failed to insert %s record: %w", table, err)
	}
	return nil
}

func (s *SQLiteStore) SelectOne(ctx context.Context, table, column string, value any) (resource.Record, error) {
	keyCol, err := KeyColumn(table)
	if err != nil {
		return nil, err
	}

	var doc string
	if column == keyCol {
		query := fmt.Sprintf(`SELECT document FROM %s WHERE id = ?`, table)
		err = s.db.QueryRowContext(ctx, query, fmt.Sprint(value)).Scan(&doc)
	} else {
		query := fmt.Sprintf(`SELECT document FROM %s WHERE json_extract(document, ?) = ? ORDER BY seq LIMIT 1`, table)
		err = s.db.QueryRowContext(ctx, query, "$."+column, value).Scan(&doc)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select %s record: %w", table, err)
	}
	return decode(table, []byte(doc))
}

func (s *SQLiteStore) List(ctx context.Context, table string, limit int) ([]resource.Record, error) {
	if _, err := KeyColumn(table); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	query := fmt.Sprintf(`SELECT document FROM %s ORDER BY seq DESC LIMIT ?`, table)
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var out []resource.Record
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		rec, err := decode(table, []byte(doc))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", table, err)
	}
	return out, nil
}

// HealthCheck verifies the database connection
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return s.db.PingContext(ctx)
}
