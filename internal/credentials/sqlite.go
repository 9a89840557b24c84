package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

const kvTable = "kv"

// SQLite keeps the token in a key-value table of ~/.diary/diary.db
type SQLite struct {
	db *sql.DB
	sb sq.StatementBuilderType

	mu    sync.RWMutex
	token string
}

// OpenSQLite opens or creates the SQLite database at dbPath
func OpenSQLite(dbPath string) (*SQLite, error) {
	if dbPath != ":memory:" {
		// Ensure directory exists
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases alive and serializes writes
	sqlDB.SetMaxOpenConns(1)

	return NewSQLite(sqlDB)
}

// NewSQLite wraps an open database, running migrations and loading the token
func NewSQLite(sqlDB *sql.DB) (*SQLite, error) {
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLite{
		db: sqlDB,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Question).RunWith(sqlDB),
	}

	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	token, err := s.get(context.Background(), TokenKey)
	if err != nil {
		return nil, err
	}
	s.token = token
	return s, nil
}

func (s *SQLite) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.sb.Select("value").
		From(kvTable).
		Where(sq.Eq{"key": key}).
		QueryRowContext(ctx).
		Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

// Token returns the current token
func (s *SQLite) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// SetToken upserts the token row
func (s *SQLite) SetToken(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.sb.Insert(kvTable).
		Columns("key", "value").
		Values(TokenKey, token).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
		ExecContext(context.Background())
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", TokenKey, err)
	}
	s.token = token
	return nil
}

// ClearToken deletes the token row
func (s *SQLite) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.sb.Delete(kvTable).
		Where(sq.Eq{"key": TokenKey}).
		ExecContext(context.Background())
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", TokenKey, err)
	}
	s.token = ""
	return nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}
