package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/migration"
	"github.com/julianstephens/habitquest/migrations"
)

type SQLiteBackend struct {
	path string
	db   *sql.DB
}

func NewSQLiteBackend(path string) *SQLiteBackend {
	return &SQLiteBackend{
		path: path,
	}
}

func (s *SQLiteBackend) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if _, err := s.Migrate(func(msg string) { logger.Info(msg) }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) Load() error {
	if err := s.Open(); err != nil {
		return err
	}
	if err := s.checkSchema(); err != nil {
		_ = s.Close()
		return err
	}
	return nil
}

// checkSchema rejects databases that need a migration before use.
func (s *SQLiteBackend) checkSchema() error {
	current, latest, err := s.SchemaStatus()
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("database schema is at version %d but %d is required, run 'habitquest migrate'", current, latest)
	}
	return nil
}

// Open opens an existing database file.
func (s *SQLiteBackend) Open() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage not initialized, run 'habitquest init' first")
	}
	return s.open()
}

func (s *SQLiteBackend) open() error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps transactions and pragmas on one handle.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return fmt.Errorf("failed to configure database: %w", err)
	}
	s.db = db
	return nil
}

func (s *SQLiteBackend) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *SQLiteBackend) runner() (*migration.Runner, error) {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return migration.NewRunner(s.db, sub), nil
}

// Migrate applies pending schema migrations.
func (s *SQLiteBackend) Migrate(logFn func(string)) (int, error) {
	if s.db == nil {
		return 0, errNotLoaded
	}
	r, err := s.runner()
	if err != nil {
		return 0, err
	}
	return r.Apply(logFn)
}

func (s *SQLiteBackend) SchemaStatus() (int, int, error) {
	if s.db == nil {
		return 0, 0, errNotLoaded
	}
	r, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	st, err := r.Status()
	return st.Current, st.Latest, err
}

func (s *SQLiteBackend) Get(key string) ([]byte, error) {
	if s.db == nil {
		return nil, errNotLoaded
	}

	var value string
	err := s.db.QueryRow("SELECT value FROM records WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *SQLiteBackend) Put(records ...Record) error {
	if s.db == nil {
		return errNotLoaded
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range records {
		_, err := tx.Exec(`
			INSERT INTO records (key, value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			r.Key, string(r.Value), now,
		)
		if err != nil {
			return fmt.Errorf("failed to write record %s: %w", r.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) GetConfigPath() string {
	return s.path
}
