package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/migration"
	"github.com/julianstephens/habitquest/migrations"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

type PostgresBackend struct {
	connStr string
	db      *sql.DB
}

func NewPostgresBackend(connStr string) *PostgresBackend {
	s := &PostgresBackend{
		connStr: connStr,
	}
	s.ensureSearchPath()
	return s
}

func (s *PostgresBackend) ensureSearchPath() {
	// Keep every table inside the habitquest schema
	if isPostgresURL(s.connStr) {
		u, err := url.Parse(s.connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
			s.connStr = u.String()
		}
	} else if !hasDSNParam(s.connStr, "search_path") {
		s.connStr = strings.TrimSpace(s.connStr) + " search_path=" + constants.AppName
	}
}

func isPostgresURL(connStr string) bool {
	return strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://")
}

// hasDSNParam reports whether a key=value DSN sets key (case-insensitive).
func hasDSNParam(connStr, key string) bool {
	for _, part := range strings.Fields(connStr) {
		k, _, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// hasSSLMode checks URL query parameters and DSN pairs for sslmode.
func hasSSLMode(connStr string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for key := range u.Query() {
			if strings.EqualFold(key, "sslmode") {
				return true
			}
		}
	}
	return hasDSNParam(connStr, "sslmode")
}

// ValidateConnString checks that connStr is a PostgreSQL URI or DSN and does
// not carry a password. Passwords belong in the keyring, the environment or
// .pgpass, never on the command line.
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}

	if isPostgresURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}
		if _, isSet := u.User.Password(); isSet {
			return ErrEmbeddedCredentials
		}
		if u.Host == "" && u.User == nil && (u.Path == "" || u.Path == "/") {
			return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
		return nil
	}

	if hasDSNParam(connStr, "password") {
		return ErrEmbeddedCredentials
	}
	return nil
}

func (s *PostgresBackend) Init() error {
	if err := s.Open(); err != nil {
		return err
	}
	if _, err := s.Migrate(func(msg string) { logger.Info(msg) }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *PostgresBackend) Load() error {
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
func (s *PostgresBackend) checkSchema() error {
	current, latest, err := s.SchemaStatus()
	if err != nil {
		return err
	}
	if current == 0 {
		return fmt.Errorf("storage not initialized, run 'habitquest init' first")
	}
	if current < latest {
		return fmt.Errorf("database schema is at version %d but %d is required, run 'habitquest migrate'", current, latest)
	}
	return nil
}

func (s *PostgresBackend) Open() error {
	if s.db != nil {
		return nil
	}
	return s.connect()
}

func (s *PostgresBackend) connect() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), constants.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	s.db = db
	return nil
}

func (s *PostgresBackend) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *PostgresBackend) runner() (*migration.Runner, error) {
	sub, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return migration.NewRunner(s.db, sub), nil
}

func (s *PostgresBackend) Migrate(logFn func(string)) (int, error) {
	if s.db == nil {
		return 0, errNotLoaded
	}
	r, err := s.runner()
	if err != nil {
		return 0, err
	}
	return r.Apply(logFn)
}

func (s *PostgresBackend) SchemaStatus() (int, int, error) {
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

func (s *PostgresBackend) Get(key string) ([]byte, error) {
	if s.db == nil {
		return nil, errNotLoaded
	}

	var value []byte
	err := s.db.QueryRow("SELECT value FROM records WHERE key = $1", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresBackend) Put(records ...Record) error {
	if s.db == nil {
		return errNotLoaded
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range records {
		_, err := tx.Exec(`
			INSERT INTO records (key, value, updated_at)
			VALUES ($1, $2::jsonb, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
			r.Key, string(r.Value),
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

// GetConfigPath returns the connection string with any password masked.
func (s *PostgresBackend) GetConfigPath() string {
	return RedactConnString(s.connStr)
}

// RedactConnString masks the password of a PostgreSQL URI or DSN.
func RedactConnString(connStr string) string {
	if isPostgresURL(connStr) {
		if u, err := url.Parse(connStr); err == nil {
			return u.Redacted()
		}
	}
	if hasDSNParam(connStr, "password") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if k, _, ok := strings.Cut(part, "="); ok && strings.EqualFold(k, "password") {
				parts[i] = k + "=xxxxx"
			}
		}
		return strings.Join(parts, " ")
	}
	return connStr
}
