package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/julianstephens/habitquest/internal/constants"
)

// Config holds settings read from the environment. Command-line flags
// override every field.
type Config struct {
	// Store is a SQLite path, a *.json path, a redis:// URL, a postgres:// URL
	// without password, or the literal "keyring".
	Store string `env:"HABITQUEST_STORE" envDefault:"~/.config/habitquest/habitquest.db"`
	// DBConnection is a full PostgreSQL connection string. Unlike --store it
	// may carry a password, since it never appears in shell history.
	DBConnection string `env:"HABITQUEST_DB_CONNECTION"`
	Debug        bool   `env:"HABITQUEST_DEBUG"`
	Notify       bool   `env:"HABITQUEST_NOTIFY" envDefault:"true"`
	AutoBackup   bool   `env:"HABITQUEST_AUTO_BACKUP" envDefault:"true"`
}

// Load reads the given dotenv files (missing ones are skipped) and parses
// the environment. Variables already set in the process win over file values.
func Load(envFiles ...string) (Config, error) {
	for _, path := range envFiles {
		path = ExpandHome(path)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// DefaultEnvFiles returns the dotenv files consulted at startup, lowest priority last.
func DefaultEnvFiles() []string {
	return []string{
		".env",
		filepath.Join(DefaultConfigDir(), constants.AppName+".env"),
	}
}

// DefaultConfigDir is where logs, backups and the default database live.
func DefaultConfigDir() string {
	return filepath.Dir(ExpandHome(constants.DefaultStorePath))
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ConfigDir returns the directory that holds a file-backed store, or the
// default config directory for network stores.
func ConfigDir(store string) string {
	if IsNetworkStore(store) {
		return DefaultConfigDir()
	}
	return filepath.Dir(ExpandHome(store))
}

// IsNetworkStore reports whether store names a server rather than a file.
func IsNetworkStore(store string) bool {
	return store == "keyring" ||
		strings.HasPrefix(store, "postgres://") ||
		strings.HasPrefix(store, "postgresql://") ||
		strings.HasPrefix(store, "redis://") ||
		strings.HasPrefix(store, "rediss://")
}
