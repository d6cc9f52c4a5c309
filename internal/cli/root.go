package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/habitquest/internal/backup"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/keyring"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/notifier"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/tracker"
)

var errBackupsUnsupported = errors.New("backups are only supported for SQLite stores")

type Context struct {
	Backend storage.Backend
	Store   *storage.Store
	Service *tracker.Service

	// Notifier receives level-up toasts; nil disables them.
	Notifier   *notifier.Notifier
	Keyring    keyring.Credentials
	AutoBackup bool

	Out io.Writer
	In  io.Reader
}

// NewContext wires the store and tracker for backend. Level ups are printed
// to Out and forwarded to n when it is not nil.
func NewContext(backend storage.Backend, n *notifier.Notifier, opts ...tracker.Option) *Context {
	c := &Context{
		Backend:  backend,
		Store:    storage.NewStore(backend),
		Notifier: n,
		Keyring:  keyring.Default(),
		Out:      os.Stdout,
		In:       os.Stdin,
	}
	opts = append([]tracker.Option{tracker.WithSink(c.printerSink())}, opts...)
	c.Service = tracker.New(c.Store, opts...)
	return c
}

// printerSink prints level ups. Refreshes are ignored since every command
// prints its own result.
func (c *Context) printerSink() tracker.Sink {
	return tracker.SinkFuncs{
		OnLevelUp: func(ev models.LevelUpEvent) {
			fmt.Fprintf(c.Out, "🎉 %s\n", notifier.LevelUpMessage(ev))
			if c.Notifier != nil {
				c.Notifier.LevelUp(ev)
			}
		},
	}
}

// Session opens the store and applies the daily reset. Every command that
// reads or changes habits starts with it.
func (c *Context) Session() error {
	if err := c.Backend.Load(); err != nil {
		return err
	}
	if _, err := c.Service.ResetDaily(); err != nil {
		return fmt.Errorf("daily reset failed: %w", err)
	}
	return nil
}

// sqlitePath returns the database file for SQLite stores.
func (c *Context) sqlitePath() (string, error) {
	if _, ok := c.Backend.(*storage.SQLiteBackend); !ok {
		return "", errBackupsUnsupported
	}
	return c.Backend.GetConfigPath(), nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if !c.AutoBackup {
		return
	}
	path, err := c.sqlitePath()
	if err != nil {
		return
	}
	if _, err := backup.NewManager(path).CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// confirm asks a yes/no question on In, defaulting to no.
func (c *Context) confirm(question string) (bool, error) {
	fmt.Fprintf(c.Out, "%s [y/N]: ", question)
	response, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// OpenBackend picks the backend for the --store value. A store left at its
// default is replaced by dbConnection when that is set, and the "keyring"
// store reads its connection string from creds.
func OpenBackend(store, dbConnection string, creds keyring.Credentials) (storage.Backend, error) {
	if dbConnection != "" && store == constants.DefaultStorePath {
		return storage.NewPostgresBackend(dbConnection), nil
	}

	if storage.KindOf(store) == storage.KindKeyring {
		connStr, err := creds.Get()
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("no connection string in keyring, store one with 'habitquest keyring set'")
		}
		if err != nil {
			return nil, err
		}
		return storage.NewPostgresBackend(connStr), nil
	}

	backend, err := storage.New(store)
	if errors.Is(err, storage.ErrEmbeddedCredentials) {
		return nil, fmt.Errorf("%w; store the full connection string with 'habitquest keyring set' and use --store=keyring, or set HABITQUEST_DB_CONNECTION", err)
	}
	return backend, err
}
