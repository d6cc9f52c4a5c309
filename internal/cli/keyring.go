package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitquest/internal/keyring"
	"github.com/julianstephens/habitquest/internal/storage"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	Status KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
}

// KeyringSetCmd stores database connection credentials in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring"`
}

func (cmd *KeyringSetCmd) Run(ctx *Context) error {
	if storage.KindOf(cmd.ConnectionString) != storage.KindPostgres && !hasHostParam(cmd.ConnectionString) {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if err := storage.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, storage.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// the keyring is encrypted, so a password is acceptable here
		fmt.Fprintln(ctx.Out, "⚠️  Warning: Connection string contains embedded credentials.")
		fmt.Fprintln(ctx.Out, "   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := ctx.Keyring.Set(cmd.ConnectionString); err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "✓ Stored %s in OS keyring\n", storage.RedactConnString(cmd.ConnectionString))
	fmt.Fprintln(ctx.Out, "  Use it with --store=keyring")
	return nil
}

// hasHostParam reports whether connStr looks like a key=value DSN.
func hasHostParam(connStr string) bool {
	for _, part := range strings.Fields(connStr) {
		if strings.HasPrefix(part, "host=") || strings.HasPrefix(part, "dbname=") {
			return true
		}
	}
	return false
}

// KeyringDeleteCmd removes database connection credentials from the OS keyring
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Keyring.Delete(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return err
	}
	fmt.Fprintln(ctx.Out, "✓ Connection string deleted from OS keyring")
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *Context) error {
	st := ctx.Keyring.Check()
	if !st.Available {
		fmt.Fprintln(ctx.Out, "❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}

	fmt.Fprintln(ctx.Out, "✓ OS keyring is available")
	if st.Stored {
		fmt.Fprintln(ctx.Out, "✓ Connection string is stored in keyring")
	} else {
		fmt.Fprintln(ctx.Out, "ℹ No connection string stored in keyring")
	}
	return nil
}
