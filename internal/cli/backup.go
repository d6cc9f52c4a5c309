package cli

import (
	"fmt"
	"path/filepath"

	"github.com/julianstephens/habitquest/internal/backup"
	"github.com/julianstephens/habitquest/internal/constants"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Create a backup of the SQLite store."`
	List    BackupListCmd    `cmd:"" help:"List available backups."`
	Restore BackupRestoreCmd `cmd:"" help:"Restore the store from a backup."`
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *Context) error {
	path, err := ctx.sqlitePath()
	if err != nil {
		return err
	}
	if err := ctx.Backend.Load(); err != nil {
		return err
	}

	backupPath, err := backup.NewManager(path).CreateBackup()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	fmt.Fprintf(ctx.Out, "✓ Backup created: %s\n", filepath.Base(backupPath))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *Context) error {
	path, err := ctx.sqlitePath()
	if err != nil {
		return err
	}

	mgr := backup.NewManager(path)
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		fmt.Fprintln(ctx.Out, "No backups found.")
		fmt.Fprintf(ctx.Out, "Backups are stored in: %s\n", mgr.GetBackupDir())
		return nil
	}

	fmt.Fprintf(ctx.Out, "Available backups (%d total, keeping most recent %d):\n\n", len(backups), constants.MaxBackups)
	for _, b := range backups {
		sizeKB := float64(b.Size) / 1024.0
		fmt.Fprintf(ctx.Out, "  %s  %s  (%.1f KB)\n", b.Timestamp.Format("2006-01-02 15:04:05"), b.Name(), sizeKB)
	}
	fmt.Fprintf(ctx.Out, "\nBackup directory: %s\n", mgr.GetBackupDir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Restore without asking."`
}

func (c *BackupRestoreCmd) Run(ctx *Context) error {
	path, err := ctx.sqlitePath()
	if err != nil {
		return err
	}
	mgr := backup.NewManager(path)
	backupPath := mgr.Resolve(c.BackupFile)

	if !c.Yes {
		ok, err := ctx.confirm(fmt.Sprintf("Replace %s with %s?", path, filepath.Base(backupPath)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(ctx.Out, "Restore cancelled.")
			return nil
		}
	}

	// The database file is replaced underneath any open handle.
	if err := ctx.Backend.Close(); err != nil {
		return err
	}

	previous, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		return err
	}
	if previous != "" {
		fmt.Fprintf(ctx.Out, "Previous database saved as %s\n", filepath.Base(previous))
	}
	fmt.Fprintf(ctx.Out, "✓ Restored from %s\n", filepath.Base(backupPath))
	return nil
}
