package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitquest/internal/backup"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/validation"
)

// skipError marks a check that does not apply to the current store.
type skipError struct{ reason string }

func (e skipError) Error() string { return e.reason }

type DoctorCmd struct{}

type healthCheck struct {
	name string
	run  func(*Context) error
	// warnOnly checks never fail the run
	warnOnly bool
	// needsDB checks are skipped when the store is unreachable
	needsDB bool
}

var healthChecks = []healthCheck{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Data validation", run: checkValidation, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "Keyring", run: checkKeyring, warnOnly: true},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Fprintln(ctx.Out, "Running diagnostics...")
	fmt.Fprintln(ctx.Out)

	hasError := false
	dbReachable := false

	for i, check := range healthChecks {
		if check.needsDB && !dbReachable {
			fmt.Fprintf(ctx.Out, "⊘ %s: SKIPPED (database not reachable)\n", check.name)
			continue
		}

		err := check.run(ctx)
		var skip skipError
		switch {
		case err == nil:
			fmt.Fprintf(ctx.Out, "✓ %s: OK\n", check.name)
			if i == 0 {
				dbReachable = true
			}
		case errors.As(err, &skip):
			fmt.Fprintf(ctx.Out, "⊘ %s: SKIPPED (%s)\n", check.name, skip.reason)
		case check.warnOnly:
			fmt.Fprintf(ctx.Out, "⚠ %s: WARNING\n", check.name)
			fmt.Fprintf(ctx.Out, "   %v\n", err)
		default:
			fmt.Fprintf(ctx.Out, "❌ %s: FAIL\n", check.name)
			fmt.Fprintf(ctx.Out, "   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Fprintln(ctx.Out)
	if hasError {
		fmt.Fprintln(ctx.Out, "Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Fprintln(ctx.Out, "All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *Context) error {
	// Open skips the schema check so an outdated store is reported by the
	// schema check instead.
	open := ctx.Backend.Load
	if m, ok := ctx.Backend.(storage.Migrator); ok {
		open = m.Open
	}
	if err := open(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, err := ctx.Backend.Get(constants.StatsRecordKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *Context) error {
	migrator, ok := ctx.Backend.(storage.Migrator)
	if !ok {
		return skipError{"store has no schema"}
	}

	current, latest, err := migrator.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkValidation(ctx *Context) error {
	habits, err := ctx.Store.LoadHabits()
	if err != nil {
		return fmt.Errorf("failed to decode habits: %w", err)
	}
	stats, err := ctx.Store.LoadStats(ctx.Service.Today())
	if err != nil {
		return fmt.Errorf("failed to decode stats: %w", err)
	}

	result := validation.ValidateRecords(habits, stats)
	if result.HasIssues() {
		return fmt.Errorf("%d issue(s) found\n%s", len(result.Issues), result.FormatReport())
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	path, err := ctx.sqlitePath()
	if err != nil {
		return skipError{"not a SQLite store"}
	}

	backups, err := backup.NewManager(path).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'habitquest backup create'")
	}
	return nil
}

func checkKeyring(ctx *Context) error {
	st := ctx.Keyring.Check()
	if !st.Available {
		return errors.New("OS keyring is not available, --store=keyring will not work")
	}
	return nil
}

func checkClockTimezone(_ *Context) error {
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if time.Local == nil {
		return fmt.Errorf("local timezone is not configured")
	}
	name, _ := now.Zone()
	if name == "" {
		return fmt.Errorf("local timezone has no name")
	}
	return nil
}
