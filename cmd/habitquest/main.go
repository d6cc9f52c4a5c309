package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/config"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/keyring"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/notifier"
	"github.com/julianstephens/habitquest/internal/storage"
)

type CLI struct {
	Version    kong.VersionFlag
	Store      string `help:"SQLite path, *.json path, redis:// URL, PostgreSQL URL without password, or 'keyring'." default:"${store}"`
	Debug      bool   `help:"Log debug output to stderr." default:"${debug}"`
	Notify     bool   `help:"Send level-up notifications to the tray app." default:"${notify}" negatable:""`
	AutoBackup bool   `help:"Back up the SQLite store after changes." default:"${autoBackup}" negatable:""`

	Init    cli.InitCmd    `cmd:"" help:"Initialize habitquest storage."`
	Migrate cli.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  cli.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     cli.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Habit   cli.HabitCmd   `cmd:"" help:"Manage habits."`
	Stats   cli.StatsCmd   `cmd:"" help:"Show level and XP."`
	Reset   cli.ResetCmd   `cmd:"" help:"Apply the daily reset now."`
	Export  cli.ExportCmd  `cmd:"" help:"Export habits and stats as JSON."`
	Import  cli.ImportCmd  `cmd:"" help:"Replace habits and stats from a JSON export."`
	Backup  cli.BackupCmd  `cmd:"" help:"Manage database backups."`
	Keyring cli.KeyringCmd `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

// Commands that open the store themselves, or never touch it.
var noSession = map[string]bool{
	"init":    true,
	"migrate": true,
	"doctor":  true,
	"reset":   true,
	"backup":  true,
	"keyring": true,
}

// newParser builds the command parser with flag defaults taken from cfg.
func newParser(args *CLI, cfg config.Config, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name(constants.AppName),
		kong.Description("Daily habit tracker with levels and XP"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":    constants.Version,
			"store":      cfg.Store,
			"debug":      strconv.FormatBool(cfg.Debug),
			"notify":     strconv.FormatBool(cfg.Notify),
			"autoBackup": strconv.FormatBool(cfg.AutoBackup),
		},
	}, options...)
	return kong.New(args, options...)
}

func main() {
	cfg, err := config.Load(config.DefaultEnvFiles()...)
	if err != nil {
		errors.Fatal(err)
	}

	var args CLI
	parser, err := newParser(&args, cfg)
	if err != nil {
		errors.Fatal(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := logger.Init(logger.Config{Debug: args.Debug, ConfigDir: config.ConfigDir(args.Store)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	errors.Fatal(run(ctx, &args, cfg, os.Stdout))
}

func run(ctx *kong.Context, args *CLI, cfg config.Config, out io.Writer) error {
	command := strings.Fields(ctx.Command())[0]

	var backend storage.Backend
	if command != "keyring" {
		b, err := cli.OpenBackend(args.Store, cfg.DBConnection, keyring.Default())
		if err != nil {
			return err
		}
		backend = b
		defer func() {
			if err := backend.Close(); err != nil {
				logger.Warn("Failed to close store", "error", err)
			}
		}()
	}

	var n *notifier.Notifier
	if args.Notify {
		n = notifier.New()
	}

	appCtx := cli.NewContext(backend, n)
	appCtx.AutoBackup = args.AutoBackup
	appCtx.Out = out

	if !noSession[command] {
		if err := appCtx.Session(); err != nil {
			return err
		}
	}

	logger.Debug("Running command", "command", ctx.Command())
	return ctx.Run(appCtx)
}
