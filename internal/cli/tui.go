package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/rollover"
	"github.com/julianstephens/habitquest/internal/tracker"
	"github.com/julianstephens/habitquest/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	p := tea.NewProgram(tui.NewModel(ctx.Service), tea.WithAltScreen())

	sinks := tracker.MultiSink{tui.NewSink(p)}
	if ctx.Notifier != nil {
		sinks = append(sinks, ctx.Notifier)
	}
	ctx.Service.SetSink(sinks)
	defer ctx.Service.SetSink(nil)

	sched, err := rollover.Start(ctx.Service.ResetDaily)
	if err != nil {
		return err
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			logger.Warn("Failed to stop rollover scheduler", "error", err)
		}
	}()

	restoreLog := logger.FileOnly()
	_, err = p.Run()
	restoreLog()
	if err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}

	ctx.PerformAutomaticBackup()
	return nil
}
