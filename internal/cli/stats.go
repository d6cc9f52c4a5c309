package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/progression"
)

const statsBarWidth = 30

type StatsCmd struct {
	JSON bool `help:"Print stats as JSON."`
}

type statsOutput struct {
	models.PlayerStats
	TotalXP int `json:"totalXP"`
}

func (c *StatsCmd) Run(ctx *Context) error {
	state, err := ctx.Service.State()
	if err != nil {
		return err
	}
	stats := state.Stats

	if c.JSON {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(statsOutput{PlayerStats: stats, TotalXP: progression.TotalXP(stats)})
	}

	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(statsBarWidth), progress.WithoutPercentage())
	fmt.Fprintf(ctx.Out, "Level %d\n", stats.Level)
	fmt.Fprintf(ctx.Out, "%s %d/%d XP\n", bar.ViewAs(stats.Progress()), stats.Points, stats.XPForNextLevel)
	fmt.Fprintf(ctx.Out, "Total XP earned: %d\n", progression.TotalXP(stats))

	done := 0
	for _, h := range state.Habits {
		if h.CompletedToday {
			done++
		}
	}
	fmt.Fprintf(ctx.Out, "Today: %d/%d habits done (%s)\n", done, len(state.Habits), ctx.Service.Today())
	return nil
}

type ResetCmd struct{}

func (c *ResetCmd) Run(ctx *Context) error {
	if err := ctx.Backend.Load(); err != nil {
		return err
	}
	changed, err := ctx.Service.ResetDaily()
	if err != nil {
		return err
	}
	if changed {
		fmt.Fprintf(ctx.Out, "✓ Daily reset applied for %s\n", ctx.Service.Today())
		return nil
	}
	fmt.Fprintf(ctx.Out, "Already reset for %s\n", ctx.Service.Today())
	return nil
}
