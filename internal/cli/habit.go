package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/tracker"
)

type HabitCmd struct {
	Add  HabitAddCmd  `cmd:"" help:"Register a new habit."`
	List HabitListCmd `cmd:"" help:"List habits and today's progress."`
	Done HabitDoneCmd `cmd:"" help:"Mark a habit complete for today."`
}

type HabitAddCmd struct {
	Name   string `arg:"" help:"Habit name."`
	Reward int    `arg:"" help:"XP awarded on completion."`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	habit, err := ctx.Service.RegisterHabit(c.Name, c.Reward)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "✓ Added habit %q (+%d XP)\n", habit.Name, habit.Reward)

	ctx.PerformAutomaticBackup()
	return nil
}

type HabitListCmd struct {
	JSON bool `help:"Print habits and stats as JSON."`
}

func (c *HabitListCmd) Run(ctx *Context) error {
	state, err := ctx.Service.State()
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	}

	if len(state.Habits) == 0 {
		fmt.Fprintln(ctx.Out, "No habits yet. Add one with 'habitquest habit add <name> <reward>'.")
		return nil
	}

	done := 0
	for i, h := range state.Habits {
		mark := " "
		if h.CompletedToday {
			mark = "✓"
			done++
		}
		fmt.Fprintf(ctx.Out, "%2d. [%s] %-30s +%d XP\n", i+1, mark, h.Name, h.Reward)
	}
	fmt.Fprintf(ctx.Out, "\n%d/%d done today\n", done, len(state.Habits))
	return nil
}

type HabitDoneCmd struct {
	Habit string `arg:"" help:"Habit number from 'habit list', its name, or its id."`
}

func (c *HabitDoneCmd) Run(ctx *Context) error {
	state, err := ctx.Service.State()
	if err != nil {
		return err
	}
	id, err := resolveHabit(state.Habits, c.Habit)
	if err != nil {
		return err
	}

	res, err := ctx.Service.CompleteHabit(id)
	if err != nil {
		return err
	}
	if !res.Completed {
		if errors.Is(res.Skipped, tracker.ErrAlreadyCompleted) {
			fmt.Fprintf(ctx.Out, "%q is already done today.\n", res.Habit.Name)
			return nil
		}
		return res.Skipped
	}

	fmt.Fprintf(ctx.Out, "✓ %s (+%d XP) %s\n", res.Habit.Name, res.Habit.Reward, formatStats(res.Stats))
	return nil
}

// resolveHabit finds a habit by 1-based list position, id, or
// case-insensitive name, in that order.
func resolveHabit(habits []models.Habit, ref string) (models.HabitID, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(habits) {
		return habits[n-1].ID, nil
	}
	for _, h := range habits {
		if string(h.ID) == ref {
			return h.ID, nil
		}
	}
	for _, h := range habits {
		if strings.EqualFold(h.Name, ref) {
			return h.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %q", tracker.ErrNotFound, ref)
}

func formatStats(s models.PlayerStats) string {
	return fmt.Sprintf("Level %d · %d/%d XP", s.Level, s.Points, s.XPForNextLevel)
}
