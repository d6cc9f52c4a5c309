package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/tracker"
	"github.com/julianstephens/habitquest/internal/validation"
)

func TestHabitAddAndList(t *testing.T) {
	env := setupTestContext(t)

	env.addHabit(t, "  Read  ", 50)
	if !strings.Contains(env.out.String(), `✓ Added habit "Read" (+50 XP)`) {
		t.Errorf("unexpected add output: %q", env.out.String())
	}
	env.addHabit(t, "Walk", 10)

	env.out.Reset()
	if err := (&HabitListCmd{}).Run(env.ctx); err != nil {
		t.Fatalf("habit list failed: %v", err)
	}
	out := env.out.String()
	for _, want := range []string{" 1. [ ] Read", " 2. [ ] Walk", "0/2 done today"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestHabitListEmpty(t *testing.T) {
	env := setupTestContext(t)
	if err := (&HabitListCmd{}).Run(env.ctx); err != nil {
		t.Fatalf("habit list failed: %v", err)
	}
	if !strings.Contains(env.out.String(), "No habits yet") {
		t.Errorf("unexpected output: %q", env.out.String())
	}
}

func TestHabitListJSON(t *testing.T) {
	env := setupTestContext(t)
	env.addHabit(t, "Read", 50)

	env.out.Reset()
	if err := (&HabitListCmd{JSON: true}).Run(env.ctx); err != nil {
		t.Fatalf("habit list --json failed: %v", err)
	}

	var state models.RenderableState
	if err := json.Unmarshal(env.out.Bytes(), &state); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, env.out.String())
	}
	if len(state.Habits) != 1 || state.Habits[0].Name != "Read" {
		t.Errorf("unexpected habits: %+v", state.Habits)
	}
	if state.Stats.Level != 1 || state.Stats.XPForNextLevel != 100 {
		t.Errorf("unexpected stats: %+v", state.Stats)
	}
}

func TestHabitAddValidation(t *testing.T) {
	tests := []struct {
		name   string
		reward int
		field  string
	}{
		{name: "", reward: 10, field: "name"},
		{name: "   ", reward: 10, field: "name"},
		{name: "Read", reward: 0, field: "reward"},
		{name: "Read", reward: -5, field: "reward"},
	}
	for _, tt := range tests {
		env := setupTestContext(t)
		err := (&HabitAddCmd{Name: tt.name, Reward: tt.reward}).Run(env.ctx)

		var vErr *validation.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("add(%q, %d): expected validation error, got %v", tt.name, tt.reward, err)
		}
		if vErr.Field != tt.field {
			t.Errorf("add(%q, %d): field = %q, want %q", tt.name, tt.reward, vErr.Field, tt.field)
		}
	}
}

func TestHabitDoneLevelUp(t *testing.T) {
	env := setupTestContext(t)
	env.addHabit(t, "Read", 80)
	env.addHabit(t, "Walk", 30)

	env.out.Reset()
	if err := (&HabitDoneCmd{Habit: "1"}).Run(env.ctx); err != nil {
		t.Fatalf("habit done failed: %v", err)
	}
	if !strings.Contains(env.out.String(), "✓ Read (+80 XP) Level 1 · 80/100 XP") {
		t.Errorf("unexpected output: %q", env.out.String())
	}

	env.out.Reset()
	if err := (&HabitDoneCmd{Habit: "walk"}).Run(env.ctx); err != nil {
		t.Fatalf("habit done failed: %v", err)
	}
	out := env.out.String()
	if !strings.Contains(out, "🎉 Level up! You reached level 2. Next level in 200 XP.") {
		t.Errorf("level up not announced: %q", out)
	}
	if !strings.Contains(out, "Level 2 · 10/200 XP") {
		t.Errorf("unexpected stats line: %q", out)
	}
	if strings.Index(out, "🎉") > strings.Index(out, "✓") {
		t.Errorf("level up should print before the completion line: %q", out)
	}
}

func TestHabitDoneTwice(t *testing.T) {
	env := setupTestContext(t)
	env.addHabit(t, "Read", 50)

	for i := 0; i < 2; i++ {
		if err := (&HabitDoneCmd{Habit: "Read"}).Run(env.ctx); err != nil {
			t.Fatalf("habit done #%d failed: %v", i, err)
		}
	}
	if !strings.Contains(env.out.String(), `"Read" is already done today.`) {
		t.Errorf("second completion not reported: %q", env.out.String())
	}

	state, err := env.ctx.Service.State()
	if err != nil {
		t.Fatal(err)
	}
	if state.Stats.Points != 50 {
		t.Errorf("reward applied twice: %d points", state.Stats.Points)
	}
}

func TestHabitDoneUnknown(t *testing.T) {
	env := setupTestContext(t)
	env.addHabit(t, "Read", 50)

	for _, ref := range []string{"0", "2", "Swim", "no-such-id"} {
		err := (&HabitDoneCmd{Habit: ref}).Run(env.ctx)
		if !errors.Is(err, tracker.ErrNotFound) {
			t.Errorf("done %q: expected ErrNotFound, got %v", ref, err)
		}
	}
}

func TestResolveHabit(t *testing.T) {
	habits := []models.Habit{
		{ID: "a1", Name: "Read"},
		{ID: "b2", Name: "Walk"},
		{ID: "3", Name: "1"},
	}

	tests := []struct {
		ref  string
		want models.HabitID
	}{
		{ref: "1", want: "a1"},
		{ref: " 2 ", want: "b2"},
		{ref: "3", want: "3"},
		{ref: "b2", want: "b2"},
		{ref: "read", want: "a1"},
		{ref: "WALK", want: "b2"},
	}
	for _, tt := range tests {
		got, err := resolveHabit(habits, tt.ref)
		if err != nil {
			t.Errorf("resolveHabit(%q) failed: %v", tt.ref, err)
			continue
		}
		if got != tt.want {
			t.Errorf("resolveHabit(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}

	if _, err := resolveHabit(habits, "4"); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("expected ErrNotFound for out-of-range index, got %v", err)
	}
}

func TestStats(t *testing.T) {
	env := setupTestContext(t)
	env.addHabit(t, "Read", 150)
	if err := (&HabitDoneCmd{Habit: "1"}).Run(env.ctx); err != nil {
		t.Fatal(err)
	}

	env.out.Reset()
	if err := (&StatsCmd{}).Run(env.ctx); err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	out := env.out.String()
	for _, want := range []string{"Level 2", "50/200 XP", "Total XP earned: 150", "Today: 1/1 habits done (2024-03-10)"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}

	env.out.Reset()
	if err := (&StatsCmd{JSON: true}).Run(env.ctx); err != nil {
		t.Fatalf("stats --json failed: %v", err)
	}
	var stats models.PlayerStats
	if err := json.Unmarshal(env.out.Bytes(), &stats); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	want := models.PlayerStats{Points: 50, Level: 2, XPForNextLevel: 200, LastCompletionDate: "2024-03-10"}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	var total struct {
		TotalXP int `json:"totalXP"`
	}
	if err := json.Unmarshal(env.out.Bytes(), &total); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if total.TotalXP != 150 {
		t.Errorf("totalXP = %d, want 150", total.TotalXP)
	}
}
