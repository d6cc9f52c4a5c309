package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/habitquest/internal/models"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExportImportRoundTrip(t *testing.T) {
	src := setupTestContext(t)
	src.addHabit(t, "Read", 80)
	src.addHabit(t, "Walk", 30)
	if err := (&HabitDoneCmd{Habit: "1"}).Run(src.ctx); err != nil {
		t.Fatal(err)
	}

	exportPath := filepath.Join(t.TempDir(), "export.json")
	if err := (&ExportCmd{Output: exportPath}).Run(src.ctx); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	want, err := src.ctx.Service.State()
	if err != nil {
		t.Fatal(err)
	}

	dst := setupTestContext(t)
	if err := (&ImportCmd{File: exportPath}).Run(dst.ctx); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	got, err := dst.ctx.Service.State()
	if err != nil {
		t.Fatal(err)
	}

	if got.Stats != want.Stats {
		t.Errorf("stats = %+v, want %+v", got.Stats, want.Stats)
	}
	if len(got.Habits) != len(want.Habits) {
		t.Fatalf("got %d habits, want %d", len(got.Habits), len(want.Habits))
	}
	for i := range want.Habits {
		if got.Habits[i].ID != want.Habits[i].ID || got.Habits[i].Name != want.Habits[i].Name ||
			got.Habits[i].CompletedToday != want.Habits[i].CompletedToday {
			t.Errorf("habit %d = %+v, want %+v", i, got.Habits[i], want.Habits[i])
		}
	}
}

func TestExportToStdout(t *testing.T) {
	env := setupTestContext(t)
	env.addHabit(t, "Read", 50)

	env.out.Reset()
	if err := (&ExportCmd{}).Run(env.ctx); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	out := env.out.String()
	for _, key := range []string{`"habitQuestHabits"`, `"habitQuestStats"`, `"xpForNextLevel": 100`} {
		if !strings.Contains(out, key) {
			t.Errorf("export missing %s:\n%s", key, out)
		}
	}
}

func TestImportBrowserWidgetExport(t *testing.T) {
	env := setupTestContext(t)
	path := writeFile(t, `{
		"habitQuestHabits": [
			{"id": 1700000000000, "name": "Read", "reward": 50, "completedToday": true, "lastCompleted": "2024-03-09"}
		],
		"habitQuestStats": {"points": 10, "level": 2, "xpForNextLevel": 200, "lastCompletionDate": "2024-03-09"}
	}`)

	if err := (&ImportCmd{File: path}).Run(env.ctx); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	habits, err := env.ctx.Store.LoadHabits()
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) != 1 || habits[0].ID != models.HabitID("1700000000000") {
		t.Fatalf("unexpected habits: %+v", habits)
	}

	// the next session start clears yesterday's flag
	if err := env.ctx.Session(); err != nil {
		t.Fatal(err)
	}
	state, err := env.ctx.Service.State()
	if err != nil {
		t.Fatal(err)
	}
	if state.Habits[0].CompletedToday {
		t.Error("imported completion flag survived the reset")
	}
	if state.Stats.Points != 10 || state.Stats.Level != 2 {
		t.Errorf("progression changed by reset: %+v", state.Stats)
	}
}

func TestImportRejectsInvalidRecords(t *testing.T) {
	env := setupTestContext(t)
	env.addHabit(t, "Keep", 5)
	path := writeFile(t, `{
		"habitQuestHabits": [{"id": "x", "name": "Read", "reward": -5, "completedToday": false, "lastCompleted": null}],
		"habitQuestStats": {"points": 500, "level": 1, "xpForNextLevel": 100, "lastCompletionDate": "2024-03-10"}
	}`)

	err := (&ImportCmd{File: path, Yes: true}).Run(env.ctx)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(env.out.String(), "Issues detected") {
		t.Errorf("report not printed: %q", env.out.String())
	}

	habits, _ := env.ctx.Store.LoadHabits()
	if len(habits) != 1 || habits[0].Name != "Keep" {
		t.Errorf("records changed by rejected import: %+v", habits)
	}
}

func TestImportMalformedJSON(t *testing.T) {
	env := setupTestContext(t)
	path := writeFile(t, `{"habitQuestHabits": [`)

	if err := (&ImportCmd{File: path}).Run(env.ctx); err == nil {
		t.Error("expected parse error")
	}
}

func TestImportConfirmation(t *testing.T) {
	path := writeFile(t, `{"habitQuestHabits": [{"id": "n", "name": "New", "reward": 5, "completedToday": false, "lastCompleted": null}]}`)

	tests := []struct {
		answer string
		want   string
	}{
		{answer: "n\n", want: "Keep"},
		{answer: "y\n", want: "New"},
	}
	for _, tt := range tests {
		env := setupTestContext(t)
		env.addHabit(t, "Keep", 5)
		env.ctx.In = strings.NewReader(tt.answer)

		if err := (&ImportCmd{File: path}).Run(env.ctx); err != nil {
			t.Fatalf("import failed: %v", err)
		}
		habits, _ := env.ctx.Store.LoadHabits()
		if len(habits) != 1 || habits[0].Name != tt.want {
			t.Errorf("answer %q: habits = %+v, want only %q", tt.answer, habits, tt.want)
		}
	}
}
