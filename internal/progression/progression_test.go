package progression

import (
	"testing"

	"github.com/julianstephens/habitquest/internal/models"
)

func TestApplyLevelUp(t *testing.T) {
	tests := []struct {
		name       string
		in         models.PlayerStats
		want       models.PlayerStats
		wantEvents []int
	}{
		{
			name: "below threshold is untouched",
			in:   models.PlayerStats{Points: 80, Level: 1, XPForNextLevel: 100},
			want: models.PlayerStats{Points: 80, Level: 1, XPForNextLevel: 100},
		},
		{
			name:       "exact threshold levels up",
			in:         models.PlayerStats{Points: 100, Level: 1, XPForNextLevel: 100},
			want:       models.PlayerStats{Points: 0, Level: 2, XPForNextLevel: 200},
			wantEvents: []int{2},
		},
		{
			name:       "250 points at level 1 stops at level 2",
			in:         models.PlayerStats{Points: 250, Level: 1, XPForNextLevel: 100},
			want:       models.PlayerStats{Points: 150, Level: 2, XPForNextLevel: 200},
			wantEvents: []int{2},
		},
		{
			name:       "several levels in one call",
			in:         models.PlayerStats{Points: 650, Level: 1, XPForNextLevel: 100},
			want:       models.PlayerStats{Points: 50, Level: 4, XPForNextLevel: 400},
			wantEvents: []int{2, 3, 4},
		},
		{
			name: "negative points never loop",
			in:   models.PlayerStats{Points: -30, Level: 3, XPForNextLevel: 300},
			want: models.PlayerStats{Points: -30, Level: 3, XPForNextLevel: 300},
		},
		{
			name:       "zero threshold is normalized",
			in:         models.PlayerStats{Points: 120, Level: 1, XPForNextLevel: 0},
			want:       models.PlayerStats{Points: 20, Level: 2, XPForNextLevel: 200},
			wantEvents: []int{2},
		},
		{
			name: "level below one is normalized",
			in:   models.PlayerStats{Points: 10, Level: 0, XPForNextLevel: 0},
			want: models.PlayerStats{Points: 10, Level: 1, XPForNextLevel: 100},
		},
		{
			name: "date is carried through",
			in:   models.PlayerStats{Points: 5, Level: 2, XPForNextLevel: 200, LastCompletionDate: "2026-03-14"},
			want: models.PlayerStats{Points: 5, Level: 2, XPForNextLevel: 200, LastCompletionDate: "2026-03-14"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, events := ApplyLevelUp(tt.in)
			if got != tt.want {
				t.Errorf("ApplyLevelUp(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
			if len(events) != len(tt.wantEvents) {
				t.Fatalf("expected %d events, got %d (%+v)", len(tt.wantEvents), len(events), events)
			}
			for i, lvl := range tt.wantEvents {
				if events[i].Level != lvl {
					t.Errorf("event %d: expected level %d, got %d", i, lvl, events[i].Level)
				}
				if events[i].XPForNextLevel != lvl*100 {
					t.Errorf("event %d: expected threshold %d, got %d", i, lvl*100, events[i].XPForNextLevel)
				}
			}
		})
	}
}

func TestApplyLevelUpInvariants(t *testing.T) {
	for level := 1; level <= 12; level++ {
		for points := 0; points <= 5000; points += 37 {
			in := models.PlayerStats{Points: points, Level: level, XPForNextLevel: level * 100}
			got, events := ApplyLevelUp(in)

			if got.Points < 0 || got.Points >= got.XPForNextLevel {
				t.Fatalf("%+v: points %d outside [0, %d)", in, got.Points, got.XPForNextLevel)
			}
			if got.XPForNextLevel != got.Level*100 {
				t.Fatalf("%+v: threshold %d does not match level %d", in, got.XPForNextLevel, got.Level)
			}
			if got.Level < in.Level {
				t.Fatalf("%+v: level decreased to %d", in, got.Level)
			}
			if len(events) != got.Level-in.Level {
				t.Fatalf("%+v: expected %d events, got %d", in, got.Level-in.Level, len(events))
			}

			// Points consumed equal the thresholds crossed.
			consumed := 0
			for l := in.Level; l < got.Level; l++ {
				consumed += l * 100
			}
			if consumed+got.Points != points {
				t.Fatalf("%+v: consumed %d + remaining %d != %d", in, consumed, got.Points, points)
			}
		}
	}
}

func TestAward(t *testing.T) {
	stats := NewStats("2026-03-14")

	stats, events := Award(stats, 80)
	if len(events) != 0 {
		t.Errorf("expected no level up after 80 XP, got %+v", events)
	}
	if stats.Points != 80 || stats.Level != 1 || stats.XPForNextLevel != 100 {
		t.Errorf("unexpected stats after 80 XP: %+v", stats)
	}

	stats, events = Award(stats, 30)
	if len(events) != 1 {
		t.Fatalf("expected one level up after 110 XP, got %d", len(events))
	}
	if stats.Points != 10 || stats.Level != 2 || stats.XPForNextLevel != 200 {
		t.Errorf("unexpected stats after 110 XP: %+v", stats)
	}

	stats, events = Award(stats, 0)
	if len(events) != 0 || stats.Points != 10 {
		t.Errorf("zero reward should be a no-op, got %+v %+v", stats, events)
	}
}

func TestTotalXP(t *testing.T) {
	stats := models.PlayerStats{Points: 50, Level: 3, XPForNextLevel: 300}
	if got := TotalXP(stats); got != 350 {
		t.Errorf("expected 350 total XP, got %d", got)
	}
	if got := TotalXP(NewStats("")); got != 0 {
		t.Errorf("expected 0 total XP for a new player, got %d", got)
	}
}

func TestXPForLevel(t *testing.T) {
	if XPForLevel(1) != 100 || XPForLevel(5) != 500 {
		t.Errorf("unexpected thresholds: %d %d", XPForLevel(1), XPForLevel(5))
	}
	if XPForLevel(0) != 100 {
		t.Errorf("expected level 0 to clamp to 100, got %d", XPForLevel(0))
	}
}
