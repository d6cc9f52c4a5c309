package models

// PlayerStats is the singleton progression record.
// Points counts XP earned inside the current level, not lifetime XP.
type PlayerStats struct {
	Points             int    `json:"points"`
	Level              int    `json:"level"`
	XPForNextLevel     int    `json:"xpForNextLevel"`
	LastCompletionDate string `json:"lastCompletionDate"` // YYYY-MM-DD format
}

// Progress returns the fraction of the current level completed, in [0, 1].
func (s PlayerStats) Progress() float64 {
	if s.XPForNextLevel <= 0 || s.Points <= 0 {
		return 0
	}
	p := float64(s.Points) / float64(s.XPForNextLevel)
	if p > 1 {
		return 1
	}
	return p
}

// LevelUpEvent is emitted once for every level crossed.
type LevelUpEvent struct {
	Level          int `json:"level"`
	XPForNextLevel int `json:"xpForNextLevel"`
}

// RenderableState is everything the presentation layer needs to draw.
type RenderableState struct {
	Stats  PlayerStats `json:"stats"`
	Habits []Habit     `json:"habits"`
}
