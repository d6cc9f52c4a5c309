// Package progression implements the XP and level rules.
//
// Level n requires n*100 points to complete. Points are consumed on level up,
// so PlayerStats.Points always holds the XP earned inside the current level.
package progression

import (
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/models"
)

// XPForLevel returns the points needed to complete the given level.
func XPForLevel(level int) int {
	if level < constants.StartingLevel {
		level = constants.StartingLevel
	}
	return level * constants.BaseXPPerLevel
}

// NewStats returns the stats of a fresh player whose last reset check happened on today.
func NewStats(today string) models.PlayerStats {
	return models.PlayerStats{
		Points:             0,
		Level:              constants.StartingLevel,
		XPForNextLevel:     XPForLevel(constants.StartingLevel),
		LastCompletionDate: today,
	}
}

// ApplyLevelUp consumes points while they reach the current threshold and
// returns the resulting stats with one event per level crossed.
// The input value is not modified.
func ApplyLevelUp(stats models.PlayerStats) (models.PlayerStats, []models.LevelUpEvent) {
	// A corrupt record must not stall the loop below.
	if stats.Level < constants.StartingLevel {
		stats.Level = constants.StartingLevel
	}
	if stats.XPForNextLevel <= 0 {
		stats.XPForNextLevel = XPForLevel(stats.Level)
	}

	var events []models.LevelUpEvent
	for stats.Points >= stats.XPForNextLevel {
		stats.Points -= stats.XPForNextLevel
		stats.Level++
		stats.XPForNextLevel = XPForLevel(stats.Level)
		events = append(events, models.LevelUpEvent{
			Level:          stats.Level,
			XPForNextLevel: stats.XPForNextLevel,
		})
	}
	return stats, events
}

// Award adds reward to the current level's points and levels up as needed.
func Award(stats models.PlayerStats, reward int) (models.PlayerStats, []models.LevelUpEvent) {
	stats.Points += reward
	return ApplyLevelUp(stats)
}

// TotalXP returns the lifetime XP represented by stats: every completed
// level's requirement plus the points inside the current one.
func TotalXP(stats models.PlayerStats) int {
	total := stats.Points
	for l := constants.StartingLevel; l < stats.Level; l++ {
		total += XPForLevel(l)
	}
	return total
}
