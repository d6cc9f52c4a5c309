package dailyreset

import "github.com/julianstephens/habitquest/internal/models"

// MaybeReset clears every habit's daily completion flag when the stored
// reset date differs from today. Any difference counts, including an empty
// date; the number of days elapsed is irrelevant and no points change.
//
// The inputs are never modified. When changed is false the returned values
// are the inputs themselves and nothing needs to be persisted.
func MaybeReset(stats models.PlayerStats, habits []models.Habit, today string) (bool, models.PlayerStats, []models.Habit) {
	if stats.LastCompletionDate == today {
		return false, stats, habits
	}

	next := models.CloneHabits(habits)
	for i := range next {
		next[i].CompletedToday = false
	}
	stats.LastCompletionDate = today
	return true, stats, next
}
