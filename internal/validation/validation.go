package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/models"
)

// ValidationError reports invalid user input. No state is changed when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ValidateNewHabit checks the registration input and returns the trimmed name.
func ValidateNewHabit(name string, reward int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "name", Message: "habit name cannot be empty"}
	}
	if reward <= 0 {
		return "", &ValidationError{Field: "reward", Message: fmt.Sprintf("reward must be a positive number of XP, got %d", reward)}
	}
	return name, nil
}

// IssueType represents the kind of problem found in stored records
type IssueType string

const (
	IssueDuplicateHabitID  IssueType = "duplicate_habit_id"
	IssueEmptyHabitName    IssueType = "empty_habit_name"
	IssueInvalidReward     IssueType = "invalid_reward"
	IssueInvalidDate       IssueType = "invalid_date"
	IssueStatsOutOfBounds  IssueType = "stats_out_of_bounds"
	IssueThresholdMismatch IssueType = "threshold_mismatch"
)

// Issue describes one problem found in stored records
type Issue struct {
	Type        IssueType
	Description string
	HabitID     models.HabitID // empty for stats issues
}

// Result contains all detected issues
type Result struct {
	Issues []Issue
}

// HasIssues returns true if there are any issues
func (r *Result) HasIssues() bool {
	return len(r.Issues) > 0
}

// FormatReport returns a human-readable report of all issues
func (r *Result) FormatReport() string {
	if !r.HasIssues() {
		return "No issues detected."
	}

	var b strings.Builder
	b.WriteString("Issues detected:\n")
	for _, issue := range r.Issues {
		fmt.Fprintf(&b, "- %s\n", issue.Description)
	}
	return b.String()
}

// ValidateRecords checks stored records for values the workflow would never
// write. Records imported from elsewhere or edited by hand can carry them.
func ValidateRecords(habits []models.Habit, stats models.PlayerStats) Result {
	var result Result

	seen := make(map[models.HabitID]bool, len(habits))
	for _, h := range habits {
		if seen[h.ID] {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueDuplicateHabitID,
				Description: fmt.Sprintf("habit id %q is used more than once", h.ID),
				HabitID:     h.ID,
			})
		}
		seen[h.ID] = true

		if strings.TrimSpace(h.Name) == "" {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueEmptyHabitName,
				Description: fmt.Sprintf("habit %q has an empty name", h.ID),
				HabitID:     h.ID,
			})
		}
		if h.Reward <= 0 {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueInvalidReward,
				Description: fmt.Sprintf("habit %q has non-positive reward %d", h.ID, h.Reward),
				HabitID:     h.ID,
			})
		}
		if h.LastCompleted != nil && !isDate(*h.LastCompleted) {
			result.Issues = append(result.Issues, Issue{
				Type:        IssueInvalidDate,
				Description: fmt.Sprintf("habit %q has invalid last completion date %q", h.ID, *h.LastCompleted),
				HabitID:     h.ID,
			})
		}
	}

	if stats.Level < constants.StartingLevel || stats.Points < 0 || stats.Points >= stats.XPForNextLevel {
		result.Issues = append(result.Issues, Issue{
			Type: IssueStatsOutOfBounds,
			Description: fmt.Sprintf("stats out of bounds: level %d, %d/%d XP",
				stats.Level, stats.Points, stats.XPForNextLevel),
		})
	}
	if stats.XPForNextLevel != stats.Level*constants.BaseXPPerLevel {
		result.Issues = append(result.Issues, Issue{
			Type: IssueThresholdMismatch,
			Description: fmt.Sprintf("level %d should need %d XP, record says %d",
				stats.Level, stats.Level*constants.BaseXPPerLevel, stats.XPForNextLevel),
		})
	}
	if stats.LastCompletionDate != "" && !isDate(stats.LastCompletionDate) {
		result.Issues = append(result.Issues, Issue{
			Type:        IssueInvalidDate,
			Description: fmt.Sprintf("stats have invalid last reset date %q", stats.LastCompletionDate),
		})
	}

	return result
}

func isDate(s string) bool {
	_, err := time.Parse(constants.DateFormat, s)
	return err == nil
}
