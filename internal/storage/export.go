package storage

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/progression"
)

// Snapshot is the exchange format for export and import: the two records
// keyed by their record names, as the browser widget kept them in localStorage.
type Snapshot struct {
	Habits []models.Habit      `json:"habitQuestHabits"`
	Stats  *models.PlayerStats `json:"habitQuestStats,omitempty"`
}

// Export writes the current records to w as indented JSON.
func (s *Store) Export(w io.Writer, today string) error {
	habits, err := s.LoadHabits()
	if err != nil {
		return err
	}
	stats, err := s.LoadStats(today)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Snapshot{Habits: habits, Stats: &stats}); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// ReadSnapshot decodes an export. A snapshot without stats gets fresh
// defaults for today, and a missing habit list becomes empty.
func ReadSnapshot(r io.Reader, today string) ([]models.Habit, models.PlayerStats, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, models.PlayerStats{}, fmt.Errorf("failed to parse import: %w", err)
	}

	habits := []models.Habit{}
	if data, ok := raw[constants.HabitsRecordKey]; ok {
		if err := json.Unmarshal(data, &habits); err != nil {
			return nil, models.PlayerStats{}, fmt.Errorf("failed to parse %s: %w", constants.HabitsRecordKey, err)
		}
		if habits == nil {
			habits = []models.Habit{}
		}
	}

	stats := progression.NewStats(today)
	if data, ok := raw[constants.StatsRecordKey]; ok {
		if err := json.Unmarshal(data, &stats); err != nil {
			return nil, models.PlayerStats{}, fmt.Errorf("failed to parse %s: %w", constants.StatsRecordKey, err)
		}
	}

	return habits, stats, nil
}
