package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/progression"
)

// Store reads and writes the habit list and the stats record on top of a Backend.
type Store struct {
	backend Backend
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Backend returns the underlying record store.
func (s *Store) Backend() Backend {
	return s.backend
}

// LoadHabits returns the stored habits in insertion order, or an empty list
// when nothing has been saved yet.
func (s *Store) LoadHabits() ([]models.Habit, error) {
	data, err := s.backend.Get(constants.HabitsRecordKey)
	if errors.Is(err, ErrNotFound) {
		return []models.Habit{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}

	var habits []models.Habit
	if err := json.Unmarshal(data, &habits); err != nil {
		return nil, fmt.Errorf("failed to parse habits: %w", err)
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	return habits, nil
}

func (s *Store) SaveHabits(habits []models.Habit) error {
	rec, err := habitsRecord(habits)
	if err != nil {
		return err
	}
	if err := s.backend.Put(rec); err != nil {
		return fmt.Errorf("failed to save habits: %w", err)
	}
	return nil
}

// LoadStats returns the stored stats merged over the defaults for a fresh
// player, so fields missing from an older record keep their default value.
func (s *Store) LoadStats(today string) (models.PlayerStats, error) {
	stats := progression.NewStats(today)

	data, err := s.backend.Get(constants.StatsRecordKey)
	if errors.Is(err, ErrNotFound) {
		return stats, nil
	}
	if err != nil {
		return models.PlayerStats{}, fmt.Errorf("failed to load stats: %w", err)
	}

	if err := json.Unmarshal(data, &stats); err != nil {
		return models.PlayerStats{}, fmt.Errorf("failed to parse stats: %w", err)
	}
	return stats, nil
}

func (s *Store) SaveStats(stats models.PlayerStats) error {
	rec, err := statsRecord(stats)
	if err != nil {
		return err
	}
	if err := s.backend.Put(rec); err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}
	return nil
}

// SaveState writes habits and stats in a single atomic Put.
func (s *Store) SaveState(habits []models.Habit, stats models.PlayerStats) error {
	hr, err := habitsRecord(habits)
	if err != nil {
		return err
	}
	sr, err := statsRecord(stats)
	if err != nil {
		return err
	}
	if err := s.backend.Put(hr, sr); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func habitsRecord(habits []models.Habit) (Record, error) {
	if habits == nil {
		habits = []models.Habit{}
	}
	data, err := json.Marshal(habits)
	if err != nil {
		return Record{}, fmt.Errorf("failed to serialize habits: %w", err)
	}
	return Record{Key: constants.HabitsRecordKey, Value: data}, nil
}

func statsRecord(stats models.PlayerStats) (Record, error) {
	data, err := json.Marshal(stats)
	if err != nil {
		return Record{}, fmt.Errorf("failed to serialize stats: %w", err)
	}
	return Record{Key: constants.StatsRecordKey, Value: data}, nil
}
