// Package tracker runs the habit workflows: the daily reset at session
// start, habit completion and habit registration. Every operation loads both
// records, changes them in memory and writes them back in one SaveState.
package tracker

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/julianstephens/habitquest/internal/clock"
	"github.com/julianstephens/habitquest/internal/dailyreset"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/progression"
	"github.com/julianstephens/habitquest/internal/validation"
)

var (
	ErrNotFound         = errors.New("habit not found")
	ErrAlreadyCompleted = errors.New("habit already completed today")
)

// Persistence is the record store the tracker reads and writes.
type Persistence interface {
	LoadHabits() ([]models.Habit, error)
	LoadStats(today string) (models.PlayerStats, error)
	SaveState(habits []models.Habit, stats models.PlayerStats) error
}

// Completion describes the outcome of CompleteHabit.
type Completion struct {
	// Completed is false when the call was a no-op; Skipped says why.
	Completed bool
	Skipped   error

	Habit  models.Habit
	Stats  models.PlayerStats
	Events []models.LevelUpEvent
}

type Service struct {
	mu    sync.Mutex
	store Persistence
	clock clock.Clock
	sink  Sink
	newID func() string
}

type Option func(*Service)

func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithSink(sink Sink) Option {
	return func(s *Service) { s.sink = sink }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func New(store Persistence, opts ...Option) *Service {
	s := &Service{
		store: store,
		clock: clock.New(),
		sink:  NopSink{},
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetSink replaces the notification sink. The TUI installs its own sink once
// the program exists.
func (s *Service) SetSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sink == nil {
		sink = NopSink{}
	}
	s.sink = sink
}

// Today returns the service clock's calendar day.
func (s *Service) Today() string {
	return clock.Today(s.clock)
}

func (s *Service) load(today string) ([]models.Habit, models.PlayerStats, error) {
	habits, err := s.store.LoadHabits()
	if err != nil {
		return nil, models.PlayerStats{}, err
	}
	stats, err := s.store.LoadStats(today)
	if err != nil {
		return nil, models.PlayerStats{}, err
	}
	return habits, stats, nil
}

// ResetDaily clears yesterday's completion flags if the day changed since the
// last check and reports whether anything was reset.
func (s *Service) ResetDaily() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.Today()
	habits, stats, err := s.load(today)
	if err != nil {
		return false, err
	}

	changed, stats, habits := dailyreset.MaybeReset(stats, habits, today)
	if !changed {
		return false, nil
	}

	if err := s.store.SaveState(habits, stats); err != nil {
		return false, fmt.Errorf("failed to save daily reset: %w", err)
	}
	logger.Info("Daily reset applied", "date", today, "habits", len(habits))
	s.sink.Refresh()
	return true, nil
}

// CompleteHabit marks a habit done for today and awards its reward. Unknown
// ids and habits already completed today are reported through
// Completion.Skipped with a nil error.
func (s *Service) CompleteHabit(id models.HabitID) (Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.Today()
	habits, stats, err := s.load(today)
	if err != nil {
		return Completion{}, err
	}
	// The flags must describe today before they are read. The rollover job
	// may not have run yet when a completion lands just after midnight.
	reset, stats, habits := dailyreset.MaybeReset(stats, habits, today)
	if reset {
		logger.Info("Daily reset applied before completion", "date", today)
	}

	idx := -1
	for i := range habits {
		if habits[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		logger.Debug("Completion ignored", "id", id, "reason", ErrNotFound)
		if err := s.saveReset(reset, habits, stats); err != nil {
			return Completion{}, err
		}
		return Completion{Skipped: ErrNotFound, Stats: stats}, nil
	}
	if habits[idx].CompletedToday {
		logger.Debug("Completion ignored", "id", id, "reason", ErrAlreadyCompleted)
		if err := s.saveReset(reset, habits, stats); err != nil {
			return Completion{}, err
		}
		return Completion{Skipped: ErrAlreadyCompleted, Habit: habits[idx], Stats: stats}, nil
	}

	day := today
	habits[idx].CompletedToday = true
	habits[idx].LastCompleted = &day

	stats, events := progression.Award(stats, habits[idx].Reward)

	if err := s.store.SaveState(habits, stats); err != nil {
		return Completion{}, fmt.Errorf("failed to save completion: %w", err)
	}

	logger.Info("Habit completed", "id", id, "name", habits[idx].Name, "reward", habits[idx].Reward, "level", stats.Level, "points", stats.Points)
	for _, ev := range events {
		logger.Info("Level up", "level", ev.Level, "xpForNextLevel", ev.XPForNextLevel)
		s.sink.LevelUp(ev)
	}
	s.sink.Refresh()

	return Completion{
		Completed: true,
		Habit:     habits[idx],
		Stats:     stats,
		Events:    events,
	}, nil
}

// saveReset persists a reset applied by an operation that changed nothing
// else. Callers hold s.mu.
func (s *Service) saveReset(reset bool, habits []models.Habit, stats models.PlayerStats) error {
	if !reset {
		return nil
	}
	if err := s.store.SaveState(habits, stats); err != nil {
		return fmt.Errorf("failed to save daily reset: %w", err)
	}
	s.sink.Refresh()
	return nil
}

// RegisterHabit validates and appends a new habit. Invalid input returns a
// *validation.ValidationError and leaves the records untouched.
func (s *Service) RegisterHabit(name string, reward int) (models.Habit, error) {
	name, err := validation.ValidateNewHabit(name, reward)
	if err != nil {
		logger.Debug("Habit rejected", "error", err)
		return models.Habit{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	habits, stats, err := s.load(s.Today())
	if err != nil {
		return models.Habit{}, err
	}

	habit := models.Habit{
		ID:             models.HabitID(s.newID()),
		Name:           name,
		Reward:         reward,
		CompletedToday: false,
		LastCompleted:  nil,
	}
	habits = append(habits, habit)

	if err := s.store.SaveState(habits, stats); err != nil {
		return models.Habit{}, fmt.Errorf("failed to save habit: %w", err)
	}

	logger.Info("Habit registered", "id", habit.ID, "name", habit.Name, "reward", habit.Reward)
	s.sink.Refresh()
	return habit, nil
}

// State returns the current records for rendering.
func (s *Service) State() (models.RenderableState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	habits, stats, err := s.load(s.Today())
	if err != nil {
		return models.RenderableState{}, err
	}
	return models.RenderableState{Stats: stats, Habits: habits}, nil
}

// Replace overwrites both records, as done by import. Habits without an id
// get a fresh one.
func (s *Service) Replace(habits []models.Habit, stats models.PlayerStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	habits = models.CloneHabits(habits)
	for i := range habits {
		if habits[i].ID == "" {
			habits[i].ID = models.HabitID(s.newID())
		}
	}

	if err := s.store.SaveState(habits, stats); err != nil {
		return fmt.Errorf("failed to save imported state: %w", err)
	}
	logger.Info("State replaced", "habits", len(habits), "level", stats.Level)
	s.sink.Refresh()
	return nil
}
