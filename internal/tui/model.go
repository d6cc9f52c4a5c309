// Package tui is the interactive habit board: a stats header, the habit list
// and a form to register new habits.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/tracker"
)

type SessionState int

const (
	StateHabits SessionState = iota
	StateAddHabit
)

// HabitFormModel holds the add-habit form values. Reward stays a string
// until the form completes.
type HabitFormModel struct {
	Name   string
	Reward string
}

type Model struct {
	svc       *tracker.Service
	state     SessionState
	keys      KeyMap
	help      help.Model
	list      list.Model
	bar       progress.Model
	form      *huh.Form
	habitForm *HabitFormModel

	stats  models.PlayerStats
	habits []models.Habit
	// banner is the latest level-up message, cleared after bannerDuration
	banner    string
	bannerSeq int
	err       error

	quitting bool
	width    int
	height   int
}

type habitItem struct {
	habit models.Habit
}

func (i habitItem) Title() string {
	if i.habit.CompletedToday {
		return "✓ " + i.habit.Name
	}
	return "○ " + i.habit.Name
}

func (i habitItem) Description() string {
	if i.habit.CompletedToday {
		return fmt.Sprintf("+%d XP · completed today", i.habit.Reward)
	}
	return fmt.Sprintf("+%d XP", i.habit.Reward)
}

func (i habitItem) FilterValue() string { return i.habit.Name }

// NewModel builds the board for svc. The records are read by Init.
func NewModel(svc *tracker.Service) Model {
	keys := DefaultKeyMap()

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)

	return Model{
		svc:   svc,
		state: StateHabits,
		keys:  keys,
		help:  help.New(),
		list:  l,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func (m Model) ShortHelp() []key.Binding {
	return m.keys.ShortHelp()
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

func (m Model) Init() tea.Cmd {
	return loadState(m.svc)
}

func (m *Model) setState(state models.RenderableState) {
	m.stats = state.Stats
	m.habits = state.Habits

	items := make([]list.Item, len(state.Habits))
	for i, h := range state.Habits {
		items[i] = habitItem{habit: h}
	}
	m.list.SetItems(items)
}

func (m Model) selected() (models.Habit, bool) {
	item, ok := m.list.SelectedItem().(habitItem)
	return item.habit, ok
}

func (m Model) doneCount() int {
	n := 0
	for _, h := range m.habits {
		if h.CompletedToday {
			n++
		}
	}
	return n
}
