package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitquest/internal/models"
	"github.com/julianstephens/habitquest/internal/notifier"
	"github.com/julianstephens/habitquest/internal/tracker"
	"github.com/julianstephens/habitquest/internal/validation"
)

const bannerDuration = 4 * time.Second

// headerHeight covers the stats header, banner and help lines.
const headerHeight = 6

// RefreshMsg asks the board to reread the records.
type RefreshMsg struct{}

// LevelUpMsg shows the level-up banner.
type LevelUpMsg struct {
	Event models.LevelUpEvent
}

type stateMsg struct {
	state models.RenderableState
}

type errMsg struct {
	err error
}

type clearBannerMsg struct {
	seq int
}

func loadState(svc *tracker.Service) tea.Cmd {
	return func() tea.Msg {
		state, err := svc.State()
		if err != nil {
			return errMsg{err}
		}
		return stateMsg{state}
	}
}

// Service calls run as commands, off the event loop, since the tracker
// notifies the program sink while it still holds its lock.
func completeHabit(svc *tracker.Service, id models.HabitID) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.CompleteHabit(id)
		if err != nil {
			return errMsg{err}
		}
		if res.Skipped != nil && !errors.Is(res.Skipped, tracker.ErrAlreadyCompleted) {
			return errMsg{res.Skipped}
		}
		return loadState(svc)()
	}
}

func registerHabit(svc *tracker.Service, name string, reward int) tea.Cmd {
	return func() tea.Msg {
		if _, err := svc.RegisterHabit(name, reward); err != nil {
			return errMsg{err}
		}
		return loadState(svc)()
	}
}

func parseReward(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("reward must be a whole number")
	}
	return n, nil
}

func newHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					_, err := validation.ValidateNewHabit(s, 1)
					return err
				}),
			huh.NewInput().
				Title("Reward (XP)").
				Value(&fm.Reward).
				Validate(func(s string) error {
					n, err := parseReward(s)
					if err != nil {
						return err
					}
					_, err = validation.ValidateNewHabit("habit", n)
					return err
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Messages from the service and the sink are handled in every state.
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.bar.Width = min(max(msg.Width-40, 10), 50)

		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-headerHeight-v)
		return m, nil

	case stateMsg:
		m.err = nil
		m.setState(msg.state)
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case RefreshMsg:
		return m, loadState(m.svc)

	case LevelUpMsg:
		m.banner = "🎉 " + notifier.LevelUpMessage(msg.Event)
		m.bannerSeq++
		seq := m.bannerSeq
		return m, tea.Tick(bannerDuration, func(time.Time) tea.Msg {
			return clearBannerMsg{seq: seq}
		})

	case clearBannerMsg:
		// a newer level up restarted the timer
		if msg.seq == m.bannerSeq {
			m.banner = ""
		}
		return m, nil
	}

	if m.state == StateAddHabit {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Add):
			m.habitForm = &HabitFormModel{}
			m.form = newHabitForm(m.habitForm)
			m.state = StateAddHabit
			return m, m.form.Init()
		case key.Matches(msg, m.keys.Complete):
			habit, ok := m.selected()
			if !ok || habit.CompletedToday {
				return m, nil
			}
			return m, completeHabit(m.svc, habit.ID)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateHabits
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		reward, err := parseReward(m.habitForm.Reward)
		if err != nil {
			m.err = err
			m.form.State = huh.StateNormal
			return m, tea.Batch(cmds...)
		}
		m.state = StateHabits
		cmds = append(cmds, registerHabit(m.svc, m.habitForm.Name, reward))
	case huh.StateAborted:
		m.state = StateHabits
	}
	return m, tea.Batch(cmds...)
}
