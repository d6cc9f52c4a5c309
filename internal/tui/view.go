package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateAddHabit:
		content = m.form.View()
	default:
		content = m.viewHabits()
	}

	sections := []string{m.viewHeader()}
	if m.banner != "" {
		sections = append(sections, bannerStyle.Render(m.banner))
	}
	sections = append(sections, docStyle.Render(content))
	if m.err != nil {
		sections = append(sections, dangerStyle.Render("Error: "+m.err.Error()))
	}
	sections = append(sections, m.help.View(m))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewHeader() string {
	level := levelStyle.Render(fmt.Sprintf("Level %d", m.stats.Level))
	xp := fmt.Sprintf("%d/%d XP", m.stats.Points, m.stats.XPForNextLevel)
	top := lipgloss.JoinHorizontal(lipgloss.Center, level, " ", m.bar.ViewAs(m.stats.Progress()), " ", xp)

	today := mutedStyle.Render(fmt.Sprintf("%d/%d done today · %s", m.doneCount(), len(m.habits), m.svc.Today()))
	return lipgloss.JoinVertical(lipgloss.Left, top, today)
}

func (m Model) viewHabits() string {
	if len(m.habits) == 0 {
		return "No habits yet.\nPress 'a' to add one."
	}
	return m.list.View()
}
