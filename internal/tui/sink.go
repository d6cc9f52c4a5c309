package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitquest/internal/models"
)

// sender is the part of *tea.Program the sink uses.
type sender interface {
	Send(msg tea.Msg)
}

// ProgramSink forwards tracker notifications to a running program. Send
// returns without delivering once the program has exited.
type ProgramSink struct {
	p sender
}

func NewSink(p *tea.Program) ProgramSink {
	return ProgramSink{p: p}
}

func (s ProgramSink) Refresh() {
	s.p.Send(RefreshMsg{})
}

func (s ProgramSink) LevelUp(ev models.LevelUpEvent) {
	s.p.Send(LevelUpMsg{Event: ev})
}
