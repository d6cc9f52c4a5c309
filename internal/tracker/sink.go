package tracker

import "github.com/julianstephens/habitquest/internal/models"

// Sink receives notifications after state changes.
type Sink interface {
	// Refresh is called after every successful mutation.
	Refresh()
	// LevelUp is called once per level crossed, before Refresh.
	LevelUp(models.LevelUpEvent)
}

// NopSink ignores every notification.
type NopSink struct{}

func (NopSink) Refresh() {}
func (NopSink) LevelUp(models.LevelUpEvent) {}

// SinkFuncs adapts plain functions to a Sink. Nil fields are skipped.
type SinkFuncs struct {
	OnRefresh func()
	OnLevelUp func(models.LevelUpEvent)
}

func (f SinkFuncs) Refresh() {
	if f.OnRefresh != nil {
		f.OnRefresh()
	}
}

func (f SinkFuncs) LevelUp(ev models.LevelUpEvent) {
	if f.OnLevelUp != nil {
		f.OnLevelUp(ev)
	}
}

// MultiSink fans notifications out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) Refresh() {
	for _, s := range m {
		s.Refresh()
	}
}

func (m MultiSink) LevelUp(ev models.LevelUpEvent) {
	for _, s := range m {
		s.LevelUp(ev)
	}
}
