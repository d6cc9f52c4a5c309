package tracker

import (
	"testing"

	"github.com/julianstephens/habitquest/internal/models"
)

func TestMultiSinkFansOut(t *testing.T) {
	var order []string
	a := SinkFuncs{
		OnRefresh: func() { order = append(order, "a:refresh") },
		OnLevelUp: func(ev models.LevelUpEvent) { order = append(order, "a:levelup") },
	}
	b := SinkFuncs{OnRefresh: func() { order = append(order, "b:refresh") }}

	sink := MultiSink{a, b, NopSink{}}
	sink.LevelUp(models.LevelUpEvent{Level: 2, XPForNextLevel: 200})
	sink.Refresh()

	want := []string{"a:levelup", "a:refresh", "b:refresh"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("expected %v, got %v", want, order)
			break
		}
	}
}

func TestSetSinkNil(t *testing.T) {
	svc := New(nil)
	svc.SetSink(nil)
	if _, ok := svc.sink.(NopSink); !ok {
		t.Errorf("expected NopSink fallback, got %T", svc.sink)
	}
}
