package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// HabitID is an opaque habit identifier. New habits get a UUID string;
// records imported from the browser widget carry millisecond timestamps,
// which are kept as their decimal string.
type HabitID string

func (id *HabitID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = HabitID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("habit id must be a string or number: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("habit id must be an integer: %s", n)
	}
	*id = HabitID(n.String())
	return nil
}

type Habit struct {
	ID             HabitID `json:"id"`
	Name           string  `json:"name"`
	Reward         int     `json:"reward"`
	CompletedToday bool    `json:"completedToday"`
	LastCompleted  *string `json:"lastCompleted"` // YYYY-MM-DD format, nil if never completed
}

// CloneHabits returns a copy of habits that shares no pointers with the input.
func CloneHabits(habits []Habit) []Habit {
	out := make([]Habit, len(habits))
	for i, h := range habits {
		if h.LastCompleted != nil {
			day := *h.LastCompleted
			h.LastCompleted = &day
		}
		out[i] = h
	}
	return out
}
