package clock

import (
	"time"

	"github.com/julianstephens/habitquest/internal/constants"
)

// Clock provides time operations that can be replaced in tests
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// Fixed is a Clock pinned to a settable instant.
type Fixed struct {
	CurrentTime time.Time
}

var _ Clock = (*Fixed)(nil)

// NewFixed creates a Fixed clock set to t
func NewFixed(t time.Time) *Fixed {
	return &Fixed{CurrentTime: t}
}

func (c *Fixed) Now() time.Time {
	return c.CurrentTime
}

// Advance moves the clock forward by d
func (c *Fixed) Advance(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
}

// Today formats the clock's current local calendar day.
func Today(c Clock) string {
	return c.Now().In(time.Local).Format(constants.DateFormat)
}
