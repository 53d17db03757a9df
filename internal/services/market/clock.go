package market

import (
	"time"

	"OmniTrade/internal/domain/models"
)

// ClockFormat is the layout of the header clock.
const ClockFormat = "15:04:05"

// Clock reads the session clock. Now is swappable for tests.
type Clock struct {
	Now func() time.Time
}

func NewClock() *Clock {
	return &Clock{Now: time.Now}
}

// String is the human-readable current time.
func (c *Clock) String() string {
	return c.Now().Format(ClockFormat)
}

// Reading returns the time string and the UTC session/cycle.
func (c *Clock) Reading() models.ClockReading {
	now := c.Now()
	session, cycle := SessionAt(now)
	return models.ClockReading{Time: now.Format(ClockFormat), Session: session, Cycle: cycle}
}

// SessionAt maps the UTC hour of t to its trading session and the position
// inside that eight-hour window.
func SessionAt(t time.Time) (models.Session, models.Cycle) {
	hour := t.UTC().Hour()

	var session models.Session
	switch {
	case hour < 8:
		session = models.SessionAsia
	case hour < 16:
		session = models.SessionLondon
	default:
		session = models.SessionNY
	}

	cycle := models.CycleMid
	switch h := hour % 8; {
	case h < 2:
		cycle = models.CycleEarly
	case h > 6:
		cycle = models.CycleLate
	}
	return session, cycle
}
