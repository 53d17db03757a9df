package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"OmniTrade/internal/domain/models"
)

func TestSessionAt(t *testing.T) {
	cases := []struct {
		hour    int
		session models.Session
		cycle   models.Cycle
	}{
		{0, models.SessionAsia, models.CycleEarly},
		{1, models.SessionAsia, models.CycleEarly},
		{2, models.SessionAsia, models.CycleMid},
		{7, models.SessionAsia, models.CycleLate},
		{8, models.SessionLondon, models.CycleEarly},
		{12, models.SessionLondon, models.CycleMid},
		{15, models.SessionLondon, models.CycleLate},
		{16, models.SessionNY, models.CycleEarly},
		{23, models.SessionNY, models.CycleLate},
	}
	for _, tc := range cases {
		s, c := SessionAt(time.Date(2025, 3, 1, tc.hour, 30, 0, 0, time.UTC))
		assert.Equal(t, tc.session, s, "hour %d", tc.hour)
		assert.Equal(t, tc.cycle, c, "hour %d", tc.hour)
	}
}

func TestClockReading(t *testing.T) {
	c := &Clock{Now: func() time.Time { return time.Date(2025, 3, 1, 9, 4, 5, 0, time.UTC) }}
	assert.Equal(t, "09:04:05", c.String())
	r := c.Reading()
	assert.Equal(t, models.SessionLondon, r.Session)
	assert.Equal(t, models.CycleEarly, r.Cycle)
}
