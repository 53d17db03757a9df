package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerFiresOnFirstCallAndOnChange(t *testing.T) {
	var tr Tracker[adviceInputs]
	runs := 0
	fn := func(adviceInputs) { runs++ }

	assert.True(t, tr.Run(adviceInputs{"EXPANSION", "LOW"}, fn))
	assert.False(t, tr.Run(adviceInputs{"EXPANSION", "LOW"}, fn))
	assert.True(t, tr.Run(adviceInputs{"EXPANSION", "HIGH"}, fn))
	assert.False(t, tr.Run(adviceInputs{"EXPANSION", "HIGH"}, fn))
	assert.True(t, tr.Run(adviceInputs{"EXPANSION", "LOW"}, fn))
	assert.Equal(t, 3, runs)
}

func TestTrackerZeroValueStillFiresOnce(t *testing.T) {
	var tr Tracker[govInputs]
	assert.True(t, tr.Changed(govInputs{}))
	assert.False(t, tr.Changed(govInputs{}))
}
