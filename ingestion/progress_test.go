package ingestion

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Basic(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100)

	tracker.Start()
	tracker.Increment(25)
	tracker.Increment(75)
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "Progress: 25/100 (25.0%)")
	assert.Contains(t, output, "Progress: 100/100 (100.0%)")
	assert.True(t, strings.HasSuffix(output, "\n"), "finish should print newline")
	assert.Equal(t, 100, tracker.Current())
}

func TestProgressTracker_FinishKeepsCount(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100)

	tracker.Start()
	tracker.Increment(30)
	tracker.Finish()

	assert.NotContains(t, buf.String(), "100/100")
	assert.Contains(t, buf.String(), "30/100")
}

func TestProgressTracker_UnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 0)

	tracker.Start()
	tracker.Increment(7)

	assert.Contains(t, buf.String(), "Progress: 7 -")
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10)

	tracker.Start()
	tracker.Increment(15)

	assert.Contains(t, buf.String(), "10/10")
	assert.Equal(t, 10, tracker.Current())
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10)

	tracker.Increment(5)
	tracker.Finish()

	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}

func TestProgressTracker_Nil(t *testing.T) {
	var tracker *ProgressTracker
	assert.NotPanics(t, func() {
		tracker.Start()
		tracker.Increment(1)
		tracker.Finish()
		_ = tracker.Elapsed()
		_ = tracker.Current()
	})
}
