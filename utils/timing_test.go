package utils

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDurationUS(t *testing.T) {
	d := 1234*time.Microsecond + 567*time.Nanosecond
	got := DurationUS(d)
	if math.Abs(got-1234.567) > 0.001 {
		t.Fatalf("want 1234.567µs, got %.3f", got)
	}
}

func TestTrack(t *testing.T) {
	var d time.Duration
	start := time.Now().Add(-time.Second)
	next := Track(&d, start)
	assert.GreaterOrEqual(t, d, time.Second)
	assert.False(t, next.Before(start))
}

func TestPrintTimingStats(t *testing.T) {
	var buf bytes.Buffer
	oldOutput, oldVerbose := Output, Verbose
	defer func() { Output, Verbose = oldOutput, oldVerbose }()
	Output, Verbose = &buf, true

	PrintTimingStats(&TimingStats{
		TotalTime:     10 * time.Second,
		TrainStepTime: 5 * time.Second,
	}, 100)
	assert.Contains(t, buf.String(), "Steps completed: 100")
	assert.Contains(t, buf.String(), "Training steps: 5s (50.0%)")
	assert.Contains(t, buf.String(), "Average training step time: 50ms")

	buf.Reset()
	Verbose = false
	PrintTimingStats(&TimingStats{}, 0)
	assert.Empty(t, buf.String())
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "10 minutes", HumanDuration(10*time.Minute))
	assert.Equal(t, "10 hours", HumanDuration(10*time.Hour))
	assert.Equal(t, "30s", HumanDuration(30*time.Second))
}
