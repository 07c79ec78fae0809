package timing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartEndTiming(t *testing.T) {
	tt := NewTracker(nil)

	ctx := tt.StartTiming(context.Background(), "dehaze")
	time.Sleep(2 * time.Millisecond)
	d := tt.EndTiming(ctx)

	assert.GreaterOrEqual(t, d, 2*time.Millisecond)
	require.Len(t, tt.GetTimings("dehaze"), 1)
	assert.Equal(t, d, tt.GetAverageTime("dehaze"))

	assert.Zero(t, tt.EndTiming(context.Background()))
}

func TestTimingKeepsParentContext(t *testing.T) {
	tt := NewTracker(nil)
	parent, cancel := context.WithCancel(context.Background())
	ctx := tt.StartTiming(parent, "gamma")
	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestSummariesAndReset(t *testing.T) {
	tt := NewTracker(nil)
	tt.Record("hue", 1*time.Millisecond)
	tt.Record("hue", 3*time.Millisecond)
	tt.Record("denoise", 10*time.Millisecond)

	s := tt.Summaries()
	require.Len(t, s, 2)
	assert.Equal(t, "denoise", s[0].Operation)
	assert.Equal(t, Summary{Operation: "hue", Count: 2, Total: 4 * time.Millisecond, Average: 2 * time.Millisecond, Max: 3 * time.Millisecond}, s[1])

	tt.Reset("hue")
	assert.Nil(t, tt.GetTimings("hue"))
	tt.Reset("")
	assert.Empty(t, tt.Summaries())
}

func TestDisabledTrackerRecordsNothing(t *testing.T) {
	tt := NewTracker(nil)
	tt.SetEnabled(false)
	ctx := tt.StartTiming(context.Background(), "x")
	assert.Zero(t, tt.EndTiming(ctx))
	assert.Empty(t, tt.Summaries())
}
