// Package timing records how long named operations take.
package timing

import (
	"context"
	"sort"
	"sync"
	"time"

	"reefview/internal/logger"
)

type timingKey struct{}

type TimingInfo struct {
	Operation string
	StartTime time.Time
}

// Summary aggregates the recorded durations of one operation.
type Summary struct {
	Operation string
	Count     int
	Total     time.Duration
	Average   time.Duration
	Max       time.Duration
}

type Tracker struct {
	timings map[string][]time.Duration
	mu      sync.RWMutex
	logger  logger.Logger
	enabled bool
}

func NewTracker(log logger.Logger) *Tracker {
	return &Tracker{
		timings: make(map[string][]time.Duration),
		logger:  logger.OrNoOp(log),
		enabled: true,
	}
}

// StartTiming derives a context carrying the start of operation.
func (tt *Tracker) StartTiming(ctx context.Context, operation string) context.Context {
	if !tt.isEnabled() {
		return ctx
	}
	return context.WithValue(ctx, timingKey{}, TimingInfo{
		Operation: operation,
		StartTime: time.Now(),
	})
}

// EndTiming records the time since the matching StartTiming and returns it.
// A context without a start records nothing.
func (tt *Tracker) EndTiming(ctx context.Context) time.Duration {
	if !tt.isEnabled() {
		return 0
	}

	info, ok := ctx.Value(timingKey{}).(TimingInfo)
	if !ok {
		return 0
	}

	duration := time.Since(info.StartTime)
	tt.Record(info.Operation, duration)
	return duration
}

func (tt *Tracker) Record(operation string, d time.Duration) {
	tt.mu.Lock()
	tt.timings[operation] = append(tt.timings[operation], d)
	tt.mu.Unlock()

	tt.logger.Debug("TimingTracker", "operation timed", map[string]interface{}{
		"operation":   operation,
		"duration_ms": float64(d.Microseconds()) / 1000,
	})
}

func (tt *Tracker) GetTimings(operation string) []time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	timings := tt.timings[operation]
	if timings == nil {
		return nil
	}

	result := make([]time.Duration, len(timings))
	copy(result, timings)
	return result
}

func (tt *Tracker) GetAverageTime(operation string) time.Duration {
	timings := tt.GetTimings(operation)
	if len(timings) == 0 {
		return 0
	}

	var total time.Duration
	for _, duration := range timings {
		total += duration
	}

	return total / time.Duration(len(timings))
}

// Summaries lists every operation, slowest total first.
func (tt *Tracker) Summaries() []Summary {
	tt.mu.RLock()
	out := make([]Summary, 0, len(tt.timings))
	for op, ds := range tt.timings {
		s := Summary{Operation: op, Count: len(ds)}
		for _, d := range ds {
			s.Total += d
			if d > s.Max {
				s.Max = d
			}
		}
		if s.Count > 0 {
			s.Average = s.Total / time.Duration(s.Count)
		}
		out = append(out, s)
	}
	tt.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Operation < out[j].Operation
	})
	return out
}

func (tt *Tracker) SetEnabled(enabled bool) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.enabled = enabled
}

func (tt *Tracker) isEnabled() bool {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	return tt.enabled
}

// Reset clears one operation, or everything when operation is empty.
func (tt *Tracker) Reset(operation string) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if operation == "" {
		tt.timings = make(map[string][]time.Duration)
	} else {
		delete(tt.timings, operation)
	}
}
