// Package chain applies a CorrectionState to a frame as an ordered series of
// named steps.
package chain

import (
	"context"
	"fmt"

	"reefview/internal/frame"
	"reefview/internal/logger"
	"reefview/internal/models"
	"reefview/internal/processing/dehaze"
	"reefview/internal/timing"
)

const component = "CorrectionPipeline"

// Step is one adjustment. Apply must not modify its input.
type Step interface {
	Apply(ctx context.Context, input *frame.Frame, state *models.CorrectionState) (*frame.Frame, error)
	Name() string
	ShouldExecute(state *models.CorrectionState) bool
}

type Result struct {
	Frame     *frame.Frame
	Histogram frame.Histogram
	// Applied lists the steps that ran, in order.
	Applied []string
}

type Pipeline struct {
	steps   []Step
	engine  *dehaze.Engine
	tracker *timing.Tracker
	logger  logger.Logger
}

type Option func(*Pipeline)

// WithTracker records per-step durations in t.
func WithTracker(t *timing.Tracker) Option {
	return func(p *Pipeline) { p.tracker = t }
}

// WithDehazeEngine shares e, and its cached atmospheric light, with other
// callers.
func WithDehazeEngine(e *dehaze.Engine) Option {
	return func(p *Pipeline) { p.engine = e }
}

func New(log logger.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{logger: logger.OrNoOp(log)}
	for _, opt := range opts {
		opt(p)
	}
	if p.engine == nil {
		p.engine = dehaze.NewEngine(p.logger)
	}
	p.steps = defaultSteps(p.engine)
	return p
}

// Engine returns the dehaze engine, e.g. to Reset it when a new video opens.
func (p *Pipeline) Engine() *dehaze.Engine {
	return p.engine
}

// Process runs every enabled, non-neutral step over f in pipeline order and
// returns the new frame with its histogram. f is never modified.
func (p *Pipeline) Process(ctx context.Context, f *frame.Frame, state models.CorrectionState) (Result, error) {
	if err := f.Validate(); err != nil {
		return Result{}, err
	}
	state = state.Clamp()
	if err := state.Validate(); err != nil {
		return Result{}, err
	}

	current := f
	var applied []string

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		if !step.ShouldExecute(&state) {
			continue
		}

		stepCtx := ctx
		if p.tracker != nil {
			stepCtx = p.tracker.StartTiming(ctx, step.Name())
		}

		result, err := step.Apply(stepCtx, current, &state)
		if err != nil {
			return Result{}, fmt.Errorf("step %s failed: %w", step.Name(), err)
		}

		if p.tracker != nil {
			p.tracker.EndTiming(stepCtx)
		}

		current = result
		applied = append(applied, step.Name())
	}

	if current == f {
		current = f.Clone()
	}

	p.logger.Debug(component, "frame processed", map[string]interface{}{
		"width":   current.Width,
		"height":  current.Height,
		"applied": applied,
	})

	return Result{
		Frame:     current,
		Histogram: frame.ComputeHistogram(current),
		Applied:   applied,
	}, nil
}

// Steps lists the step names in execution order.
func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
