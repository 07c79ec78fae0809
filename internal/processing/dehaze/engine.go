// Package dehaze removes water haze with the dark channel prior: estimate
// the veil colour and a coarse transmission, refine it with a guided filter
// and invert the scattering model.
package dehaze

import (
	"context"
	"sync"

	"reefview/internal/frame"
	"reefview/internal/logger"
)

const component = "DehazeEngine"

// Engine runs the dehaze stages. Its only state is the atmospheric light
// kept when Options.ReuseAtmosphere is set; everything else is per call.
type Engine struct {
	logger logger.Logger

	mu     sync.Mutex
	cached *AtmosphericLight
}

func NewEngine(log logger.Logger) *Engine {
	return &Engine{logger: logger.OrNoOp(log)}
}

// EstimateAtmosphericLight estimates the veil colour of f with the default
// window over all three channels.
func EstimateAtmosphericLight(f *frame.Frame) (AtmosphericLight, error) {
	return estimate(f, DefaultOptions())
}

func estimate(f *frame.Frame, opts Options) (AtmosphericLight, error) {
	if err := f.Validate(); err != nil {
		return AtmosphericLight{}, err
	}
	ff := frame.BGR2Float(f)
	dark, err := DarkChannel(ff, opts.Window, opts.Water)
	if err != nil {
		return AtmosphericLight{}, err
	}
	return AtmLight(ff, dark)
}

// Reset drops the reused atmospheric light, e.g. when a new video opens.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.cached = nil
	e.mu.Unlock()
}

// Atmosphere returns the atmospheric light for f: the cached value when
// reuse is on and one exists, a fresh estimate otherwise.
func (e *Engine) Atmosphere(f *frame.Frame, opts Options) (AtmosphericLight, error) {
	opts = opts.WithDefaults()
	if opts.ReuseAtmosphere {
		e.mu.Lock()
		cached := e.cached
		e.mu.Unlock()
		if cached != nil {
			return *cached, nil
		}
	}

	a, err := estimate(f, opts)
	if err != nil {
		return AtmosphericLight{}, err
	}

	if opts.ReuseAtmosphere {
		e.mu.Lock()
		if e.cached == nil {
			e.cached = &a
		} else {
			a = *e.cached
		}
		e.mu.Unlock()
	}
	return a, nil
}

// Dehaze removes haze from f. A nil atm estimates (or reuses) the
// atmospheric light.
func (e *Engine) Dehaze(ctx context.Context, f *frame.Frame, atm *AtmosphericLight, opts Options) (*frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	opts = opts.WithDefaults()

	var a AtmosphericLight
	if atm != nil {
		a = *atm
	} else {
		var err error
		if a, err = e.Atmosphere(f, opts); err != nil {
			return nil, err
		}
	}

	for _, d := range degenerateChannels(a) {
		e.logger.Warning(component, "near-zero atmospheric light, dividing by floor", map[string]interface{}{
			"channel": d.Channel,
			"value":   d.Value,
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ff := frame.BGR2Float(f)
	coarse, err := EstimateTransmission(ff, a, opts)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	refined, err := RefineTransmission(ff, coarse, opts.GuidedRadius, opts.GuidedEps)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.Debug(component, "dehaze completed", map[string]interface{}{
		"width":      f.Width,
		"height":     f.Height,
		"atmosphere": a,
	})
	return Recover(ff, refined, a, opts.Tx)
}
