package chain

import (
	"context"

	"reefview/internal/frame"
	"reefview/internal/logger"
	"reefview/internal/processing/equalize"
	"reefview/internal/processing/filters"
)

// AutoOptions drives the histogram-based auto-correction preset.
type AutoOptions struct {
	// BlueFactor lifts green and red against a blue cast.
	BlueFactor float64       `yaml:"blue_factor"`
	Stretch    [3]float64    `yaml:"stretch"`
	ClipLimit  float64       `yaml:"clip_limit"`
	TileGrid   int           `yaml:"tile_grid"`
	Logger     logger.Logger `yaml:"-"`
}

func DefaultAutoOptions() AutoOptions {
	return AutoOptions{
		BlueFactor: 0.2,
		Stretch:    [3]float64{2, 2, 2},
		ClipLimit:  2,
		TileGrid:   filters.DefaultTileGrid,
	}
}

// AutoCorrect runs blue-dominance correction, histogram equalization and
// local contrast in that order.
func AutoCorrect(ctx context.Context, f *frame.Frame, opts AutoOptions) (*frame.Frame, error) {
	out, err := filters.BlueDominanceCorrection(f, opts.BlueFactor)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	eq := equalize.Equalizer{Logger: opts.Logger}
	out, err = eq.Equalize(out, opts.Stretch[0], opts.Stretch[1], opts.Stretch[2])
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return filters.LocalContrast(out, opts.ClipLimit, opts.TileGrid)
}
