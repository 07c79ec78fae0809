// Package equalize re-centres each channel of a frame around its median.
package equalize

import (
	"reefview/internal/frame"
	"reefview/internal/logger"
	"reefview/internal/processing/stats"
)

// Epsilon floors the per-channel spread so flat channels never divide by zero.
const Epsilon = 1e-6

// Equalizer logs degenerate channels through its Logger.
type Equalizer struct {
	Logger logger.Logger
}

// Equalize maps channel c to clip((in - M + s·S) / (2·max(s·S, ε)), 0, 1)
// scaled back to 8 bits, with M the channel median and S its population std.
func Equalize(f *frame.Frame, stretchB, stretchG, stretchR float64) (*frame.Frame, error) {
	return Equalizer{}.Equalize(f, stretchB, stretchG, stretchR)
}

func (e Equalizer) Equalize(f *frame.Frame, stretchB, stretchG, stretchR float64) (*frame.Frame, error) {
	res, err := stats.Analyse(f, nil)
	if err != nil {
		return nil, err
	}

	log := logger.OrNoOp(e.Logger)
	stretch := [3]float64{stretchB, stretchG, stretchR}

	var luts [3][256]uint8
	for c := 0; c < 3; c++ {
		spread := stretch[c] * res.Std[c]
		denom := spread
		if denom < Epsilon {
			log.Warning("HistogramEqualizer", "degenerate channel spread, using epsilon floor", map[string]interface{}{
				"channel": c,
				"spread":  spread,
			})
			denom = Epsilon
		}
		denom *= 2
		for v := 0; v < 256; v++ {
			n := (float64(v) - res.Median[c] + spread) / denom
			if n < 0 {
				n = 0
			} else if n > 1 {
				n = 1
			}
			luts[c][v] = frame.Clamp8(n * 255)
		}
	}

	out := frame.New(f.Width, f.Height)
	for i := 0; i < len(f.Pix); i += 3 {
		out.Pix[i] = luts[0][f.Pix[i]]
		out.Pix[i+1] = luts[1][f.Pix[i+1]]
		out.Pix[i+2] = luts[2][f.Pix[i+2]]
	}
	return out, nil
}
