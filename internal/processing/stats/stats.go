// Package stats computes per-channel median and spread of a frame.
package stats

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"reefview/internal/frame"
)

var ErrInvalidMask = errors.New("invalid mask")

// Result holds per-channel statistics in BGR order on the 8-bit scale.
type Result struct {
	Median [3]float64
	Std    [3]float64
	Count  int
}

var levels = func() []float64 {
	x := make([]float64, 256)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}()

// Analyse returns the per-channel median and population standard deviation
// of f, restricted to the pixels selected by mask when mask is non-nil.
func Analyse(f *frame.Frame, mask *frame.Mask) (Result, error) {
	if err := f.Validate(); err != nil {
		return Result{}, err
	}
	if mask != nil {
		if mask.Width != f.Width || mask.Height != f.Height || len(mask.Bits) != f.Pixels() {
			return Result{}, fmt.Errorf("%w: mask is %dx%d, frame is %dx%d",
				ErrInvalidMask, mask.Width, mask.Height, f.Width, f.Height)
		}
	}

	var counts [3][256]float64
	n := 0
	for p := 0; p < f.Pixels(); p++ {
		if mask != nil && !mask.Bits[p] {
			continue
		}
		i := p * 3
		counts[0][f.Pix[i]]++
		counts[1][f.Pix[i+1]]++
		counts[2][f.Pix[i+2]]++
		n++
	}
	if n == 0 {
		return Result{}, fmt.Errorf("%w: mask selects no pixels", ErrInvalidMask)
	}

	res := Result{Count: n}
	for c := 0; c < 3; c++ {
		res.Median[c] = median(counts[c][:], n)
		_, res.Std[c] = stat.PopMeanStdDev(levels, counts[c][:])
	}
	return res, nil
}

// median of a 256-bin histogram holding n samples; even counts average the
// two middle samples.
func median(hist []float64, n int) float64 {
	lo := (n - 1) / 2
	hi := n / 2
	loVal, hiVal := -1, -1
	seen := 0
	for v, c := range hist {
		seen += int(c)
		if loVal < 0 && seen > lo {
			loVal = v
		}
		if seen > hi {
			hiVal = v
			break
		}
	}
	return float64(loVal+hiVal) / 2
}
