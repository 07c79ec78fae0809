package dehaze

import (
	"fmt"

	"reefview/internal/frame"
)

// AtmosphericLight is the veil colour in BGR order, each in [0,1].
type AtmosphericLight [3]float64

// topFraction of pixels, ranked by dark channel, that estimate the veil.
const topFraction = 0.001

// AtmLight averages the original colour of the brightest 0.1% of the dark
// channel (at least one pixel). Ties at the cut-off level favour later pixels.
func AtmLight(ff *frame.FloatFrame, dark []float32) (AtmosphericLight, error) {
	n := ff.Width * ff.Height
	if n == 0 || len(dark) != n || len(ff.Pix) != n*3 {
		return AtmosphericLight{}, fmt.Errorf("%w: dark channel has %d values for %d pixels", frame.ErrEmptyFrame, len(dark), n)
	}

	numpx := int(float64(n) * topFraction)
	if numpx < 1 {
		numpx = 1
	}

	levels := make([]uint8, n)
	var hist [256]int
	for i, v := range dark {
		levels[i] = frame.Clamp8(float64(v) * 255)
		hist[levels[i]]++
	}

	cut, above := 255, 0
	for ; cut > 0; cut-- {
		if above+hist[cut] >= numpx {
			break
		}
		above += hist[cut]
	}
	atCut := numpx - above

	var sum [3]float64
	for i := n - 1; i >= 0; i-- {
		lv := int(levels[i])
		switch {
		case lv > cut:
		case lv == cut && atCut > 0:
			atCut--
		default:
			continue
		}
		sum[0] += float64(ff.Pix[i*3])
		sum[1] += float64(ff.Pix[i*3+1])
		sum[2] += float64(ff.Pix[i*3+2])
	}

	var a AtmosphericLight
	for c := range a {
		a[c] = sum[c] / float64(numpx)
	}
	return a, nil
}
