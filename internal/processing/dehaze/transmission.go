package dehaze

import (
	"fmt"

	"reefview/internal/frame"
	"reefview/internal/processing/filters"
)

// atmosphereFloor guards the division by A.
const atmosphereFloor = 1e-6

// degenerateLevel is the atmospheric light below which a channel is reported
// as degenerate: under one 8-bit level.
const degenerateLevel = 1.0 / 255

// TransmissionMap is a per-pixel fraction of scene radiance reaching the
// camera, in [0,1].
type TransmissionMap struct {
	Width  int
	Height int
	T      []float32
}

// DegenerateChannel describes a channel whose atmospheric light is at or
// near zero. It is logged, never returned: the division proceeds with the
// floor and the output stays valid.
type DegenerateChannel struct {
	Channel int
	Value   float64
}

func (d DegenerateChannel) Error() string {
	return fmt.Sprintf("degenerate channel %d: atmospheric light %g", d.Channel, d.Value)
}

// degenerateChannels lists channels of a that fall below degenerateLevel.
func degenerateChannels(a AtmosphericLight) []DegenerateChannel {
	var out []DegenerateChannel
	for c, v := range a {
		if v < degenerateLevel {
			out = append(out, DegenerateChannel{Channel: c, Value: v})
		}
	}
	return out
}

// EstimateTransmission computes t = 1 - omega·DC(I/A).
func EstimateTransmission(ff *frame.FloatFrame, a AtmosphericLight, opts Options) (*TransmissionMap, error) {
	opts = opts.WithDefaults()

	var inv [3]float32
	for c, v := range a {
		if v < atmosphereFloor {
			v = atmosphereFloor
		}
		inv[c] = float32(1 / v)
	}

	norm := frame.NewFloat(ff.Width, ff.Height)
	for i, v := range ff.Pix {
		norm.Pix[i] = v * inv[i%3]
	}

	dark, err := DarkChannel(norm, opts.Window, opts.Water)
	if err != nil {
		return nil, err
	}

	t := &TransmissionMap{Width: ff.Width, Height: ff.Height, T: dark}
	omega := float32(opts.Omega)
	for i, d := range t.T {
		t.T[i] = 1 - omega*d
	}
	return t, nil
}

// RefineTransmission runs the guided filter over t with the frame's luma as
// guide and clips the result to [0,1].
func RefineTransmission(ff *frame.FloatFrame, t *TransmissionMap, radius int, eps float64) (*TransmissionMap, error) {
	if t == nil || t.Width != ff.Width || t.Height != ff.Height {
		return nil, fmt.Errorf("transmission map does not match frame %dx%d", ff.Width, ff.Height)
	}

	q, err := filters.GuidedFilter(ff.Luma(), t.T, ff.Width, ff.Height, radius, eps)
	if err != nil {
		return nil, fmt.Errorf("failed to refine transmission: %w", err)
	}
	for i, v := range q {
		if v < 0 {
			q[i] = 0
		} else if v > 1 {
			q[i] = 1
		}
	}
	return &TransmissionMap{Width: t.Width, Height: t.Height, T: q}, nil
}

// Recover inverts the haze model: J = (I - A) / max(t, tx) + A per channel,
// clipped and rounded to 8 bits.
func Recover(ff *frame.FloatFrame, t *TransmissionMap, a AtmosphericLight, tx float64) (*frame.Frame, error) {
	if t == nil || len(t.T) != ff.Width*ff.Height {
		return nil, fmt.Errorf("transmission map does not match frame %dx%d", ff.Width, ff.Height)
	}

	out := frame.New(ff.Width, ff.Height)
	for p, tv := range t.T {
		d := float64(tv)
		if d < tx {
			d = tx
		}
		for c := 0; c < 3; c++ {
			i := p*3 + c
			j := (float64(ff.Pix[i])-a[c])/d + a[c]
			out.Pix[i] = frame.Clamp8(j * 255)
		}
	}
	return out, nil
}
