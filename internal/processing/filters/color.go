package filters

import (
	"math"

	"reefview/internal/frame"
)

// HueRange is the circular hue range in 8-bit HSV units (two degrees each).
const HueRange = 180

// Saturation scales HSV saturation by (1+value/100), clamped to [0,1].
func Saturation(f *frame.Frame, value float64) (*frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if value == 0 {
		return f.Clone(), nil
	}

	gain := 1 + value/100
	return mapHSV(f, func(h, s, v float64) (float64, float64, float64) {
		s *= gain
		if s > 1 {
			s = 1
		} else if s < 0 {
			s = 0
		}
		return h, s, v
	}), nil
}

// Hue rotates hue by value units of HueRange, wrapping around the circle.
func Hue(f *frame.Frame, value float64) (*frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if value == 0 {
		return f.Clone(), nil
	}

	shift := value * 360 / HueRange
	return mapHSV(f, func(h, s, v float64) (float64, float64, float64) {
		h = math.Mod(h+shift, 360)
		if h < 0 {
			h += 360
		}
		return h, s, v
	}), nil
}

// mapHSV converts each pixel to HSV (h in degrees, s and v in [0,1]), applies
// fn and converts back. Achromatic pixels keep their value untouched.
func mapHSV(f *frame.Frame, fn func(h, s, v float64) (float64, float64, float64)) *frame.Frame {
	out := frame.New(f.Width, f.Height)
	for i := 0; i < len(f.Pix); i += 3 {
		h, s, v := bgrToHSV(f.Pix[i], f.Pix[i+1], f.Pix[i+2])
		h, s, v = fn(h, s, v)
		out.Pix[i], out.Pix[i+1], out.Pix[i+2] = hsvToBGR(h, s, v)
	}
	return out
}

func bgrToHSV(b8, g8, r8 uint8) (h, s, v float64) {
	b, g, r := float64(b8)/255, float64(g8)/255, float64(r8)/255
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	v = maxC
	delta := maxC - minC
	if maxC == 0 || delta == 0 {
		return 0, 0, v
	}
	s = delta / maxC

	switch maxC {
	case r:
		h = 60 * (g - b) / delta
	case g:
		h = 60*(b-r)/delta + 120
	default:
		h = 60*(r-g)/delta + 240
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

func hsvToBGR(h, s, v float64) (b, g, r uint8) {
	if s == 0 {
		c := frame.Clamp8(v * 255)
		return c, c, c
	}

	c := v * s
	hp := h / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	m := v - c

	var rf, gf, bf float64
	switch {
	case hp < 1:
		rf, gf, bf = c, x, 0
	case hp < 2:
		rf, gf, bf = x, c, 0
	case hp < 3:
		rf, gf, bf = 0, c, x
	case hp < 4:
		rf, gf, bf = 0, x, c
	case hp < 5:
		rf, gf, bf = x, 0, c
	default:
		rf, gf, bf = c, 0, x
	}
	return frame.Clamp8((bf + m) * 255), frame.Clamp8((gf + m) * 255), frame.Clamp8((rf + m) * 255)
}
