// Package filters holds the stateless quick filters: independent frame to
// frame transforms that return a clone when their parameter is neutral.
package filters

import (
	"errors"
	"fmt"
	"math"

	"reefview/internal/frame"
)

var (
	ErrInvalidLUT               = errors.New("invalid LUT")
	ErrUnsupportedDenoiseMethod = errors.New("unsupported denoise method")
)

// LUTSize is the only accepted lookup table length.
const LUTSize = 256

// BlueDominanceCorrection scales the red and green channels by (1+factor) to
// offset the blue cast of deep water footage.
func BlueDominanceCorrection(f *frame.Frame, factor float64) (*frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if factor == 0 {
		return f.Clone(), nil
	}

	scale := scaleLUT(1 + factor)
	out := f.Clone()
	for i := 0; i < len(out.Pix); i += 3 {
		out.Pix[i+1] = scale[out.Pix[i+1]]
		out.Pix[i+2] = scale[out.Pix[i+2]]
	}
	return out, nil
}

// Gamma applies out = 255·(in/255)^(1/g), g clamped to at least 0.01.
func Gamma(f *frame.Frame, g float64) (*frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if g == 1 {
		return f.Clone(), nil
	}
	if g < 0.01 {
		g = 0.01
	}

	inv := 1 / g
	lut := make([]uint8, LUTSize)
	for v := range lut {
		lut[v] = frame.Clamp8(math.Pow(float64(v)/255, inv) * 255)
	}
	return ApplyLUT(f, lut)
}

// ContrastBrightness applies out = in·(1+contrast/100) + brightness.
func ContrastBrightness(f *frame.Frame, contrast, brightness float64) (*frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if contrast == 0 && brightness == 0 {
		return f.Clone(), nil
	}

	gain := 1 + contrast/100
	lut := make([]uint8, LUTSize)
	for v := range lut {
		lut[v] = frame.Clamp8(float64(v)*gain + brightness)
	}
	return ApplyLUT(f, lut)
}

// Temperature warms (value>0, red boosted) or cools (value<0, blue boosted)
// by up to a factor of two at the range ends.
func Temperature(f *frame.Frame, value float64) (*frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if value == 0 {
		return f.Clone(), nil
	}

	channel := frame.Red
	if value < 0 {
		channel = frame.Blue
	}
	scale := scaleLUT(1 + math.Abs(value)/100)

	out := f.Clone()
	for i := channel; i < len(out.Pix); i += 3 {
		out.Pix[i] = scale[out.Pix[i]]
	}
	return out, nil
}

// ApplyLUT maps every sample through lut. Any length other than 256 is
// rejected with ErrInvalidLUT.
func ApplyLUT(f *frame.Frame, lut []uint8) (*frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if len(lut) != LUTSize {
		return nil, fmt.Errorf("%w: got %d entries, want %d", ErrInvalidLUT, len(lut), LUTSize)
	}

	out := frame.New(f.Width, f.Height)
	for i, v := range f.Pix {
		out.Pix[i] = lut[v]
	}
	return out, nil
}

func scaleLUT(gain float64) [LUTSize]uint8 {
	var lut [LUTSize]uint8
	for v := range lut {
		lut[v] = frame.Clamp8(float64(v) * gain)
	}
	return lut
}
