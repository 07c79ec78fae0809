package dehaze

import (
	"fmt"

	"reefview/internal/frame"
	"reefview/internal/opencv/safe"
	"reefview/internal/processing/filters"
)

// DarkChannel returns the per-pixel minimum over the colour channels (green
// and blue only when water is set), median blurred and then eroded with a
// size×size square. Inputs are not clipped, so an image normalised by the
// atmospheric light can yield values above 1. The median runs on an 8-bit
// quantisation scaled to the map's peak, since OpenCV only median-filters
// float maps with kernels up to 5; erosion runs on float32.
func DarkChannel(ff *frame.FloatFrame, size int, water bool) ([]float32, error) {
	if ff == nil || ff.Width <= 0 || ff.Height <= 0 || len(ff.Pix) != ff.Width*ff.Height*3 {
		return nil, fmt.Errorf("%w: invalid float frame", frame.ErrEmptyFrame)
	}
	size = safe.OddKernel(size)

	minMap := make([]float32, ff.Width*ff.Height)
	peak := float32(1)
	for p := range minMap {
		i := p * 3
		m := ff.Pix[i]
		if ff.Pix[i+1] < m {
			m = ff.Pix[i+1]
		}
		if !water && ff.Pix[i+2] < m {
			m = ff.Pix[i+2]
		}
		if m < 0 {
			m = 0
		}
		minMap[p] = m
		peak = max(peak, m)
	}

	quantised := frame.NewGray(ff.Width, ff.Height)
	for p, m := range minMap {
		quantised.Pix[p] = frame.Clamp8(float64(m / peak * 255))
	}

	src, err := safe.FromGray(quantised)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	blurred, err := filters.Median(src, size)
	if err != nil {
		return nil, fmt.Errorf("failed to median blur dark channel: %w", err)
	}
	defer blurred.Close()

	g, err := blurred.ToGray()
	if err != nil {
		return nil, err
	}
	for i, v := range g.Pix {
		minMap[i] = float32(v) * peak / 255
	}

	floatMap, err := safe.FromFloat32(ff.Width, ff.Height, minMap)
	if err != nil {
		return nil, err
	}
	defer floatMap.Close()

	eroded, err := filters.Erode(floatMap, size)
	if err != nil {
		return nil, fmt.Errorf("failed to erode dark channel: %w", err)
	}
	defer eroded.Close()

	return eroded.ToFloat32()
}
