package filters

import (
	"fmt"
	"image"

	"reefview/internal/frame"
	"reefview/internal/opencv/conversion"
	"reefview/internal/opencv/safe"

	"gocv.io/x/gocv"
)

var sharpenKernel = [3][3]float32{
	{0, -1, 0},
	{-1, 5, -1},
	{0, -1, 0},
}

// Sharpen convolves f with the fixed 3×3 unsharp kernel.
func Sharpen(f *frame.Frame) (*frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	return conversion.Apply(f, func(src *safe.Mat) (*safe.Mat, error) {
		kernel := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
		defer kernel.Close()
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				kernel.SetFloatAt(r, c, sharpenKernel[r][c])
			}
		}

		dst, err := safe.NewMat(src.Rows(), src.Cols(), src.Type())
		if err != nil {
			return nil, fmt.Errorf("failed to create destination Mat: %w", err)
		}

		srcMat := src.GetMat()
		dstMat := dst.GetMat()
		gocv.Filter2D(srcMat, &dstMat, -1, kernel, image.Pt(-1, -1), 0, gocv.BorderDefault)

		return dst, nil
	})
}

// SharpenAmount blends the sharpened frame over the input; amount is in
// [0,100], 0 neutral and 100 the full kernel.
func SharpenAmount(f *frame.Frame, amount float64) (*frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return f.Clone(), nil
	}

	sharp, err := Sharpen(f)
	if err != nil {
		return nil, err
	}
	if amount >= 100 {
		return sharp, nil
	}

	a := amount / 100
	for i, v := range sharp.Pix {
		sharp.Pix[i] = frame.Clamp8((1-a)*float64(f.Pix[i]) + a*float64(v))
	}
	return sharp, nil
}
