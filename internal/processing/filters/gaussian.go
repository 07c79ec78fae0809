package filters

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"reefview/internal/frame"
	"reefview/internal/opencv/conversion"
	"reefview/internal/opencv/safe"
)

// GaussianBlur smooths f with a kernel of about six sigma; sigma <= 0 is
// neutral.
func GaussianBlur(f *frame.Frame, sigma float64) (*frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if sigma <= 0 {
		return f.Clone(), nil
	}

	return conversion.Apply(f, func(src *safe.Mat) (*safe.Mat, error) {
		return GaussianBlurMat(src, sigma)
	})
}

func GaussianBlurMat(src *safe.Mat, sigma float64) (*safe.Mat, error) {
	dst, err := safe.NewMat(src.Rows(), src.Cols(), src.Type())
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}

	kernelSize := safe.OddKernel(int(sigma*6) + 1)
	kernelSize = max(3, kernelSize)

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	gocv.GaussianBlur(srcMat, &dstMat, image.Point{X: kernelSize, Y: kernelSize}, sigma, sigma, gocv.BorderDefault)

	return dst, nil
}
