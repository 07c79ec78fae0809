package conversion

import (
	"fmt"
	"image"

	"reefview/internal/frame"
	"reefview/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ResizeMat resizes src to the given dimensions.
func ResizeMat(src *safe.Mat, newWidth, newHeight int, interpolation gocv.InterpolationFlags) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "Mat resizing"); err != nil {
		return nil, err
	}

	if newWidth <= 0 || newHeight <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", newWidth, newHeight)
	}

	dst, err := safe.NewMat(newHeight, newWidth, src.Type())
	if err != nil {
		return nil, err
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	gocv.Resize(srcMat, &dstMat, image.Point{X: newWidth, Y: newHeight}, 0, 0, interpolation)

	return dst, nil
}

// Downscale shrinks f so its width is at most maxWidth, keeping the aspect
// ratio. Frames already within bounds are returned as a clone.
func Downscale(f *frame.Frame, maxWidth int) (*frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if maxWidth <= 0 || f.Width <= maxWidth {
		return f.Clone(), nil
	}

	height := f.Height * maxWidth / f.Width
	if height < 1 {
		height = 1
	}

	return Apply(f, func(src *safe.Mat) (*safe.Mat, error) {
		return ResizeMat(src, maxWidth, height, gocv.InterpolationArea)
	})
}
