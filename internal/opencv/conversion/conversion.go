package conversion

import (
	"fmt"

	"reefview/internal/frame"
	"reefview/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ConvertToGrayscale converts a BGR Mat to single-channel grayscale.
func ConvertToGrayscale(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "grayscale conversion"); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if src.Channels() == 1 {
		return src.Clone()
	}

	dst, err := safe.NewMat(src.Rows(), src.Cols(), gocv.MatTypeCV8UC1)
	if err != nil {
		return nil, fmt.Errorf("destination Mat creation failed: %w", err)
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()

	switch src.Channels() {
	case 3:
		gocv.CvtColor(srcMat, &dstMat, gocv.ColorBGRToGray)
	default:
		dst.Close()
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}

	return dst, nil
}

// Apply runs fn on a Mat copy of f and copies the BGR result back out.
func Apply(f *frame.Frame, fn func(src *safe.Mat) (*safe.Mat, error)) (*frame.Frame, error) {
	src, err := safe.FromFrame(f)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst, err := fn(src)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	return dst.ToFrame()
}
