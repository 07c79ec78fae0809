package filters

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"reefview/internal/opencv/safe"
)

// Open erodes then dilates a binary mask with a square kernel, removing
// speckle smaller than the kernel.
func Open(src *safe.Mat, kernelSize int) (*safe.Mat, error) {
	if err := safe.ValidateGray(src, "morphological open"); err != nil {
		return nil, err
	}
	kernelSize = safe.OddKernel(kernelSize)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: kernelSize, Y: kernelSize})
	defer kernel.Close()

	opened, err := safe.NewMat(src.Rows(), src.Cols(), src.Type())
	if err != nil {
		return nil, fmt.Errorf("failed to create opened Mat: %w", err)
	}

	srcMat := src.GetMat()
	openedMat := opened.GetMat()
	gocv.MorphologyEx(srcMat, &openedMat, gocv.MorphOpen, kernel)

	return opened, nil
}

// Erode applies a size×size square erosion.
func Erode(src *safe.Mat, size int) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "erode"); err != nil {
		return nil, err
	}
	if size < 1 {
		size = 1
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: size, Y: size})
	defer kernel.Close()

	dst, err := safe.NewMat(src.Rows(), src.Cols(), src.Type())
	if err != nil {
		return nil, fmt.Errorf("failed to create eroded Mat: %w", err)
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	gocv.Erode(srcMat, &dstMat, kernel)

	return dst, nil
}

// Median applies a median blur; size is rounded up to an odd value.
func Median(src *safe.Mat, size int) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "median blur"); err != nil {
		return nil, err
	}

	result, err := safe.NewMat(src.Rows(), src.Cols(), src.Type())
	if err != nil {
		return nil, fmt.Errorf("failed to create result Mat: %w", err)
	}

	srcMat := src.GetMat()
	resultMat := result.GetMat()
	gocv.MedianBlur(srcMat, &resultMat, safe.OddKernel(size))

	return result, nil
}
