package conversion

import (
	"fmt"

	"reefview/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ConvertBGRToLab converts a BGR image to 8-bit Lab, L in channel 0.
func ConvertBGRToLab(src *safe.Mat) (*safe.Mat, error) {
	return convert(src, gocv.ColorBGRToLab, "BGR to Lab")
}

// ConvertLabToBGR converts an 8-bit Lab image back to BGR.
func ConvertLabToBGR(src *safe.Mat) (*safe.Mat, error) {
	return convert(src, gocv.ColorLabToBGR, "Lab to BGR")
}

func convert(src *safe.Mat, code gocv.ColorConversionCode, operation string) (*safe.Mat, error) {
	if err := safe.ValidateBGR(src, operation); err != nil {
		return nil, err
	}

	dst, err := safe.NewMat(src.Rows(), src.Cols(), gocv.MatTypeCV8UC3)
	if err != nil {
		return nil, fmt.Errorf("destination Mat creation failed: %w", err)
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	gocv.CvtColor(srcMat, &dstMat, code)

	return dst, nil
}

// SplitChannels returns one single-channel Mat per channel of src.
func SplitChannels(src *safe.Mat) ([]*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "channel split"); err != nil {
		return nil, err
	}

	return adoptPlanes(gocv.Split(src.GetMat()))
}

// adoptPlanes takes ownership of every plane. On failure all of them are
// released, including those not yet reached.
func adoptPlanes(planes []gocv.Mat) ([]*safe.Mat, error) {
	out := make([]*safe.Mat, 0, len(planes))
	for i := range planes {
		m, err := safe.Adopt(planes[i])
		if err != nil {
			for _, done := range out {
				done.Close()
			}
			for j := i + 1; j < len(planes); j++ {
				planes[j].Close()
			}
			return nil, fmt.Errorf("failed to adopt channel plane: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

// MergeChannels stacks single-channel Mats into one multi-channel Mat.
func MergeChannels(planes []*safe.Mat) (*safe.Mat, error) {
	if len(planes) == 0 {
		return nil, fmt.Errorf("no planes to merge")
	}

	mats := make([]gocv.Mat, len(planes))
	for i, p := range planes {
		if err := safe.ValidateGray(p, "channel merge"); err != nil {
			return nil, err
		}
		mats[i] = p.GetMat()
	}

	dst := gocv.NewMat()
	gocv.Merge(mats, &dst)
	return safe.Adopt(dst)
}
