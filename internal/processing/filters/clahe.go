package filters

import (
	"fmt"
	"image"

	"reefview/internal/frame"
	"reefview/internal/opencv/conversion"
	"reefview/internal/opencv/safe"

	"gocv.io/x/gocv"
)

const DefaultTileGrid = 8

// LocalContrast runs CLAHE on the Lab lightness channel only, leaving chroma
// untouched. clipLimit <= 0 is neutral.
func LocalContrast(f *frame.Frame, clipLimit float64, tileGrid int) (*frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if clipLimit <= 0 {
		return f.Clone(), nil
	}
	if tileGrid < 1 {
		tileGrid = DefaultTileGrid
	}

	return conversion.Apply(f, func(src *safe.Mat) (*safe.Mat, error) {
		lab, err := conversion.ConvertBGRToLab(src)
		if err != nil {
			return nil, fmt.Errorf("failed to convert to Lab: %w", err)
		}
		defer lab.Close()

		planes, err := conversion.SplitChannels(lab)
		if err != nil {
			return nil, err
		}
		defer func() {
			for _, p := range planes {
				p.Close()
			}
		}()

		equalized, err := safe.NewMat(planes[0].Rows(), planes[0].Cols(), gocv.MatTypeCV8UC1)
		if err != nil {
			return nil, fmt.Errorf("failed to create destination Mat: %w", err)
		}
		defer equalized.Close()

		clahe := gocv.NewCLAHEWithParams(clipLimit, image.Point{X: tileGrid, Y: tileGrid})
		defer clahe.Close()

		lMat := planes[0].GetMat()
		eqMat := equalized.GetMat()
		clahe.Apply(lMat, &eqMat)

		merged, err := conversion.MergeChannels([]*safe.Mat{equalized, planes[1], planes[2]})
		if err != nil {
			return nil, fmt.Errorf("failed to merge Lab planes: %w", err)
		}
		defer merged.Close()

		return conversion.ConvertLabToBGR(merged)
	})
}
