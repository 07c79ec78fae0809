package filters

import (
	"fmt"

	"reefview/internal/frame"
	"reefview/internal/opencv/conversion"
	"reefview/internal/opencv/safe"

	"gocv.io/x/gocv"
)

const (
	MethodNLMeans   = "nlmeans"
	MethodBilateral = "bilateral"
	MethodMedian    = "median"
)

// DenoiseOptions selects the algorithm and its window sizes. Non-local means
// cost grows with TemplateWindow²·SearchWindow², so the defaults are sized
// for preview resolution rather than OpenCV's 7/21.
type DenoiseOptions struct {
	Method         string `yaml:"method"`
	TemplateWindow int    `yaml:"template_window"`
	SearchWindow   int    `yaml:"search_window"`
}

func DefaultDenoiseOptions() DenoiseOptions {
	return DenoiseOptions{
		Method:         MethodNLMeans,
		TemplateWindow: 3,
		SearchWindow:   9,
	}
}

func (o DenoiseOptions) withDefaults() DenoiseOptions {
	d := DefaultDenoiseOptions()
	if o.Method == "" {
		o.Method = d.Method
	}
	if o.TemplateWindow <= 0 {
		o.TemplateWindow = d.TemplateWindow
	}
	if o.SearchWindow <= 0 {
		o.SearchWindow = d.SearchWindow
	}
	o.TemplateWindow = safe.OddKernel(o.TemplateWindow)
	o.SearchWindow = safe.OddKernel(o.SearchWindow)
	return o
}

// ValidateDenoiseMethod reports ErrUnsupportedDenoiseMethod for unknown names.
// The empty name selects the default.
func ValidateDenoiseMethod(method string) error {
	switch method {
	case "", MethodNLMeans, MethodBilateral, MethodMedian:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDenoiseMethod, method)
	}
}

// Denoise smooths colour noise with the selected method. strength is the
// filter strength h for non-local means; 0 is neutral.
func Denoise(f *frame.Frame, strength float64, opts DenoiseOptions) (*frame.Frame, error) {
	if err := ValidateDenoiseMethod(opts.Method); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if strength <= 0 {
		return f.Clone(), nil
	}
	opts = opts.withDefaults()

	return conversion.Apply(f, func(src *safe.Mat) (*safe.Mat, error) {
		result, err := safe.NewMat(src.Rows(), src.Cols(), src.Type())
		if err != nil {
			return nil, fmt.Errorf("failed to create result Mat: %w", err)
		}

		srcMat := src.GetMat()
		resultMat := result.GetMat()

		switch opts.Method {
		case MethodNLMeans:
			h := float32(strength)
			gocv.FastNlMeansDenoisingColoredWithParams(srcMat, &resultMat, h, h, opts.TemplateWindow, opts.SearchWindow)
		case MethodBilateral:
			gocv.BilateralFilter(srcMat, &resultMat, opts.SearchWindow, strength*3, float64(opts.SearchWindow))
		case MethodMedian:
			gocv.MedianBlur(srcMat, &resultMat, opts.TemplateWindow)
		}

		return result, nil
	})
}
