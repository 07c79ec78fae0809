// Package motion finds moving regions in a video stream with a running
// Gaussian-mixture background model.
package motion

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"

	"gocv.io/x/gocv"

	"reefview/internal/frame"
	"reefview/internal/logger"
	"reefview/internal/opencv/conversion"
	"reefview/internal/opencv/safe"
	"reefview/internal/processing/filters"
)

const component = "MotionDetector"

var (
	ErrFrameSizeChanged = errors.New("frame size changed within a motion session")
	ErrClosed           = errors.New("motion detector is closed")
)

type Options struct {
	History      int     `yaml:"history"`
	VarThreshold float64 `yaml:"var_threshold"`
	// Threshold on the foreground mask; MOG2 marks shadows at 127.
	Threshold  float64 `yaml:"threshold"`
	KernelSize int     `yaml:"kernel_size"`
	MinArea    float64 `yaml:"min_area"`
	// BlurSigma smooths frames before the model sees them; 0 disables.
	BlurSigma float64 `yaml:"blur_sigma"`
	// Warmup is the number of frames before detections are meaningful.
	Warmup int `yaml:"warmup"`
	// Grayscale feeds the model luma instead of BGR.
	Grayscale bool `yaml:"grayscale"`
}

func DefaultOptions() Options {
	return Options{
		History:      500,
		VarThreshold: 16,
		Threshold:    200,
		KernelSize:   3,
		MinArea:      100,
		Warmup:       10,
	}
}

type Detection struct {
	Box  image.Rectangle
	Area float64
}

type Result struct {
	Mask       *frame.Gray
	Detections []Detection
}

// Detector owns one background model. Frames must arrive in play order from
// a single stream; calls are serialised.
type Detector struct {
	mu     sync.Mutex
	model  gocv.BackgroundSubtractorMOG2
	opts   Options
	logger logger.Logger

	width, height int
	frames        int
	closed        bool
}

func NewDetector(opts Options, log logger.Logger) *Detector {
	d := DefaultOptions()
	if opts.History <= 0 {
		opts.History = d.History
	}
	if opts.VarThreshold <= 0 {
		opts.VarThreshold = d.VarThreshold
	}
	if opts.Threshold <= 0 {
		opts.Threshold = d.Threshold
	}
	if opts.KernelSize <= 0 {
		opts.KernelSize = d.KernelSize
	}
	if opts.Warmup < 0 {
		opts.Warmup = 0
	}

	return &Detector{
		model:  gocv.NewBackgroundSubtractorMOG2WithParams(opts.History, opts.VarThreshold, true),
		opts:   opts,
		logger: logger.OrNoOp(log),
	}
}

// Apply updates the model with f and returns the cleaned foreground mask and
// the bounding boxes of regions of at least MinArea.
func (d *Detector) Apply(f *frame.Frame) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return Result{}, ErrClosed
	}
	if err := f.Validate(); err != nil {
		return Result{}, err
	}
	if d.frames > 0 && (f.Width != d.width || f.Height != d.height) {
		return Result{}, fmt.Errorf("%w: %dx%d, session is %dx%d", ErrFrameSizeChanged, f.Width, f.Height, d.width, d.height)
	}

	src, err := safe.FromFrame(f)
	if err != nil {
		return Result{}, err
	}
	defer src.Close()

	if d.opts.Grayscale {
		gray, err := conversion.ConvertToGrayscale(src)
		if err != nil {
			return Result{}, err
		}
		defer gray.Close()
		src = gray
	}

	if d.opts.BlurSigma > 0 {
		blurred, err := filters.GaussianBlurMat(src, d.opts.BlurSigma)
		if err != nil {
			return Result{}, err
		}
		defer blurred.Close()
		src = blurred
	}

	fg := gocv.NewMat()
	defer fg.Close()
	d.model.Apply(src.GetMat(), &fg)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(fg, &binary, float32(d.opts.Threshold), 255, gocv.ThresholdBinary)

	binarySafe, err := safe.NewMatFromMat(binary)
	if err != nil {
		return Result{}, fmt.Errorf("failed to wrap foreground mask: %w", err)
	}
	defer binarySafe.Close()

	opened, err := filters.Open(binarySafe, d.opts.KernelSize)
	if err != nil {
		return Result{}, err
	}
	defer opened.Close()

	mask, err := opened.ToGray()
	if err != nil {
		return Result{}, err
	}

	detections := d.regions(opened)

	d.width, d.height = f.Width, f.Height
	d.frames++

	if len(detections) > 0 && d.frames > d.opts.Warmup {
		d.logger.Debug(component, "motion detected", map[string]interface{}{
			"frame":      d.frames,
			"detections": len(detections),
		})
	}

	return Result{Mask: mask, Detections: detections}, nil
}

func (d *Detector) regions(mask *safe.Mat) []Detection {
	contours := gocv.FindContours(mask.GetMat(), gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var out []Detection
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if contour.IsNil() {
			continue
		}
		area := gocv.ContourArea(contour)
		if area < d.opts.MinArea {
			continue
		}
		out = append(out, Detection{Box: gocv.BoundingRect(contour), Area: area})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Box.Min.Y != out[j].Box.Min.Y {
			return out[i].Box.Min.Y < out[j].Box.Min.Y
		}
		return out[i].Box.Min.X < out[j].Box.Min.X
	})
	return out
}

// Frames reports how many frames the model has seen.
func (d *Detector) Frames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

func (d *Detector) WarmedUp() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames >= d.opts.Warmup
}

// Close releases the model. It is safe to call more than once.
func (d *Detector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	d.model.Close()
}
