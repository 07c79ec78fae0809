package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reefview/internal/config"
	"reefview/internal/export"
	"reefview/internal/frame"
	"reefview/internal/logger"
	"reefview/internal/media"
	"reefview/internal/models"
	"reefview/internal/preview"
	"reefview/internal/processing/chain"
	"reefview/internal/processing/motion"
	"reefview/internal/processing/stats"
	"reefview/internal/report"
	"reefview/internal/shutdown"
	"reefview/internal/timing"
)

type common struct {
	preset   string
	logLevel string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.preset, "preset", "", "YAML preset file")
	fs.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

func (c *common) load() (config.Preset, logger.Logger, error) {
	p := config.Default()
	if c.preset != "" {
		var err error
		if p, err = config.Load(c.preset); err != nil {
			return config.Preset{}, nil, err
		}
	}
	level := p.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	return p, logger.NewConsoleLogger(logger.ParseLevel(level)), nil
}

func runEnhance(args []string) error {
	fs := flag.NewFlagSet("enhance", flag.ContinueOnError)
	var c common
	c.register(fs)
	in := fs.String("in", "", "input image (required)")
	out := fs.String("out", "", "output image (required)")
	auto := fs.Bool("auto", false, "apply the histogram auto-correction before the preset")
	hist := fs.String("hist", "", "write the output histogram as .html or .png")
	prev := fs.String("preview", "", "also write a preview-resolution render to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return errors.New("--in and --out are required")
	}

	p, log, err := c.load()
	if err != nil {
		return err
	}
	state, err := p.State()
	if err != nil {
		return err
	}

	f, err := media.LoadImage(*in)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if *auto {
		opts := p.Auto
		opts.Logger = log
		if f, err = chain.AutoCorrect(ctx, f, opts); err != nil {
			return err
		}
	}

	tracker := timing.NewTracker(log)
	pipeline := chain.New(log, chain.WithTracker(tracker))
	res, err := pipeline.Process(ctx, f, state)
	if err != nil {
		return err
	}
	if *prev != "" {
		small, err := renderPreview(ctx, pipeline, f, state, p.Preview, log)
		if err != nil {
			return err
		}
		if err := media.SaveImage(*prev, small.Frame); err != nil {
			return err
		}
	}
	if err := media.SaveImage(*out, res.Frame); err != nil {
		return err
	}
	if *hist != "" {
		if err := report.SaveFile(*hist, res.Histogram, filepath.Base(*out)); err != nil {
			return err
		}
	}

	for _, s := range tracker.Summaries() {
		log.Debug("Enhance", "step timing", map[string]interface{}{
			"step":        s.Operation,
			"duration_ms": float64(s.Total.Microseconds()) / 1000,
		})
	}
	log.Info("Enhance", "image written", map[string]interface{}{
		"path":    *out,
		"applied": res.Applied,
	})
	return nil
}

// renderPreview runs f through a preview worker, which downscales it to
// opts.MaxWidth before processing.
func renderPreview(ctx context.Context, p preview.Processor, f *frame.Frame, state models.CorrectionState, opts preview.Options, log logger.Logger) (chain.Result, error) {
	done := make(chan preview.Response, 1)
	w := preview.NewWorker(p, func(r preview.Response) { done <- r }, log, opts)
	defer w.Close()

	if _, err := w.Submit(f, state); err != nil {
		return chain.Result{}, err
	}
	select {
	case r := <-done:
		return r.Result, r.Err
	case <-ctx.Done():
		return chain.Result{}, ctx.Err()
	}
}

// openSource opens a video file or a directory of images.
func openSource(path string) (export.Source, float64, func() error, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, nil, err
	}
	if info.IsDir() {
		paths, err := media.GlobImages(path)
		if err != nil {
			return nil, 0, nil, err
		}
		return media.NewImageSequence(paths), 0, func() error { return nil }, nil
	}
	r, err := media.OpenVideo(path)
	if err != nil {
		return nil, 0, nil, err
	}
	return r, r.FPS(), r.Close, nil
}

// lazyVideoSink creates the writer once the first frame fixes the size.
type lazyVideoSink struct {
	path  string
	codec string
	fps   float64
	w     *media.VideoWriter
}

func (s *lazyVideoSink) Write(f *frame.Frame) error {
	if s.w == nil {
		w, err := media.CreateVideo(s.path, s.codec, s.fps, f.Width, f.Height)
		if err != nil {
			return err
		}
		s.w = w
	}
	return s.w.Write(f)
}

func (s *lazyVideoSink) Close() error {
	if s.w == nil {
		return nil
	}
	return s.w.Close()
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	var c common
	c.register(fs)
	in := fs.String("in", "", "input video or image directory (required)")
	out := fs.String("out", "", "output video file or image directory (required)")
	codec := fs.String("codec", "MJPG", "four-character video codec")
	workers := fs.Int("workers", 0, "parallel frames (default: preset or GOMAXPROCS)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return errors.New("--in and --out are required")
	}

	p, log, err := c.load()
	if err != nil {
		return err
	}
	state, err := p.State()
	if err != nil {
		return err
	}

	src, fps, closeSrc, err := openSource(*in)
	if err != nil {
		return err
	}
	defer closeSrc()

	var sink export.Sink
	if ext := strings.ToLower(filepath.Ext(*out)); ext == "" {
		dirSink, err := media.NewImageDirSink(*out, "frame_", ".png")
		if err != nil {
			return err
		}
		sink = dirSink
	} else {
		if fps <= 0 {
			fps = 25
		}
		vs := &lazyVideoSink{path: *out, codec: *codec, fps: fps}
		defer vs.Close()
		sink = vs
	}

	mgr := shutdown.NewManager(log, 5*time.Second)
	mgr.Listen()
	defer mgr.Shutdown()

	opts := p.Export
	if *workers > 0 {
		opts.Workers = *workers
	}
	opts.Progress = func(n int) {
		log.Debug("Export", "frames written", map[string]interface{}{"frames": n})
	}

	tracker := timing.NewTracker(log)
	pipeline := chain.New(log, chain.WithTracker(tracker))
	rep, err := export.New(pipeline, log, opts).Run(mgr.Context(), src, sink, state)
	if err != nil {
		return err
	}
	for _, step := range pipeline.Steps() {
		if avg := tracker.GetAverageTime(step); avg > 0 {
			log.Debug("Export", "mean step time per frame", map[string]interface{}{
				"step":    step,
				"mean_ms": float64(avg.Microseconds()) / 1000,
			})
		}
	}
	fmt.Printf("exported %d frames in %s (job %s)\n", rep.Frames, rep.Elapsed.Round(time.Millisecond), rep.JobID)
	return nil
}

type motionEvent struct {
	Frame int       `json:"frame"`
	Boxes [][4]int  `json:"boxes"`
	Areas []float64 `json:"areas"`
}

func runMotion(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("motion", flag.ContinueOnError)
	var c common
	c.register(fs)
	in := fs.String("in", "", "input video or image directory (required)")
	minArea := fs.Float64("min-area", 0, "minimum region area in pixels (default: preset)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("--in is required")
	}

	p, log, err := c.load()
	if err != nil {
		return err
	}
	opts := p.Motion
	if *minArea > 0 {
		opts.MinArea = *minArea
	}

	src, _, closeSrc, err := openSource(*in)
	if err != nil {
		return err
	}
	defer closeSrc()

	mgr := shutdown.NewManager(log, 5*time.Second)
	d := motion.NewDetector(opts, log)
	mgr.Register("motion", shutdown.Func(d.Close))
	mgr.Listen()
	defer mgr.Shutdown()

	enc := json.NewEncoder(w)
	for i := 0; ; i++ {
		f, err := src.Next(mgr.Context())
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		res, err := d.Apply(f)
		if err != nil {
			return err
		}
		if !d.WarmedUp() || len(res.Detections) == 0 {
			continue
		}

		ev := motionEvent{Frame: i}
		for _, det := range res.Detections {
			b := det.Box
			ev.Boxes = append(ev.Boxes, [4]int{b.Min.X, b.Min.Y, b.Dx(), b.Dy()})
			ev.Areas = append(ev.Areas, det.Area)
		}
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
}

func runStats(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	in := fs.String("in", "", "input image (required)")
	hist := fs.String("hist", "", "write the histogram as .html or .png")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("--in is required")
	}

	f, err := media.LoadImage(*in)
	if err != nil {
		return err
	}
	res, err := stats.Analyse(f, nil)
	if err != nil {
		return err
	}

	for c, name := range []string{"blue", "green", "red"} {
		fmt.Fprintf(w, "%-5s median=%6.1f std=%6.2f\n", name, res.Median[c], res.Std[c])
	}
	if *hist != "" {
		return report.SaveFile(*hist, frame.ComputeHistogram(f), filepath.Base(*in))
	}
	return nil
}
