// Package export runs the correction pipeline over a whole frame stream.
// Frames are processed in parallel batches and written in source order.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"reefview/internal/frame"
	"reefview/internal/logger"
	"reefview/internal/models"
	"reefview/internal/processing/chain"
)

const component = "BatchExporter"

// Source yields frames in play order and io.EOF after the last one.
type Source interface {
	Next(ctx context.Context) (*frame.Frame, error)
}

type Sink interface {
	Write(f *frame.Frame) error
}

// Processor is satisfied by *chain.Pipeline.
type Processor interface {
	Process(ctx context.Context, f *frame.Frame, state models.CorrectionState) (chain.Result, error)
}

type Options struct {
	// Workers bounds concurrent frames; 0 uses GOMAXPROCS.
	Workers int `yaml:"workers"`
	// BatchSize is the number of frames read ahead; 0 uses 2×Workers.
	BatchSize int `yaml:"batch_size"`
	// Progress, when set, is called after each batch is written.
	Progress func(written int) `yaml:"-"`
}

type Report struct {
	JobID   string
	Frames  int
	Batches int
	Elapsed time.Duration
}

type Exporter struct {
	processor Processor
	logger    logger.Logger
	opts      Options
}

func New(p Processor, log logger.Logger, opts Options) *Exporter {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 2 * opts.Workers
	}
	return &Exporter{processor: p, logger: logger.OrNoOp(log), opts: opts}
}

// Run drains src through the pipeline into dst. The output is identical to
// calling Process on each frame in turn.
func (e *Exporter) Run(ctx context.Context, src Source, dst Sink, state models.CorrectionState) (Report, error) {
	report := Report{JobID: uuid.NewString()}
	start := time.Now()
	state = state.Clone()

	// A reused atmospheric light comes from whichever frame is estimated
	// first, so that frame must be the first of the stream.
	sequentialFirst := state.IsEnabled(models.EffectDehaze) && state.Dehaze.ReuseAtmosphere

	e.logger.Info(component, "export started", map[string]interface{}{
		"job_id":     report.JobID,
		"workers":    e.opts.Workers,
		"batch_size": e.opts.BatchSize,
	})

	for {
		batch, eof, err := e.read(ctx, src)
		if err != nil {
			return report, e.fail(report, err)
		}
		if len(batch) == 0 {
			break
		}

		out, err := e.process(ctx, batch, report.Frames, state, sequentialFirst && report.Frames == 0)
		if err != nil {
			return report, e.fail(report, err)
		}

		for i, f := range out {
			if err := dst.Write(f); err != nil {
				return report, e.fail(report, fmt.Errorf("failed to write frame %d: %w", report.Frames+i, err))
			}
		}
		report.Frames += len(out)
		report.Batches++

		if e.opts.Progress != nil {
			e.opts.Progress(report.Frames)
		}
		if eof {
			break
		}
	}

	report.Elapsed = time.Since(start)
	e.logger.Info(component, "export completed", map[string]interface{}{
		"job_id":     report.JobID,
		"frames":     report.Frames,
		"elapsed_ms": report.Elapsed.Milliseconds(),
	})
	return report, nil
}

func (e *Exporter) read(ctx context.Context, src Source) ([]*frame.Frame, bool, error) {
	batch := make([]*frame.Frame, 0, e.opts.BatchSize)
	for len(batch) < e.opts.BatchSize {
		f, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return batch, true, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to read frame: %w", err)
		}
		batch = append(batch, f)
	}
	return batch, false, nil
}

func (e *Exporter) process(ctx context.Context, batch []*frame.Frame, offset int, state models.CorrectionState, firstAlone bool) ([]*frame.Frame, error) {
	out := make([]*frame.Frame, len(batch))
	next := 0

	if firstAlone {
		res, err := e.processor.Process(ctx, batch[0], state)
		if err != nil {
			return nil, fmt.Errorf("failed to process frame %d: %w", offset, err)
		}
		out[0] = res.Frame
		next = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i := next; i < len(batch); i++ {
		g.Go(func() error {
			res, err := e.processor.Process(gctx, batch[i], state)
			if err != nil {
				return fmt.Errorf("failed to process frame %d: %w", offset+i, err)
			}
			out[i] = res.Frame
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Exporter) fail(report Report, err error) error {
	e.logger.Error(component, err, map[string]interface{}{
		"job_id":  report.JobID,
		"written": report.Frames,
	})
	return err
}
