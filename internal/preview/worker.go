// Package preview runs correction requests off the caller's goroutine with
// a single-slot "latest wins" mailbox: a new request replaces any pending
// one and cancels the one in flight.
package preview

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"reefview/internal/frame"
	"reefview/internal/logger"
	"reefview/internal/models"
	"reefview/internal/opencv/conversion"
	"reefview/internal/processing/chain"
)

const component = "PreviewWorker"

var ErrClosed = errors.New("preview worker is closed")

// Processor is satisfied by *chain.Pipeline.
type Processor interface {
	Process(ctx context.Context, f *frame.Frame, state models.CorrectionState) (chain.Result, error)
}

type Request struct {
	ID        string
	Frame     *frame.Frame
	State     models.CorrectionState
	Submitted time.Time
}

// Response carries the outcome of a request that was not superseded.
type Response struct {
	ID      string
	Result  chain.Result
	Err     error
	Elapsed time.Duration
}

type Options struct {
	// MaxWidth downscales frames wider than this before processing; 0 keeps
	// full resolution.
	MaxWidth int `yaml:"max_width"`
}

type Stats struct {
	Submitted uint64
	Processed uint64
	// Dropped counts pending requests replaced before they started.
	Dropped uint64
	// Cancelled counts in-flight requests whose result was discarded.
	Cancelled uint64
	Failed    uint64
}

// Worker owns one goroutine. onResult is called from that goroutine only.
type Worker struct {
	processor Processor
	onResult  func(Response)
	opts      Options
	logger    logger.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	pending  *Request
	cancel   context.CancelFunc
	inFlight string
	closed   bool
	stats    Stats

	done chan struct{}
}

func NewWorker(p Processor, onResult func(Response), log logger.Logger, opts Options) *Worker {
	if onResult == nil {
		onResult = func(Response) {}
	}
	w := &Worker{
		processor: p,
		onResult:  onResult,
		opts:      opts,
		logger:    logger.OrNoOp(log),
		done:      make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	go w.run()
	return w
}

// Submit queues f with state and returns the request id. The state is
// copied; the frame is treated as immutable.
func (w *Worker) Submit(f *frame.Frame, state models.CorrectionState) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return "", ErrClosed
	}

	if w.pending != nil {
		w.stats.Dropped++
	}
	if w.cancel != nil {
		w.cancel()
	}

	req := &Request{
		ID:        uuid.NewString(),
		Frame:     f,
		State:     state.Clone(),
		Submitted: time.Now(),
	}
	w.pending = req
	w.stats.Submitted++
	w.cond.Signal()

	return req.ID, nil
}

func (w *Worker) next() (*Request, context.Context, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for w.pending == nil && !w.closed {
		w.cond.Wait()
	}
	if w.closed {
		return nil, nil, false
	}

	req := w.pending
	w.pending = nil

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.inFlight = req.ID
	return req, ctx, true
}

func (w *Worker) run() {
	defer close(w.done)

	for {
		req, ctx, ok := w.next()
		if !ok {
			return
		}

		start := time.Now()
		res, err := w.process(ctx, req)

		w.mu.Lock()
		superseded := ctx.Err() != nil
		w.cancel()
		w.cancel = nil
		w.inFlight = ""
		switch {
		case superseded:
			w.stats.Cancelled++
		case err != nil:
			w.stats.Failed++
		default:
			w.stats.Processed++
		}
		w.mu.Unlock()

		if superseded {
			w.logger.Debug(component, "discarded superseded preview", map[string]interface{}{
				"request_id": req.ID,
			})
			continue
		}
		if err != nil {
			w.logger.Error(component, err, map[string]interface{}{
				"request_id": req.ID,
			})
		}

		w.onResult(Response{
			ID:      req.ID,
			Result:  res,
			Err:     err,
			Elapsed: time.Since(start),
		})
	}
}

func (w *Worker) process(ctx context.Context, req *Request) (chain.Result, error) {
	f := req.Frame
	if w.opts.MaxWidth > 0 && f.Width > w.opts.MaxWidth {
		small, err := conversion.Downscale(f, w.opts.MaxWidth)
		if err != nil {
			return chain.Result{}, err
		}
		f = small
	}
	return w.processor.Process(ctx, f, req.State)
}

func (w *Worker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Close cancels the in-flight request, drops the pending one and waits for
// the goroutine to exit. It is safe to call more than once.
func (w *Worker) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		if w.pending != nil {
			w.stats.Dropped++
			w.pending = nil
		}
		if w.cancel != nil {
			w.cancel()
		}
		w.cond.Broadcast()
	}
	w.mu.Unlock()

	<-w.done
}

// Shutdown lets the shutdown manager stop the worker.
func (w *Worker) Shutdown() {
	w.Close()
}

// InFlight returns the id of the request being processed, or "".
func (w *Worker) InFlight() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight
}
