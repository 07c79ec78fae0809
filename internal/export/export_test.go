package export

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reefview/internal/frame"
	"reefview/internal/models"
	"reefview/internal/processing/chain"
)

func clip(n, w, h int) []*frame.Frame {
	frames := make([]*frame.Frame, n)
	for i := range frames {
		f := frame.New(w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				f.Set(x, y, uint8(140+x+i*3), uint8(90+y*2), uint8(30+i*10))
			}
		}
		frames[i] = f
	}
	return frames
}

func exportState() models.CorrectionState {
	s := models.DefaultCorrectionState()
	s.Contrast = 15
	s.Saturation = 20
	s.Temperature = 40
	s.Sharpness = 30
	s.Denoise = 5
	return s
}

func TestExportMatchesSequentialProcess(t *testing.T) {
	frames := clip(7, 32, 24)
	state := exportState()
	p := chain.New(nil)

	var progress []int
	sink := &SliceSink{}
	report, err := New(p, nil, Options{Workers: 3, BatchSize: 4, Progress: func(n int) {
		progress = append(progress, n)
	}}).Run(context.Background(), &SliceSource{Frames: frames}, sink, state)
	require.NoError(t, err)

	assert.Equal(t, 7, report.Frames)
	assert.Equal(t, 2, report.Batches)
	assert.NotEmpty(t, report.JobID)
	assert.Equal(t, []int{4, 7}, progress)

	require.Len(t, sink.Frames, len(frames))
	for i, f := range frames {
		want, err := p.Process(context.Background(), f, state)
		require.NoError(t, err)
		assert.True(t, want.Frame.Equal(sink.Frames[i]), "frame %d differs from the preview path", i)
	}
}

func TestExportReusedAtmosphereIsOrderStable(t *testing.T) {
	frames := clip(5, 24, 24)
	state := models.DefaultCorrectionState()
	state.SetEnabled(models.EffectDehaze, true)
	state.Dehaze.ReuseAtmosphere = true

	sequential := chain.New(nil)
	var want []*frame.Frame
	for _, f := range frames {
		res, err := sequential.Process(context.Background(), f, state)
		require.NoError(t, err)
		want = append(want, res.Frame)
	}

	sink := &SliceSink{}
	_, err := New(chain.New(nil), nil, Options{Workers: 4, BatchSize: 5}).
		Run(context.Background(), &SliceSource{Frames: frames}, sink, state)
	require.NoError(t, err)
	for i := range want {
		assert.True(t, want[i].Equal(sink.Frames[i]), "frame %d", i)
	}
}

func TestExportEmptySource(t *testing.T) {
	report, err := New(chain.New(nil), nil, Options{}).
		Run(context.Background(), &SliceSource{}, &SliceSink{}, models.DefaultCorrectionState())
	require.NoError(t, err)
	assert.Zero(t, report.Frames)
	assert.Zero(t, report.Batches)
}

type failingProcessor struct {
	calls atomic.Int32
}

func (f *failingProcessor) Process(ctx context.Context, fr *frame.Frame, s models.CorrectionState) (chain.Result, error) {
	if f.calls.Add(1) == 2 {
		return chain.Result{}, errors.New("decoder glitch")
	}
	return chain.Result{Frame: fr}, nil
}

type failingSink struct{}

func (failingSink) Write(*frame.Frame) error { return errors.New("disk full") }

func TestExportErrors(t *testing.T) {
	frames := clip(4, 8, 8)

	_, err := New(&failingProcessor{}, nil, Options{Workers: 1, BatchSize: 4}).
		Run(context.Background(), &SliceSource{Frames: frames}, &SliceSink{}, models.DefaultCorrectionState())
	assert.ErrorContains(t, err, "decoder glitch")

	_, err = New(chain.New(nil), nil, Options{Workers: 2}).
		Run(context.Background(), &SliceSource{Frames: frames}, failingSink{}, models.DefaultCorrectionState())
	assert.ErrorContains(t, err, "failed to write frame 0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(chain.New(nil), nil, Options{}).
		Run(ctx, &SliceSource{Frames: frames}, &SliceSink{}, models.DefaultCorrectionState())
	assert.ErrorIs(t, err, context.Canceled)
}
