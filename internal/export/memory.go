package export

import (
	"context"
	"io"
	"sync"

	"reefview/internal/frame"
)

// SliceSource replays a fixed list of frames.
type SliceSource struct {
	Frames []*frame.Frame
	next   int
}

func (s *SliceSource) Next(ctx context.Context) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.Frames) {
		return nil, io.EOF
	}
	f := s.Frames[s.next]
	s.next++
	return f, nil
}

// SliceSink collects written frames.
type SliceSink struct {
	mu     sync.Mutex
	Frames []*frame.Frame
}

func (s *SliceSink) Write(f *frame.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Frames = append(s.Frames, f)
	return nil
}
