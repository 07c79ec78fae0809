package media

import (
	"context"
	"fmt"
	"io"

	"gocv.io/x/gocv"

	"reefview/internal/frame"
	"reefview/internal/opencv/safe"
)

// VideoReader yields decoded frames in play order.
type VideoReader struct {
	capture *gocv.VideoCapture
	buf     gocv.Mat
	index   int
}

func OpenVideo(path string) (*VideoReader, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video %s: %w", path, err)
	}
	return &VideoReader{capture: vc, buf: gocv.NewMat()}, nil
}

// Next returns the next frame, or io.EOF after the last one.
func (r *VideoReader) Next(ctx context.Context) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !r.capture.Read(&r.buf) || r.buf.Empty() {
		return nil, io.EOF
	}

	sm, err := safe.NewMatFromMat(r.buf)
	if err != nil {
		return nil, err
	}
	defer sm.Close()

	r.index++
	return sm.ToFrame()
}

// Index is the number of frames read so far.
func (r *VideoReader) Index() int {
	return r.index
}

func (r *VideoReader) FPS() float64 {
	return r.capture.Get(gocv.VideoCaptureFPS)
}

func (r *VideoReader) Size() (width, height int) {
	return int(r.capture.Get(gocv.VideoCaptureFrameWidth)), int(r.capture.Get(gocv.VideoCaptureFrameHeight))
}

// FrameCount is the container's estimate; some codecs report 0.
func (r *VideoReader) FrameCount() int {
	return int(r.capture.Get(gocv.VideoCaptureFrameCount))
}

func (r *VideoReader) Close() error {
	r.buf.Close()
	return r.capture.Close()
}

// VideoWriter encodes frames of a fixed size.
type VideoWriter struct {
	writer        *gocv.VideoWriter
	width, height int
}

// CreateVideo opens path for writing with a four-character codec such as
// "MJPG" or "mp4v".
func CreateVideo(path, codec string, fps float64, width, height int) (*VideoWriter, error) {
	vw, err := gocv.VideoWriterFile(path, codec, fps, width, height, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create video %s: %w", path, err)
	}
	return &VideoWriter{writer: vw, width: width, height: height}, nil
}

func (w *VideoWriter) Write(f *frame.Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.Width != w.width || f.Height != w.height {
		return fmt.Errorf("frame %dx%d does not match video %dx%d", f.Width, f.Height, w.width, w.height)
	}

	sm, err := safe.FromFrame(f)
	if err != nil {
		return err
	}
	defer sm.Close()

	return w.writer.Write(sm.GetMat())
}

func (w *VideoWriter) Close() error {
	return w.writer.Close()
}
