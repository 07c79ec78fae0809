// Package frame holds the in-memory image buffers the enhancement engine
// operates on. Every transform takes a frame and returns a new one; callers own
// buffer lifetime.
package frame

import (
	"errors"
	"fmt"
	"math"
)

// Channel indices in BGR byte order.
const (
	Blue  = 0
	Green = 1
	Red   = 2
)

var ErrEmptyFrame = errors.New("empty frame")

// Frame is a dense H×W×3 BGR buffer, row-major and contiguous.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

func New(width, height int) *Frame {
	if width <= 0 || height <= 0 {
		return &Frame{}
	}
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// FromPix copies pix into a new frame.
func FromPix(width, height int, pix []uint8) (*Frame, error) {
	f := &Frame{Width: width, Height: height, Pix: append([]uint8(nil), pix...)}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate reports ErrEmptyFrame for nil, zero-sized or short buffers.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", ErrEmptyFrame)
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: invalid dimensions %dx%d", ErrEmptyFrame, f.Width, f.Height)
	}
	if len(f.Pix) != f.Width*f.Height*3 {
		return fmt.Errorf("%w: buffer has %d bytes, want %d", ErrEmptyFrame, len(f.Pix), f.Width*f.Height*3)
	}
	return nil
}

func (f *Frame) Clone() *Frame {
	return &Frame{
		Width:  f.Width,
		Height: f.Height,
		Pix:    append([]uint8(nil), f.Pix...),
	}
}

func (f *Frame) Pixels() int {
	return f.Width * f.Height
}

func (f *Frame) At(x, y int) (b, g, r uint8) {
	i := (y*f.Width + x) * 3
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

func (f *Frame) Set(x, y int, b, g, r uint8) {
	i := (y*f.Width + x) * 3
	f.Pix[i] = b
	f.Pix[i+1] = g
	f.Pix[i+2] = r
}

func (f *Frame) Fill(b, g, r uint8) {
	for i := 0; i < len(f.Pix); i += 3 {
		f.Pix[i] = b
		f.Pix[i+1] = g
		f.Pix[i+2] = r
	}
}

func (f *Frame) SameSize(o *Frame) bool {
	return f.Width == o.Width && f.Height == o.Height
}

// Equal reports bit-identical content.
func (f *Frame) Equal(o *Frame) bool {
	if !f.SameSize(o) || len(f.Pix) != len(o.Pix) {
		return false
	}
	for i := range f.Pix {
		if f.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// Gray is a single-channel 8-bit map.
type Gray struct {
	Width  int
	Height int
	Pix    []uint8
}

func NewGray(width, height int) *Gray {
	return &Gray{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// Mask selects pixels of a frame; Bits has one entry per pixel.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Bits: make([]bool, width*height)}
}

// Clamp8 rounds v to the nearest integer and clips it to [0,255].
func Clamp8(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
