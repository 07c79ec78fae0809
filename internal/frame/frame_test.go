package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) *Frame {
	f := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(x, y, uint8((x*7+y)%256), uint8((x+y*3)%256), uint8((x*y)%256))
		}
	}
	return f
}

func TestValidate(t *testing.T) {
	var nilFrame *Frame
	assert.ErrorIs(t, nilFrame.Validate(), ErrEmptyFrame)
	assert.ErrorIs(t, New(0, 4).Validate(), ErrEmptyFrame)
	assert.ErrorIs(t, (&Frame{Width: 2, Height: 2, Pix: make([]uint8, 5)}).Validate(), ErrEmptyFrame)
	assert.NoError(t, New(3, 2).Validate())
}

func TestFromPixCopies(t *testing.T) {
	pix := []uint8{1, 2, 3, 4, 5, 6}
	f, err := FromPix(2, 1, pix)
	require.NoError(t, err)
	pix[0] = 99
	assert.Equal(t, uint8(1), f.Pix[0])

	_, err = FromPix(2, 2, pix)
	assert.ErrorIs(t, err, ErrEmptyFrame)
}

func TestFloatRoundTrip(t *testing.T) {
	f := New(256, 1)
	for x := 0; x < 256; x++ {
		v := uint8(x)
		f.Set(x, 0, v, 255-v, v/2)
	}
	back := Float2BGR(BGR2Float(f))
	assert.True(t, f.Equal(back))

	g := gradient(31, 17)
	assert.True(t, g.Equal(Float2BGR(BGR2Float(g))))
}

func TestFloat2BGRClips(t *testing.T) {
	ff := NewFloat(1, 1)
	ff.Pix[0], ff.Pix[1], ff.Pix[2] = -0.2, 1.7, 0.5
	f := Float2BGR(ff)
	assert.Equal(t, []uint8{0, 255, 128}, f.Pix)
}

func TestHistogram(t *testing.T) {
	f := New(4, 1)
	f.Fill(10, 20, 30)
	f.Set(3, 0, 10, 10, 10)
	h := ComputeHistogram(f)

	assert.Equal(t, 4, h.B[10])
	assert.Equal(t, 3, h.G[20])
	assert.Equal(t, 1, h.G[10])
	assert.Equal(t, 3, h.R[30])
	assert.InDelta(t, 2.0, h.Density[10], 1e-9)
	assert.Equal(t, h.R, h.Channel(Red))
}

func TestClamp8(t *testing.T) {
	assert.Equal(t, uint8(0), Clamp8(-3))
	assert.Equal(t, uint8(255), Clamp8(300))
	assert.Equal(t, uint8(3), Clamp8(2.5))
	assert.Equal(t, uint8(2), Clamp8(2.49))
}
