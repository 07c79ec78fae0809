package safe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"reefview/internal/frame"
)

func TestFrameRoundTrip(t *testing.T) {
	f := frame.New(5, 3)
	for i := range f.Pix {
		f.Pix[i] = uint8(i * 11)
	}

	m, err := FromFrame(f)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 5, m.Cols())
	assert.Equal(t, 3, m.Channels())

	// The Mat must not alias the frame buffer.
	f.Pix[0] = 200
	back, err := m.ToFrame()
	require.NoError(t, err)
	assert.Equal(t, uint8(0), back.Pix[0])
	assert.Equal(t, f.Pix[1:], back.Pix[1:])
}

func TestGrayRoundTrip(t *testing.T) {
	g := frame.NewGray(4, 2)
	g.Pix[5] = 255

	m, err := FromGray(g)
	require.NoError(t, err)
	defer m.Close()

	back, err := m.ToGray()
	require.NoError(t, err)
	assert.Equal(t, g.Pix, back.Pix)

	_, err = m.ToFrame()
	assert.Error(t, err)
}

func TestFloatRoundTrip(t *testing.T) {
	pix := []float32{0, 0.5, 1.75, 3, -1, 0.25}
	m, err := FromFloat32(3, 2, pix)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, gocv.MatTypeCV32F, m.Type())
	back, err := m.ToFloat32()
	require.NoError(t, err)
	assert.Equal(t, pix, back)

	_, err = m.ToGray()
	assert.Error(t, err)
	_, err = FromFloat32(3, 2, pix[:4])
	assert.ErrorIs(t, err, frame.ErrEmptyFrame)
}

func TestFromFrameRejectsEmpty(t *testing.T) {
	_, err := FromFrame(&frame.Frame{})
	assert.ErrorIs(t, err, frame.ErrEmptyFrame)
}

func TestCloseIsIdempotent(t *testing.T) {
	m, err := NewMat(2, 2, gocv.MatTypeCV8UC1)
	require.NoError(t, err)
	m.Close()
	m.Close()

	assert.False(t, m.IsValid())
	assert.Error(t, ValidateMatForOperation(m, "test"))
	assert.Equal(t, 0, m.Rows())
}

func TestValidateTypes(t *testing.T) {
	m, err := NewMat(2, 2, gocv.MatTypeCV8UC1)
	require.NoError(t, err)
	defer m.Close()

	assert.NoError(t, ValidateGray(m, "gray"))
	assert.Error(t, ValidateBGR(m, "bgr"))
}

func TestOddKernel(t *testing.T) {
	assert.Equal(t, 1, OddKernel(0))
	assert.Equal(t, 15, OddKernel(14))
	assert.Equal(t, 15, OddKernel(15))
}
