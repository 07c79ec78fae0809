package equalize

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reefview/internal/frame"
	"reefview/internal/logger"
)

func TestEqualizeFlatChannelNeverNaN(t *testing.T) {
	f := frame.New(8, 8)
	f.Fill(40, 128, 250)

	var buf bytes.Buffer
	out, err := Equalizer{Logger: logger.NewZerolog(&buf, zerolog.WarnLevel)}.Equalize(f, 2, 2, 2)
	require.NoError(t, err)
	require.Equal(t, len(f.Pix), len(out.Pix))

	// in == median, spread == 0: numerator is 0, so every sample maps to 0.
	for _, v := range out.Pix {
		assert.Equal(t, uint8(0), v)
	}
	assert.Contains(t, buf.String(), "degenerate channel")
}

func TestEqualizeRecentres(t *testing.T) {
	f := frame.New(256, 1)
	for x := 0; x < 256; x++ {
		f.Set(x, 0, uint8(x), uint8(x), uint8(x))
	}

	out, err := Equalize(f, 1, 1, 1)
	require.NoError(t, err)

	// Median maps to half scale; the ends saturate beyond one std.
	b, _, _ := out.At(128, 0)
	assert.InDelta(t, 128, int(b), 1)
	b, _, _ = out.At(0, 0)
	assert.Equal(t, uint8(0), b)
	b, _, _ = out.At(255, 0)
	assert.Equal(t, uint8(255), b)

	// Output is monotone in the input.
	for x := 1; x < 256; x++ {
		prev, _, _ := out.At(x-1, 0)
		cur, _, _ := out.At(x, 0)
		assert.GreaterOrEqual(t, cur, prev)
	}
}

func TestEqualizeEmptyFrame(t *testing.T) {
	_, err := Equalize(nil, 1, 1, 1)
	assert.ErrorIs(t, err, frame.ErrEmptyFrame)
}
