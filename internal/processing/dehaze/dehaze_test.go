package dehaze

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reefview/internal/frame"
	"reefview/internal/logger"
	"reefview/internal/processing/filters"
)

// hazedGradient is blue rising left to right, red falling and a mid-gray
// green, softened with a gaussian blur.
func hazedGradient(t *testing.T, w, h int) *frame.Frame {
	t.Helper()
	f := frame.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / (w - 1))
			f.Set(x, y, v, 128, 255-v)
		}
	}
	blurred, err := filters.GaussianBlur(f, 2)
	require.NoError(t, err)
	return blurred
}

func TestDarkChannelShapeAndRange(t *testing.T) {
	f := hazedGradient(t, 40, 30)
	ff := frame.BGR2Float(f)

	for _, water := range []bool{false, true} {
		dark, err := DarkChannel(ff, 14, water)
		require.NoError(t, err)
		require.Len(t, dark, 40*30)
		for _, v := range dark {
			assert.GreaterOrEqual(t, v, float32(0))
			assert.LessOrEqual(t, v, float32(1))
		}
	}

	_, err := DarkChannel(&frame.FloatFrame{}, 15, false)
	assert.ErrorIs(t, err, frame.ErrEmptyFrame)
}

func TestDarkChannelIgnoresRedUnderwater(t *testing.T) {
	f := frame.New(20, 20)
	f.Fill(200, 180, 0)
	ff := frame.BGR2Float(f)

	air, err := DarkChannel(ff, 5, false)
	require.NoError(t, err)
	water, err := DarkChannel(ff, 5, true)
	require.NoError(t, err)

	assert.Equal(t, float32(0), air[0])
	assert.InDelta(t, 180.0/255, water[0], 1e-6)
}

func TestAtmosphericLightInRange(t *testing.T) {
	a, err := EstimateAtmosphericLight(hazedGradient(t, 64, 48))
	require.NoError(t, err)
	require.Len(t, a, 3)
	for _, v := range a {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestAtmosphericLightPicksBrightestRegion(t *testing.T) {
	f := frame.New(60, 60)
	f.Fill(30, 40, 20)
	for y := 40; y < 60; y++ {
		for x := 40; x < 60; x++ {
			f.Set(x, y, 240, 230, 220)
		}
	}

	a, err := EstimateAtmosphericLight(f)
	require.NoError(t, err)
	assert.InDelta(t, 240.0/255, a[0], 1e-3)
	assert.InDelta(t, 230.0/255, a[1], 1e-3)
	assert.InDelta(t, 220.0/255, a[2], 1e-3)
}

func TestAtmLightSinglePixel(t *testing.T) {
	ff := frame.NewFloat(2, 1)
	copy(ff.Pix, []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6})

	// Under a thousand pixels still selects one; the tie goes to the later pixel.
	a, err := AtmLight(ff, []float32{0.5, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.4, a[0], 1e-6)
	assert.InDelta(t, 0.6, a[2], 1e-6)

	_, err = AtmLight(ff, []float32{0.5})
	assert.Error(t, err)
}

func TestTransmissionBounds(t *testing.T) {
	f := hazedGradient(t, 32, 24)
	ff := frame.BGR2Float(f)
	a, err := EstimateAtmosphericLight(f)
	require.NoError(t, err)

	opts := DefaultOptions()
	coarse, err := EstimateTransmission(ff, a, opts)
	require.NoError(t, err)
	for _, v := range coarse.T {
		assert.LessOrEqual(t, v, float32(1))
	}

	refined, err := RefineTransmission(ff, coarse, opts.GuidedRadius, opts.GuidedEps)
	require.NoError(t, err)
	require.Len(t, refined.T, len(coarse.T))
	for _, v := range refined.T {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestTransmissionBelowOmegaFloorWhenBrighterThanAtmosphere(t *testing.T) {
	f := frame.New(24, 16)
	f.Fill(204, 204, 204)
	ff := frame.BGR2Float(f)

	opts := DefaultOptions()
	coarse, err := EstimateTransmission(ff, AtmosphericLight{0.4, 0.4, 0.4}, opts)
	require.NoError(t, err)
	for _, v := range coarse.T {
		// I/A is 2 everywhere, so t = 1 - 0.6·2.
		assert.InDelta(t, -0.2, v, 1e-3)
	}
}

func TestRecoverWithFullTransmissionIsIdentity(t *testing.T) {
	f := hazedGradient(t, 16, 8)
	ff := frame.BGR2Float(f)
	full := &TransmissionMap{Width: 16, Height: 8, T: make([]float32, 16*8)}
	for i := range full.T {
		full.T[i] = 1
	}

	out, err := Recover(ff, full, AtmosphericLight{0.7, 0.6, 0.5}, 0.1)
	require.NoError(t, err)
	assert.True(t, f.Equal(out))
}

func TestDehazeThenDenoise(t *testing.T) {
	f := hazedGradient(t, 64, 48)
	e := NewEngine(nil)

	out, err := e.Dehaze(context.Background(), f, nil, DefaultOptions())
	require.NoError(t, err)
	require.True(t, f.SameSize(out))
	assert.False(t, f.Equal(out))

	clean, err := filters.Denoise(out, 10, filters.DefaultDenoiseOptions())
	require.NoError(t, err)
	assert.True(t, f.SameSize(clean))
}

func TestDehazeZeroRedLogsDegenerateChannel(t *testing.T) {
	f := frame.New(24, 24)
	for y := 0; y < 24; y++ {
		for x := 0; x < 24; x++ {
			f.Set(x, y, uint8(120+x*5), uint8(90+y*3), 0)
		}
	}

	var buf bytes.Buffer
	e := NewEngine(logger.NewZerolog(&buf, zerolog.WarnLevel))

	out, err := e.Dehaze(context.Background(), f, nil, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, f.SameSize(out))
	assert.Contains(t, buf.String(), "near-zero atmospheric light")
	assert.Contains(t, buf.String(), `"channel":2`)
}

func TestDehazeExplicitAtmosphere(t *testing.T) {
	f := hazedGradient(t, 32, 24)
	a := AtmosphericLight{0.8, 0.8, 0.8}
	e := NewEngine(nil)

	first, err := e.Dehaze(context.Background(), f, &a, DefaultOptions())
	require.NoError(t, err)
	second, err := e.Dehaze(context.Background(), f, &a, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestReuseAtmosphere(t *testing.T) {
	e := NewEngine(nil)
	opts := DefaultOptions()
	opts.ReuseAtmosphere = true

	bright := frame.New(40, 40)
	bright.Fill(230, 220, 210)
	dark := frame.New(40, 40)
	dark.Fill(30, 20, 10)

	first, err := e.Atmosphere(bright, opts)
	require.NoError(t, err)
	second, err := e.Atmosphere(dark, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	e.Reset()
	third, err := e.Atmosphere(dark, opts)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)

	opts.ReuseAtmosphere = false
	fresh, err := e.Atmosphere(bright, opts)
	require.NoError(t, err)
	assert.Equal(t, first, fresh)
}

func TestDehazeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(nil).Dehaze(ctx, hazedGradient(t, 16, 16), nil, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewEngine(nil).Dehaze(context.Background(), &frame.Frame{}, nil, DefaultOptions())
	assert.ErrorIs(t, err, frame.ErrEmptyFrame)
}
