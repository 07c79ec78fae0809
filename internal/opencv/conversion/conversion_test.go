package conversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"reefview/internal/frame"
	"reefview/internal/opencv/safe"
)

func TestLabRoundTripOnGray(t *testing.T) {
	f := frame.New(8, 8)
	f.Fill(128, 128, 128)

	out, err := Apply(f, func(src *safe.Mat) (*safe.Mat, error) {
		lab, err := ConvertBGRToLab(src)
		if err != nil {
			return nil, err
		}
		defer lab.Close()
		return ConvertLabToBGR(lab)
	})
	require.NoError(t, err)

	for i := range out.Pix {
		assert.InDelta(t, 128, int(out.Pix[i]), 1)
	}
}

func TestSplitMerge(t *testing.T) {
	f := frame.New(3, 2)
	f.Fill(1, 2, 3)

	out, err := Apply(f, func(src *safe.Mat) (*safe.Mat, error) {
		planes, err := SplitChannels(src)
		if err != nil {
			return nil, err
		}
		defer func() {
			for _, p := range planes {
				p.Close()
			}
		}()
		require.Len(t, planes, 3)
		return MergeChannels(planes)
	})
	require.NoError(t, err)
	assert.True(t, f.Equal(out))
}

func TestAdoptPlanesReleasesRestOnFailure(t *testing.T) {
	planes := []gocv.Mat{
		gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC1),
		gocv.NewMat(),
		gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC1),
	}

	out, err := adoptPlanes(planes)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Nil(t, planes[2].Ptr(), "plane after the failure must be closed")
}

func TestGrayscale(t *testing.T) {
	f := frame.New(2, 2)
	f.Fill(255, 255, 255)

	src, err := safe.FromFrame(f)
	require.NoError(t, err)
	defer src.Close()

	gray, err := ConvertToGrayscale(src)
	require.NoError(t, err)
	defer gray.Close()

	g, err := gray.ToGray()
	require.NoError(t, err)
	assert.Equal(t, []uint8{255, 255, 255, 255}, g.Pix)
}

func TestDownscale(t *testing.T) {
	f := frame.New(64, 32)
	f.Fill(10, 20, 30)

	small, err := Downscale(f, 16)
	require.NoError(t, err)
	assert.Equal(t, 16, small.Width)
	assert.Equal(t, 8, small.Height)
	b, g, r := small.At(3, 3)
	assert.Equal(t, []uint8{10, 20, 30}, []uint8{b, g, r})

	same, err := Downscale(f, 0)
	require.NoError(t, err)
	assert.True(t, f.Equal(same))
}
