package media

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reefview/internal/frame"
)

func pattern(w, h int) *frame.Frame {
	f := frame.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(x, y, uint8(x*7), uint8(y*11), uint8(x+y))
		}
	}
	return f
}

func TestSaveLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reef.png")
	f := pattern(20, 10)

	require.NoError(t, SaveImage(path, f))
	back, err := LoadImage(path)
	require.NoError(t, err)
	assert.True(t, f.Equal(back))
}

func TestEncodeDecode(t *testing.T) {
	f := pattern(12, 12)
	data, err := EncodeImage(f, ".png")
	require.NoError(t, err)
	require.NotEmpty(t, data)

	back, err := DecodeImage(data)
	require.NoError(t, err)
	assert.True(t, f.Equal(back))

	_, err = EncodeImage(f, ".xyz")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadImage(filepath.Join(t.TempDir(), "none.png"))
	assert.Error(t, err)

	assert.ErrorIs(t, SaveImage(filepath.Join(t.TempDir(), "a.txt"), pattern(2, 2)), ErrUnsupportedFormat)
}

func TestSequenceAndDirSink(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewImageDirSink(dir, "frame_", "png")
	require.NoError(t, err)

	frames := []*frame.Frame{pattern(8, 8), pattern(8, 8), pattern(8, 8)}
	frames[1].Fill(1, 2, 3)
	for _, f := range frames {
		require.NoError(t, sink.Write(f))
	}
	assert.Equal(t, 3, sink.Count())

	paths, err := GlobImages(dir)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, "frame_000001.png", filepath.Base(paths[1]))

	seq := NewImageSequence(paths)
	for i, want := range frames {
		got, err := seq.Next(context.Background())
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "frame %d", i)
	}
	_, err = seq.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestOpenVideoMissing(t *testing.T) {
	_, err := OpenVideo(filepath.Join(t.TempDir(), "none.mp4"))
	assert.Error(t, err)
}
