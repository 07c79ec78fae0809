package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"reefview/internal/frame"
)

// ImageSequence reads still images one after another as a frame stream.
type ImageSequence struct {
	paths []string
	next  int
}

func NewImageSequence(paths []string) *ImageSequence {
	return &ImageSequence{paths: append([]string(nil), paths...)}
}

// GlobImages lists the images in dir in lexical order.
func GlobImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && IsImage(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *ImageSequence) Next(ctx context.Context) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.paths) {
		return nil, io.EOF
	}
	path := s.paths[s.next]
	s.next++
	return LoadImage(path)
}

// Path returns the source path of the i-th frame.
func (s *ImageSequence) Path(i int) string {
	return s.paths[i]
}

// ImageDirSink writes each frame as dir/<prefix><index>.<ext>.
type ImageDirSink struct {
	dir    string
	prefix string
	ext    string
	count  int
}

func NewImageDirSink(dir, prefix, ext string) (*ImageDirSink, error) {
	if _, err := formatExt(ext); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if ext[0] != '.' {
		ext = "." + ext
	}
	return &ImageDirSink{dir: dir, prefix: prefix, ext: ext}, nil
}

func (s *ImageDirSink) Write(f *frame.Frame) error {
	path := filepath.Join(s.dir, fmt.Sprintf("%s%06d%s", s.prefix, s.count, s.ext))
	if err := SaveImage(path, f); err != nil {
		return err
	}
	s.count++
	return nil
}

func (s *ImageDirSink) Count() int {
	return s.count
}
