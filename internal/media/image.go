// Package media moves frames between files and the engine through gocv.
package media

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"reefview/internal/frame"
	"reefview/internal/opencv/safe"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// formatExt maps a file extension to the encoder gocv should use.
func formatExt(ext string) (gocv.FileExt, error) {
	switch strings.ToLower(ext) {
	case ".png", "png":
		return gocv.PNGFileExt, nil
	case ".jpg", ".jpeg", "jpg", "jpeg":
		return gocv.JPEGFileExt, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsImage reports whether path has an extension LoadImage understands.
func IsImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}

func LoadImage(path string) (*frame.Frame, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to read image %s", path)
	}
	return adoptFrame(mat)
}

// DecodeImage decodes an encoded image held in memory.
func DecodeImage(data []byte) (*frame.Frame, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return adoptFrame(mat)
}

func adoptFrame(mat gocv.Mat) (*frame.Frame, error) {
	sm, err := safe.Adopt(mat)
	if err != nil {
		return nil, err
	}
	defer sm.Close()
	return sm.ToFrame()
}

// SaveImage writes f with the encoder chosen by path's extension.
func SaveImage(path string, f *frame.Frame) error {
	if !IsImage(path) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	sm, err := safe.FromFrame(f)
	if err != nil {
		return err
	}
	defer sm.Close()

	if !gocv.IMWrite(path, sm.GetMat()) {
		return fmt.Errorf("failed to write image %s", path)
	}
	return nil
}

// EncodeImage encodes f in memory; format is an extension such as ".png".
func EncodeImage(f *frame.Frame, format string) ([]byte, error) {
	ext, err := formatExt(format)
	if err != nil {
		return nil, err
	}

	sm, err := safe.FromFrame(f)
	if err != nil {
		return nil, err
	}
	defer sm.Close()

	buf, err := gocv.IMEncode(ext, sm.GetMat())
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}
