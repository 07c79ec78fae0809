package safe

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"

	"reefview/internal/frame"
)

// Mat owns a native gocv.Mat and releases it exactly once, either through
// Close or, as a last resort, from a finalizer.
type Mat struct {
	mat     gocv.Mat
	isValid int32
	mu      sync.RWMutex
	id      uint64
}

var nextMatID uint64

func NewMat(rows, cols int, matType gocv.MatType) (*Mat, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", cols, rows)
	}

	mat := gocv.NewMatWithSize(rows, cols, matType)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to create Mat with size %dx%d", cols, rows)
	}

	return wrap(mat), nil
}

// NewMatFromMat clones srcMat; the caller keeps ownership of srcMat.
func NewMatFromMat(srcMat gocv.Mat) (*Mat, error) {
	if srcMat.Empty() {
		return nil, fmt.Errorf("source Mat is empty")
	}

	clonedMat := srcMat.Clone()
	if clonedMat.Empty() {
		clonedMat.Close()
		return nil, fmt.Errorf("failed to clone Mat")
	}

	return wrap(clonedMat), nil
}

// Adopt takes ownership of m without copying it.
func Adopt(m gocv.Mat) (*Mat, error) {
	if m.Empty() {
		m.Close()
		return nil, fmt.Errorf("adopted Mat is empty")
	}
	return wrap(m), nil
}

func wrap(m gocv.Mat) *Mat {
	sm := &Mat{
		mat:     m,
		isValid: 1,
		id:      atomic.AddUint64(&nextMatID, 1),
	}
	runtime.SetFinalizer(sm, (*Mat).finalize)
	return sm
}

// FromFrame copies a BGR frame into a CV_8UC3 Mat.
func FromFrame(f *frame.Frame) (*Mat, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return fromBytes(f.Height, f.Width, gocv.MatTypeCV8UC3, f.Pix)
}

// FromGray copies a single-channel map into a CV_8UC1 Mat.
func FromGray(g *frame.Gray) (*Mat, error) {
	if g == nil || g.Width <= 0 || g.Height <= 0 || len(g.Pix) != g.Width*g.Height {
		return nil, fmt.Errorf("%w: invalid gray map", frame.ErrEmptyFrame)
	}
	return fromBytes(g.Height, g.Width, gocv.MatTypeCV8UC1, g.Pix)
}

// FromFloat32 copies a single-channel float map into a CV_32FC1 Mat.
func FromFloat32(width, height int, pix []float32) (*Mat, error) {
	if width <= 0 || height <= 0 || len(pix) != width*height {
		return nil, fmt.Errorf("%w: invalid float map", frame.ErrEmptyFrame)
	}

	sm, err := NewMat(height, width, gocv.MatTypeCV32F)
	if err != nil {
		return nil, err
	}
	data, err := sm.mat.DataPtrFloat32()
	if err != nil {
		sm.Close()
		return nil, fmt.Errorf("failed to access float Mat data: %w", err)
	}
	copy(data, pix)
	return sm, nil
}

func fromBytes(rows, cols int, mt gocv.MatType, pix []uint8) (*Mat, error) {
	// NewMatFromBytes aliases the Go slice, so detach before returning.
	view, err := gocv.NewMatFromBytes(rows, cols, mt, pix)
	if err != nil {
		return nil, fmt.Errorf("failed to create Mat from bytes: %w", err)
	}
	defer view.Close()
	runtime.KeepAlive(pix)

	return NewMatFromMat(view)
}

// ToFrame copies a CV_8UC3 Mat into a new frame.
func (sm *Mat) ToFrame() (*frame.Frame, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if err := sm.check(gocv.MatTypeCV8UC3); err != nil {
		return nil, err
	}
	return &frame.Frame{
		Width:  sm.mat.Cols(),
		Height: sm.mat.Rows(),
		Pix:    sm.mat.ToBytes(),
	}, nil
}

// ToGray copies a CV_8UC1 Mat into a new gray map.
func (sm *Mat) ToGray() (*frame.Gray, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if err := sm.check(gocv.MatTypeCV8UC1); err != nil {
		return nil, err
	}
	return &frame.Gray{
		Width:  sm.mat.Cols(),
		Height: sm.mat.Rows(),
		Pix:    sm.mat.ToBytes(),
	}, nil
}

// ToFloat32 copies a CV_32FC1 Mat into a new slice, row-major.
func (sm *Mat) ToFloat32() ([]float32, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if err := sm.check(gocv.MatTypeCV32F); err != nil {
		return nil, err
	}
	data, err := sm.mat.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to access float Mat data: %w", err)
	}
	return append([]float32(nil), data...), nil
}

func (sm *Mat) check(want gocv.MatType) error {
	if !sm.IsValid() || sm.mat.Empty() {
		return fmt.Errorf("Mat is invalid or empty")
	}
	if sm.mat.Type() != want {
		return fmt.Errorf("unexpected Mat type %d, want %d", int(sm.mat.Type()), int(want))
	}
	if !sm.mat.IsContinuous() {
		return fmt.Errorf("Mat is not continuous")
	}
	return nil
}

func (sm *Mat) IsValid() bool {
	return atomic.LoadInt32(&sm.isValid) == 1
}

func (sm *Mat) Empty() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return true
	}

	return sm.mat.Empty()
}

func (sm *Mat) Rows() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}

	return sm.mat.Rows()
}

func (sm *Mat) Cols() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}

	return sm.mat.Cols()
}

func (sm *Mat) Channels() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}

	return sm.mat.Channels()
}

func (sm *Mat) Type() gocv.MatType {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return gocv.MatTypeCV8UC1
	}

	return sm.mat.Type()
}

func (sm *Mat) Clone() (*Mat, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return nil, fmt.Errorf("cannot clone invalid Mat")
	}

	return NewMatFromMat(sm.mat)
}

// GetMat exposes the native Mat for gocv calls. It stays owned by sm.
func (sm *Mat) GetMat() gocv.Mat {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.mat
}

func (sm *Mat) ID() uint64 {
	return sm.id
}

func (sm *Mat) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if atomic.CompareAndSwapInt32(&sm.isValid, 1, 0) {
		if !sm.mat.Empty() {
			sm.mat.Close()
		}
		runtime.SetFinalizer(sm, nil)
	}
}

func (sm *Mat) finalize() {
	if atomic.LoadInt32(&sm.isValid) == 1 {
		sm.Close()
	}
}
