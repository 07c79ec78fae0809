package frame

// FloatFrame is a BGR frame with samples scaled to [0,1].
type FloatFrame struct {
	Width  int
	Height int
	Pix    []float32
}

func NewFloat(width, height int) *FloatFrame {
	return &FloatFrame{Width: width, Height: height, Pix: make([]float32, width*height*3)}
}

func BGR2Float(f *Frame) *FloatFrame {
	ff := NewFloat(f.Width, f.Height)
	for i, v := range f.Pix {
		ff.Pix[i] = float32(v) / 255
	}
	return ff
}

// Float2BGR scales back to 8 bits, rounding and clipping out-of-range samples.
func Float2BGR(ff *FloatFrame) *Frame {
	f := New(ff.Width, ff.Height)
	for i, v := range ff.Pix {
		f.Pix[i] = Clamp8(float64(v) * 255)
	}
	return f
}

// Luma returns the BT.601 grayscale of ff, the weighting OpenCV uses for BGR2GRAY.
func (ff *FloatFrame) Luma() []float32 {
	out := make([]float32, ff.Width*ff.Height)
	for p := range out {
		i := p * 3
		out[p] = 0.114*ff.Pix[i] + 0.587*ff.Pix[i+1] + 0.299*ff.Pix[i+2]
	}
	return out
}
