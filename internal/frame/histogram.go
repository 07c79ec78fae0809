package frame

// Histogram holds per-channel 256-bin counts plus the mean of the three
// channels per bin for charting.
type Histogram struct {
	B       [256]int
	G       [256]int
	R       [256]int
	Density [256]float64
}

func ComputeHistogram(f *Frame) Histogram {
	var h Histogram
	for i := 0; i+2 < len(f.Pix); i += 3 {
		h.B[f.Pix[i]]++
		h.G[f.Pix[i+1]]++
		h.R[f.Pix[i+2]]++
	}
	for bin := 0; bin < 256; bin++ {
		h.Density[bin] = float64(h.B[bin]+h.G[bin]+h.R[bin]) / 3
	}
	return h
}

// Channel returns the counts of channel c (Blue, Green or Red).
func (h *Histogram) Channel(c int) [256]int {
	switch c {
	case Blue:
		return h.B
	case Green:
		return h.G
	default:
		return h.R
	}
}
