package filters

import "fmt"

// integral is a summed-area table of a single-channel float map, one row and
// column larger than the source.
type integral struct {
	sums []float64
	w    int
}

func newIntegral(w, h int, fn func(i int) float64) *integral {
	stride := w + 1
	ii := &integral{sums: make([]float64, stride*(h+1)), w: w}
	for y := 1; y <= h; y++ {
		rowSum := 0.0
		for x := 1; x <= w; x++ {
			rowSum += fn((y-1)*w + x - 1)
			ii.sums[y*stride+x] = ii.sums[(y-1)*stride+x] + rowSum
		}
	}
	return ii
}

func (ii *integral) sum(y1, x1, y2, x2 int) float64 {
	stride := ii.w + 1
	return ii.sums[(y2+1)*stride+x2+1] - ii.sums[y1*stride+x2+1] - ii.sums[(y2+1)*stride+x1] + ii.sums[y1*stride+x1]
}

// boxMean returns, for every pixel, the mean of fn over the (2r+1)² window
// clipped to the image, using the table built from fn.
func boxMean(w, h, r int, fn func(i int) float64) []float64 {
	ii := newIntegral(w, h, fn)
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		y1 := max(0, y-r)
		y2 := min(h-1, y+r)
		for x := 0; x < w; x++ {
			x1 := max(0, x-r)
			x2 := min(w-1, x+r)
			area := float64((y2 - y1 + 1) * (x2 - x1 + 1))
			out[y*w+x] = ii.sum(y1, x1, y2, x2) / area
		}
	}
	return out
}

// GuidedFilter smooths src using guide as the structure reference: a local
// linear model q = a·I + b is fitted in each (2r+1)² window with
// a = cov(I,p)/(var(I)+eps), b = mean(p) - a·mean(I), and the per-window
// coefficients are averaged before evaluation. Cost is O(w·h) regardless of r.
func GuidedFilter(guide, src []float32, w, h, r int, eps float64) ([]float32, error) {
	n := w * h
	if w <= 0 || h <= 0 || len(guide) != n || len(src) != n {
		return nil, fmt.Errorf("guided filter needs equal %dx%d inputs, got guide=%d src=%d", w, h, len(guide), len(src))
	}
	if r < 1 {
		r = 1
	}

	meanI := boxMean(w, h, r, func(i int) float64 { return float64(guide[i]) })
	meanP := boxMean(w, h, r, func(i int) float64 { return float64(src[i]) })
	meanII := boxMean(w, h, r, func(i int) float64 { g := float64(guide[i]); return g * g })
	meanIP := boxMean(w, h, r, func(i int) float64 { return float64(guide[i]) * float64(src[i]) })

	a := make([]float64, n)
	b := make([]float64, n)
	for i := 0; i < n; i++ {
		varI := meanII[i] - meanI[i]*meanI[i]
		covIP := meanIP[i] - meanI[i]*meanP[i]
		a[i] = covIP / (varI + eps)
		b[i] = meanP[i] - a[i]*meanI[i]
	}

	meanA := boxMean(w, h, r, func(i int) float64 { return a[i] })
	meanB := boxMean(w, h, r, func(i int) float64 { return b[i] })

	q := make([]float32, n)
	for i := 0; i < n; i++ {
		q[i] = float32(meanA[i]*float64(guide[i]) + meanB[i])
	}
	return q, nil
}
