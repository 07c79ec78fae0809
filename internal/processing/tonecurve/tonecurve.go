// Package tonecurve turns five movable control points into a 256-entry
// lookup table.
package tonecurve

import "fmt"

// NumPoints is the fixed number of control points on a curve.
const NumPoints = 5

// minGap keeps interior x coordinates strictly inside their neighbours.
const minGap = 1.0

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Curve is an ordered set of control points. Points 0 and 4 are pinned to
// x=0 and x=255; only their y may move.
type Curve [NumPoints]Point

// Identity returns the curve mapping every level to itself.
func Identity() Curve {
	return Curve{{0, 0}, {64, 64}, {128, 128}, {192, 192}, {255, 255}}
}

// Normalize returns a copy of c with endpoints pinned, y clamped to [0,255]
// and interior x strictly increasing, scanning left to right.
func (c Curve) Normalize() Curve {
	c[0].X = 0
	c[NumPoints-1].X = 255
	for i := range c {
		c[i].Y = clamp(c[i].Y, 0, 255)
	}
	last := NumPoints - 1
	for i := 1; i < last; i++ {
		lo := c[i-1].X + minGap
		hi := 255 - minGap*float64(last-i)
		// A right neighbour that is itself out of order gets pushed on the
		// next iteration, so it only bounds x when it leaves room.
		if right := c[i+1].X - minGap; right >= lo && right < hi {
			hi = right
		}
		c[i].X = clamp(c[i].X, lo, hi)
	}
	return c
}

// Move applies an edit of point i under the curve constraints: endpoints keep
// their x, interior points stay between their neighbours.
func (c *Curve) Move(i int, x, y float64) error {
	if i < 0 || i >= NumPoints {
		return fmt.Errorf("control point %d out of range [0,%d)", i, NumPoints)
	}
	switch i {
	case 0, NumPoints - 1:
		c[i].Y = clamp(y, 0, 255)
	default:
		c[i].X = clampBetween(x, c[i-1].X, c[i+1].X)
		c[i].Y = clamp(y, 0, 255)
	}
	return nil
}

// BuildLUT interpolates the normalised curve linearly between control points
// and evaluates it at every level 0..255.
func BuildLUT(c Curve) [256]uint8 {
	c = c.Normalize()

	var lut [256]uint8
	seg := 0
	for v := 0; v < 256; v++ {
		x := float64(v)
		for seg < NumPoints-2 && x > c[seg+1].X {
			seg++
		}
		p0, p1 := c[seg], c[seg+1]
		y := p0.Y
		if dx := p1.X - p0.X; dx > 0 {
			y = p0.Y + (x-p0.X)*(p1.Y-p0.Y)/dx
		}
		y = clamp(y, 0, 255)
		lut[v] = uint8(y + 0.5)
	}
	return lut
}

// LUT is BuildLUT returned as a slice, the form the pipeline consumes.
func (c Curve) LUT() []uint8 {
	lut := BuildLUT(c)
	return lut[:]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampBetween(x, left, right float64) float64 {
	lo, hi := left+minGap, right-minGap
	if lo > hi {
		return (left + right) / 2
	}
	return clamp(x, lo, hi)
}
