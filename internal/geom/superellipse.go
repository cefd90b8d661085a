package geom

import (
	"math"
	"strconv"
	"strings"
)

// Sampling and clamping constants.
const (
	// SegmentsPerQuadrant is the number of line segments used to approximate
	// each quarter of the outline. 64 segments per quadrant renders smoothly
	// at typical UI sizes.
	SegmentsPerQuadrant = 64

	// MinExponent is the smallest curvature exponent the generator accepts.
	// Exponents at or below zero blow up the boundary equation, so smaller
	// (and non-finite) values are clamped up to this silently.
	MinExponent = 0.01

	// MaxExponent caps the curvature exponent. Beyond it the outline is
	// indistinguishable from a rectangle at UI sizes.
	MaxExponent = 1000

	// coordPrecision is the number of decimal places in emitted coordinates.
	coordPrecision = 3
)

// Params describes a symmetric superellipse outline: a bounding box and a
// single curvature exponent applied to all four corners.
type Params struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Exponent float64 `json:"exponent"`
}

// CornerExponents carries one curvature exponent per geometric corner.
type CornerExponents struct {
	TopLeft     float64 `json:"top_left"`
	TopRight    float64 `json:"top_right"`
	BottomRight float64 `json:"bottom_right"`
	BottomLeft  float64 `json:"bottom_left"`
}

// Uniform reports whether all four corner exponents are equal.
func (c CornerExponents) Uniform() bool {
	return c.TopLeft == c.TopRight && c.TopRight == c.BottomRight && c.BottomRight == c.BottomLeft
}

// Generate produces the closed outline of the superellipse satisfying
// |2x/w|^n + |2y/h|^n = 1, translated so its bounding box spans
// [0,w] x [0,h] in screen coordinates (y grows downward). The path starts
// at the top-center point and is traversed clockwise. Equal inputs yield
// byte-identical output.
func Generate(p Params) string {
	n := clampExponent(p.Exponent)
	return outline(p.Width, p.Height, [4]float64{n, n, n, n})
}

// GeneratePerCorner produces a closed outline where each geometric quadrant
// uses its own corner's exponent. The four partial contours meet exactly at
// the edge midpoints, so adjacent corners with sharply different exponents
// stitch without a seam. With four equal exponents the output is
// byte-identical to Generate.
func GeneratePerCorner(width, height float64, c CornerExponents) string {
	if c.Uniform() {
		return Generate(Params{Width: width, Height: height, Exponent: c.TopLeft})
	}
	return outline(width, height, [4]float64{
		clampExponent(c.TopRight),
		clampExponent(c.BottomRight),
		clampExponent(c.BottomLeft),
		clampExponent(c.TopLeft),
	})
}

// outline samples the boundary quadrant by quadrant. exps holds the clamped
// exponents in traversal order: top-right, bottom-right, bottom-left,
// top-left, matching a clockwise walk that starts at the top-center point.
func outline(width, height float64, exps [4]float64) string {
	w := clampDimension(width)
	h := clampDimension(height)
	rx, ry := w/2, h/2
	cx, cy := rx, ry

	var b strings.Builder
	b.Grow((4*SegmentsPerQuadrant + 2) * 18)

	x, y := quadrantPoint(0, 0, cx, cy, rx, ry, 2/exps[0])
	appendCommand(&b, 'M', x, y)

	for q, n := range exps {
		k := 2 / n
		last := SegmentsPerQuadrant
		if q == 3 {
			// The final sample of the last quadrant is the starting point
			// again; Z closes the contour back to it.
			last = SegmentsPerQuadrant - 1
		}
		for i := 1; i <= last; i++ {
			x, y := quadrantPoint(q, i, cx, cy, rx, ry, k)
			appendCommand(&b, 'L', x, y)
		}
	}

	b.WriteByte('Z')
	return b.String()
}

// quadrantPoint returns the i-th of SegmentsPerQuadrant+1 samples along
// quadrant q. The endpoint samples (i == 0 and i == SegmentsPerQuadrant) are
// evaluated exactly at the edge midpoints, so adjacent quadrants share their
// seam coordinates regardless of exponent.
func quadrantPoint(q, i int, cx, cy, rx, ry, k float64) (x, y float64) {
	var s, c float64
	switch i {
	case 0:
		s, c = 0, 1
	case SegmentsPerQuadrant:
		s, c = 1, 0
	default:
		phi := float64(i) / SegmentsPerQuadrant * (math.Pi / 2)
		s, c = math.Sin(phi), math.Cos(phi)
	}

	// Parametric superellipse: the boundary point at angle phi scales the
	// half-axes by sin(phi)^(2/n) and cos(phi)^(2/n).
	ps := math.Pow(s, k)
	pc := math.Pow(c, k)

	switch q {
	case 0: // top-center toward right-center, around the top-right corner
		return cx + rx*ps, cy - ry*pc
	case 1: // right-center toward bottom-center, around the bottom-right corner
		return cx + rx*pc, cy + ry*ps
	case 2: // bottom-center toward left-center, around the bottom-left corner
		return cx - rx*ps, cy + ry*pc
	default: // left-center toward top-center, around the top-left corner
		return cx - rx*pc, cy - ry*ps
	}
}

func appendCommand(b *strings.Builder, cmd byte, x, y float64) {
	b.WriteByte(cmd)
	b.WriteByte(' ')
	b.WriteString(formatCoord(x))
	b.WriteByte(' ')
	b.WriteString(formatCoord(y))
	b.WriteByte(' ')
}

// formatCoord renders a coordinate with fixed precision. Negative zero is
// normalized so equal geometry cannot format differently.
func formatCoord(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', coordPrecision, 64)
}

// clampDimension normalizes a width or height: negative and non-finite
// values collapse to zero, producing a valid zero-area path.
func clampDimension(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// clampExponent forces the curvature exponent into [MinExponent, MaxExponent].
// NaN maps to the minimum.
func clampExponent(n float64) float64 {
	if math.IsNaN(n) || n < MinExponent {
		return MinExponent
	}
	if n > MaxExponent {
		return MaxExponent
	}
	return n
}
