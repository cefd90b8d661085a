package geom

import (
	"math"
	"strconv"
	"strings"
	"testing"
)

type point struct {
	x, y float64
}

// parsePath decodes the "M x y L x y ... Z" output back into points.
func parsePath(t *testing.T, d string) []point {
	t.Helper()

	if !strings.HasPrefix(d, "M ") {
		t.Fatalf("path does not start with a move-to: %q", d[:min(len(d), 20)])
	}
	if !strings.HasSuffix(d, "Z") {
		t.Fatalf("path does not end with a close: %q", d[max(0, len(d)-20):])
	}

	fields := strings.Fields(d)
	var pts []point
	i := 0
	for i < len(fields) {
		switch fields[i] {
		case "M", "L":
			if i+2 >= len(fields) {
				t.Fatalf("truncated command at field %d", i)
			}
			x, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				t.Fatalf("parse x %q: %v", fields[i+1], err)
			}
			y, err := strconv.ParseFloat(fields[i+2], 64)
			if err != nil {
				t.Fatalf("parse y %q: %v", fields[i+2], err)
			}
			pts = append(pts, point{x, y})
			i += 3
		case "Z":
			i++
		default:
			t.Fatalf("unexpected field %q at %d", fields[i], i)
		}
	}
	return pts
}

func TestGenerateDeterministic(t *testing.T) {
	p := Params{Width: 320, Height: 200, Exponent: 3.7}
	first := Generate(p)
	for n := 0; n < 5; n++ {
		if got := Generate(p); got != first {
			t.Fatal("repeated calls with equal inputs produced different output")
		}
	}
}

func TestCircleReduction(t *testing.T) {
	const size = 100.0
	pts := parsePath(t, Generate(Params{Width: size, Height: size, Exponent: 2}))

	if len(pts) != 4*SegmentsPerQuadrant {
		t.Fatalf("point count = %d, want %d", len(pts), 4*SegmentsPerQuadrant)
	}

	// With exponent 2 and equal axes every sample sits on a circle of
	// radius size/2 around the center, within formatting precision.
	const tol = 0.002
	for i, pt := range pts {
		r := math.Hypot(pt.x-size/2, pt.y-size/2)
		if math.Abs(r-size/2) > tol {
			t.Fatalf("point %d at (%g, %g): radius %g, want %g", i, pt.x, pt.y, r, size/2)
		}
	}
}

func TestStartsTopCenterClockwise(t *testing.T) {
	pts := parsePath(t, Generate(Params{Width: 200, Height: 100, Exponent: 4}))

	if pts[0].x != 100 || pts[0].y != 0 {
		t.Fatalf("start point = (%g, %g), want top-center (100, 0)", pts[0].x, pts[0].y)
	}
	// Clockwise in screen coordinates: the walk moves toward +x first.
	if pts[1].x <= pts[0].x {
		t.Fatalf("second point x = %g, want > %g for clockwise traversal", pts[1].x, pts[0].x)
	}
}

func TestDegenerateSizes(t *testing.T) {
	cases := []struct {
		name string
		p    Params
	}{
		{"zero width", Params{Width: 0, Height: 80, Exponent: 2}},
		{"zero height", Params{Width: 80, Height: 0, Exponent: 2}},
		{"zero both", Params{Width: 0, Height: 0, Exponent: 2}},
		{"negative width", Params{Width: -10, Height: 80, Exponent: 2}},
		{"nan width", Params{Width: math.NaN(), Height: 80, Exponent: 2}},
		{"inf height", Params{Width: 80, Height: math.Inf(1), Exponent: 2}},
		{"tiny exponent", Params{Width: 80, Height: 80, Exponent: 1e-12}},
		{"negative exponent", Params{Width: 80, Height: 80, Exponent: -3}},
		{"nan exponent", Params{Width: 80, Height: 80, Exponent: math.NaN()}},
		{"inf exponent", Params{Width: 80, Height: 80, Exponent: math.Inf(1)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pts := parsePath(t, Generate(tc.p))
			for i, pt := range pts {
				if math.IsNaN(pt.x) || math.IsInf(pt.x, 0) || math.IsNaN(pt.y) || math.IsInf(pt.y, 0) {
					t.Fatalf("point %d is not finite: (%g, %g)", i, pt.x, pt.y)
				}
			}
		})
	}
}

func TestExponentClamping(t *testing.T) {
	clamped := Generate(Params{Width: 80, Height: 60, Exponent: MinExponent})
	for _, e := range []float64{0, -1, MinExponent / 2, math.NaN()} {
		if got := Generate(Params{Width: 80, Height: 60, Exponent: e}); got != clamped {
			t.Errorf("exponent %g did not clamp to the minimum", e)
		}
	}

	capped := Generate(Params{Width: 80, Height: 60, Exponent: MaxExponent})
	if got := Generate(Params{Width: 80, Height: 60, Exponent: math.Inf(1)}); got != capped {
		t.Error("infinite exponent did not clamp to the maximum")
	}
}

func TestUniformCornerEquivalence(t *testing.T) {
	for _, e := range []float64{0.5, 2, 3.3, 8, 100} {
		c := CornerExponents{TopLeft: e, TopRight: e, BottomRight: e, BottomLeft: e}
		sym := Generate(Params{Width: 240, Height: 135, Exponent: e})
		asym := GeneratePerCorner(240, 135, c)
		if sym != asym {
			t.Errorf("exponent %g: per-corner output differs from symmetric output", e)
		}
	}
}

func TestSeamContinuity(t *testing.T) {
	const w, h = 200.0, 100.0
	c := CornerExponents{TopLeft: 5, TopRight: 2, BottomRight: 8, BottomLeft: 3}
	pts := parsePath(t, GeneratePerCorner(w, h, c))

	// Adjacent quadrants must hand off at the exact edge midpoints, with no
	// duplicate or offset point, no matter how different their exponents are.
	seams := []point{
		{w / 2, 0}, // top-center (start)
		{w, h / 2}, // right-center
		{w / 2, h}, // bottom-center
		{0, h / 2}, // left-center
	}
	for _, seam := range seams {
		count := 0
		for _, pt := range pts {
			if pt.x == seam.x && pt.y == seam.y {
				count++
			}
		}
		if count != 1 {
			t.Errorf("seam point (%g, %g) appears %d times, want exactly once", seam.x, seam.y, count)
		}
	}

	if len(pts) != 4*SegmentsPerQuadrant {
		t.Fatalf("point count = %d, want %d", len(pts), 4*SegmentsPerQuadrant)
	}
}

func TestHigherExponentSharpensCorners(t *testing.T) {
	const w, h = 100.0, 100.0
	round := parsePath(t, Generate(Params{Width: w, Height: h, Exponent: 2}))
	sharp := parsePath(t, Generate(Params{Width: w, Height: h, Exponent: 8}))

	// Compare the sample in the middle of the top-right quadrant: a larger
	// exponent pushes it toward the corner (w, 0).
	mid := SegmentsPerQuadrant / 2
	distRound := math.Hypot(round[mid].x-w, round[mid].y)
	distSharp := math.Hypot(sharp[mid].x-w, sharp[mid].y)
	if distSharp >= distRound {
		t.Fatalf("exponent 8 corner distance %g, want < exponent 2 distance %g", distSharp, distRound)
	}
}
