// Package smooth resamples captured strokes along a Catmull-Rom spline.
package smooth

import (
	"errors"
	"fmt"
	"math"

	"LocalBoard/internal/geom"
)

// ErrInvalidGranularity is returned by ValidateGranularity for values below 1.
var ErrInvalidGranularity = errors.New("smoothing granularity must be at least 1")

// ValidateGranularity reports whether g can be used as a smoothing
// granularity. Configuration loading calls this so a bad value is rejected
// before any stroke is drawn.
func ValidateGranularity(g int) error {
	if g < 1 {
		return fmt.Errorf("%w (got %d)", ErrInvalidGranularity, g)
	}
	return nil
}

// MinPoints is the smallest input CatmullRom will resample for granularity g.
// It saturates at math.MaxInt.
func MinPoints(g int) int {
	if g > math.MaxInt-2 {
		return math.MaxInt
	}
	return g + 2
}

// passThrough reports whether n points are returned unchanged at
// granularity g. Written as n-2 < g so huge granularities cannot wrap.
func passThrough(n, g int) bool {
	return g < 1 || n-2 < g
}

// OutputLen is the length CatmullRom returns for n input points. It
// saturates at math.MaxInt.
func OutputLen(n, g int) int {
	if passThrough(n, g) {
		return n
	}
	if g > (math.MaxInt-2)/(n-1) {
		return math.MaxInt
	}
	return 2 + (n-1)*g
}

// CatmullRom returns points resampled along a Catmull-Rom spline, with
// granularity-1 interpolated samples inserted between each pair of input
// points. The first and last points are duplicated as phantom control points
// so the curve passes through both ends.
//
// Inputs shorter than MinPoints(granularity), and any granularity below 1,
// come back as an unmodified copy. The input slice is never written to.
func CatmullRom(points []geom.Point, granularity int) []geom.Point {
	if passThrough(len(points), granularity) {
		return geom.Clone(points)
	}

	ext := make([]geom.Point, 0, len(points)+2)
	ext = append(ext, points[0])
	ext = append(ext, points...)
	ext = append(ext, points[len(points)-1])

	out := make([]geom.Point, 0, OutputLen(len(points), granularity))
	out = append(out, ext[0])

	g := float64(granularity)
	for i := 1; i < len(ext)-2; i++ {
		p0, p1, p2, p3 := ext[i-1], ext[i], ext[i+1], ext[i+2]
		for j := 1; j < granularity; j++ {
			out = append(out, segmentPoint(p0, p1, p2, p3, float64(j)/g))
		}
		out = append(out, p2)
	}

	return append(out, ext[len(ext)-1])
}

// segmentPoint evaluates the uniform Catmull-Rom basis between p1 and p2.
func segmentPoint(p0, p1, p2, p3 geom.Point, t float64) geom.Point {
	tt := t * t
	ttt := t * tt
	return geom.Point{
		X: basis(p0.X, p1.X, p2.X, p3.X, t, tt, ttt),
		Y: basis(p0.Y, p1.Y, p2.Y, p3.Y, t, tt, ttt),
	}
}

func basis(p0, p1, p2, p3, t, tt, ttt float64) float64 {
	return 0.5 * (2*p1 +
		(p2-p0)*t +
		(2*p0-5*p1+4*p2-p3)*tt +
		(3*p1-p0-3*p2+p3)*ttt)
}
