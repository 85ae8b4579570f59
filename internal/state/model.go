package state

import (
	"image/color"

	"LocalBoard/internal/geom"
	"LocalBoard/internal/smooth"
)

// Line is one captured stroke. Points is what gets drawn; Raw keeps the
// samples as captured so the path can be recomputed when the smoothing
// settings change.
type Line struct {
	ID      string
	OwnerID string

	Points []geom.Point
	Raw    []geom.Point

	EnableSmoothedPath bool
	Granularity        int

	LineWidth float32
	LineColor color.Color
}

// NewLine starts a line at seed.
func NewLine(owner string, seed geom.Point, width float32, c color.Color) *Line {
	return &Line{
		ID:        NewLineID(),
		OwnerID:   owner,
		Points:    []geom.Point{seed},
		LineWidth: width,
		LineColor: c,
	}
}

// Append adds a sample to the end of the line.
func (l *Line) Append(p geom.Point) {
	l.Points = append(l.Points, p)
}

// RawPoints returns the captured samples, falling back to Points for lines
// that were never finalized.
func (l *Line) RawPoints() []geom.Point {
	if l.Raw != nil {
		return l.Raw
	}
	return l.Points
}

// Len is the number of drawable points.
func (l *Line) Len() int {
	return len(l.Points)
}

// path computes the drawable points from the raw samples under the line's
// current smoothing settings.
func (l *Line) path() []geom.Point {
	raw := l.RawPoints()
	if l.EnableSmoothedPath {
		return smooth.CatmullRom(raw, l.Granularity)
	}
	return geom.Clone(raw)
}
