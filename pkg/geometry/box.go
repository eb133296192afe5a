package geometry

import (
	"errors"

	gocurve "honnef.co/go/curve"
)

// ErrEmptyInput is returned by operations that need at least one point.
var ErrEmptyInput = errors.New("geometry: empty point set")

// Box is an axis-aligned bounding box.
type Box struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

// Width returns the horizontal extent.
func (b Box) Width() float64 { return b.XMax - b.XMin }

// Height returns the vertical extent.
func (b Box) Height() float64 { return b.YMax - b.YMin }

// Center returns the centre of the box.
func (b Box) Center() Point { return fromCurvePt(b.Rect().Center()) }

// Rect returns the box as a curve rectangle.
func (b Box) Rect() gocurve.Rect {
	return gocurve.Rect{X0: b.XMin, Y0: b.YMin, X1: b.XMax, Y1: b.YMax}
}

func boxFromRect(r gocurve.Rect) Box {
	return Box{XMin: r.X0, XMax: r.X1, YMin: r.Y0, YMax: r.Y1}
}

// Contains reports whether p lies inside or on the box.
func (b Box) Contains(p Point) bool {
	return p.X >= b.XMin && p.X <= b.XMax && p.Y >= b.YMin && p.Y <= b.YMax
}

// BoundingBox returns the smallest box containing every point.
func BoundingBox(points []Point) (Box, error) {
	if len(points) == 0 {
		return Box{}, ErrEmptyInput
	}
	first := points[0].curvePt()
	r := gocurve.NewRectFromPoints(first, first)
	for _, p := range points[1:] {
		r = r.UnionPoint(p.curvePt())
	}
	return boxFromRect(r), nil
}
