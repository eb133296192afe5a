// Package geometry holds the 2D primitives shared by the curve fitter, the
// control-point editor and the region matcher.
//
// Two coordinate spaces are in play. Frame space is the pixel grid reported
// by the face detector for a camera frame. View space is frame space scaled
// around the frame centre for display and hit-testing. FramePoint and
// ViewPoint keep the two apart at compile time; Transform is the only bridge.
package geometry

import (
	"math"

	gocurve "honnef.co/go/curve"
)

// Point is a space-agnostic 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FramePoint is a coordinate in detector/camera pixel space.
type FramePoint Point

// ViewPoint is a coordinate in scaled render space.
type ViewPoint Point

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Mul scales both coordinates by s.
func (p Point) Mul(s float64) Point { return Point{X: p.X * s, Y: p.Y * s} }

// IsFinite reports whether neither coordinate is NaN or infinite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Distance returns the Euclidean distance between p0 and p1.
func Distance(p0, p1 Point) float64 {
	return p1.curvePt().Sub(p0.curvePt()).Hypot()
}

func (p Point) curvePt() gocurve.Point { return gocurve.Pt(p.X, p.Y) }

func fromCurvePt(q gocurve.Point) Point { return Point{X: q.X, Y: q.Y} }

// Points strips the space tag from frame points.
func Points(fps []FramePoint) []Point {
	out := make([]Point, len(fps))
	for i, p := range fps {
		out[i] = Point(p)
	}
	return out
}

// ViewPoints strips the space tag from view points.
func ViewPoints(vps []ViewPoint) []Point {
	out := make([]Point, len(vps))
	for i, p := range vps {
		out[i] = Point(p)
	}
	return out
}

// FramePoints tags plain points as frame space. Use only where the caller
// already knows the points came from the detector.
func FramePoints(ps []Point) []FramePoint {
	out := make([]FramePoint, len(ps))
	for i, p := range ps {
		out[i] = FramePoint(p)
	}
	return out
}

// Translate shifts every point by (dx, dy).
func Translate(points []FramePoint, dx, dy float64) []FramePoint {
	out := make([]FramePoint, len(points))
	for i, p := range points {
		out[i] = FramePoint{X: p.X + dx, Y: p.Y + dy}
	}
	return out
}

// Mirror flips points horizontally inside a frame of the given width.
// Front cameras on some platforms deliver mirrored frames.
func Mirror(points []FramePoint, frameWidth float64) []FramePoint {
	out := make([]FramePoint, len(points))
	for i, p := range points {
		out[i] = FramePoint{X: frameWidth - p.X, Y: p.Y}
	}
	return out
}
