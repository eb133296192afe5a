// Package curve fits closed Catmull-Rom splines through ordered control
// points and flattens them to dense polylines.
package curve

import (
	"errors"
	"fmt"
	"math"

	"github.com/menta2k/smile-contour/pkg/geometry"
)

var (
	// ErrDegenerateGeometry is returned when coincident control points would
	// produce non-finite tangents.
	ErrDegenerateGeometry = errors.New("curve: degenerate geometry")
	// ErrInvalidOptions is returned by Options.Validate.
	ErrInvalidOptions = errors.New("curve: invalid options")
)

const (
	// duplicateDistance is the spacing below which consecutive control points
	// are treated as one.
	duplicateDistance = 1.0
	// minSamples is the lower bound on samples emitted per segment.
	minSamples = 10
	// sampleSpacing is the target distance between samples on long segments.
	sampleSpacing = 10.0
	knotEpsilon   = 1e-9
)

// Curve is the result of a fit: the sampled closed polyline and the control
// points it was built from.
type Curve struct {
	Points        []geometry.Point `json:"points"`
	ControlPoints []geometry.Point `json:"control_points"`
}

// emptyCurve has non-nil slices so it encodes as [] rather than null.
func emptyCurve() Curve {
	return Curve{Points: []geometry.Point{}, ControlPoints: []geometry.Point{}}
}

// Empty reports whether the fit produced no samples.
func (c Curve) Empty() bool { return len(c.Points) == 0 }

// Options parameterises the spline.
//
// Alpha selects the knot parameterisation: 0 uniform, 0.5 centripetal,
// 1 chordal. Tension in [0,1] damps the tangents; 1 collapses the curve to
// the control polygon.
type Options struct {
	Alpha   float64 `json:"alpha"`
	Tension float64 `json:"tension"`
}

// DefaultOptions returns a centripetal spline with no tension.
func DefaultOptions() Options {
	return Options{Alpha: 0.5, Tension: 0}
}

// Validate checks both parameters lie in [0,1].
func (o Options) Validate() error {
	if o.Alpha < 0 || o.Alpha > 1 || math.IsNaN(o.Alpha) {
		return fmt.Errorf("%w: alpha %g outside [0,1]", ErrInvalidOptions, o.Alpha)
	}
	if o.Tension < 0 || o.Tension > 1 || math.IsNaN(o.Tension) {
		return fmt.Errorf("%w: tension %g outside [0,1]", ErrInvalidOptions, o.Tension)
	}
	return nil
}

// Fit is ClosedCatmullRom with the receiver's parameters.
func (o Options) Fit(points []geometry.Point) (Curve, error) {
	return ClosedCatmullRom(points, o.Alpha, o.Tension)
}

// SegmentSamples returns how many samples a segment of the given length
// contributes to the polyline.
func SegmentSamples(length float64) int {
	n := int(math.Ceil(length / sampleSpacing))
	if n < minSamples {
		return minSamples
	}
	return n
}

// ClosedCatmullRom fits a closed spline through points and samples it.
//
// Near-duplicate points are dropped before fitting. Fewer than two remaining
// points give an empty Curve and no error. If the remaining points still
// yield a zero-length knot interval the fit fails with ErrDegenerateGeometry
// and an empty Curve. The function is pure; identical inputs give identical
// outputs.
func ClosedCatmullRom(points []geometry.Point, alpha, tension float64) (Curve, error) {
	ps := clean(points)
	n := len(ps)
	if n < 2 {
		return emptyCurve(), nil
	}

	// Wrap: last point in front, first two at the back.
	wrapped := make([]geometry.Point, 0, n+3)
	wrapped = append(wrapped, ps[n-1])
	wrapped = append(wrapped, ps...)
	wrapped = append(wrapped, ps[0], ps[1])

	out := make([]geometry.Point, 0, n*minSamples)
	for i := 1; i < len(wrapped)-2; i++ {
		p0, p1, p2, p3 := wrapped[i-1], wrapped[i], wrapped[i+1], wrapped[i+2]
		seg, err := segment(p0, p1, p2, p3, alpha, tension)
		if err != nil {
			return emptyCurve(), fmt.Errorf("segment %d: %w", i-1, err)
		}
		out = append(out, seg...)
	}

	controls := make([]geometry.Point, len(points))
	copy(controls, points)
	return Curve{Points: out, ControlPoints: controls}, nil
}

// clean removes points closer than duplicateDistance to their predecessor,
// scanning from the end, then drops a closing-seam duplicate of the first
// point.
func clean(points []geometry.Point) []geometry.Point {
	ps := make([]geometry.Point, len(points))
	copy(ps, points)
	for i := len(ps) - 1; i > 0; i-- {
		if geometry.Distance(ps[i], ps[i-1]) < duplicateDistance {
			ps = append(ps[:i], ps[i+1:]...)
		}
	}
	if len(ps) > 0 && geometry.Distance(ps[0], ps[len(ps)-1]) < duplicateDistance {
		ps = ps[:len(ps)-1]
	}
	return ps
}

// segment samples the Hermite form of the Catmull-Rom span between p1 and p2.
func segment(p0, p1, p2, p3 geometry.Point, alpha, tension float64) ([]geometry.Point, error) {
	t0 := 0.0
	t1 := t0 + math.Pow(geometry.Distance(p0, p1), alpha)
	t2 := t1 + math.Pow(geometry.Distance(p1, p2), alpha)
	t3 := t2 + math.Pow(geometry.Distance(p2, p3), alpha)
	if t1-t0 < knotEpsilon || t2-t1 < knotEpsilon || t3-t2 < knotEpsilon {
		return nil, ErrDegenerateGeometry
	}

	k := (1 - tension) * (t2 - t1)
	m1 := p0.Sub(p1).Mul(1 / (t0 - t1)).
		Sub(p0.Sub(p2).Mul(1 / (t0 - t2))).
		Add(p1.Sub(p2).Mul(1 / (t1 - t2))).
		Mul(k)
	m2 := p1.Sub(p2).Mul(1 / (t1 - t2)).
		Sub(p1.Sub(p3).Mul(1 / (t1 - t3))).
		Add(p2.Sub(p3).Mul(1 / (t2 - t3))).
		Mul(k)

	a := p1.Mul(2).Sub(p2.Mul(2)).Add(m1).Add(m2)
	b := p1.Mul(-3).Add(p2.Mul(3)).Sub(m1.Mul(2)).Sub(m2)
	c := m1
	d := p1

	amount := SegmentSamples(geometry.Distance(p0, p1))
	out := make([]geometry.Point, amount)
	for j := 1; j <= amount; j++ {
		t := float64(j) / float64(amount)
		p := a.Mul(t * t * t).Add(b.Mul(t * t)).Add(c.Mul(t)).Add(d)
		if !p.IsFinite() {
			return nil, ErrDegenerateGeometry
		}
		out[j-1] = p
	}
	return out, nil
}
