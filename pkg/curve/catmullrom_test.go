package curve

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/menta2k/smile-contour/pkg/geometry"
)

// square returns the corners of an axis-aligned square, clockwise in screen
// coordinates.
func square(side float64) []geometry.Point {
	return []geometry.Point{
		geometry.Pt(0, 0),
		geometry.Pt(side, 0),
		geometry.Pt(side, side),
		geometry.Pt(0, side),
	}
}

func TestSegmentSamples(t *testing.T) {
	cases := map[float64]int{
		0:     10,
		50:    10,
		100:   10,
		100.5: 11,
		250:   25,
	}
	for length, want := range cases {
		if got := SegmentSamples(length); got != want {
			t.Errorf("SegmentSamples(%g) = %d, want %d", length, got, want)
		}
	}
}

func TestClosedCatmullRomDegenerate(t *testing.T) {
	cases := map[string][]geometry.Point{
		"empty":          nil,
		"single":         {geometry.Pt(10, 10)},
		"close pair":     {geometry.Pt(10, 10), geometry.Pt(10.5, 10.2)},
		"all duplicates": {geometry.Pt(1, 1), geometry.Pt(1, 1), geometry.Pt(1.1, 1)},
	}
	for name, in := range cases {
		c, err := ClosedCatmullRom(in, 0.5, 0)
		if err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		}
		if len(c.Points) != 0 || len(c.ControlPoints) != 0 {
			t.Errorf("%s: expected empty curve, got %d points / %d controls", name, len(c.Points), len(c.ControlPoints))
		}
		if !c.Empty() {
			t.Errorf("%s: Empty() = false", name)
		}
	}
}

func TestClosedCatmullRomNonFinite(t *testing.T) {
	in := []geometry.Point{geometry.Pt(0, 0), geometry.Pt(math.NaN(), 10), geometry.Pt(50, 50)}
	c, err := ClosedCatmullRom(in, 0.5, 0)
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Fatalf("Expected ErrDegenerateGeometry, got %v", err)
	}
	if !c.Empty() {
		t.Error("Expected empty curve on degenerate geometry")
	}
}

func TestClosedCatmullRomDensity(t *testing.T) {
	c, err := ClosedCatmullRom(square(200), 0.5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Four segments of length 200 -> 20 samples each.
	if len(c.Points) != 80 {
		t.Errorf("Expected 80 samples, got %d", len(c.Points))
	}

	small, _ := ClosedCatmullRom(square(50), 0.5, 0)
	if len(small.Points) != 40 {
		t.Errorf("Expected minimum of 10 samples per segment (40), got %d", len(small.Points))
	}

	rect := []geometry.Point{geometry.Pt(0, 0), geometry.Pt(300, 0), geometry.Pt(300, 50), geometry.Pt(0, 50)}
	r, _ := ClosedCatmullRom(rect, 0.5, 0)
	if len(r.Points) != 30+10+30+10 {
		t.Errorf("Expected 80 samples for 300x50 rectangle, got %d", len(r.Points))
	}
}

func TestClosedCatmullRomClosure(t *testing.T) {
	for _, alpha := range []float64{0, 0.5, 1} {
		c, err := ClosedCatmullRom(square(200), alpha, 0)
		if err != nil {
			t.Fatalf("alpha %g: unexpected error %v", alpha, err)
		}
		first, last := c.Points[0], c.Points[len(c.Points)-1]
		if d := geometry.Distance(last, geometry.Pt(0, 0)); d > 1e-9 {
			t.Errorf("alpha %g: last sample should land on the first control point, off by %g", alpha, d)
		}
		if d := geometry.Distance(first, last); d > 2*sampleSpacing {
			t.Errorf("alpha %g: curve not closed, first/last gap %g", alpha, d)
		}
	}
}

func TestClosedCatmullRomInterpolatesControlPoints(t *testing.T) {
	in := []geometry.Point{
		geometry.Pt(10, 10), geometry.Pt(120, 30), geometry.Pt(200, 140),
		geometry.Pt(90, 220), geometry.Pt(5, 120),
	}
	c, err := ClosedCatmullRom(in, 0.5, 0.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, cp := range in {
		found := false
		for _, p := range c.Points {
			if geometry.Distance(p, cp) < 1e-9 {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("control point %v not on curve", cp)
		}
	}
}

func TestClosedCatmullRomFullTensionIsPolygon(t *testing.T) {
	c, err := ClosedCatmullRom(square(200), 0.5, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	onEdge := func(v float64) bool { return math.Abs(v) < 1e-9 || math.Abs(v-200) < 1e-9 }
	for _, p := range c.Points {
		if !onEdge(p.X) && !onEdge(p.Y) {
			t.Fatalf("sample %v is off the control polygon", p)
		}
	}
}

func TestClosedCatmullRomControlPointsAreUncleanedCopy(t *testing.T) {
	in := []geometry.Point{
		geometry.Pt(0, 0), geometry.Pt(0.5, 0), geometry.Pt(100, 0),
		geometry.Pt(100, 100), geometry.Pt(0, 100), geometry.Pt(0.2, 0.3),
	}
	c, err := ClosedCatmullRom(in, 0.5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(c.ControlPoints, in) {
		t.Errorf("Expected control points to equal input, got %v", c.ControlPoints)
	}
	// Cleaned set is a 100x100 square: 4 segments of 10 samples.
	if len(c.Points) != 40 {
		t.Errorf("Expected 40 samples after cleaning, got %d", len(c.Points))
	}
	in[0] = geometry.Pt(-1, -1)
	if c.ControlPoints[0] == in[0] {
		t.Error("control points alias the input slice")
	}
}

func TestClosedCatmullRomIdempotent(t *testing.T) {
	in := []geometry.Point{geometry.Pt(3, 4), geometry.Pt(150, 20), geometry.Pt(170, 190), geometry.Pt(20, 160)}
	a, errA := ClosedCatmullRom(in, 0.5, 0)
	b, errB := ClosedCatmullRom(in, 0.5, 0)
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v, %v", errA, errB)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("Expected identical output for identical input")
	}
}

func TestOptions(t *testing.T) {
	if err := DefaultOptions().Validate(); err != nil {
		t.Errorf("default options invalid: %v", err)
	}
	bad := []Options{{Alpha: -0.1}, {Alpha: 1.5}, {Tension: 2}, {Alpha: math.NaN()}}
	for _, o := range bad {
		if err := o.Validate(); !errors.Is(err, ErrInvalidOptions) {
			t.Errorf("Expected ErrInvalidOptions for %+v, got %v", o, err)
		}
	}
	c, err := DefaultOptions().Fit(square(100))
	if err != nil || c.Empty() {
		t.Errorf("Fit failed: %v", err)
	}
}

func TestPathData(t *testing.T) {
	if got := PathData([]geometry.Point{geometry.Pt(0, 0), geometry.Pt(1, 1)}, true); got != "" {
		t.Errorf("Expected empty path for two points, got %q", got)
	}
	got := PathData([]geometry.Point{geometry.Pt(0, 0), geometry.Pt(10.5, 0), geometry.Pt(10, 20)}, false)
	if want := "M0 0 L10.5 0 L10 20"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	c := Curve{Points: []geometry.Point{geometry.Pt(0, 0), geometry.Pt(1, 0), geometry.Pt(1, 1)}}
	if want := "M0 0 L1 0 L1 1 Z"; c.PathData() != want {
		t.Errorf("Expected %q, got %q", want, c.PathData())
	}
}

func TestEmptyCurveJSON(t *testing.T) {
	c, err := ClosedCatmullRom([]geometry.Point{geometry.Pt(1, 1)}, 0.5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"points":[],"control_points":[]}`; string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}
}
