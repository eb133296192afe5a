package geometry

import (
	"errors"
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	if d := Distance(Pt(0, 0), Pt(3, 4)); d != 5 {
		t.Errorf("Expected distance 5, got %f", d)
	}
	if d := Distance(Pt(1, 1), Pt(1, 1)); d != 0 {
		t.Errorf("Expected distance 0, got %f", d)
	}
}

func TestScaleAroundCenter(t *testing.T) {
	// The centre is a fixed point of the mapping.
	if got := Scale(360, 720, 2.7); got != 360 {
		t.Errorf("Expected centre to stay at 360, got %f", got)
	}
	if got := Scale(0, 100, 2); got != -50 {
		t.Errorf("Expected -50, got %f", got)
	}
}

func TestScaleRoundTrip(t *testing.T) {
	cases := []struct {
		position, size, factor float64
	}{
		{0, 720, 2.7},
		{123.456, 1080, 1 / 1.2},
		{-40, 1280, 0.5},
		{9999, 1, -3},
		{1e-3, 1e4, 1e-2},
	}
	for _, c := range cases {
		got := InverseScale(Scale(c.position, c.size, c.factor), c.size, c.factor)
		if math.Abs(got-c.position) > 1e-6 {
			t.Errorf("round trip of %v: got %f", c, got)
		}
	}
}

func TestTransformRoundTrip(t *testing.T) {
	tr := Transform{FrameWidth: 720, FrameHeight: 1280, Factor: 2.7}
	if err := tr.Validate(); err != nil {
		t.Fatalf("unexpected validate error: %v", err)
	}
	in := []FramePoint{{X: 300, Y: 700}, {X: 420, Y: 760}}
	back := tr.ToFrameAll(tr.ToViewAll(in))
	for i := range in {
		if math.Abs(back[i].X-in[i].X) > 1e-9 || math.Abs(back[i].Y-in[i].Y) > 1e-9 {
			t.Errorf("point %d: expected %v, got %v", i, in[i], back[i])
		}
	}
}

func TestTransformValidate(t *testing.T) {
	if err := (Transform{FrameWidth: 10, FrameHeight: 10}).Validate(); !errors.Is(err, ErrInvalidTransform) {
		t.Errorf("Expected ErrInvalidTransform for zero factor, got %v", err)
	}
	if err := (Transform{FrameWidth: 0, FrameHeight: 10, Factor: 1}).Validate(); !errors.Is(err, ErrInvalidTransform) {
		t.Errorf("Expected ErrInvalidTransform for zero width, got %v", err)
	}
}

func TestViewport(t *testing.T) {
	identity := Viewport{}
	if got := identity.ToView(Pt(5, 7)); got != (ViewPoint{X: 5, Y: 7}) {
		t.Errorf("Expected identity mapping, got %v", got)
	}

	v := Viewport{ScreenWidth: 360, FrameWidth: 720, OffsetX: 10, MarginTop: 20}
	got := v.ToView(Pt(100, 120))
	if got.X != 220 || got.Y != 200 {
		t.Errorf("Expected (220,200), got %v", got)
	}
}

func TestMirrorAndTranslate(t *testing.T) {
	ps := []FramePoint{{X: 10, Y: 5}}
	m := Mirror(ps, 100)
	if m[0].X != 90 || m[0].Y != 5 {
		t.Errorf("Expected (90,5), got %v", m[0])
	}
	tr := Translate(ps, -10, 5)
	if tr[0].X != 0 || tr[0].Y != 10 {
		t.Errorf("Expected (0,10), got %v", tr[0])
	}
	if ps[0].X != 10 {
		t.Error("input slice was mutated")
	}
}

func TestBoundingBox(t *testing.T) {
	b, err := BoundingBox([]Point{Pt(10, 20), Pt(-5, 40), Pt(30, 0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Box{XMin: -5, XMax: 30, YMin: 0, YMax: 40}
	if b != want {
		t.Errorf("Expected %v, got %v", want, b)
	}
	if b.Width() != 35 || b.Height() != 40 {
		t.Errorf("unexpected size %fx%f", b.Width(), b.Height())
	}
	if c := b.Center(); c != Pt(12.5, 20) {
		t.Errorf("unexpected centre %v", c)
	}
	if !b.Contains(Pt(0, 0)) || b.Contains(Pt(31, 0)) {
		t.Error("Contains returned wrong result")
	}
}

func TestBoundingBoxEmpty(t *testing.T) {
	if _, err := BoundingBox(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
}

func TestTransformMatchesScale(t *testing.T) {
	tr := Transform{FrameWidth: 1080, FrameHeight: 1920, Factor: 2.7}
	for _, p := range []FramePoint{{X: 0, Y: 0}, {X: 540, Y: 960}, {X: 445.5, Y: 1005.25}, {X: 1080, Y: 1920}} {
		v := tr.ToView(p)
		wantX := Scale(p.X, tr.FrameWidth, tr.Factor)
		wantY := Scale(p.Y, tr.FrameHeight, tr.Factor)
		if math.Abs(v.X-wantX) > 1e-9 || math.Abs(v.Y-wantY) > 1e-9 {
			t.Errorf("ToView(%v) = %v, want (%f, %f)", p, v, wantX, wantY)
		}
		f := tr.ToFrame(v)
		wantX = InverseScale(v.X, tr.FrameWidth, tr.Factor)
		wantY = InverseScale(v.Y, tr.FrameHeight, tr.Factor)
		if math.Abs(f.X-wantX) > 1e-9 || math.Abs(f.Y-wantY) > 1e-9 {
			t.Errorf("ToFrame(%v) = %v, want (%f, %f)", v, f, wantX, wantY)
		}
	}
}

func TestBoxRect(t *testing.T) {
	b, err := BoundingBox([]Point{Pt(3, 9), Pt(-1, 4), Pt(7, 2)})
	if err != nil {
		t.Fatal(err)
	}
	r := b.Rect()
	if r.X0 != -1 || r.Y0 != 2 || r.X1 != 7 || r.Y1 != 9 {
		t.Errorf("unexpected rect %+v", r)
	}
	if got := boxFromRect(r); got != b {
		t.Errorf("Expected %v back, got %v", b, got)
	}
}
