package geometry

import (
	"errors"
	"fmt"

	gocurve "honnef.co/go/curve"
)

// ErrInvalidTransform is returned when a transform cannot be inverted.
var ErrInvalidTransform = errors.New("geometry: invalid transform")

// Scale maps a frame coordinate to view space around the centre of size.
func Scale(position, size, factor float64) float64 {
	return (position-size/2)*factor + size/2
}

// InverseScale is the algebraic inverse of Scale. factor must be non-zero.
func InverseScale(position, size, factor float64) float64 {
	return (position-size/2)/factor + size/2
}

// Transform converts between frame space and view space for one frame size
// and zoom factor.
type Transform struct {
	FrameWidth  float64 `json:"frame_width"`
	FrameHeight float64 `json:"frame_height"`
	Factor      float64 `json:"factor"`
}

// Identity returns a transform that leaves coordinates unchanged.
func Identity(frameWidth, frameHeight float64) Transform {
	return Transform{FrameWidth: frameWidth, FrameHeight: frameHeight, Factor: 1}
}

// Validate checks that the transform is invertible.
func (t Transform) Validate() error {
	if t.Factor == 0 {
		return fmt.Errorf("%w: zero scale factor", ErrInvalidTransform)
	}
	if t.FrameWidth <= 0 || t.FrameHeight <= 0 {
		return fmt.Errorf("%w: frame size %gx%g", ErrInvalidTransform, t.FrameWidth, t.FrameHeight)
	}
	return nil
}

// Center returns the frame centre in frame space.
func (t Transform) Center() FramePoint {
	return FramePoint{X: t.FrameWidth / 2, Y: t.FrameHeight / 2}
}

// Affine returns the frame-to-view mapping: a uniform scale by Factor
// about the frame centre, the matrix form of Scale on both axes.
func (t Transform) Affine() gocurve.Affine {
	return aboutCenter(t.Center(), t.Factor)
}

// InverseAffine returns the view-to-frame mapping. Factor must be non-zero.
func (t Transform) InverseAffine() gocurve.Affine {
	return aboutCenter(t.Center(), 1/t.Factor)
}

func aboutCenter(c FramePoint, k float64) gocurve.Affine {
	return gocurve.Translate(gocurve.Vec2{X: c.X, Y: c.Y}).
		Mul(gocurve.Scale(k, k)).
		Mul(gocurve.Translate(gocurve.Vec2{X: -c.X, Y: -c.Y}))
}

// ToView converts a frame point to view space.
func (t Transform) ToView(p FramePoint) ViewPoint {
	return ViewPoint(fromCurvePt(Point(p).curvePt().Transform(t.Affine())))
}

// ToFrame converts a view point back to frame space.
func (t Transform) ToFrame(p ViewPoint) FramePoint {
	return FramePoint(fromCurvePt(Point(p).curvePt().Transform(t.InverseAffine())))
}

// ToViewAll converts a slice of frame points.
func (t Transform) ToViewAll(ps []FramePoint) []ViewPoint {
	aff := t.Affine()
	out := make([]ViewPoint, len(ps))
	for i, p := range ps {
		out[i] = ViewPoint(fromCurvePt(Point(p).curvePt().Transform(aff)))
	}
	return out
}

// ToFrameAll converts a slice of view points.
func (t Transform) ToFrameAll(ps []ViewPoint) []FramePoint {
	aff := t.InverseAffine()
	out := make([]FramePoint, len(ps))
	for i, p := range ps {
		out[i] = FramePoint(fromCurvePt(Point(p).curvePt().Transform(aff)))
	}
	return out
}

// Viewport maps raw pointer coordinates reported by the host UI to view
// space. The host draws the frame ScreenWidth pixels wide, shifted by
// OffsetX horizontally and MarginTop vertically. A zero ScreenWidth makes
// the viewport an identity mapping.
type Viewport struct {
	ScreenWidth float64 `json:"screen_width"`
	FrameWidth  float64 `json:"frame_width"`
	OffsetX     float64 `json:"offset_x"`
	MarginTop   float64 `json:"margin_top"`
}

// ToView converts a pointer position to view space.
func (v Viewport) ToView(pointer Point) ViewPoint {
	if v.ScreenWidth == 0 {
		return ViewPoint(pointer)
	}
	k := v.FrameWidth / v.ScreenWidth
	return ViewPoint{
		X: (pointer.X + v.OffsetX) * k,
		Y: (pointer.Y - v.MarginTop) * k,
	}
}
