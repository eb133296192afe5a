package match

import (
	"math"

	"github.com/menta2k/smile-contour/pkg/geometry"
)

// Contour names a landmark contour reported by the face detector.
type Contour string

const (
	ContourFace           Contour = "FACE"
	ContourLeftEye        Contour = "LEFT_EYE"
	ContourRightEye       Contour = "RIGHT_EYE"
	ContourUpperLipTop    Contour = "UPPER_LIP_TOP"
	ContourUpperLipBottom Contour = "UPPER_LIP_BOTTOM"
	ContourLowerLipTop    Contour = "LOWER_LIP_TOP"
	ContourLowerLipBottom Contour = "LOWER_LIP_BOTTOM"
)

// FaceObservation is one detected face in a processed camera frame, in
// frame space.
type FaceObservation struct {
	Contours           map[Contour][]geometry.FramePoint `json:"contours"`
	SmilingProbability float64                           `json:"smiling_probability"`
	PitchAngle         float64                           `json:"pitch_angle"`
	RollAngle          float64                           `json:"roll_angle"`
	YawAngle           float64                           `json:"yaw_angle"`
}

// TeethContour assembles the mouth outline used for alignment. Mirrored
// frames use the inner upper lip and are flipped back into frame space;
// unmirrored frames use the outer upper lip. Either way the lower lip's top
// edge closes the outline. A face missing either contour yields nil.
func (f FaceObservation) TeethContour(mirror bool, frameWidth float64) []geometry.FramePoint {
	upperKey := ContourUpperLipTop
	if mirror {
		upperKey = ContourUpperLipBottom
	}
	upper, lower := f.Contours[upperKey], f.Contours[ContourLowerLipTop]
	if len(upper) == 0 || len(lower) == 0 {
		return nil
	}
	out := make([]geometry.FramePoint, 0, len(upper)+len(lower))
	out = append(out, upper...)
	out = append(out, lower...)
	if mirror {
		out = geometry.Mirror(out, frameWidth)
	}
	return out
}

// FacingCamera reports whether every head angle is strictly within maxAngle
// degrees of zero.
func (f FaceObservation) FacingCamera(maxAngle float64) bool {
	return math.Abs(f.PitchAngle) < maxAngle &&
		math.Abs(f.RollAngle) < maxAngle &&
		math.Abs(f.YawAngle) < maxAngle
}

// NormalizeFrameSize returns the frame dimensions in portrait orientation.
func NormalizeFrameSize(width, height float64) (float64, float64) {
	if width < height {
		return width, height
	}
	return height, width
}

// Gate defaults.
const (
	DefaultThreshold      = 30.0
	DefaultSmileThreshold = 0.9
	DefaultMaxHeadAngle   = 10.0
)

// Gate evaluates capture readiness for each processed frame.
type Gate struct {
	Template       *Template
	Threshold      float64
	Mirror         bool
	SmileThreshold float64
	MaxHeadAngle   float64
}

// NewGate returns a gate with default thresholds.
func NewGate(t *Template, mirror bool) *Gate {
	return &Gate{
		Template:       t,
		Threshold:      DefaultThreshold,
		Mirror:         mirror,
		SmileThreshold: DefaultSmileThreshold,
		MaxHeadAngle:   DefaultMaxHeadAngle,
	}
}

// Readiness is the per-frame outcome consumed by the capture control.
type Readiness struct {
	TeethInRegion bool                  `json:"teeth_in_region"`
	FacingCamera  bool                  `json:"facing_camera"`
	Smiling       bool                  `json:"smiling"`
	FrameWidth    float64               `json:"frame_width"`
	FrameHeight   float64               `json:"frame_height"`
	Contour       []geometry.FramePoint `json:"contour"`
	Template      []geometry.FramePoint `json:"template"`
}

// CaptureEnabled reports whether the capture control should be enabled.
// Smiling is reported but does not gate capture.
func (r Readiness) CaptureEnabled() bool {
	return r.TeethInRegion && r.FacingCamera
}

// Evaluate inspects the first detected face. With no face every flag is
// false and the contour is empty.
func (g *Gate) Evaluate(frameWidth, frameHeight float64, faces []FaceObservation) Readiness {
	w, h := NormalizeFrameSize(frameWidth, frameHeight)
	r := Readiness{FrameWidth: w, FrameHeight: h}
	if g.Template != nil {
		r.Template = g.Template.Fit(w, g.Mirror)
	}
	if len(faces) == 0 {
		return r
	}

	face := faces[0]
	r.Smiling = face.SmilingProbability > g.SmileThreshold
	r.FacingCamera = face.FacingCamera(g.MaxHeadAngle)
	r.Contour = face.TeethContour(g.Mirror, w)

	if len(r.Contour) > 0 && len(r.Template) > 0 {
		// Both sides are non-empty, so MatchRegion cannot fail.
		r.TeethInRegion, _ = MatchRegion(geometry.Points(r.Contour), geometry.Points(r.Template), g.Threshold)
	}
	return r
}
