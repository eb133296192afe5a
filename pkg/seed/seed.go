// Package seed proposes an initial smile region, either from a vision
// model's estimate of where the mouth is or from tooth-coloured pixels.
package seed

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/menta2k/smile-contour/pkg/client"
	"github.com/menta2k/smile-contour/pkg/geometry"
	"github.com/menta2k/smile-contour/pkg/types"
	"github.com/menta2k/smile-contour/pkg/vision"
)

// ErrNoRegion is returned when the model did not locate a usable mouth region.
var ErrNoRegion = errors.New("no mouth region found")

const (
	// DefaultPoints is the number of control points in a seeded region.
	DefaultPoints = 12
	// DefaultMinConfidence rejects low-confidence answers.
	DefaultMinConfidence = 0.3
	// minBoxSide is the smallest normalized box side accepted.
	minBoxSide = 0.01
)

// SimpleTestPrompt checks that the model can see images at all
const SimpleTestPrompt = `What do you see in this image? Describe it briefly.`

// DefaultPrompt asks the model for a normalized mouth box
const DefaultPrompt = `You are a facial feature locator for a dental photo tool.

Return JSON only:
{
  "mouth": {
    "found": true,
    "confidence": 0.0,
    "teeth_visible": true,
    "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}
  },
  "description": "short neutral sentence (≤ 20 words)"
}

HARD RULES
- All coordinates are normalized to [0,1] (NOT pixels). x,y is the top-left corner.
- The box must tightly enclose the visible teeth between the lips. If the teeth are
  not visible, enclose the inner edge of the lips.
- Use the largest face if several are present.
- Do not guess real identities.
- If no mouth is visible, return {"mouth":{"found":false,"confidence":0.0,"teeth_visible":false,"box":{"x":0,"y":0,"w":0,"h":0}},"description":"no mouth"}
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// Seeder locates a mouth with a vision model and turns it into a region
type Seeder struct {
	client        client.VisionClient
	Prompt        string
	MinConfidence float64
}

// NewSeeder creates a seeder with the default prompt
func NewSeeder(c client.VisionClient) *Seeder {
	return &Seeder{
		client:        c,
		Prompt:        DefaultPrompt,
		MinConfidence: DefaultMinConfidence,
	}
}

// TestVision tests if the model can actually see the image with a simple prompt
func (s *Seeder) TestVision(ctx context.Context, model, imageB64 string) (string, error) {
	return s.client.SimpleQuery(ctx, model, SimpleTestPrompt, imageB64)
}

// DetectMouth asks the model for the mouth box and validates the answer.
func (s *Seeder) DetectMouth(ctx context.Context, model, imageB64 string) (*types.AnalysisResult, error) {
	prompt := s.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}

	result, err := s.client.AnalyzeImage(ctx, model, prompt, imageB64)
	if err != nil {
		return nil, fmt.Errorf("analyze image: %w", err)
	}

	if !result.Mouth.Found || result.Mouth.Confidence < s.MinConfidence {
		return result, ErrNoRegion
	}

	box, ok := normalizeBox(result.Mouth.Box)
	if !ok {
		return result, ErrNoRegion
	}
	result.Mouth.Box = box
	return result, nil
}

// SeedRegion returns an n-point region in frame pixels inscribed in the
// mouth box the model reports. n below 3 uses DefaultPoints.
func (s *Seeder) SeedRegion(ctx context.Context, model, imageB64 string, frameW, frameH float64, n int) ([]geometry.FramePoint, *types.AnalysisResult, error) {
	if frameW <= 0 || frameH <= 0 {
		return nil, nil, fmt.Errorf("invalid frame size %gx%g", frameW, frameH)
	}

	result, err := s.DetectMouth(ctx, model, imageB64)
	if err != nil {
		return nil, result, err
	}

	b := result.Mouth.Box
	box := geometry.Box{
		XMin: b.X * frameW,
		XMax: (b.X + b.W) * frameW,
		YMin: b.Y * frameH,
		YMax: (b.Y + b.H) * frameH,
	}
	return Ellipse(box, n), result, nil
}

// SeedFromImage seeds a region from tooth-coloured pixels without a model.
func SeedFromImage(d *vision.TeethDetector, img image.Image, n int) ([]geometry.FramePoint, error) {
	region, err := d.DetectTeeth(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoRegion, err)
	}
	return Ellipse(region.Box(), n), nil
}

// Ellipse returns n points on the ellipse inscribed in box, clockwise on
// screen starting from the leftmost point.
func Ellipse(box geometry.Box, n int) []geometry.FramePoint {
	if n < 3 {
		n = DefaultPoints
	}
	c := box.Center()
	rx, ry := box.Width()/2, box.Height()/2

	points := make([]geometry.FramePoint, n)
	for i := range points {
		theta := math.Pi + 2*math.Pi*float64(i)/float64(n)
		points[i] = geometry.FramePoint{
			X: c.X + rx*math.Cos(theta),
			Y: c.Y + ry*math.Sin(theta),
		}
	}
	return points
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeBox clamps the box into the unit square and rejects boxes that
// collapse to nothing once clamped.
func normalizeBox(b types.Box) (types.Box, bool) {
	if math.IsNaN(b.X) || math.IsNaN(b.Y) || math.IsNaN(b.W) || math.IsNaN(b.H) {
		return types.Box{}, false
	}
	x0, y0 := clamp(b.X, 0, 1), clamp(b.Y, 0, 1)
	x1, y1 := clamp(b.X+b.W, 0, 1), clamp(b.Y+b.H, 0, 1)
	if x1-x0 < minBoxSide || y1-y0 < minBoxSide {
		return types.Box{}, false
	}
	return types.Box{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}
