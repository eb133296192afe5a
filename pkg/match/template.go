package match

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/menta2k/smile-contour/pkg/geometry"
)

// DefaultReferenceWidth is the frame width template coordinates are authored in.
const DefaultReferenceWidth = 1080.0

// Template is the reference teeth outline the live contour is aligned to.
type Template struct {
	ReferenceWidth float64               `json:"reference_width"`
	Points         []geometry.FramePoint `json:"points"`
}

// LoadTemplate reads a template from a JSON file.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse template file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the template is usable.
func (t *Template) Validate() error {
	if t.ReferenceWidth == 0 {
		t.ReferenceWidth = DefaultReferenceWidth
	}
	if t.ReferenceWidth < 0 {
		return fmt.Errorf("template reference_width must be positive")
	}
	if len(t.Points) < 3 {
		return fmt.Errorf("template needs at least 3 points, got %d", len(t.Points))
	}
	return nil
}

// Fit rescales the template from its reference width to frameWidth, using
// the same factor on both axes. When mirror is set the template is flipped
// horizontally first, matching mirrored front-camera frames.
func (t *Template) Fit(frameWidth float64, mirror bool) []geometry.FramePoint {
	ref := t.ReferenceWidth
	if ref == 0 {
		ref = DefaultReferenceWidth
	}
	k := frameWidth / ref
	out := make([]geometry.FramePoint, len(t.Points))
	for i, p := range t.Points {
		x := p.X
		if mirror {
			x = ref - x
		}
		out[i] = geometry.FramePoint{X: x * k, Y: p.Y * k}
	}
	return out
}
