// Package match decides whether a live mouth contour is aligned with the
// reference teeth template and whether the camera may capture.
package match

import (
	"fmt"
	"math"

	"github.com/menta2k/smile-contour/pkg/geometry"
)

// ErrEmptyInput is returned when either side of a comparison has no points.
var ErrEmptyInput = geometry.ErrEmptyInput

// MatchRegion reports whether the bounding boxes of candidate and template
// agree on all four edges to within threshold. It is an axis-aligned test
// only; rotation and scale are not compensated.
func MatchRegion(candidate, template []geometry.Point, threshold float64) (bool, error) {
	cb, err := geometry.BoundingBox(candidate)
	if err != nil {
		return false, fmt.Errorf("candidate: %w", err)
	}
	tb, err := geometry.BoundingBox(template)
	if err != nil {
		return false, fmt.Errorf("template: %w", err)
	}
	return MatchBoxes(cb, tb, threshold), nil
}

// MatchBoxes compares two bounding boxes edge by edge.
func MatchBoxes(a, b geometry.Box, threshold float64) bool {
	return math.Abs(a.XMin-b.XMin) < threshold &&
		math.Abs(a.XMax-b.XMax) < threshold &&
		math.Abs(a.YMin-b.YMin) < threshold &&
		math.Abs(a.YMax-b.YMax) < threshold
}
