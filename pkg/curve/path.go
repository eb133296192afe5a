package curve

import (
	"strconv"
	"strings"

	"github.com/menta2k/smile-contour/pkg/geometry"
)

// PathData serialises a polyline as SVG path data ("M x y L x y ...").
// Polylines of two points or fewer serialise to the empty string. When closed
// is set the path ends with "Z".
func PathData(points []geometry.Point, closed bool) string {
	if len(points) <= 2 {
		return ""
	}
	var sb strings.Builder
	for i, p := range points {
		if i == 0 {
			sb.WriteString("M")
		} else {
			sb.WriteString(" L")
		}
		sb.WriteString(formatFloat(p.X))
		sb.WriteByte(' ')
		sb.WriteString(formatFloat(p.Y))
	}
	if closed {
		sb.WriteString(" Z")
	}
	return sb.String()
}

// PathData serialises the sampled curve as a closed SVG path.
func (c Curve) PathData() string { return PathData(c.Points, true) }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
