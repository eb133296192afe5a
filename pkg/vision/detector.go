// Package vision finds the visible teeth in a photo without a model. It is
// the offline fallback when no vision model is configured for seeding.
package vision

import (
	"errors"
	"image"
	"image/color"

	"github.com/menta2k/smile-contour/pkg/geometry"
)

// ErrNoTeeth is returned when no window is covered enough by tooth-like pixels.
var ErrNoTeeth = errors.New("no teeth-like region found")

// TeethDetector scores pixels by how tooth-like they are (bright and
// unsaturated) and searches for the best mouth-shaped window.
type TeethDetector struct {
	config DetectionConfig
}

// DetectionConfig holds configuration for teeth detection
type DetectionConfig struct {
	// MinLuma is the minimum brightness in [0,1] for a tooth pixel.
	MinLuma float64
	// MaxSaturation is the maximum HSV saturation in [0,1] for a tooth pixel.
	MaxSaturation float64
	// MinCoverage is the fraction of tooth pixels the best window must reach.
	MinCoverage float64
	// Aspect is the width/height ratio of the search window.
	Aspect float64
	// MinWindowRatio is the smallest window width relative to the image width.
	MinWindowRatio float64
}

// New creates a new TeethDetector with default configuration
func New() *TeethDetector {
	return &TeethDetector{
		config: DetectionConfig{
			MinLuma:        0.6,
			MaxSaturation:  0.35,
			MinCoverage:    0.4,
			Aspect:         3,
			MinWindowRatio: 0.05,
		},
	}
}

// NewWithConfig creates a new TeethDetector with custom configuration
func NewWithConfig(config DetectionConfig) *TeethDetector {
	return &TeethDetector{config: config}
}

// Region is a rectangular region in image pixels. Score is the fraction of
// its area covered by tooth pixels.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
	Score  float64
}

// Center returns the center point of the region
func (r Region) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Area returns the area of the region
func (r Region) Area() int {
	return r.Width * r.Height
}

// Box converts the region to a frame-space bounding box.
func (r Region) Box() geometry.Box {
	return geometry.Box{
		XMin: float64(r.X),
		XMax: float64(r.X + r.Width),
		YMin: float64(r.Y),
		YMax: float64(r.Y + r.Height),
	}
}

// DetectTeeth returns the tightest box around the tooth pixels of the best
// scoring window. Coordinates are relative to the image's top-left corner.
func (d *TeethDetector) DetectTeeth(img image.Image) (Region, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return Region{}, ErrNoTeeth
	}

	sum := d.integralMap(img)
	best := d.bestWindow(sum, width, height)
	if best.Score < d.config.MinCoverage {
		return Region{}, ErrNoTeeth
	}

	r := d.grow(img, best)
	r.Score = float64(windowCount(sum, r.X, r.Y, r.Width, r.Height)) / float64(r.Area())
	return r, nil
}

// IsToothColor reports whether c is bright and unsaturated enough.
func (d *TeethDetector) IsToothColor(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	maxC := max(r, g, b)
	minC := min(r, g, b)

	luma := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 65535.0
	if luma < d.config.MinLuma {
		return false
	}
	if maxC == 0 {
		return false
	}
	saturation := float64(maxC-minC) / float64(maxC)
	return saturation <= d.config.MaxSaturation
}

// integralMap returns the summed-area table of the tooth mask with a zero
// first row and column.
func (d *TeethDetector) integralMap(img image.Image) [][]int {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	sum := make([][]int, height+1)
	for i := range sum {
		sum[i] = make([]int, width+1)
	}
	for y := 0; y < height; y++ {
		row := 0
		for x := 0; x < width; x++ {
			if d.IsToothColor(img.At(x+bounds.Min.X, y+bounds.Min.Y)) {
				row++
			}
			sum[y+1][x+1] = sum[y][x+1] + row
		}
	}
	return sum
}

func windowCount(sum [][]int, x, y, w, h int) int {
	return sum[y+h][x+w] - sum[y][x+w] - sum[y+h][x] + sum[y][x]
}

// bestWindow slides mouth-shaped windows of decreasing size over the mask.
// Larger windows win ties so a full smile beats a single bright tooth.
func (d *TeethDetector) bestWindow(sum [][]int, width, height int) Region {
	var best Region

	aspect := d.config.Aspect
	if aspect <= 0 {
		aspect = 3
	}
	minW := int(float64(width) * d.config.MinWindowRatio)
	if minW < 3 {
		minW = 3
	}

	for _, div := range []int{2, 3, 4, 6, 8, 12, 16, 20} {
		w := width / div
		h := int(float64(w) / aspect)
		if w < minW || h < 1 || h > height {
			continue
		}
		step := max(1, w/8)
		for y := 0; y <= height-h; y += max(1, h/4) {
			for x := 0; x <= width-w; x += step {
				score := float64(windowCount(sum, x, y, w, h)) / float64(w*h)
				if score > best.Score {
					best = Region{X: x, Y: y, Width: w, Height: h, Score: score}
				}
			}
		}
	}
	return best
}

const maxGrowSteps = 8

// grow expands the window around its tooth pixels until the bounding box
// stops changing, so a window that caught part of a smile covers all of it.
func (d *TeethDetector) grow(img image.Image, r Region) Region {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	for i := 0; i < maxGrowSteps; i++ {
		mx, my := max(2, r.Width/4), max(2, r.Height/2)
		x0, y0 := max(0, r.X-mx), max(0, r.Y-my)
		x1, y1 := min(width, r.X+r.Width+mx), min(height, r.Y+r.Height+my)

		minX, minY, maxX, maxY := x1, y1, x0-1, y0-1
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				if !d.IsToothColor(img.At(x+bounds.Min.X, y+bounds.Min.Y)) {
					continue
				}
				minX, maxX = min(minX, x), max(maxX, x)
				minY, maxY = min(minY, y), max(maxY, y)
			}
		}
		if maxX < minX {
			return r
		}

		next := Region{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1, Score: r.Score}
		if next == r {
			break
		}
		r = next
	}
	return r
}
