package processing

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/smile-contour/pkg/geometry"
)

var (
	curveColor    = color.NRGBA{0, 255, 0, 255}   // fitted curve
	controlColor  = color.NRGBA{255, 0, 0, 255}   // control points
	templateColor = color.NRGBA{255, 204, 0, 255} // match template
	centerColor   = color.NRGBA{0, 170, 255, 255} // frame centre
)

// CreateDebugOverlay draws the fitted curve, its control points and the
// match template over a copy of img. Any layer may be nil.
func (p *Processor) CreateDebugOverlay(img image.Image, curve, controls, template []geometry.Point) image.Image {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()

	stroke := int(math.Max(2, 0.004*float64(min(w, h)))) // ~0.4% of min side
	cross := int(math.Max(4, 0.01*float64(min(w, h))))   // ~1% of min side

	drawPolyline(nrgba, template, true, templateColor, stroke)
	drawPolyline(nrgba, curve, false, curveColor, stroke)

	for _, c := range controls {
		px, py := int(math.Round(c.X)), int(math.Round(c.Y))
		drawHLine(nrgba, py, px-cross, px+cross, controlColor)
		drawVLine(nrgba, px, py-cross, py+cross, controlColor)
	}

	ix, iy := w/2, h/2
	drawHLine(nrgba, iy, ix-6, ix+6, centerColor)
	drawVLine(nrgba, ix, iy-6, iy+6, centerColor)

	return nrgba
}

func drawPolyline(img *image.NRGBA, points []geometry.Point, closed bool, c color.NRGBA, stroke int) {
	if len(points) < 2 {
		return
	}
	for i := 1; i < len(points); i++ {
		drawLine(img, points[i-1], points[i], c, stroke)
	}
	if closed {
		drawLine(img, points[len(points)-1], points[0], c, stroke)
	}
}

// drawLine is Bresenham with a square pen of side stroke.
func drawLine(img *image.NRGBA, a, b geometry.Point, c color.NRGBA, stroke int) {
	if !a.IsFinite() || !b.IsFinite() {
		return
	}
	x0, y0 := int(math.Round(a.X)), int(math.Round(a.Y))
	x1, y1 := int(math.Round(b.X)), int(math.Round(b.Y))

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	half := stroke / 2

	e := dx + dy
	for {
		for s := 0; s < stroke; s++ {
			drawHLine(img, y0-half+s, x0-half, x0-half+stroke, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
