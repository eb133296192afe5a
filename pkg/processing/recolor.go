package processing

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/menta2k/smile-contour/pkg/geometry"
)

// ErrEmptyRegion is returned when a region has fewer than three points.
var ErrEmptyRegion = errors.New("region needs at least three points")

// RecolorOptions controls the whitening applied inside a region.
type RecolorOptions struct {
	// Level blends the whitened pixels in, from 0 (off) to 100 (full).
	Level float64 `json:"level"`
	// Saturation is an imaging.AdjustSaturation percentage, usually negative.
	Saturation float64 `json:"saturation"`
	// Brightness is an imaging.AdjustBrightness percentage.
	Brightness float64 `json:"brightness"`
}

// DefaultRecolorOptions returns a moderate whitening.
func DefaultRecolorOptions() RecolorOptions {
	return RecolorOptions{
		Level:      50,
		Saturation: -60,
		Brightness: 15,
	}
}

// RegionMask rasterises the closed polygon through points into an alpha
// mask covering bounds. Point (0, 0) is bounds.Min.
func RegionMask(bounds image.Rectangle, points []geometry.Point) *image.Alpha {
	mask := image.NewAlpha(bounds)
	if len(points) < 3 || bounds.Empty() {
		return mask
	}

	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	z.MoveTo(float32(points[0].X), float32(points[0].Y))
	for _, p := range points[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
	z.Draw(mask, bounds, image.Opaque, image.Point{})
	return mask
}

// Recolor whitens the pixels of img inside region, blending by opts.Level.
// The input image is not modified.
func (p *Processor) Recolor(img image.Image, region []geometry.Point, opts RecolorOptions) (image.Image, error) {
	if len(region) < 3 {
		return nil, ErrEmptyRegion
	}

	dst := imaging.Clone(img)
	level := clamp(opts.Level, 0, 100) / 100
	if level == 0 {
		return dst, nil
	}

	whitened := imaging.AdjustBrightness(imaging.AdjustSaturation(dst, opts.Saturation), opts.Brightness)

	mask := RegionMask(dst.Bounds(), region)
	if level < 1 {
		for i, a := range mask.Pix {
			mask.Pix[i] = uint8(float64(a)*level + 0.5)
		}
	}

	xdraw.DrawMask(dst, dst.Bounds(), whitened, image.Point{}, mask, image.Point{}, xdraw.Over)
	return dst, nil
}
