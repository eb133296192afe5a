// Package smilecontour ties the smile-region geometry core to still photos.
//
// A region is a closed ring of control points in frame space, the pixel grid
// of the captured photo. The editor reshapes it through drag gestures in a
// zoomed view, the curve fitter smooths it, and the processor whitens the
// pixels it encloses.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		smilecontour "github.com/menta2k/smile-contour"
//	)
//
//	func main() {
//		sc := smilecontour.New()
//
//		img, err := sc.LoadImage("smile.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		// Propose a region from tooth-coloured pixels
//		region, err := sc.SeedRegion(context.Background(), img)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		out, err := sc.Whiten(img, region, 60)
//		if err != nil {
//			log.Fatal(err)
//		}
//		if err := sc.SaveImage(out, "smile_whitened.jpg", smilecontour.DefaultOutput()); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of these components:
//
// 1. Geometry (pkg/geometry): frame/view coordinates and the zoom transform
// 2. Curve (pkg/curve): closed Catmull-Rom fitting and SVG path output
// 3. Editor (pkg/editor): drag gestures over control points
// 4. Match (pkg/match): template matching and the capture gate
// 5. Seed (pkg/seed, pkg/vision): initial regions from a vision model or pixels
// 6. Processing (pkg/processing): image IO, region masks and recolouring
package smilecontour

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/menta2k/smile-contour/pkg/curve"
	"github.com/menta2k/smile-contour/pkg/editor"
	"github.com/menta2k/smile-contour/pkg/geometry"
	"github.com/menta2k/smile-contour/pkg/processing"
	"github.com/menta2k/smile-contour/pkg/seed"
	"github.com/menta2k/smile-contour/pkg/types"
	"github.com/menta2k/smile-contour/pkg/vision"
)

// Version of the smile-contour library
const Version = "1.0.0"

// DefaultPhotoScale is the zoom the photo editor applies around the frame centre.
const DefaultPhotoScale = 2.7

// Options configures a SmileContour.
type Options struct {
	Curve      curve.Options
	HitRadius  float64
	PhotoScale float64
	Recenter   bool
	Recolor    processing.RecolorOptions
	// Seeder and Model enable model-based seeding. Without them SeedRegion
	// only uses the pixel heuristic.
	Seeder      *seed.Seeder
	Model       string
	SeedPoints  int
	ModelMaxDim int
	// ModelFormat (jpg or png) and ModelQuality control how the photo is
	// encoded for the model.
	ModelFormat  string
	ModelQuality int
	Logger       *slog.Logger
}

// DefaultOptions returns the photo-editing defaults.
func DefaultOptions() Options {
	return Options{
		Curve:        curve.DefaultOptions(),
		HitRadius:    editor.DefaultHitRadius,
		PhotoScale:   DefaultPhotoScale,
		Recenter:     true,
		Recolor:      processing.DefaultRecolorOptions(),
		SeedPoints:   seed.DefaultPoints,
		ModelMaxDim:  1024,
		ModelFormat:  "jpg",
		ModelQuality: 85,
	}
}

// DefaultOutput returns JPEG output at quality 90.
func DefaultOutput() types.OutputOptions {
	return types.OutputOptions{Format: "jpg", Quality: 90}
}

// SmileContour provides a high-level interface over the region pipeline
type SmileContour struct {
	opts      Options
	processor *processing.Processor
	detector  *vision.TeethDetector
	logger    *slog.Logger
}

// New creates a SmileContour with default options
func New() *SmileContour {
	sc, _ := NewWithOptions(DefaultOptions())
	return sc
}

// NewWithOptions creates a SmileContour with custom options
func NewWithOptions(opts Options) (*SmileContour, error) {
	if err := opts.Curve.Validate(); err != nil {
		return nil, err
	}
	if opts.PhotoScale <= 0 {
		return nil, fmt.Errorf("%w: photo scale %g", geometry.ErrInvalidTransform, opts.PhotoScale)
	}
	if opts.ModelFormat == "" {
		opts.ModelFormat = "jpg"
	}
	if opts.ModelQuality <= 0 {
		opts.ModelQuality = 85
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SmileContour{
		opts:      opts,
		processor: processing.NewProcessor(),
		detector:  vision.New(),
		logger:    logger,
	}, nil
}

// Region is the on-disk form of a region: control points in the pixel grid
// of a frame of the given size.
type Region struct {
	FrameWidth  float64               `json:"frame_width"`
	FrameHeight float64               `json:"frame_height"`
	Points      []geometry.FramePoint `json:"points"`
}

// LoadRegion reads a region JSON file
func LoadRegion(path string) (*Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read region: %w", err)
	}
	var r Region
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse region %s: %w", path, err)
	}
	if len(r.Points) < 3 {
		return nil, fmt.Errorf("region %s: %w", path, processing.ErrEmptyRegion)
	}
	return &r, nil
}

// SaveRegion writes a region JSON file
func SaveRegion(path string, r *Region) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal region: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write region: %w", err)
	}
	return nil
}

// ScaleTo maps the region onto a frame of a different size.
func (r *Region) ScaleTo(width, height float64) []geometry.FramePoint {
	if r.FrameWidth <= 0 || r.FrameHeight <= 0 || (r.FrameWidth == width && r.FrameHeight == height) {
		return append([]geometry.FramePoint(nil), r.Points...)
	}
	kx, ky := width/r.FrameWidth, height/r.FrameHeight
	out := make([]geometry.FramePoint, len(r.Points))
	for i, p := range r.Points {
		out[i] = geometry.FramePoint{X: p.X * kx, Y: p.Y * ky}
	}
	return out
}

// LoadImage loads an image from a file path or URL
func (sc *SmileContour) LoadImage(source string) (image.Image, error) {
	return sc.processor.LoadImageSmart(source)
}

// SaveImage saves an image to file
func (sc *SmileContour) SaveImage(img image.Image, path string, out types.OutputOptions) error {
	return sc.processor.Save(img, path, out)
}

// SeedRegion proposes a region for img in its pixel grid. The vision model
// is asked first when one is configured; the pixel heuristic covers both
// the unconfigured case and a model that finds nothing.
func (sc *SmileContour) SeedRegion(ctx context.Context, img image.Image) ([]geometry.FramePoint, error) {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	if sc.opts.Seeder != nil && sc.opts.Model != "" {
		imgB64, err := sc.processor.PrepareImageForModel(img, sc.opts.ModelFormat, sc.opts.ModelMaxDim, sc.opts.ModelQuality)
		if err != nil {
			return nil, fmt.Errorf("prepare image: %w", err)
		}
		points, result, err := sc.opts.Seeder.SeedRegion(ctx, sc.opts.Model, imgB64, w, h, sc.opts.SeedPoints)
		if err == nil {
			sc.logger.Debug("seeded region from model", "model", sc.opts.Model, "confidence", result.Mouth.Confidence)
			return points, nil
		}
		if !errors.Is(err, seed.ErrNoRegion) {
			return nil, err
		}
		sc.logger.Info("model found no mouth, falling back to pixel heuristic", "model", sc.opts.Model)
	}

	return seed.SeedFromImage(sc.detector, img, sc.opts.SeedPoints)
}

// NewEditor opens an editor over region for a frame of the given size, using
// the photo zoom and recentring.
func (sc *SmileContour) NewEditor(region []geometry.FramePoint, frameWidth, frameHeight float64) (*editor.Editor, error) {
	return editor.New(region, editor.Options{
		Transform: geometry.Transform{
			FrameWidth:  frameWidth,
			FrameHeight: frameHeight,
			Factor:      sc.opts.PhotoScale,
		},
		Curve:     sc.opts.Curve,
		HitRadius: sc.opts.HitRadius,
		Recenter:  sc.opts.Recenter,
		Logger:    sc.logger,
	})
}

// Outline fits the smooth closed curve through region in frame space.
func (sc *SmileContour) Outline(region []geometry.FramePoint) (curve.Curve, error) {
	return sc.opts.Curve.Fit(geometry.Points(region))
}

// Whiten recolours the pixels inside the smoothed region at the given level
// (0..100). Other recolour parameters come from the options.
func (sc *SmileContour) Whiten(img image.Image, region []geometry.FramePoint, level float64) (image.Image, error) {
	if len(region) < 3 {
		return nil, processing.ErrEmptyRegion
	}
	outline, err := sc.Outline(region)
	if err != nil {
		return nil, fmt.Errorf("fit region: %w", err)
	}
	opts := sc.opts.Recolor
	opts.Level = level
	return sc.processor.Recolor(img, outline.Points, opts)
}

// DebugOverlay draws the smoothed region and its control points over img.
func (sc *SmileContour) DebugOverlay(img image.Image, region, template []geometry.FramePoint) (image.Image, error) {
	outline, err := sc.Outline(region)
	if err != nil {
		return nil, fmt.Errorf("fit region: %w", err)
	}
	return sc.processor.CreateDebugOverlay(img, outline.Points, geometry.Points(region), geometry.Points(template)), nil
}

// ProcessFile whitens one image. The region is read from regionPath when it
// exists and seeded otherwise; a seeded region is saved to regionPath.
func (sc *SmileContour) ProcessFile(ctx context.Context, inputPath, regionPath, outputPath string, level float64, out types.OutputOptions) error {
	img, err := sc.LoadImage(inputPath)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	var points []geometry.FramePoint
	region, err := LoadRegion(regionPath)
	switch {
	case err == nil:
		points = region.ScaleTo(w, h)
	case errors.Is(err, os.ErrNotExist):
		points, err = sc.SeedRegion(ctx, img)
		if err != nil {
			return fmt.Errorf("seed region: %w", err)
		}
		if err := SaveRegion(regionPath, &Region{FrameWidth: w, FrameHeight: h, Points: points}); err != nil {
			return err
		}
	default:
		return err
	}

	whitened, err := sc.Whiten(img, points, level)
	if err != nil {
		return fmt.Errorf("whiten: %w", err)
	}
	if err := sc.SaveImage(whitened, outputPath, out); err != nil {
		return fmt.Errorf("failed to save %s: %w", outputPath, err)
	}
	return nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
