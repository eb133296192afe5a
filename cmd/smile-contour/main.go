package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/sync/errgroup"

	smilecontour "github.com/menta2k/smile-contour"
	"github.com/menta2k/smile-contour/internal/config"
	"github.com/menta2k/smile-contour/internal/utils"
	"github.com/menta2k/smile-contour/pkg/client"
	"github.com/menta2k/smile-contour/pkg/curve"
	"github.com/menta2k/smile-contour/pkg/geometry"
	"github.com/menta2k/smile-contour/pkg/llamacpp"
	"github.com/menta2k/smile-contour/pkg/match"
	"github.com/menta2k/smile-contour/pkg/ollama"
	"github.com/menta2k/smile-contour/pkg/processing"
	"github.com/menta2k/smile-contour/pkg/seed"
	"github.com/menta2k/smile-contour/pkg/types"
)

const progressTemplate = `{{ string . "prefix" }} {{counters . }} {{bar . }} {{percent . }} {{etime . "%s elapsed"}}`

// gateInput is one processed camera frame for -gate.
type gateInput struct {
	FrameWidth  float64                 `json:"frame_width"`
	FrameHeight float64                 `json:"frame_height"`
	Faces       []match.FaceObservation `json:"faces"`
}

func main() {
	var configPath, outDir, ext, backend, url, model, gatePath, templatePath string
	var level float64
	var quality, workers int
	var lossless, useModel, debug, mirror, initConfig bool

	flag.StringVar(&configPath, "config", config.GetConfigPath(), "config file (defaults are used when it does not exist)")
	flag.BoolVar(&initConfig, "init-config", false, "write the default config to -config and exit")
	flag.StringVar(&outDir, "out", "", "output directory (default from config)")
	flag.Float64Var(&level, "level", -1, "whitening level 0-100 (default from config)")
	flag.StringVar(&ext, "ext", "", "output format: jpg|png|webp (default from config)")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP output quality 1-100 (default from config)")
	flag.BoolVar(&lossless, "lossless", false, "WebP lossless output")
	flag.BoolVar(&useModel, "seed-model", false, "seed missing regions with the vision model before the pixel heuristic")
	flag.StringVar(&backend, "backend", "", "vision backend: ollama or llamacpp (default from config)")
	flag.StringVar(&url, "url", "", "vision server URL (default from config)")
	flag.StringVar(&model, "model", "", "vision model name (default from config)")
	flag.BoolVar(&debug, "debug", false, "also write debug overlays of the region")
	flag.IntVar(&workers, "workers", runtime.NumCPU(), "parallel images")
	flag.StringVar(&gatePath, "gate", "", "evaluate capture readiness for a frame JSON file and exit")
	flag.StringVar(&templatePath, "template", "", "template JSON for -gate (default from config)")
	flag.BoolVar(&mirror, "mirror", false, "treat -gate frames as mirrored (front camera)")
	flag.Parse()

	if initConfig {
		if err := config.Default().SaveToFile(configPath); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", configPath)
		return
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	applyFlags(cfg, outDir, ext, backend, url, model, level, quality, lossless, mirror, templatePath)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if gatePath != "" {
		if err := runGate(cfg, gatePath); err != nil {
			log.Fatal(err)
		}
		return
	}

	if flag.NArg() == 0 {
		log.Fatalf("usage: %s [flags] image|dir ...", filepath.Base(os.Args[0]))
	}

	sc, err := newSmileContour(cfg, useModel)
	if err != nil {
		log.Fatal(err)
	}
	if err := runBatch(context.Background(), sc, cfg, flag.Args(), workers, debug); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFromFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// applyFlags overrides config values with flags that were set.
func applyFlags(cfg *config.Config, outDir, ext, backend, url, model string, level float64, quality int, lossless, mirror bool, templatePath string) {
	if outDir != "" {
		cfg.Output.OutputDir = outDir
	}
	if ext != "" {
		cfg.Output.DefaultFormat = strings.ToLower(ext)
	}
	if quality > 0 {
		cfg.Output.Quality = quality
	}
	if lossless {
		cfg.Output.Lossless = true
	}
	if level >= 0 {
		cfg.Recolor.Level = level
	}
	if backend != "" {
		cfg.Vision.Provider = backend
	}
	if url != "" {
		cfg.Vision.URL = url
	}
	if model != "" {
		cfg.Vision.Model = model
	}
	if mirror {
		cfg.Match.Mirror = true
	}
	if templatePath != "" {
		cfg.Match.TemplatePath = templatePath
	}
}

func newVisionClient(cfg config.VisionConfig) (client.VisionClient, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewClient(cfg.URL)
	case "llamacpp":
		return llamacpp.NewClient(cfg.URL)
	default:
		return nil, fmt.Errorf("unknown backend: %s (use 'ollama' or 'llamacpp')", cfg.Provider)
	}
}

func newSmileContour(cfg *config.Config, useModel bool) (*smilecontour.SmileContour, error) {
	opts := smilecontour.DefaultOptions()
	opts.Curve = curve.Options{Alpha: cfg.Curve.Alpha, Tension: cfg.Curve.Tension}
	opts.HitRadius = cfg.Editor.HitRadius
	opts.PhotoScale = cfg.Editor.PhotoScale
	opts.Recenter = cfg.Editor.Recenter
	opts.Recolor = processing.RecolorOptions{
		Level:      cfg.Recolor.Level,
		Saturation: cfg.Recolor.Saturation,
		Brightness: cfg.Recolor.Brightness,
	}
	opts.SeedPoints = cfg.Vision.SeedPoints
	opts.ModelMaxDim = cfg.Vision.MaxDim
	opts.ModelFormat = cfg.Vision.ImageFormat
	opts.ModelQuality = cfg.Vision.JPEGQuality

	if useModel {
		vc, err := newVisionClient(cfg.Vision)
		if err != nil {
			return nil, fmt.Errorf("failed to create vision client: %w", err)
		}
		s := seed.NewSeeder(vc)
		s.MinConfidence = cfg.Vision.MinConfidence
		opts.Seeder = s
		opts.Model = cfg.Vision.Model
	}
	return smilecontour.NewWithOptions(opts)
}

func runBatch(ctx context.Context, sc *smilecontour.SmileContour, cfg *config.Config, inputs []string, workers int, debug bool) error {
	files, err := utils.ResolveInputs(inputs)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no images found")
	}
	if err := utils.EnsureDir(cfg.Output.OutputDir); err != nil {
		return err
	}

	out := types.OutputOptions{
		Format:   cfg.Output.DefaultFormat,
		Quality:  cfg.Output.Quality,
		Lossless: cfg.Output.Lossless,
	}

	outPaths := utils.OutputPaths(files, cfg.Output.OutputDir, cfg.Output.Prefix, cfg.Output.Suffix, out.Format)

	bar := pb.ProgressBarTemplate(progressTemplate).Start(len(files))
	bar.Set("prefix", "whitening")

	var failed atomic.Int32
	var written atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(max(1, workers))
	for _, in := range files {
		g.Go(func() error {
			defer bar.Increment()

			regionPath := utils.RegionFileFor(in)
			outPath := outPaths[in]
			if err := sc.ProcessFile(ctx, in, regionPath, outPath, cfg.Recolor.Level, out); err != nil {
				// One bad photo should not stop the batch
				log.Printf("%s: %v", in, err)
				failed.Add(1)
				return nil
			}
			if info, err := os.Stat(outPath); err == nil {
				written.Add(info.Size())
			}
			if debug {
				if err := writeOverlay(sc, in, regionPath, outPath); err != nil {
					log.Printf("%s: debug overlay: %v", in, err)
				}
			}
			return nil
		})
	}
	err = g.Wait()
	bar.Finish()
	if err != nil {
		return err
	}

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d images failed", n, len(files))
	}
	log.Printf("processed %d images into %s (%s)", len(files), cfg.Output.OutputDir, utils.FormatFileSize(written.Load()))
	return nil
}

// writeOverlay saves the debug overlay next to outPath as <name>_debug.png.
func writeOverlay(sc *smilecontour.SmileContour, in, regionPath, outPath string) error {
	img, err := sc.LoadImage(in)
	if err != nil {
		return err
	}
	region, err := smilecontour.LoadRegion(regionPath)
	if err != nil {
		return err
	}
	b := img.Bounds()
	overlay, err := sc.DebugOverlay(img, region.ScaleTo(float64(b.Dx()), float64(b.Dy())), nil)
	if err != nil {
		return err
	}
	path := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + "_debug.png"
	return sc.SaveImage(overlay, path, types.OutputOptions{Format: "png"})
}

func runGate(cfg *config.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}
	var in gateInput
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("parse frame: %w", err)
	}

	var tpl *match.Template
	if cfg.Match.TemplatePath != "" {
		tpl, err = match.LoadTemplate(cfg.Match.TemplatePath)
		if err != nil {
			return err
		}
	}

	gate := match.NewGate(tpl, cfg.Match.Mirror)
	gate.Threshold = cfg.Match.Threshold
	gate.SmileThreshold = cfg.Match.SmileThreshold
	gate.MaxHeadAngle = cfg.Match.MaxHeadAngle

	r := gate.Evaluate(in.FrameWidth, in.FrameHeight, in.Faces)
	log.Printf("teeth_in_region=%v facing_camera=%v smiling=%v capture=%v",
		r.TeethInRegion, r.FacingCamera, r.Smiling, r.CaptureEnabled())
	if len(r.Contour) > 0 {
		log.Printf("contour path: %s", curve.PathData(geometry.Points(r.Contour), true))
	}

	js, err := json.MarshalIndent(struct {
		match.Readiness
		CaptureEnabled bool `json:"capture_enabled"`
	}{r, r.CaptureEnabled()}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(js))
	return nil
}
