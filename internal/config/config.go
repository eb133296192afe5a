package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	Curve   CurveConfig   `json:"curve"`
	Editor  EditorConfig  `json:"editor"`
	Match   MatchConfig   `json:"match"`
	Recolor RecolorConfig `json:"recolor"`
	Vision  VisionConfig  `json:"vision"`
	Output  OutputConfig  `json:"output"`
	Server  ServerConfig  `json:"server"`
}

// CurveConfig holds the spline parameters
type CurveConfig struct {
	Alpha   float64 `json:"alpha"`
	Tension float64 `json:"tension"`
}

// EditorConfig holds configuration for interactive region editing
type EditorConfig struct {
	HitRadius  float64 `json:"hit_radius"`
	PhotoScale float64 `json:"photo_scale"`
	Recenter   bool    `json:"recenter"`
}

// MatchConfig holds configuration for the capture gate
type MatchConfig struct {
	Threshold      float64 `json:"threshold"`
	SmileThreshold float64 `json:"smile_threshold"`
	MaxHeadAngle   float64 `json:"max_head_angle"`
	Mirror         bool    `json:"mirror"`
	TemplatePath   string  `json:"template_path"`
}

// RecolorConfig holds the whitening parameters
type RecolorConfig struct {
	Level      float64 `json:"level"`
	Saturation float64 `json:"saturation"`
	Brightness float64 `json:"brightness"`
}

// VisionConfig holds configuration for model-based region seeding
type VisionConfig struct {
	Provider      string  `json:"provider"` // ollama or llamacpp
	URL           string  `json:"url"`
	Model         string  `json:"model"`
	MaxDim        int     `json:"max_dim"`
	ImageFormat   string  `json:"image_format"`
	JPEGQuality   int     `json:"jpeg_quality"`
	SeedPoints    int     `json:"seed_points"`
	MinConfidence float64 `json:"min_confidence"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	DefaultFormat string `json:"default_format"`
	Quality       int    `json:"quality"`
	Lossless      bool   `json:"lossless"`
	OutputDir     string `json:"output_dir"`
	Prefix        string `json:"prefix"`
	Suffix        string `json:"suffix"`
}

// ServerConfig holds configuration for the HTTP editing service
type ServerConfig struct {
	Addr         string `json:"addr"`
	MaxSessions  int    `json:"max_sessions"`
	SessionTTLMs int64  `json:"session_ttl_ms"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Curve: CurveConfig{
			Alpha:   0.5,
			Tension: 0,
		},
		Editor: EditorConfig{
			HitRadius:  50,
			PhotoScale: 2.7,
			Recenter:   true,
		},
		Match: MatchConfig{
			Threshold:      30,
			SmileThreshold: 0.9,
			MaxHeadAngle:   10,
			Mirror:         false,
		},
		Recolor: RecolorConfig{
			Level:      50,
			Saturation: -60,
			Brightness: 15,
		},
		Vision: VisionConfig{
			Provider:      "ollama",
			URL:           "http://localhost:11434",
			Model:         "qwen2.5vl:7b",
			MaxDim:        1024,
			ImageFormat:   "jpg",
			JPEGQuality:   85,
			SeedPoints:    12,
			MinConfidence: 0.3,
		},
		Output: OutputConfig{
			DefaultFormat: "jpg",
			Quality:       90,
			Lossless:      false,
			OutputDir:     "./output",
			Prefix:        "",
			Suffix:        "_whitened",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxSessions:  1000,
			SessionTTLMs: 30 * 60 * 1000,
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Missing fields keep
// their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Curve.Alpha < 0 || c.Curve.Alpha > 1 {
		return fmt.Errorf("curve.alpha must be between 0 and 1")
	}

	if c.Curve.Tension < 0 || c.Curve.Tension > 1 {
		return fmt.Errorf("curve.tension must be between 0 and 1")
	}

	if c.Editor.HitRadius <= 0 {
		return fmt.Errorf("editor.hit_radius must be positive")
	}

	if c.Editor.PhotoScale <= 0 {
		return fmt.Errorf("editor.photo_scale must be positive")
	}

	if c.Match.Threshold <= 0 {
		return fmt.Errorf("match.threshold must be positive")
	}

	if c.Match.SmileThreshold < 0 || c.Match.SmileThreshold > 1 {
		return fmt.Errorf("match.smile_threshold must be between 0 and 1")
	}

	if c.Match.MaxHeadAngle <= 0 {
		return fmt.Errorf("match.max_head_angle must be positive")
	}

	if c.Recolor.Level < 0 || c.Recolor.Level > 100 {
		return fmt.Errorf("recolor.level must be between 0 and 100")
	}

	switch c.Vision.Provider {
	case "ollama", "llamacpp":
	default:
		return fmt.Errorf("vision.provider must be ollama or llamacpp, got %q", c.Vision.Provider)
	}

	if c.Vision.JPEGQuality < 1 || c.Vision.JPEGQuality > 100 {
		return fmt.Errorf("vision.jpeg_quality must be between 1 and 100")
	}

	if c.Vision.MinConfidence < 0 || c.Vision.MinConfidence > 1 {
		return fmt.Errorf("vision.min_confidence must be between 0 and 1")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	switch c.Output.DefaultFormat {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("output.default_format must be jpg, png or webp, got %q", c.Output.DefaultFormat)
	}

	if c.Server.MaxSessions < 1 {
		return fmt.Errorf("server.max_sessions must be positive")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "smile-contour", "config.json")
}
