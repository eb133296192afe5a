package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	if cfg.Editor.PhotoScale != 2.7 {
		t.Errorf("Expected photo scale 2.7, got %f", cfg.Editor.PhotoScale)
	}
	if cfg.Match.Threshold != 30 {
		t.Errorf("Expected match threshold 30, got %f", cfg.Match.Threshold)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"alpha", func(c *Config) { c.Curve.Alpha = 1.5 }, "curve.alpha"},
		{"tension", func(c *Config) { c.Curve.Tension = -0.1 }, "curve.tension"},
		{"hit radius", func(c *Config) { c.Editor.HitRadius = 0 }, "editor.hit_radius"},
		{"photo scale", func(c *Config) { c.Editor.PhotoScale = 0 }, "editor.photo_scale"},
		{"threshold", func(c *Config) { c.Match.Threshold = 0 }, "match.threshold"},
		{"level", func(c *Config) { c.Recolor.Level = 101 }, "recolor.level"},
		{"provider", func(c *Config) { c.Vision.Provider = "openai" }, "vision.provider"},
		{"format", func(c *Config) { c.Output.DefaultFormat = "gif" }, "output.default_format"},
		{"sessions", func(c *Config) { c.Server.MaxSessions = 0 }, "server.max_sessions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.Curve.Tension = 0.25
	cfg.Vision.Provider = "llamacpp"
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Curve.Tension != 0.25 || loaded.Vision.Provider != "llamacpp" {
		t.Errorf("unexpected loaded config %+v", loaded)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"recolor":{"level":80}}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Recolor.Level != 80 {
		t.Errorf("Expected level 80, got %f", cfg.Recolor.Level)
	}
	if cfg.Recolor.Saturation != -60 || cfg.Editor.HitRadius != 50 {
		t.Errorf("Expected defaults for unspecified fields, got %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFromFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{not json"), 0644)
	if _, err := LoadFromFile(bad); err == nil {
		t.Error("Expected error for malformed file")
	}
}

func TestGetConfigPath(t *testing.T) {
	if p := GetConfigPath(); !strings.HasSuffix(p, "config.json") {
		t.Errorf("unexpected config path %q", p)
	}
}
