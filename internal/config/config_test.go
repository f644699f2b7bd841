package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agrovision/shade-analyzer/pkg/classifier"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default configuration must validate, got %v", err)
	}

	if cfg.Engine.Policy != classifier.PolicyThreshold {
		t.Errorf("Default policy must be threshold, got %q", cfg.Engine.Policy)
	}
	if cfg.Engine.Threshold != classifier.DefaultBrightnessThreshold {
		t.Errorf("Expected default threshold 130, got %f", cfg.Engine.Threshold)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown policy", func(c *Config) { c.Engine.Policy = "magic" }},
		{"threshold too high", func(c *Config) { c.Engine.Threshold = 300 }},
		{"negative threshold", func(c *Config) { c.Engine.Threshold = -1 }},
		{"negative workers", func(c *Config) { c.Engine.Workers = -2 }},
		{"bad quality", func(c *Config) { c.Output.Quality = 0 }},
		{"bad format", func(c *Config) { c.Output.Format = "bmp" }},
		{"negative max dimension", func(c *Config) { c.Output.MaxDimension = -5 }},
	}

	for _, tt := range tests {
		cfg := Default()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestLoadFromJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	data := `{
  "engine": {"policy": "heuristic", "region_width": 8, "region_height": 16},
  "output": {"dir": "./out", "format": "jpg", "quality": 85}
}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Engine.Policy != classifier.PolicyHeuristic {
		t.Errorf("Expected heuristic policy, got %q", cfg.Engine.Policy)
	}
	if cfg.Engine.RegionWidth != 8 || cfg.Engine.RegionHeight != 16 {
		t.Errorf("Expected 8x16 regions, got %dx%d", cfg.Engine.RegionWidth, cfg.Engine.RegionHeight)
	}
	if cfg.Output.Format != "jpg" {
		t.Errorf("Expected jpg output, got %q", cfg.Output.Format)
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `engine:
  policy: rule-based-4class
  workers: 2
output:
  dir: ./out
  format: webp
  quality: 80
  lossless: true
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Engine.Policy != classifier.PolicyRuleBased {
		t.Errorf("Expected rule-based-4class policy, got %q", cfg.Engine.Policy)
	}
	if cfg.Engine.Workers != 2 {
		t.Errorf("Expected 2 workers, got %d", cfg.Engine.Workers)
	}
	if !cfg.Output.Lossless {
		t.Error("Expected lossless output")
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg := Default()
	cfg.Engine.Policy = classifier.PolicyTrained
	cfg.Output.MaxDimension = 1600

	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Engine.Policy != classifier.PolicyTrained {
		t.Errorf("Expected trained policy after reload, got %q", loaded.Engine.Policy)
	}
	if loaded.Output.MaxDimension != 1600 {
		t.Errorf("Expected max dimension 1600, got %d", loaded.Output.MaxDimension)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Expected error for missing config file")
	}
}
