package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agrovision/shade-analyzer/pkg/classifier"
)

// Config holds the application configuration
type Config struct {
	Engine EngineConfig `json:"engine" yaml:"engine"`
	Output OutputConfig `json:"output" yaml:"output"`
}

// EngineConfig holds configuration for the classification engine
type EngineConfig struct {
	// Policy selects the decision policy: threshold, heuristic,
	// rule-based-4class or trained.
	Policy string `json:"policy" yaml:"policy"`

	// Threshold is the brightness cut for the threshold policy (0-255).
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// RegionWidth and RegionHeight set the tile size for region-level
	// policies.
	RegionWidth  int `json:"region_width" yaml:"region_width"`
	RegionHeight int `json:"region_height" yaml:"region_height"`

	// Workers caps parallelism for the image pass; 0 means one per CPU.
	Workers int `json:"workers" yaml:"workers"`
}

// OutputConfig holds configuration for overlay output
type OutputConfig struct {
	Dir      string `json:"dir" yaml:"dir"`
	Format   string `json:"format" yaml:"format"`
	Quality  int    `json:"quality" yaml:"quality"`
	Lossless bool   `json:"lossless" yaml:"lossless"`

	// MaxDimension downscales input photographs whose long side exceeds
	// this many pixels before classification; 0 disables.
	MaxDimension int `json:"max_dimension" yaml:"max_dimension"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Policy:       classifier.PolicyThreshold,
			Threshold:    classifier.DefaultBrightnessThreshold,
			RegionWidth:  classifier.DefaultRegionWidth,
			RegionHeight: classifier.DefaultRegionHeight,
			Workers:      0,
		},
		Output: OutputConfig{
			Dir:          "./output",
			Format:       "png",
			Quality:      90,
			Lossless:     false,
			MaxDimension: 0,
		},
	}
}

// LoadFromFile loads configuration from a JSON or YAML file, chosen by
// extension.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
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
	switch c.Engine.Policy {
	case classifier.PolicyThreshold, classifier.PolicyHeuristic,
		classifier.PolicyRuleBased, classifier.PolicyTrained, "":
	default:
		return fmt.Errorf("engine.policy must be one of threshold, heuristic, rule-based-4class, trained")
	}

	if c.Engine.Threshold < 0 || c.Engine.Threshold > 255 {
		return fmt.Errorf("engine.threshold must be between 0 and 255")
	}

	if c.Engine.RegionWidth < 0 || c.Engine.RegionHeight < 0 {
		return fmt.Errorf("engine.region dimensions must not be negative")
	}

	if c.Engine.Workers < 0 {
		return fmt.Errorf("engine.workers must not be negative")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	switch strings.ToLower(c.Output.Format) {
	case "png", "jpg", "jpeg", "webp":
	default:
		return fmt.Errorf("output.format must be one of png, jpg, webp")
	}

	if c.Output.MaxDimension < 0 {
		return fmt.Errorf("output.max_dimension must not be negative")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "shade-analyzer", "config.json")
}
