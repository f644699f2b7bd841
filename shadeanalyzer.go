// Package shadeanalyzer measures light and shadow coverage in agricultural
// plot photographs.
//
// The engine labels every pixel of a photograph as light or shadow (or, with
// the four-class policy, as soil/mesh crossed with light/shadow), aggregates
// the labels into coverage percentages and renders a false-color overlay for
// inspection.
//
// Basic usage:
//
//	package main
//
//	import (
//		"fmt"
//		"log"
//
//		shadeanalyzer "github.com/agrovision/shade-analyzer"
//		"github.com/agrovision/shade-analyzer/pkg/imgio"
//	)
//
//	func main() {
//		engine := shadeanalyzer.New()
//		if err := engine.Initialize(shadeanalyzer.DefaultConfig()); err != nil {
//			log.Fatal(err)
//		}
//
//		buf, err := imgio.LoadBuffer("plot.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		result, err := engine.Classify(buf)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		fmt.Printf("light %.1f%% / shadow %.1f%%\n",
//			result.LightPercentage, result.ShadowPercentage)
//
//		if err := imgio.Save(imgio.ToImage(result.Overlay), "plot_overlay.png", "png", 90, false); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of three main components:
//
// 1. Features (pkg/features): converts pixel regions into feature vectors
// 2. Classifier (pkg/classifier): pluggable decision policies and the full image pass
// 3. Overlay (pkg/overlay): false-color rendering of classification maps
//
// Four decision policies are available behind one interface. The calibrated
// brightness threshold is the default; the weighted heuristic score, the
// rule-based four-class split and an experimental trained network can be
// selected through configuration. All policies are read-only once the engine
// is initialized, so one engine may serve concurrent Classify calls.
package shadeanalyzer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agrovision/shade-analyzer/pkg/classifier"
	"github.com/agrovision/shade-analyzer/pkg/imgio"
	"github.com/agrovision/shade-analyzer/pkg/overlay"
)

// Version of the shade analyzer library
const Version = "1.0.0"

// ErrNotInitialized is returned by Classify when the engine has not been
// initialized. It signals an ordering bug in the caller, not a condition to
// retry.
var ErrNotInitialized = errors.New("shadeanalyzer: engine not initialized")

// Config selects the decision policy and pass parameters for an Engine.
type Config struct {
	// Policy is one of threshold, heuristic, rule-based-4class, trained.
	// Empty selects the threshold policy.
	Policy string

	// Threshold is the brightness cut for the threshold policy; 0 uses the
	// calibrated default of 130.
	Threshold float64

	// RegionWidth and RegionHeight set the tile size for region-level
	// policies; 0 uses the policy defaults (10x20).
	RegionWidth  int
	RegionHeight int

	// Workers caps parallelism for the image pass; 0 means one per CPU.
	Workers int
}

// DefaultConfig returns the default engine configuration: the calibrated
// brightness threshold policy.
func DefaultConfig() Config {
	return Config{
		Policy:    classifier.PolicyThreshold,
		Threshold: classifier.DefaultBrightnessThreshold,
	}
}

// Engine is the classification engine exposed to callers. Construct with
// New, call Initialize once, then issue Classify calls freely, including
// concurrently.
type Engine struct {
	mu         sync.RWMutex
	config     Config
	classifier *classifier.Classifier
	renderer   *overlay.Renderer
	logger     zerolog.Logger
}

// New creates an uninitialized engine.
func New() *Engine {
	return &Engine{logger: zerolog.Nop()}
}

// SetLogger attaches a logger for per-call debug output. The engine logs
// nothing by default.
func (e *Engine) SetLogger(logger zerolog.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logger = logger
}

// Initialize builds the decision policy and overlay renderer from the
// configuration. It is idempotent: calling it again with an identical
// configuration is a no-op, while a changed configuration rebuilds the
// policy.
func (e *Engine) Initialize(cfg Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.classifier != nil && cfg == e.config {
		return nil
	}

	policy, err := classifier.NewPolicy(cfg.Policy, cfg.Threshold)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	e.classifier = classifier.NewWithConfig(policy, classifier.Config{
		RegionWidth:  cfg.RegionWidth,
		RegionHeight: cfg.RegionHeight,
		Workers:      cfg.Workers,
	})
	e.renderer = overlay.NewRenderer(overlay.ForTaxonomy(policy.Taxonomy()))
	e.config = cfg

	e.logger.Debug().
		Str("policy", policy.Name()).
		Msg("engine initialized")
	return nil
}

// Result is the complete outcome of one classification call.
type Result struct {
	// LightPercentage and ShadowPercentage partition 100 within
	// floating-point tolerance.
	LightPercentage  float64 `json:"light_percentage"`
	ShadowPercentage float64 `json:"shadow_percentage"`

	// Counts holds per-label pixel counts for the active taxonomy.
	Counts map[classifier.Label]int `json:"-"`

	// Map is the full-resolution label map, Map[y][x].
	Map [][]classifier.Label `json:"-"`

	// Overlay is the false-color rendering of Map, same dimensions and
	// encoding as the input buffer.
	Overlay *imgio.Buffer `json:"-"`

	// Policy names the decision policy that produced the result.
	Policy string `json:"policy"`
}

// Classify labels every pixel of the buffer, aggregates coverage
// percentages and renders the overlay. The buffer is never mutated.
func (e *Engine) Classify(buf *imgio.Buffer) (*Result, error) {
	e.mu.RLock()
	cls := e.classifier
	renderer := e.renderer
	logger := e.logger
	e.mu.RUnlock()

	if cls == nil {
		return nil, ErrNotInitialized
	}

	start := time.Now()
	res, err := cls.Classify(buf)
	if err != nil {
		return nil, err
	}

	ov, err := renderer.Render(res.Map)
	if err != nil {
		return nil, fmt.Errorf("overlay rendering failed: %w", err)
	}

	logger.Debug().
		Str("policy", cls.Policy().Name()).
		Int("width", buf.Width).
		Int("height", buf.Height).
		Float64("light_pct", res.LightPercentage).
		Dur("elapsed", time.Since(start)).
		Msg("image classified")

	return &Result{
		LightPercentage:  res.LightPercentage,
		ShadowPercentage: res.ShadowPercentage,
		Counts:           res.Counts,
		Map:              res.Map,
		Overlay:          ov,
		Policy:           cls.Policy().Name(),
	}, nil
}

// Legend returns the active palette's label/color pairs for UI legends.
// It returns nil before initialization.
func (e *Engine) Legend() []overlay.LegendEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.classifier == nil {
		return nil
	}
	return e.renderer.Palette().Legend(e.classifier.Policy().Taxonomy())
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
