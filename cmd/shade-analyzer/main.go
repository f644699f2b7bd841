package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	shadeanalyzer "github.com/agrovision/shade-analyzer"
	"github.com/agrovision/shade-analyzer/internal/config"
	"github.com/agrovision/shade-analyzer/internal/utils"
	"github.com/agrovision/shade-analyzer/pkg/imgio"
)

func main() {
	var in, outDir, policy, configPath, ext string
	var threshold float64
	var region string
	var workers, quality, maxDim int
	var lossless, legend, verbose bool

	flag.StringVar(&in, "in", "", "input plot photograph (jpg/png/webp)")
	flag.StringVar(&outDir, "out", "", "output directory")
	flag.StringVar(&policy, "policy", "", "decision policy: threshold|heuristic|rule-based-4class|trained")
	flag.Float64Var(&threshold, "threshold", 0, "brightness threshold for the threshold policy (0=default 130)")
	flag.StringVar(&region, "region", "", "region tile size WxH for region-level policies, e.g. 10x20")
	flag.IntVar(&workers, "workers", 0, "worker goroutines for the image pass (0=one per CPU)")
	flag.StringVar(&ext, "ext", "", "overlay output format: png|jpg|webp")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP overlay quality (1-100)")
	flag.BoolVar(&lossless, "lossless", false, "WebP lossless overlay output")
	flag.IntVar(&maxDim, "maxdim", 0, "downscale input so its long side is at most this many px (0=off)")
	flag.StringVar(&configPath, "config", "", "configuration file (json or yaml)")
	flag.BoolVar(&legend, "legend", false, "print the overlay color legend and exit")
	flag.BoolVar(&verbose, "v", false, "enable debug logging")

	flag.Parse()

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load configuration")
		}
		cfg = loaded
	}

	// Flags override the configuration file.
	if policy != "" {
		cfg.Engine.Policy = policy
	}
	if threshold > 0 {
		cfg.Engine.Threshold = threshold
	}
	if region != "" {
		w, h, err := parseRegion(region)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid -region")
		}
		cfg.Engine.RegionWidth = w
		cfg.Engine.RegionHeight = h
	}
	if workers > 0 {
		cfg.Engine.Workers = workers
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if ext != "" {
		cfg.Output.Format = ext
	}
	if quality > 0 {
		cfg.Output.Quality = quality
	}
	if lossless {
		cfg.Output.Lossless = true
	}
	if maxDim > 0 {
		cfg.Output.MaxDimension = maxDim
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	engine := shadeanalyzer.New()
	engine.SetLogger(logger)
	if err := engine.Initialize(shadeanalyzer.Config{
		Policy:       cfg.Engine.Policy,
		Threshold:    cfg.Engine.Threshold,
		RegionWidth:  cfg.Engine.RegionWidth,
		RegionHeight: cfg.Engine.RegionHeight,
		Workers:      cfg.Engine.Workers,
	}); err != nil {
		logger.Fatal().Err(err).Msg("engine initialization failed")
	}

	if legend {
		for _, entry := range engine.Legend() {
			fmt.Printf("%-12s #%02x%02x%02x\n", entry.Label, entry.Color.R, entry.Color.G, entry.Color.B)
		}
		return
	}

	if in == "" {
		logger.Fatal().Msgf("usage: %s -in plot.jpg [-policy threshold|heuristic|rule-based-4class|trained] [-out outdir]", filepath.Base(os.Args[0]))
	}
	if !utils.IsImageFile(in) {
		logger.Fatal().Str("file", in).Msg("input does not look like an image file")
	}
	if err := utils.EnsureDir(cfg.Output.Dir); err != nil {
		logger.Fatal().Err(err).Msg("failed to create output directory")
	}

	img, err := imgio.Load(in)
	if err != nil {
		logger.Fatal().Err(err).Str("file", in).Msg("failed to load image")
	}
	img = imgio.Downscale(img, cfg.Output.MaxDimension)
	buf := imgio.FromImage(img)

	result, err := engine.Classify(buf)
	if err != nil {
		logger.Fatal().Err(err).Msg("classification failed")
	}

	logger.Info().
		Str("policy", result.Policy).
		Int("width", buf.Width).
		Int("height", buf.Height).
		Float64("light_pct", result.LightPercentage).
		Float64("shadow_pct", result.ShadowPercentage).
		Msg("plot classified")

	overlayPath := utils.OverlayFilename(in, cfg.Output.Dir, cfg.Output.Format)
	if err := imgio.Save(imgio.ToImage(result.Overlay), overlayPath, cfg.Output.Format, cfg.Output.Quality, cfg.Output.Lossless); err != nil {
		logger.Fatal().Err(err).Str("file", overlayPath).Msg("failed to save overlay")
	}
	logger.Info().Str("file", overlayPath).Msg("wrote overlay")

	summary := struct {
		Input string `json:"input"`
		*shadeanalyzer.Result
		Counts map[string]int `json:"counts"`
	}{Input: in, Result: result, Counts: map[string]int{}}
	for label, n := range result.Counts {
		summary.Counts[label.String()] = n
	}

	js, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to marshal summary")
	}
	summaryPath := utils.SummaryFilename(in, cfg.Output.Dir)
	if err := os.WriteFile(summaryPath, js, 0o644); err != nil {
		logger.Fatal().Err(err).Str("file", summaryPath).Msg("failed to write summary")
	}
	logger.Info().Str("file", summaryPath).Msg("wrote summary")
}

// parseRegion parses a WxH tile size such as "10x20".
func parseRegion(s string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected WxH, got %q", s)
	}
	var w, h int
	if _, err := fmt.Sscanf(parts[0], "%d", &w); err != nil {
		return 0, 0, fmt.Errorf("bad width in %q", s)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &h); err != nil {
		return 0, 0, fmt.Errorf("bad height in %q", s)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("region dimensions must be positive")
	}
	return w, h, nil
}
