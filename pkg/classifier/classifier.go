// Package classifier assigns a light/shadow label to every pixel of a plot
// photograph and aggregates the result into coverage percentages. Decision
// policies are pluggable: a calibrated brightness threshold (default), a
// weighted heuristic score, a rule-based four-class split and an
// experimental trained network all sit behind the same interface.
package classifier

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/agrovision/shade-analyzer/pkg/features"
	"github.com/agrovision/shade-analyzer/pkg/imgio"
)

// Default region tile size for region-level policies.
const (
	DefaultRegionWidth  = 10
	DefaultRegionHeight = 20
)

// Config holds classification pass parameters.
type Config struct {
	// RegionWidth and RegionHeight set the tile size for region-level
	// policies. Pixel-level policies ignore them.
	RegionWidth  int
	RegionHeight int

	// Workers caps the number of goroutines used for the image pass.
	// Zero means one worker per CPU.
	Workers int
}

// Classifier runs the full image pass for one decision policy. It holds no
// per-call state, so a single Classifier may serve concurrent calls.
type Classifier struct {
	policy    Policy
	extractor *features.Extractor
	config    Config
}

// New creates a classifier with default configuration.
func New(policy Policy) *Classifier {
	return NewWithConfig(policy, Config{})
}

// NewWithConfig creates a classifier with custom configuration.
func NewWithConfig(policy Policy, config Config) *Classifier {
	if config.RegionWidth <= 0 {
		config.RegionWidth = DefaultRegionWidth
	}
	if config.RegionHeight <= 0 {
		config.RegionHeight = DefaultRegionHeight
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	return &Classifier{
		policy:    policy,
		extractor: features.NewExtractor(),
		config:    config,
	}
}

// Policy returns the classifier's decision policy.
func (c *Classifier) Policy() Policy { return c.policy }

// Result is the aggregate outcome of one classification pass.
type Result struct {
	// LightPercentage and ShadowPercentage partition 100: every pixel
	// belongs to exactly one of the two groups whichever taxonomy is
	// active.
	LightPercentage  float64 `json:"light_percentage"`
	ShadowPercentage float64 `json:"shadow_percentage"`

	// Counts holds the per-label pixel counts for the active taxonomy.
	Counts map[Label]int `json:"counts"`

	// Map is the full-resolution label map, Map[y][x] for every pixel.
	Map [][]Label `json:"-"`
}

// Classify labels every pixel of the buffer and aggregates counts and
// percentages. The buffer is read-only to the classifier and may be reused
// by the caller afterwards.
func (c *Classifier) Classify(buf *imgio.Buffer) (*Result, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	labelMap := make([][]Label, buf.Height)
	for y := range labelMap {
		labelMap[y] = make([]Label, buf.Width)
	}

	var counts [numLabels]int
	switch p := c.policy.(type) {
	case PixelPolicy:
		counts = c.classifyPixels(buf, p, labelMap)
	case RegionPolicy:
		counts = c.classifyRegions(buf, p, labelMap)
	default:
		return nil, fmt.Errorf("policy %q classifies neither pixels nor regions", c.policy.Name())
	}

	total := buf.Width * buf.Height
	lightCount := 0
	resultCounts := make(map[Label]int, numLabels)
	for l := Label(0); l < numLabels; l++ {
		if counts[l] == 0 {
			continue
		}
		resultCounts[l] = counts[l]
		if l.IsLight() {
			lightCount += counts[l]
		}
	}

	lightPct := float64(lightCount) / float64(total) * 100
	return &Result{
		LightPercentage:  lightPct,
		ShadowPercentage: float64(total-lightCount) / float64(total) * 100,
		Counts:           resultCounts,
		Map:              labelMap,
	}, nil
}

// classifyPixels labels every pixel independently, splitting the image into
// horizontal row bands across workers. Each worker keeps its own partial
// counts; the sums are folded after the pass, so worker order never affects
// the result.
func (c *Classifier) classifyPixels(buf *imgio.Buffer, policy PixelPolicy, labelMap [][]Label) [numLabels]int {
	workers := c.config.Workers
	if workers > buf.Height {
		workers = buf.Height
	}
	rowsPerWorker := (buf.Height + workers - 1) / workers

	partial := make([][numLabels]int, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			startRow := workerID * rowsPerWorker
			endRow := startRow + rowsPerWorker
			if endRow > buf.Height {
				endRow = buf.Height
			}

			var local [numLabels]int
			for y := startRow; y < endRow; y++ {
				for x := 0; x < buf.Width; x++ {
					r, g, b, _ := buf.At(x, y)
					label := policy.ClassifyPixel(r, g, b)
					labelMap[y][x] = label
					local[label]++
				}
			}
			partial[workerID] = local
		}(w)
	}
	wg.Wait()

	return sumCounts(partial)
}

// classifyRegions tiles the image into non-overlapping regions, labels each
// from its feature vector and broadcasts the label to every pixel in the
// tile. Remainder tiles at the right and bottom edges are clipped to the
// canvas so no pixel is left unlabeled. Workers each take a band of region
// rows.
func (c *Classifier) classifyRegions(buf *imgio.Buffer, policy RegionPolicy, labelMap [][]Label) [numLabels]int {
	regionRows := (buf.Height + c.config.RegionHeight - 1) / c.config.RegionHeight
	regionCols := (buf.Width + c.config.RegionWidth - 1) / c.config.RegionWidth

	workers := c.config.Workers
	if workers > regionRows {
		workers = regionRows
	}
	rowsPerWorker := (regionRows + workers - 1) / workers

	partial := make([][numLabels]int, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			startRow := workerID * rowsPerWorker
			endRow := startRow + rowsPerWorker
			if endRow > regionRows {
				endRow = regionRows
			}

			var local [numLabels]int
			for ry := startRow; ry < endRow; ry++ {
				for rx := 0; rx < regionCols; rx++ {
					region := features.Region{
						X:      rx * c.config.RegionWidth,
						Y:      ry * c.config.RegionHeight,
						Width:  c.config.RegionWidth,
						Height: c.config.RegionHeight,
					}.Clip(buf.Width, buf.Height)

					vec := c.extractor.RegionFeatures(buf, region)
					label := policy.ClassifyRegion(vec)

					for y := region.Y; y < region.Y+region.Height; y++ {
						for x := region.X; x < region.X+region.Width; x++ {
							labelMap[y][x] = label
						}
					}
					local[label] += region.Area()
				}
			}
			partial[workerID] = local
		}(w)
	}
	wg.Wait()

	return sumCounts(partial)
}

func sumCounts(partial [][numLabels]int) [numLabels]int {
	var total [numLabels]int
	for _, p := range partial {
		for l, n := range p {
			total[l] += n
		}
	}
	return total
}
