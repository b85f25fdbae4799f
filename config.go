package nvdb

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/nvdb/distance"
	"github.com/hupe1980/nvdb/index"
)

// Config holds the settings needed to open a DB.
type Config struct {
	// SegmentsRoot is the directory committed segments are written under.
	SegmentsRoot string `yaml:"segments_root"`

	// StagingPath is the BadgerDB directory for staged inserts. Empty runs
	// the staging store in memory.
	StagingPath string `yaml:"staging_path"`

	// Dimension is the length of every vector.
	Dimension int `yaml:"dimension"`

	// Metric is the similarity metric used for search and stored with segments.
	Metric distance.Metric `yaml:"metric"`

	// FlushThreshold is the estimated resident footprint in bytes above
	// which an insert flushes the batch to a new segment.
	FlushThreshold uint64 `yaml:"flush_threshold"`
}

// DefaultConfig returns a Config with default values.
// Dimension has no default and must be set.
func DefaultConfig() Config {
	return Config{
		SegmentsRoot:   "data/segments",
		StagingPath:    "data/staging",
		Metric:         distance.Euclidean,
		FlushThreshold: index.DefaultFlushThreshold,
	}
}

// LoadConfig reads a YAML config from path on top of DefaultConfig.
// A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.SegmentsRoot == "" {
		return fmt.Errorf("%w: segments_root is required", ErrInvalidConfig)
	}
	if c.Dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive, got %d", ErrInvalidConfig, c.Dimension)
	}
	if !c.Metric.Valid() {
		return fmt.Errorf("%w: %w: %s", ErrInvalidConfig, ErrUnknownMetric, c.Metric)
	}
	return nil
}
