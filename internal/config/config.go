// Package config loads ResultSettings and the parallel-aggregation hint
// from a YAML file, so a deployed binary can retune filtering thresholds
// without a recompile.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a ctrack.yaml configuration file.
type File struct {
	NonCenterPercent                int     `yaml:"non_center_percent"`
	MinPercentActiveExclusive       float64 `yaml:"min_percent_active_exclusive"`
	PercentExcludeFastestActiveExcl float64 `yaml:"percent_exclude_fastest_active_exclusive"`
	ParallelAggregation             *bool   `yaml:"parallel_aggregation"`
}

// Load reads and parses path as a ctrack.yaml configuration file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("ctrack: reading config %q: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("ctrack: parsing config %q: %w", path, err)
	}
	return f, nil
}
