package config

import (
	_ "embed"
)

//go:embed sample_config.yaml
var sampleConfig string

// SampleConfig returns an annotated example configuration.
func SampleConfig() string {
	return sampleConfig
}
