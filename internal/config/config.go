// Package config loads the run configuration of the vadem command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Backends.
const (
	BackendMem   = "mem"
	BackendVAAPI = "vaapi"
)

// Config is the complete run configuration.
type Config struct {
	Device        string         `yaml:"device"`         // DRM render node for the vaapi backend
	Backend       string         `yaml:"backend"`        // mem or vaapi
	Input         string         `yaml:"input"`          // image loaded by "run"
	SanityOutput  string         `yaml:"sanity_output"`  // input read back from the NV12 image
	Output        string         `yaml:"output"`         // surface contents after PutImage
	SurfaceFormat string         `yaml:"surface_format"` // render target format, only rgb32
	Gradient      GradientConfig `yaml:"gradient"`
}

// GradientConfig selects the test pattern written by "run" and "gradient".
type GradientConfig struct {
	Kind      string `yaml:"kind"` // cbcr or y
	Luma      int    `yaml:"luma"` // constant luma of the cbcr pattern
	Output    string `yaml:"output"`
	RawOutput string `yaml:"raw_output"` // raw NV12 dump, empty to skip
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Device:        "/dev/dri/renderD128",
		Backend:       BackendMem,
		Input:         "data/color_bus_buddy_256_square.png",
		SanityOutput:  "input.png",
		Output:        "output.png",
		SurfaceFormat: "rgb32",
		Gradient: GradientConfig{
			Kind:      "cbcr",
			Luma:      128,
			Output:    "gradient.png",
			RawOutput: "gradient.raw",
		},
	}
}

// Load reads a YAML configuration file. Fields missing from the file keep
// their default values. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}
