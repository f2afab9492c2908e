package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks cfg.
func Validate(cfg *Config) error {
	switch cfg.Backend {
	case BackendMem:
	case BackendVAAPI:
		if cfg.Device == "" {
			return fmt.Errorf("%w: device is required for the vaapi backend", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: backend %q, want %q or %q", ErrInvalid, cfg.Backend, BackendMem, BackendVAAPI)
	}

	if cfg.SurfaceFormat != "rgb32" {
		return fmt.Errorf("%w: surface_format %q, only rgb32 is supported", ErrInvalid, cfg.SurfaceFormat)
	}

	switch cfg.Gradient.Kind {
	case "cbcr", "y":
	default:
		return fmt.Errorf("%w: gradient.kind %q, want cbcr or y", ErrInvalid, cfg.Gradient.Kind)
	}
	if cfg.Gradient.Luma < 0 || cfg.Gradient.Luma > 255 {
		return fmt.Errorf("%w: gradient.luma %d out of range [0, 255]", ErrInvalid, cfg.Gradient.Luma)
	}
	return nil
}
