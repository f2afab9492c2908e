package vadem

import (
	"errors"

	"github.com/nicholasbishop/vadem/hw"
	"github.com/nicholasbishop/vadem/internal/access"
)

// Errors returned by the copy pipeline.
var (
	// ErrOutOfBounds reports an offset at or past the buffer's declared size.
	ErrOutOfBounds = access.ErrOutOfBounds
	// ErrMappingFailed reports that a buffer could not be mapped or unmapped.
	ErrMappingFailed = hw.ErrMappingFailed
	// ErrInvalidImageFormat reports an image layout that cannot exist, such as
	// NV12 with an odd width.
	ErrInvalidImageFormat = hw.ErrInvalidImageFormat
	// ErrFormatMismatch reports a descriptor that does not match the requested
	// copy, or dimensions that differ between source and destination.
	ErrFormatMismatch = errors.New("vadem: format mismatch")
)
