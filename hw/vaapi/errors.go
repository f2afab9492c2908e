// Package vaapi is a hardware image service backed by libva.
//
// The binding is built only with cgo and the vaapi build tag on Linux:
//
//	go build -tags vaapi ./...
//
// It needs the libva and libva-drm development packages. Without the tag,
// Open returns ErrUnavailable.
package vaapi

import (
	"errors"
	"fmt"
)

// DefaultDevice is the first DRM render node.
const DefaultDevice = "/dev/dri/renderD128"

// ErrUnavailable is returned by Open when the binary was built without
// libva support.
var ErrUnavailable = errors.New("vaapi: libva support not compiled in (build with -tags vaapi)")

// StatusError is a failed libva call.
type StatusError struct {
	Op     string // libva function name
	Status int    // VAStatus code
	Msg    string // vaErrorStr text
}

func (e *StatusError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("vaapi: %s: VAStatus 0x%x", e.Op, e.Status)
	}
	return fmt.Sprintf("vaapi: %s: VAStatus 0x%x (%s)", e.Op, e.Status, e.Msg)
}
