//go:build !(linux && cgo && vaapi)

package vaapi

import "github.com/nicholasbishop/vadem/hw"

// Open always fails in builds without libva.
func Open(device string) (hw.Service, error) {
	return nil, ErrUnavailable
}
