// Package access provides bounds-checked byte access to mapped image buffers.
//
// Every read or write into a mapped buffer goes through this package. The
// capacity passed to each call is the buffer size declared by the image
// descriptor, not the length of the slice, so an offset that is valid for the
// slice but past the declared image data is still rejected.
package access

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when an offset is not below the buffer capacity.
var ErrOutOfBounds = errors.New("vadem: image offset out of bounds")

// Check returns offset unchanged if 0 <= offset < capacity.
func Check(capacity, offset int) (int, error) {
	if offset < 0 || offset >= capacity {
		return 0, fmt.Errorf("%w: %d >= %d", ErrOutOfBounds, offset, capacity)
	}
	return offset, nil
}

// Get reads the byte at offset. The read is not performed when the offset is
// out of bounds.
func Get(buf []byte, capacity, offset int) (byte, error) {
	if _, err := Check(capacity, offset); err != nil {
		return 0, err
	}
	// The declared capacity should never exceed the mapping, but a
	// misreporting backend must not turn into a panic.
	if offset >= len(buf) {
		return 0, fmt.Errorf("%w: %d >= mapped length %d", ErrOutOfBounds, offset, len(buf))
	}
	return buf[offset], nil
}

// Set writes val at offset. Nothing is written when the offset is out of
// bounds.
func Set(buf []byte, capacity, offset int, val byte) error {
	if _, err := Check(capacity, offset); err != nil {
		return err
	}
	if offset >= len(buf) {
		return fmt.Errorf("%w: %d >= mapped length %d", ErrOutOfBounds, offset, len(buf))
	}
	buf[offset] = val
	return nil
}
