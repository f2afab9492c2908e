package hw

import (
	"errors"
	"fmt"
)

// Mapper maps and unmaps buffers into CPU-visible memory.
type Mapper interface {
	// Map returns the buffer contents. The slice is valid until Unmap.
	Map(buf BufferID) ([]byte, error)
	// Unmap releases a mapping obtained from Map.
	Unmap(buf BufferID) error
}

// Mapping is a scoped CPU view of a buffer. Create it with Map and release it
// with Close, normally deferred right after a successful Map.
//
// A Mapping must not outlive the scope that created it, and at most one
// Mapping may be live per buffer.
type Mapping struct {
	m    Mapper
	buf  BufferID
	mem  []byte
	open bool
}

// Map acquires a mapping of buf.
func Map(m Mapper, buf BufferID) (*Mapping, error) {
	mem, err := m.Map(buf)
	if err != nil {
		if errors.Is(err, ErrMappingFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: map buffer %s: %w", ErrMappingFailed, buf, err)
	}
	return &Mapping{m: m, buf: buf, mem: mem, open: true}, nil
}

// Bytes returns the mapped memory, or nil once the mapping is closed.
func (mp *Mapping) Bytes() []byte {
	return mp.mem
}

// Buffer returns the mapped buffer's ID.
func (mp *Mapping) Buffer() BufferID {
	return mp.buf
}

// Close releases the mapping. Calling Close more than once is a no-op.
func (mp *Mapping) Close() error {
	if !mp.open {
		return nil
	}
	mp.open = false
	mp.mem = nil
	if err := mp.m.Unmap(mp.buf); err != nil {
		if errors.Is(err, ErrMappingFailed) {
			return err
		}
		return fmt.Errorf("%w: unmap buffer %s: %w", ErrMappingFailed, mp.buf, err)
	}
	return nil
}

// WithMapping maps buf, calls fn with its memory and unmaps it on every exit
// path, including a panic in fn. If both fn and the unmap fail, the returned
// error carries both.
func WithMapping(m Mapper, buf BufferID, fn func(mem []byte) error) (err error) {
	mp, err := Map(m, buf)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := mp.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(mp.Bytes())
}
