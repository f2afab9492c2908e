// Package memhw is an in-memory hardware image service.
//
// It behaves like a VA-API driver with CPU-only storage: images and surfaces
// are byte buffers from the shared pool, a buffer can be mapped by only one
// caller at a time, and PutImage converts NV12 into the surface's RGBX
// storage with the same transform the copy pipeline uses. It backs the tests
// and the "mem" backend of the vadem command.
package memhw

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/nicholasbishop/vadem/hw"
	"github.com/nicholasbishop/vadem/internal/access"
	"github.com/nicholasbishop/vadem/internal/dsp"
	"github.com/nicholasbishop/vadem/internal/planar"
	"github.com/nicholasbishop/vadem/internal/pool"
)

// Errors returned by the in-memory service.
var (
	ErrClosed = errors.New("memhw: service closed")
	ErrBusy   = errors.New("memhw: buffer is mapped")
)

type buffer struct {
	data   []byte
	mapped bool
	refs   int // images and surfaces sharing the storage
}

type surface struct {
	width, height int
	buf           hw.BufferID
}

// Service implements hw.Service. It is safe for concurrent use.
type Service struct {
	mu       sync.Mutex
	images   map[hw.ImageID]hw.Descriptor
	buffers  map[hw.BufferID]*buffer
	surfaces map[hw.SurfaceID]*surface
	closed   bool
}

var _ hw.Service = (*Service)(nil)

// New returns an empty service.
func New() *Service {
	return &Service{
		images:   make(map[hw.ImageID]hw.Descriptor),
		buffers:  make(map[hw.BufferID]*buffer),
		surfaces: make(map[hw.SurfaceID]*surface),
	}
}

// recycle returns released storage to the shared pool.
var recycle = pool.Put

func (s *Service) newBuffer(size int) hw.BufferID {
	id := hw.BufferID(uuid.NewString())
	s.buffers[id] = &buffer{data: pool.GetZeroed(size), refs: 1}
	return id
}

func (s *Service) release(id hw.BufferID) {
	b, ok := s.buffers[id]
	if !ok {
		return
	}
	b.refs--
	if b.refs > 0 {
		return
	}
	delete(s.buffers, id)
	recycle(b.data)
}

// CreateImage allocates a zeroed image. NV12 and the packed RGB formats are
// supported.
func (s *Service) CreateImage(format hw.FourCC, width, height int) (hw.Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return hw.Descriptor{}, ErrClosed
	}

	id := hw.ImageID(uuid.NewString())
	var d hw.Descriptor
	var err error
	switch {
	case format.IsSemiPlanar():
		d, err = hw.NV12Descriptor(id, "", width, height)
	case format.IsPackedRGB():
		d, err = hw.PackedDescriptor(id, "", format, width, height)
	default:
		err = fmt.Errorf("%w: unsupported fourcc %s", hw.ErrInvalidImageFormat, format)
	}
	if err != nil {
		return hw.Descriptor{}, err
	}
	d.Buffer = s.newBuffer(d.DataSize)
	s.images[id] = d
	return d, nil
}

// DestroyImage releases the image. Storage shared with a surface stays alive
// until the surface is destroyed too.
func (s *Service) DestroyImage(id hw.ImageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.images[id]
	if !ok {
		return fmt.Errorf("%w: image %s", hw.ErrNotFound, id)
	}
	if b := s.buffers[d.Buffer]; b != nil && b.mapped && b.refs == 1 {
		return fmt.Errorf("%w: destroy image %s", ErrBusy, id)
	}
	delete(s.images, id)
	s.release(d.Buffer)
	return nil
}

// Describe returns the image's descriptor.
func (s *Service) Describe(id hw.ImageID) (hw.Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.images[id]
	if !ok {
		return hw.Descriptor{}, fmt.Errorf("%w: image %s", hw.ErrNotFound, id)
	}
	return d, nil
}

// Map returns the buffer's storage. A second Map before Unmap fails.
func (s *Service) Map(id hw.BufferID) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("%w: %w", hw.ErrMappingFailed, ErrClosed)
	}
	b, ok := s.buffers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %w: buffer %s", hw.ErrMappingFailed, hw.ErrNotFound, id)
	}
	if b.mapped {
		return nil, fmt.Errorf("%w: buffer %s is already mapped", hw.ErrMappingFailed, id)
	}
	b.mapped = true
	return b.data, nil
}

// Unmap ends a mapping started by Map.
func (s *Service) Unmap(id hw.BufferID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buffers[id]
	if !ok {
		return fmt.Errorf("%w: %w: buffer %s", hw.ErrMappingFailed, hw.ErrNotFound, id)
	}
	if !b.mapped {
		return fmt.Errorf("%w: buffer %s is not mapped", hw.ErrMappingFailed, id)
	}
	b.mapped = false
	return nil
}

// IsMapped reports whether the buffer currently has a live mapping.
func (s *Service) IsMapped(id hw.BufferID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buffers[id]
	return ok && b.mapped
}

// CreateSurface allocates a zeroed RGBX surface.
func (s *Service) CreateSurface(width, height int) (hw.SurfaceID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("%w: surface %dx%d", hw.ErrInvalidImageFormat, width, height)
	}
	id := hw.SurfaceID(uuid.NewString())
	s.surfaces[id] = &surface{
		width:  width,
		height: height,
		buf:    s.newBuffer(width * height * 4),
	}
	return id, nil
}

// DestroySurface releases the surface. Images derived from it keep the
// storage alive.
func (s *Service) DestroySurface(id hw.SurfaceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sf, ok := s.surfaces[id]
	if !ok {
		return fmt.Errorf("%w: surface %s", hw.ErrNotFound, id)
	}
	delete(s.surfaces, id)
	s.release(sf.buf)
	return nil
}

// DeriveImage returns an RGBX image aliasing the surface's storage.
func (s *Service) DeriveImage(id hw.SurfaceID) (hw.Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return hw.Descriptor{}, ErrClosed
	}
	sf, ok := s.surfaces[id]
	if !ok {
		return hw.Descriptor{}, fmt.Errorf("%w: surface %s", hw.ErrNotFound, id)
	}
	img := hw.ImageID(uuid.NewString())
	d, err := hw.PackedDescriptor(img, sf.buf, hw.FourCCRGBX, sf.width, sf.height)
	if err != nil {
		return hw.Descriptor{}, err
	}
	s.buffers[sf.buf].refs++
	s.images[img] = d
	return d, nil
}

// PutImage copies the whole image into the surface. NV12 sources go through
// the BT.601 transform; packed sources are copied channel by channel. The
// fourth byte of each surface pixel is set to zero.
func (s *Service) PutImage(sid hw.SurfaceID, iid hw.ImageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	sf, ok := s.surfaces[sid]
	if !ok {
		return fmt.Errorf("%w: surface %s", hw.ErrNotFound, sid)
	}
	d, ok := s.images[iid]
	if !ok {
		return fmt.Errorf("%w: image %s", hw.ErrNotFound, iid)
	}
	if d.Width != sf.width || d.Height != sf.height {
		return fmt.Errorf("%w: image %dx%d, surface %dx%d", hw.ErrInvalidImageFormat, d.Width, d.Height, sf.width, sf.height)
	}
	src, dst := s.buffers[d.Buffer], s.buffers[sf.buf]
	if src.mapped || dst.mapped {
		return fmt.Errorf("%w: put image %s", ErrBusy, iid)
	}
	if d.Buffer == sf.buf {
		return nil
	}

	capacity := sf.width * sf.height * 4
	write := func(x, y int, px dsp.RGB) error {
		off := (y*sf.width + x) * 4
		for i, v := range [4]uint8{px.R, px.G, px.B, 0} {
			if err := access.Set(dst.data, capacity, off+i, v); err != nil {
				return err
			}
		}
		return nil
	}

	switch {
	case d.Format.IsSemiPlanar():
		l, err := planar.ForDescriptor(d)
		if err != nil {
			return err
		}
		for y := 0; y < d.Height; y++ {
			for x := 0; x < d.Width; x++ {
				yv, cb, cr, err := l.Sample(src.data, x, y)
				if err != nil {
					return err
				}
				if err := write(x, y, dsp.ToRGB(yv, cb, cr)); err != nil {
					return err
				}
			}
		}
	default:
		bpp := d.BytesPerPixel()
		for y := 0; y < d.Height; y++ {
			for x := 0; x < d.Width; x++ {
				off := (y*d.Width + x) * bpp
				var px [3]uint8
				for i := range px {
					v, err := access.Get(src.data, d.DataSize, off+i)
					if err != nil {
						return err
					}
					px[i] = v
				}
				if err := write(x, y, dsp.RGB{R: px[0], G: px[1], B: px[2]}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Close releases all storage. Every later call fails with ErrClosed.
// Buffers that are still mapped are dropped rather than pooled, so a caller
// holding the mapped slice never shares it with a later allocation.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for id, b := range s.buffers {
		if !b.mapped {
			recycle(b.data)
		}
		delete(s.buffers, id)
	}
	clear(s.images)
	clear(s.surfaces)
	return nil
}
