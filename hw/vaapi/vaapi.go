//go:build linux && cgo && vaapi

package vaapi

/*
#cgo pkg-config: libva libva-drm

#include <stdlib.h>
#include <va/va.h>
#include <va/va_drm.h>
*/
import "C"

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"unsafe"

	"github.com/nicholasbishop/vadem/hw"
)

// Service is an initialized VA display on a DRM render node.
type Service struct {
	mu      sync.Mutex
	dev     *os.File
	display C.VADisplay
	images  map[hw.ImageID]hw.Descriptor
	sizes   map[hw.BufferID]int // data size of every known buffer
	closed  bool

	major, minor int
}

var _ hw.Service = (*Service)(nil)

// Open opens the DRM device and initializes libva on it.
func Open(device string) (hw.Service, error) {
	f, err := os.OpenFile(device, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("vaapi: open %s: %w", device, err)
	}
	display := C.vaGetDisplayDRM(C.int(f.Fd()))
	if display == nil {
		f.Close()
		return nil, fmt.Errorf("vaapi: vaGetDisplayDRM %s failed", device)
	}
	var major, minor C.int
	if err := check("vaInitialize", C.vaInitialize(display, &major, &minor)); err != nil {
		f.Close()
		return nil, err
	}
	return &Service{
		dev:     f,
		display: display,
		images:  make(map[hw.ImageID]hw.Descriptor),
		sizes:   make(map[hw.BufferID]int),
		major:   int(major),
		minor:   int(minor),
	}, nil
}

// Version returns the libva version reported by vaInitialize.
func (s *Service) Version() (major, minor int) { return s.major, s.minor }

func check(op string, st C.VAStatus) error {
	if st == C.VA_STATUS_SUCCESS {
		return nil
	}
	return &StatusError{Op: op, Status: int(st), Msg: C.GoString(C.vaErrorStr(st))}
}

func formatID(v C.uint) string { return strconv.FormatUint(uint64(v), 10) }

func parseID(kind, s string) (C.uint, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", hw.ErrNotFound, kind, s)
	}
	return C.uint(v), nil
}

func describe(img *C.VAImage) (hw.Descriptor, error) {
	return hw.NewDescriptor(hw.Descriptor{
		Image:        hw.ImageID(formatID(C.uint(img.image_id))),
		Buffer:       hw.BufferID(formatID(C.uint(img.buf))),
		Format:       hw.FourCC(img.format.fourcc),
		Width:        int(img.width),
		Height:       int(img.height),
		DataSize:     int(img.data_size),
		NumPlanes:    int(img.num_planes),
		BitsPerPixel: int(img.format.bits_per_pixel),
		Depth:        int(img.format.depth),
	})
}

// track registers an image returned by the driver. Images whose layout the
// pipeline cannot handle are destroyed again.
func (s *Service) track(img *C.VAImage) (hw.Descriptor, error) {
	d, err := describe(img)
	if err != nil {
		C.vaDestroyImage(s.display, img.image_id)
		return hw.Descriptor{}, err
	}
	s.images[d.Image] = d
	s.sizes[d.Buffer] = d.DataSize
	return d, nil
}

func imageFormat(format hw.FourCC) (C.VAImageFormat, error) {
	var f C.VAImageFormat
	f.fourcc = C.uint32_t(format)
	f.byte_order = C.VA_LSB_FIRST
	switch {
	case format.IsSemiPlanar():
		f.bits_per_pixel = 12
	case format == hw.FourCCRGB3:
		f.bits_per_pixel = 24
		f.depth = 24
	case format.IsPackedRGB():
		f.bits_per_pixel = 24
		f.depth = 32
		if format == hw.FourCCRGBA {
			f.bits_per_pixel = 32
			f.alpha_mask = 0xff000000
		}
	default:
		return f, fmt.Errorf("%w: unsupported fourcc %s", hw.ErrInvalidImageFormat, format)
	}
	if format.IsPackedRGB() {
		f.red_mask = 0xff
		f.green_mask = 0xff00
		f.blue_mask = 0xff0000
	}
	return f, nil
}

// CreateImage calls vaCreateImage.
func (s *Service) CreateImage(format hw.FourCC, width, height int) (hw.Descriptor, error) {
	if format.IsSemiPlanar() && (width%2 != 0 || height%2 != 0) {
		return hw.Descriptor{}, fmt.Errorf("%w: NV12 dimensions %dx%d must be even", hw.ErrInvalidImageFormat, width, height)
	}
	f, err := imageFormat(format)
	if err != nil {
		return hw.Descriptor{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return hw.Descriptor{}, os.ErrClosed
	}
	var img C.VAImage
	if err := check("vaCreateImage", C.vaCreateImage(s.display, &f, C.int(width), C.int(height), &img)); err != nil {
		return hw.Descriptor{}, err
	}
	return s.track(&img)
}

// DestroyImage calls vaDestroyImage.
func (s *Service) DestroyImage(id hw.ImageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.images[id]
	if !ok {
		return fmt.Errorf("%w: image %s", hw.ErrNotFound, id)
	}
	vid, err := parseID("image", string(id))
	if err != nil {
		return err
	}
	if err := check("vaDestroyImage", C.vaDestroyImage(s.display, C.VAImageID(vid))); err != nil {
		return err
	}
	delete(s.images, id)
	delete(s.sizes, d.Buffer)
	return nil
}

// Describe returns the descriptor recorded when the image was created.
func (s *Service) Describe(id hw.ImageID) (hw.Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.images[id]
	if !ok {
		return hw.Descriptor{}, fmt.Errorf("%w: image %s", hw.ErrNotFound, id)
	}
	return d, nil
}

// Map calls vaMapBuffer. The returned slice aliases driver memory and is only
// valid until Unmap.
func (s *Service) Map(id hw.BufferID) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	size, ok := s.sizes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %w: buffer %s", hw.ErrMappingFailed, hw.ErrNotFound, id)
	}
	vid, err := parseID("buffer", string(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", hw.ErrMappingFailed, err)
	}
	var p unsafe.Pointer
	if err := check("vaMapBuffer", C.vaMapBuffer(s.display, C.VABufferID(vid), &p)); err != nil {
		return nil, fmt.Errorf("%w: %w", hw.ErrMappingFailed, err)
	}
	return unsafe.Slice((*byte)(p), size), nil
}

// Unmap calls vaUnmapBuffer.
func (s *Service) Unmap(id hw.BufferID) error {
	vid, err := parseID("buffer", string(id))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return check("vaUnmapBuffer", C.vaUnmapBuffer(s.display, C.VABufferID(vid)))
}

// CreateSurface allocates one VA_RT_FORMAT_RGB32 surface.
func (s *Service) CreateSurface(width, height int) (hw.SurfaceID, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("%w: surface %dx%d", hw.ErrInvalidImageFormat, width, height)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var sid C.VASurfaceID
	if err := check("vaCreateSurfaces", C.vaCreateSurfaces(s.display, C.VA_RT_FORMAT_RGB32,
		C.uint(width), C.uint(height), &sid, 1, nil, 0)); err != nil {
		return "", err
	}
	return hw.SurfaceID(formatID(C.uint(sid))), nil
}

// DestroySurface calls vaDestroySurfaces.
func (s *Service) DestroySurface(id hw.SurfaceID) error {
	vid, err := parseID("surface", string(id))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sid := C.VASurfaceID(vid)
	return check("vaDestroySurfaces", C.vaDestroySurfaces(s.display, &sid, 1))
}

// PutImage copies the full image into the surface with vaPutImage.
func (s *Service) PutImage(surface hw.SurfaceID, image hw.ImageID) error {
	sid, err := parseID("surface", string(surface))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.images[image]
	if !ok {
		return fmt.Errorf("%w: image %s", hw.ErrNotFound, image)
	}
	iid, err := parseID("image", string(image))
	if err != nil {
		return err
	}
	w, h := C.uint(d.Width), C.uint(d.Height)
	return check("vaPutImage", C.vaPutImage(s.display, C.VASurfaceID(sid), C.VAImageID(iid),
		0, 0, w, h, 0, 0, w, h))
}

// DeriveImage calls vaDeriveImage.
func (s *Service) DeriveImage(surface hw.SurfaceID) (hw.Descriptor, error) {
	sid, err := parseID("surface", string(surface))
	if err != nil {
		return hw.Descriptor{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var img C.VAImage
	if err := check("vaDeriveImage", C.vaDeriveImage(s.display, C.VASurfaceID(sid), &img)); err != nil {
		return hw.Descriptor{}, err
	}
	return s.track(&img)
}

// Close terminates the display and closes the device.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	err := check("vaTerminate", C.vaTerminate(s.display))
	if cerr := s.dev.Close(); err == nil {
		err = cerr
	}
	return err
}
