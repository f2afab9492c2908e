package hw

import (
	"errors"
	"fmt"
)

// Errors shared by all image service backends.
var (
	ErrMappingFailed      = errors.New("vadem: buffer mapping failed")
	ErrInvalidImageFormat = errors.New("vadem: invalid image format")
	ErrNotFound           = errors.New("vadem: no such image, buffer or surface")
)

// FourCC is a four character pixel format code, stored little-endian the way
// VA-API and V4L2 define them.
type FourCC uint32

// MakeFourCC packs four characters into a FourCC.
func MakeFourCC(a, b, c, d byte) FourCC {
	return FourCC(a) | FourCC(b)<<8 | FourCC(c)<<16 | FourCC(d)<<24
}

// Supported formats.
const (
	FourCCNV12 FourCC = 'N' | 'V'<<8 | '1'<<16 | '2'<<24
	FourCCRGBX FourCC = 'R' | 'G'<<8 | 'B'<<16 | 'X'<<24
	FourCCRGBA FourCC = 'R' | 'G'<<8 | 'B'<<16 | 'A'<<24
	FourCCRGB3 FourCC = 'R' | 'G'<<8 | 'B'<<16 | '3'<<24 // packed 24-bit
)

func (f FourCC) String() string {
	b := [4]byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08x", uint32(f))
		}
	}
	return string(b[:])
}

// IsSemiPlanar reports whether f is the 4:2:0 semi-planar luma/chroma layout.
func (f FourCC) IsSemiPlanar() bool { return f == FourCCNV12 }

// IsPackedRGB reports whether f stores one interleaved RGB pixel per
// 3 or 4 bytes with red first.
func (f FourCC) IsPackedRGB() bool {
	return f == FourCCRGBX || f == FourCCRGBA || f == FourCCRGB3
}

// ImageID, BufferID and SurfaceID are opaque backend handles.
type (
	ImageID   string
	BufferID  string
	SurfaceID string
)

// Descriptor describes how the bytes of one image buffer are laid out.
// It is created by NewDescriptor and never modified.
type Descriptor struct {
	Image        ImageID
	Buffer       BufferID
	Format       FourCC
	Width        int
	Height       int
	DataSize     int // total byte capacity of the buffer
	NumPlanes    int
	BitsPerPixel int
	Depth        int // color depth for packed formats (24 or 32), 0 otherwise
}

// BytesPerPixel returns the storage size of one pixel for packed formats and
// 0 for NV12.
func (d Descriptor) BytesPerPixel() int {
	if !d.Format.IsPackedRGB() {
		return 0
	}
	return d.Depth / 8
}

// NV12Size returns the byte size of a tightly packed w x h NV12 image.
func NV12Size(w, h int) int {
	return w*h + 2*(w/2)*(h/2)
}

// NewDescriptor validates d and returns it. Validation happens once here so
// that no downstream code sees an inconsistent descriptor.
func NewDescriptor(d Descriptor) (Descriptor, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return Descriptor{}, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidImageFormat, d.Width, d.Height)
	}
	switch {
	case d.Format.IsSemiPlanar():
		if d.Width%2 != 0 || d.Height%2 != 0 {
			return Descriptor{}, fmt.Errorf("%w: NV12 dimensions %dx%d must be even", ErrInvalidImageFormat, d.Width, d.Height)
		}
		if d.NumPlanes != 2 {
			return Descriptor{}, fmt.Errorf("%w: NV12 has %d planes, want 2", ErrInvalidImageFormat, d.NumPlanes)
		}
		if need := NV12Size(d.Width, d.Height); d.DataSize < need {
			return Descriptor{}, fmt.Errorf("%w: NV12 data size %d < %d", ErrInvalidImageFormat, d.DataSize, need)
		}
	case d.Format.IsPackedRGB():
		if d.Depth != 24 && d.Depth != 32 {
			return Descriptor{}, fmt.Errorf("%w: %s depth %d, want 24 or 32", ErrInvalidImageFormat, d.Format, d.Depth)
		}
		if d.NumPlanes != 1 {
			return Descriptor{}, fmt.Errorf("%w: %s has %d planes, want 1", ErrInvalidImageFormat, d.Format, d.NumPlanes)
		}
		if need := d.Width * d.Height * d.BytesPerPixel(); d.DataSize < need {
			return Descriptor{}, fmt.Errorf("%w: %s data size %d < %d", ErrInvalidImageFormat, d.Format, d.DataSize, need)
		}
	default:
		return Descriptor{}, fmt.Errorf("%w: unsupported fourcc %s", ErrInvalidImageFormat, d.Format)
	}
	return d, nil
}

// NV12Descriptor returns the tightly packed NV12 layout for w x h.
func NV12Descriptor(image ImageID, buf BufferID, w, h int) (Descriptor, error) {
	return NewDescriptor(Descriptor{
		Image:        image,
		Buffer:       buf,
		Format:       FourCCNV12,
		Width:        w,
		Height:       h,
		DataSize:     NV12Size(w, h),
		NumPlanes:    2,
		BitsPerPixel: 12,
	})
}

// PackedDescriptor returns the tightly packed layout of a packed RGB format.
// RGB3 is 24 bits per pixel; RGBX and RGBA are 32.
func PackedDescriptor(image ImageID, buf BufferID, format FourCC, w, h int) (Descriptor, error) {
	depth := 32
	bpp := 24
	if format == FourCCRGB3 {
		depth = 24
	}
	if format == FourCCRGBA {
		bpp = 32
	}
	return NewDescriptor(Descriptor{
		Image:        image,
		Buffer:       buf,
		Format:       format,
		Width:        w,
		Height:       h,
		DataSize:     w * h * depth / 8,
		NumPlanes:    1,
		BitsPerPixel: bpp,
		Depth:        depth,
	})
}
