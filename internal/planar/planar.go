// Package planar computes byte offsets into NV12 (semi-planar 4:2:0) buffers.
//
// The layout is a w*h luma plane followed by a chroma plane of
// (w/2)*(h/2) two-byte cells, each holding Cb then Cr for one 2x2 block of
// luma samples:
//
//	[Y(0,0) ... Y(w-1,h-1)][Cb Cr][Cb Cr]...
package planar

import (
	"fmt"

	"github.com/nicholasbishop/vadem/hw"
	"github.com/nicholasbishop/vadem/internal/access"
)

// Layout addresses an NV12 image. Every offset it returns has been checked
// against the image's declared data size.
type Layout struct {
	w, h         int
	halfW, halfH int
	plane2       int
	dataSize     int
}

// New returns the layout of a w x h NV12 image whose buffer holds dataSize
// bytes. Width and height must be even.
func New(w, h, dataSize int) (*Layout, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", hw.ErrInvalidImageFormat, w, h)
	}
	l := &Layout{
		w:        w,
		h:        h,
		halfW:    w / 2,
		halfH:    h / 2,
		plane2:   w * h,
		dataSize: dataSize,
	}
	if l.halfW*2 != w || l.halfH*2 != h {
		return nil, fmt.Errorf("%w: dimensions %dx%d must be even", hw.ErrInvalidImageFormat, w, h)
	}
	return l, nil
}

// ForDescriptor returns the layout of an NV12 image.
func ForDescriptor(d hw.Descriptor) (*Layout, error) {
	if !d.Format.IsSemiPlanar() {
		return nil, fmt.Errorf("%w: %s is not semi-planar", hw.ErrInvalidImageFormat, d.Format)
	}
	if d.NumPlanes != 2 {
		return nil, fmt.Errorf("%w: %d planes, want 2", hw.ErrInvalidImageFormat, d.NumPlanes)
	}
	return New(d.Width, d.Height, d.DataSize)
}

// Width returns the image width.
func (l *Layout) Width() int { return l.w }

// Height returns the image height.
func (l *Layout) Height() int { return l.h }

// DataSize returns the declared buffer capacity.
func (l *Layout) DataSize() int { return l.dataSize }

// Plane2 returns the offset of the chroma plane.
func (l *Layout) Plane2() int { return l.plane2 }

// Size returns the number of bytes the layout addresses.
func (l *Layout) Size() int {
	return l.plane2 + 2*l.halfW*l.halfH
}

// LumaOffset returns the offset of Y(x, y).
func (l *Layout) LumaOffset(x, y int) (int, error) {
	return access.Check(l.dataSize, y*l.w+x)
}

// ChromaCell returns the index of the chroma cell shared by the 2x2 block
// containing (x, y).
func (l *Layout) ChromaCell(x, y int) int {
	return (y/2)*l.halfW + x/2
}

// ChromaBlueOffset returns the offset of Cb for (x, y).
func (l *Layout) ChromaBlueOffset(x, y int) (int, error) {
	return access.Check(l.dataSize, l.plane2+2*l.ChromaCell(x, y))
}

// ChromaRedOffset returns the offset of Cr for (x, y), immediately after Cb.
func (l *Layout) ChromaRedOffset(x, y int) (int, error) {
	cb, err := l.ChromaBlueOffset(x, y)
	if err != nil {
		return 0, err
	}
	return access.Check(l.dataSize, cb+1)
}

// Sample reads the (Y, Cb, Cr) bytes at (x, y).
func (l *Layout) Sample(mem []byte, x, y int) (yv, cb, cr uint8, err error) {
	yo, err := l.LumaOffset(x, y)
	if err != nil {
		return 0, 0, 0, err
	}
	cbo, err := l.ChromaBlueOffset(x, y)
	if err != nil {
		return 0, 0, 0, err
	}
	cro, err := l.ChromaRedOffset(x, y)
	if err != nil {
		return 0, 0, 0, err
	}
	if yv, err = access.Get(mem, l.dataSize, yo); err != nil {
		return 0, 0, 0, err
	}
	if cb, err = access.Get(mem, l.dataSize, cbo); err != nil {
		return 0, 0, 0, err
	}
	if cr, err = access.Get(mem, l.dataSize, cro); err != nil {
		return 0, 0, 0, err
	}
	return yv, cb, cr, nil
}

// SetSample writes the (Y, Cb, Cr) bytes at (x, y). The chroma cell is shared
// with the other three pixels of the 2x2 block and is overwritten.
func (l *Layout) SetSample(mem []byte, x, y int, yv, cb, cr uint8) error {
	yo, err := l.LumaOffset(x, y)
	if err != nil {
		return err
	}
	cbo, err := l.ChromaBlueOffset(x, y)
	if err != nil {
		return err
	}
	cro, err := l.ChromaRedOffset(x, y)
	if err != nil {
		return err
	}
	if err := access.Set(mem, l.dataSize, yo, yv); err != nil {
		return err
	}
	if err := access.Set(mem, l.dataSize, cbo, cb); err != nil {
		return err
	}
	return access.Set(mem, l.dataSize, cro, cr)
}
