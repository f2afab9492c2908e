package vadem

import (
	"fmt"

	"github.com/nicholasbishop/vadem/hw"
	"github.com/nicholasbishop/vadem/internal/access"
	"github.com/nicholasbishop/vadem/internal/dsp"
	"github.com/nicholasbishop/vadem/internal/planar"
)

// All copies validate their arguments before mapping the buffer, then visit
// pixels in raster order (rows top to bottom, columns left to right). An
// ErrOutOfBounds in the middle of a copy leaves the destination partially
// written.

func checkSize(d hw.Descriptor, g *PixelGrid) error {
	if g == nil {
		return fmt.Errorf("%w: nil pixel grid", ErrFormatMismatch)
	}
	if d.Width != g.Width || d.Height != g.Height {
		return fmt.Errorf("%w: image %dx%d, grid %dx%d", ErrFormatMismatch, d.Width, d.Height, g.Width, g.Height)
	}
	return nil
}

// packedBPP returns the bytes per pixel of a packed RGB image.
func packedBPP(d hw.Descriptor) (int, error) {
	if !d.Format.IsPackedRGB() || d.NumPlanes != 1 {
		return 0, fmt.Errorf("%w: %s with %d planes is not packed RGB", ErrFormatMismatch, d.Format, d.NumPlanes)
	}
	bpp := d.BytesPerPixel()
	if bpp != 3 && bpp != 4 {
		return 0, fmt.Errorf("%w: %d bytes per pixel, want 3 or 4", ErrFormatMismatch, bpp)
	}
	return bpp, nil
}

func semiPlanarLayout(d hw.Descriptor) (*planar.Layout, error) {
	if !d.Format.IsSemiPlanar() || d.NumPlanes != 2 {
		return nil, fmt.Errorf("%w: %s with %d planes is not NV12", ErrFormatMismatch, d.Format, d.NumPlanes)
	}
	return planar.New(d.Width, d.Height, d.DataSize)
}

// CopyPackedRGBToGrid reads a packed RGB image into dst. Any padding byte of
// 4-byte pixels is ignored.
func CopyPackedRGBToGrid(m hw.Mapper, src hw.Descriptor, dst *PixelGrid) error {
	bpp, err := packedBPP(src)
	if err != nil {
		return err
	}
	if err := checkSize(src, dst); err != nil {
		return err
	}
	return hw.WithMapping(m, src.Buffer, func(mem []byte) error {
		for y := 0; y < src.Height; y++ {
			for x := 0; x < src.Width; x++ {
				off := (y*src.Width + x) * bpp
				var px [3]uint8
				for i := range px {
					v, err := access.Get(mem, src.DataSize, off+i)
					if err != nil {
						return err
					}
					px[i] = v
				}
				dst.SetRGB(x, y, RGB{R: px[0], G: px[1], B: px[2]})
			}
		}
		return nil
	})
}

// CopyGridToPackedRGB writes src into a packed RGB image. The fourth byte of
// 4-byte pixels is left untouched.
func CopyGridToPackedRGB(m hw.Mapper, src *PixelGrid, dst hw.Descriptor) error {
	bpp, err := packedBPP(dst)
	if err != nil {
		return err
	}
	if err := checkSize(dst, src); err != nil {
		return err
	}
	return hw.WithMapping(m, dst.Buffer, func(mem []byte) error {
		for y := 0; y < dst.Height; y++ {
			for x := 0; x < dst.Width; x++ {
				off := (y*dst.Width + x) * bpp
				c := src.RGBAt(x, y)
				for i, v := range [3]uint8{c.R, c.G, c.B} {
					if err := access.Set(mem, dst.DataSize, off+i, v); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

// CopySemiPlanarToGrid converts an NV12 image into dst.
func CopySemiPlanarToGrid(m hw.Mapper, src hw.Descriptor, dst *PixelGrid) error {
	l, err := semiPlanarLayout(src)
	if err != nil {
		return err
	}
	if err := checkSize(src, dst); err != nil {
		return err
	}
	return hw.WithMapping(m, src.Buffer, func(mem []byte) error {
		for y := 0; y < src.Height; y++ {
			for x := 0; x < src.Width; x++ {
				yv, cb, cr, err := l.Sample(mem, x, y)
				if err != nil {
					return err
				}
				dst.SetRGB(x, y, dsp.ToRGB(yv, cb, cr))
			}
		}
		return nil
	})
}

// CopyGridToSemiPlanar converts src into an NV12 image. Each pixel writes its
// own luma and overwrites the chroma cell of its 2x2 block, so the block's
// bottom-right pixel determines the stored chroma.
func CopyGridToSemiPlanar(m hw.Mapper, src *PixelGrid, dst hw.Descriptor) error {
	l, err := semiPlanarLayout(dst)
	if err != nil {
		return err
	}
	if err := checkSize(dst, src); err != nil {
		return err
	}
	return hw.WithMapping(m, dst.Buffer, func(mem []byte) error {
		for y := 0; y < dst.Height; y++ {
			for x := 0; x < dst.Width; x++ {
				c := src.RGBAt(x, y)
				yv, cb, cr := dsp.FromRGB(c.R, c.G, c.B).Bytes()
				if err := l.SetSample(mem, x, y, yv, cb, cr); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Download copies an NV12 or packed RGB image into a new grid.
func Download(m hw.Mapper, d hw.Descriptor) (*PixelGrid, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidImageFormat, d.Width, d.Height)
	}
	g := NewPixelGrid(d.Width, d.Height)
	var err error
	if d.Format.IsSemiPlanar() {
		err = CopySemiPlanarToGrid(m, d, g)
	} else {
		err = CopyPackedRGBToGrid(m, d, g)
	}
	if err != nil {
		g.Release()
		return nil, err
	}
	return g, nil
}

// Upload copies g into an NV12 or packed RGB image.
func Upload(m hw.Mapper, g *PixelGrid, d hw.Descriptor) error {
	if d.Format.IsSemiPlanar() {
		return CopyGridToSemiPlanar(m, g, d)
	}
	return CopyGridToPackedRGB(m, g, d)
}
