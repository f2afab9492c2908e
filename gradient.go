package vadem

import (
	"errors"

	"github.com/nicholasbishop/vadem/hw"
	"github.com/nicholasbishop/vadem/internal/access"
	"github.com/nicholasbishop/vadem/internal/planar"
)

// Test pattern sizes.
const (
	CbCrGradientSize = 512
	YGradientSize    = 128
)

// newNV12 allocates a w x w NV12 image, runs fill on its mapped bytes and
// destroys the image again if fill fails.
func newNV12(svc hw.Service, w int, fill func(l *planar.Layout, mem []byte) error) (d hw.Descriptor, err error) {
	d, err = svc.CreateImage(hw.FourCCNV12, w, w)
	if err != nil {
		return hw.Descriptor{}, err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, svc.DestroyImage(d.Image))
			d = hw.Descriptor{}
		}
	}()
	l, err := planar.ForDescriptor(d)
	if err != nil {
		return d, err
	}
	err = hw.WithMapping(svc, d.Buffer, func(mem []byte) error {
		return fill(l, mem)
	})
	return d, err
}

// CbCrGradient returns a 512x512 NV12 image with constant luma whose chroma
// cell (cx, cy) holds Cb = cx and Cr = cy. It shows the whole chroma plane
// at one brightness.
func CbCrGradient(svc hw.Service, luma uint8) (hw.Descriptor, error) {
	const w = CbCrGradientSize
	return newNV12(svc, w, func(l *planar.Layout, mem []byte) error {
		for y := 0; y < w; y++ {
			for x := 0; x < w; x++ {
				off, err := l.LumaOffset(x, y)
				if err != nil {
					return err
				}
				if err := access.Set(mem, l.DataSize(), off, luma); err != nil {
					return err
				}
			}
		}
		for y := 0; y < w; y += 2 {
			for x := 0; x < w; x += 2 {
				cb, err := l.ChromaBlueOffset(x, y)
				if err != nil {
					return err
				}
				if err := access.Set(mem, l.DataSize(), cb, uint8(x/2)); err != nil {
					return err
				}
				if err := access.Set(mem, l.DataSize(), cb+1, uint8(y/2)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// YGradient returns a 128x128 NV12 image with neutral chroma and luma
// x/w * y/w * 256, dark in the top-left corner and bright in the
// bottom-right. Any padding past the pixel data also reads 128.
func YGradient(svc hw.Service) (hw.Descriptor, error) {
	const w = YGradientSize
	return newNV12(svc, w, func(l *planar.Layout, mem []byte) error {
		for i := 0; i < l.DataSize(); i++ {
			if err := access.Set(mem, l.DataSize(), i, 128); err != nil {
				return err
			}
		}
		for y := 0; y < w; y++ {
			for x := 0; x < w; x++ {
				off, err := l.LumaOffset(x, y)
				if err != nil {
					return err
				}
				fx := float64(x) / w
				fy := float64(y) / w
				if err := access.Set(mem, l.DataSize(), off, uint8(fx*fy*256)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
