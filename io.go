package vadem

import (
	"fmt"
	"io"

	"github.com/nicholasbishop/vadem/hw"
)

// Dump writes the raw bytes of the image buffer, DataSize bytes in total, to
// w. An NV12 dump can be viewed with ImageMagick:
//
//	display -size WxH -depth 8 -sample 4:2:0 -interlace plane yuv:FILE
func Dump(m hw.Mapper, d hw.Descriptor, w io.Writer) error {
	return hw.WithMapping(m, d.Buffer, func(mem []byte) error {
		if len(mem) < d.DataSize {
			return fmt.Errorf("%w: mapped %d bytes, image has %d", ErrOutOfBounds, len(mem), d.DataSize)
		}
		n, err := w.Write(mem[:d.DataSize])
		if err != nil {
			return fmt.Errorf("vadem: dump: %w", err)
		}
		if n != d.DataSize {
			return fmt.Errorf("vadem: dump: %w", io.ErrShortWrite)
		}
		return nil
	})
}

// Fill sets every byte of the image buffer to v.
func Fill(m hw.Mapper, d hw.Descriptor, v byte) error {
	return hw.WithMapping(m, d.Buffer, func(mem []byte) error {
		if len(mem) < d.DataSize {
			return fmt.Errorf("%w: mapped %d bytes, image has %d", ErrOutOfBounds, len(mem), d.DataSize)
		}
		buf := mem[:d.DataSize]
		for i := range buf {
			buf[i] = v
		}
		return nil
	})
}
