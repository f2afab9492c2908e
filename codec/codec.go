// Package codec reads and writes pixel grids as image files.
//
// PNG, JPEG, GIF, BMP and TIFF are supported for reading and writing. WebP
// is supported for reading only. The format is chosen from the file
// extension when saving and sniffed from the data when loading.
package codec

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register the WebP decoder with image.Decode

	"github.com/nicholasbishop/vadem"
)

// Errors returned by the codec.
var (
	ErrDecode = errors.New("codec: cannot decode image")
	ErrWrite  = errors.New("codec: cannot write image")
)

// Format names an image file format.
type Format string

// Supported formats.
const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	WebP Format = "webp" // decode only
)

// JPEGQuality is the quality used when writing JPEG files.
const JPEGQuality = 90

// FormatForPath returns the format implied by the file extension of path.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".jpg", ".jpeg":
		return JPEG, nil
	case ".gif":
		return GIF, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	case ".webp":
		return WebP, nil
	default:
		return "", fmt.Errorf("unknown image extension %q", filepath.Ext(path))
	}
}

// Decode reads an image in any supported format.
func Decode(r io.Reader) (*vadem.PixelGrid, Format, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return vadem.GridFromImage(img), Format(name), nil
}

// Load reads the image file at path.
func Load(path string) (*vadem.PixelGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer f.Close()

	g, _, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return g, nil
}

// Encode writes g to w in the given format.
func Encode(w io.Writer, g *vadem.PixelGrid, format Format) error {
	var err error
	switch format {
	case PNG:
		err = png.Encode(w, g)
	case JPEG:
		err = jpeg.Encode(w, g, &jpeg.Options{Quality: JPEGQuality})
	case GIF:
		err = gif.Encode(w, g, nil)
	case BMP:
		err = bmp.Encode(w, g)
	case TIFF:
		err = tiff.Encode(w, g, &tiff.Options{Compression: tiff.Deflate})
	case WebP:
		return fmt.Errorf("%w: webp encoding is not supported", ErrWrite)
	default:
		return fmt.Errorf("%w: unknown format %q", ErrWrite, format)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Save writes g to path in the format implied by its extension. A partially
// written file is removed.
func Save(g *vadem.PixelGrid, path string) error {
	format, err := FormatForPath(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if format == WebP {
		return fmt.Errorf("%w: webp encoding is not supported", ErrWrite)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := Encode(out, g, format); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
