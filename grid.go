package vadem

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/nicholasbishop/vadem/internal/dsp"
	"github.com/nicholasbishop/vadem/internal/pool"
)

// RGB is one 8-bit RGB sample.
type RGB = dsp.RGB

// PixelGrid is an in-memory RGB image. Pix holds 3 bytes per pixel, row-major
// with no padding. PixelGrid implements draw.Image; alpha is dropped on Set
// and reported as opaque by At.
type PixelGrid struct {
	Pix    []uint8
	Width  int
	Height int
}

var _ draw.Image = (*PixelGrid)(nil)

// NewPixelGrid returns a black w x h grid.
func NewPixelGrid(w, h int) *PixelGrid {
	if w < 0 || h < 0 {
		panic("vadem: negative grid dimensions")
	}
	return &PixelGrid{
		Pix:    pool.GetZeroed(w * h * 3),
		Width:  w,
		Height: h,
	}
}

// Release returns the grid's storage to the buffer pool. The grid must not
// be used afterwards.
func (g *PixelGrid) Release() {
	pool.Put(g.Pix)
	g.Pix = nil
}

// RGBAt returns the pixel at (x, y). Coordinates outside the grid return
// black.
func (g *PixelGrid) RGBAt(x, y int) RGB {
	if !g.in(x, y) {
		return RGB{}
	}
	i := g.offset(x, y)
	return RGB{R: g.Pix[i], G: g.Pix[i+1], B: g.Pix[i+2]}
}

// SetRGB sets the pixel at (x, y). Coordinates outside the grid are ignored.
func (g *PixelGrid) SetRGB(x, y int, c RGB) {
	if !g.in(x, y) {
		return
	}
	i := g.offset(x, y)
	g.Pix[i], g.Pix[i+1], g.Pix[i+2] = c.R, c.G, c.B
}

func (g *PixelGrid) in(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

func (g *PixelGrid) offset(x, y int) int {
	return (y*g.Width + x) * 3
}

// ColorModel implements image.Image.
func (g *PixelGrid) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (g *PixelGrid) Bounds() image.Rectangle { return image.Rect(0, 0, g.Width, g.Height) }

// At implements image.Image.
func (g *PixelGrid) At(x, y int) color.Color {
	c := g.RGBAt(x, y)
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Opaque reports that every pixel is fully opaque, which lets encoders skip
// the alpha channel.
func (g *PixelGrid) Opaque() bool { return true }

// Set implements draw.Image.
func (g *PixelGrid) Set(x, y int, c color.Color) {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	g.SetRGB(x, y, RGB{R: rgba.R, G: rgba.G, B: rgba.B})
}

// GridFromImage copies img into a new grid. The grid's origin is img's
// Bounds().Min.
func GridFromImage(img image.Image) *PixelGrid {
	b := img.Bounds()
	g := NewPixelGrid(b.Dx(), b.Dy())
	switch src := img.(type) {
	case *PixelGrid:
		copy(g.Pix, src.Pix)
	case *image.RGBA:
		for y := 0; y < g.Height; y++ {
			row := src.Pix[y*src.Stride:]
			for x := 0; x < g.Width; x++ {
				i := g.offset(x, y)
				copy(g.Pix[i:i+3], row[x*4:x*4+3])
			}
		}
	default:
		draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	}
	return g
}
