package codec

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nicholasbishop/vadem"
)

// tinyWebP is a 1x1 lossless WebP holding the pixel (200, 100, 50).
var tinyWebP = []byte{
	0x52, 0x49, 0x46, 0x46, 0x20, 0x00, 0x00, 0x00, 0x57, 0x45, 0x42, 0x50,
	0x56, 0x50, 0x38, 0x4c, 0x14, 0x00, 0x00, 0x00, 0x2f, 0x00, 0x00, 0x00,
	0x00, 0x28, 0x59, 0x91, 0x2b, 0xd3, 0xff, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

func testGrid() *vadem.PixelGrid {
	g := vadem.NewPixelGrid(6, 4)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			g.SetRGB(x, y, vadem.RGB{R: uint8(x * 40), G: uint8(y * 60), B: 128})
		}
	}
	return g
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.png", PNG},
		{"dir/b.JPG", JPEG},
		{"c.jpeg", JPEG},
		{"d.gif", GIF},
		{"e.bmp", BMP},
		{"f.tif", TIFF},
		{"g.tiff", TIFF},
		{"h.webp", WebP},
	}
	for _, tt := range tests {
		got, err := FormatForPath(tt.path)
		if err != nil || got != tt.want {
			t.Errorf("FormatForPath(%q) = %q, %v, want %q", tt.path, got, err, tt.want)
		}
	}
	if _, err := FormatForPath("noext"); err == nil {
		t.Error("FormatForPath(noext) succeeded")
	}
}

func TestSaveLoad_Lossless(t *testing.T) {
	dir := t.TempDir()
	src := testGrid()
	for _, ext := range []string{".png", ".bmp", ".tiff"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "img"+ext)
			if err := Save(src, path); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Width != src.Width || got.Height != src.Height {
				t.Fatalf("size = %dx%d, want %dx%d", got.Width, got.Height, src.Width, src.Height)
			}
			if !bytes.Equal(got.Pix, src.Pix) {
				t.Errorf("pixels differ after %s round trip", ext)
			}
		})
	}
}

func TestSaveLoad_Lossy(t *testing.T) {
	dir := t.TempDir()
	src := vadem.NewPixelGrid(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			src.SetRGB(x, y, vadem.RGB{R: 255})
		}
	}
	for _, ext := range []string{".jpg", ".gif"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "img"+ext)
			if err := Save(src, path); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Width != 16 || got.Height != 16 {
				t.Fatalf("size = %dx%d, want 16x16", got.Width, got.Height)
			}
			c := got.RGBAt(8, 8)
			if c.R < 200 || c.G > 40 || c.B > 40 {
				t.Errorf("center pixel = %v, want close to pure red", c)
			}
		})
	}
}

func TestDecode_WebP(t *testing.T) {
	g, format, err := Decode(bytes.NewReader(tinyWebP))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if format != WebP {
		t.Errorf("format = %q, want webp", format)
	}
	if g.Width != 1 || g.Height != 1 {
		t.Fatalf("size = %dx%d, want 1x1", g.Width, g.Height)
	}
	if got := g.RGBAt(0, 0); got != (vadem.RGB{R: 200, G: 100, B: 50}) {
		t.Errorf("pixel = %v, want {200 100 50}", got)
	}
}

func TestDecode_Garbage(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("not an image")))
	if !errors.Is(err, ErrDecode) {
		t.Errorf("err = %v, want ErrDecode", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, ErrDecode) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrDecode wrapping ErrNotExist", err)
	}
}

func TestSave_Errors(t *testing.T) {
	dir := t.TempDir()
	g := testGrid()
	tests := []struct {
		name string
		path string
	}{
		{"unknown extension", filepath.Join(dir, "out.xyz")},
		{"webp", filepath.Join(dir, "out.webp")},
		{"missing directory", filepath.Join(dir, "nope", "out.png")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Save(g, tt.path); !errors.Is(err, ErrWrite) {
				t.Errorf("Save err = %v, want ErrWrite", err)
			}
			if _, err := os.Stat(tt.path); !os.IsNotExist(err) {
				t.Errorf("output %s exists after failed save", tt.path)
			}
		})
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testGrid(), "xcf"); !errors.Is(err, ErrWrite) {
		t.Errorf("err = %v, want ErrWrite", err)
	}
}
