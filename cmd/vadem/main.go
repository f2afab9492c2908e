// Command vadem converts images between RGB files and hardware NV12 buffers.
//
// Usage:
//
//	vadem run [options]                    load, upload, render to a surface, save
//	vadem convert [options] <input>        round-trip an image through NV12
//	vadem gradient [options]               write an NV12 test pattern
//	vadem info [options]                   describe a freshly allocated image
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/nicholasbishop/vadem"
	"github.com/nicholasbishop/vadem/codec"
	"github.com/nicholasbishop/vadem/hw"
	"github.com/nicholasbishop/vadem/hw/memhw"
	"github.com/nicholasbishop/vadem/hw/vaapi"
	"github.com/nicholasbishop/vadem/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runRun(os.Args[2:])
	case "convert":
		err = runConvert(os.Args[2:])
	case "gradient":
		err = runGradient(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "vadem: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "vadem: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  vadem run [options]               Load an image, copy it into NV12, render it
                                    to an RGB surface and save every stage
  vadem convert [options] <input>   Round-trip an image through an NV12 buffer
  vadem gradient [options]          Write an NV12 test pattern as PNG and raw
  vadem info [options]              Allocate an image and print its layout

Run "vadem <command> -h" for command-specific options.
`)
}

// common holds the flags shared by every subcommand.
type common struct {
	configPath string
	backend    string
	device     string
	debug      bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&c.backend, "backend", "", "hardware backend: mem or vaapi (default from config)")
	fs.StringVar(&c.device, "device", "", "DRM render node for the vaapi backend")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging")
}

// load reads the configuration, applies flag overrides and sets up logging.
func (c *common) load() (*config.Config, error) {
	level := slog.LevelInfo
	if c.debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.backend != "" {
		cfg.Backend = c.backend
	}
	if c.device != "" {
		cfg.Device = c.device
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openBackend(cfg *config.Config) (hw.Service, error) {
	switch cfg.Backend {
	case config.BackendVAAPI:
		svc, err := vaapi.Open(cfg.Device)
		if err != nil {
			return nil, err
		}
		if s, ok := svc.(interface{ Version() (int, int) }); ok {
			major, minor := s.Version()
			slog.Info("libva initialized", "device", cfg.Device, "version", fmt.Sprintf("%d.%d", major, minor))
		}
		return svc, nil
	default:
		slog.Debug("using in-memory backend")
		return memhw.New(), nil
	}
}

// save writes the image to path as a PNG, JPEG, BMP, GIF or TIFF file.
func save(svc hw.Service, d hw.Descriptor, path string) error {
	slog.Info("writing image", "path", path, "format", d.Format, "size", fmt.Sprintf("%dx%d", d.Width, d.Height))
	g, err := vadem.Download(svc, d)
	if err != nil {
		return err
	}
	defer g.Release()
	return codec.Save(g, path)
}

// dump writes the raw bytes of the image to path, removing the file on
// failure.
func dump(svc hw.Service, d hw.Descriptor, path string) error {
	slog.Info("dumping raw image", "path", path, "bytes", d.DataSize)
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := vadem.Dump(svc, d, out); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func gradient(svc hw.Service, g config.GradientConfig) (hw.Descriptor, error) {
	if g.Kind == "y" {
		return vadem.YGradient(svc)
	}
	return vadem.CbCrGradient(svc, uint8(g.Luma))
}

// --- run ---

func runRun(args []string) (err error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var c common
	c.register(fs)
	input := fs.String("input", "", "input image (default from config)")
	output := fs.String("o", "", "surface output image (default from config)")
	sanity := fs.String("sanity", "", "NV12 read-back image (default from config)")
	noGradient := fs.Bool("no-gradient", false, "skip writing the gradient test pattern")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := c.load()
	if err != nil {
		return err
	}
	if *input != "" {
		cfg.Input = *input
	}
	if *output != "" {
		cfg.Output = *output
	}
	if *sanity != "" {
		cfg.SanityOutput = *sanity
	}

	svc, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, svc.Close()) }()

	if !*noGradient {
		gd, err := gradient(svc, cfg.Gradient)
		if err != nil {
			return fmt.Errorf("run: gradient: %w", err)
		}
		if err := save(svc, gd, cfg.Gradient.Output); err != nil {
			return fmt.Errorf("run: %w", err)
		}
		if cfg.Gradient.RawOutput != "" {
			if err := dump(svc, gd, cfg.Gradient.RawOutput); err != nil {
				return fmt.Errorf("run: %w", err)
			}
		}
		if err := svc.DestroyImage(gd.Image); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}

	slog.Info("loading input image", "path", cfg.Input)
	grid, err := codec.Load(cfg.Input)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer grid.Release()

	img, err := svc.CreateImage(hw.FourCCNV12, grid.Width, grid.Height)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer svc.DestroyImage(img.Image)
	if err := vadem.CopyGridToSemiPlanar(svc, grid, img); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if cfg.SanityOutput != "" {
		if err := save(svc, img, cfg.SanityOutput); err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}

	surface, err := svc.CreateSurface(grid.Width, grid.Height)
	if err != nil {
		return fmt.Errorf("run: create surface: %w", err)
	}
	defer svc.DestroySurface(surface)
	slog.Debug("putting image into surface", "image", img.Image, "surface", surface)
	if err := svc.PutImage(surface, img.Image); err != nil {
		return fmt.Errorf("run: put image: %w", err)
	}

	derived, err := svc.DeriveImage(surface)
	if err != nil {
		return fmt.Errorf("run: derive image: %w", err)
	}
	defer svc.DestroyImage(derived.Image)
	if err := save(svc, derived, cfg.Output); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

// --- convert ---

func parseFourCC(s string) (hw.FourCC, error) {
	switch strings.ToLower(s) {
	case "nv12":
		return hw.FourCCNV12, nil
	case "rgbx":
		return hw.FourCCRGBX, nil
	case "rgba":
		return hw.FourCCRGBA, nil
	case "rgb3", "rgb":
		return hw.FourCCRGB3, nil
	default:
		return 0, fmt.Errorf("unknown image format %q (use nv12/rgbx/rgba/rgb3)", s)
	}
}

func runConvert(args []string) (err error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	var c common
	c.register(fs)
	format := fs.String("fmt", "nv12", "hardware image format: nv12, rgbx, rgba, rgb3")
	output := fs.String("o", "", "output image (required)")
	raw := fs.String("raw", "", "also dump the raw hardware buffer to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("convert: missing input file\nUsage: vadem convert [options] <input>")
	}
	if *output == "" {
		return fmt.Errorf("convert: -o is required")
	}
	f, err := parseFourCC(*format)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	cfg, err := c.load()
	if err != nil {
		return err
	}

	svc, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, svc.Close()) }()

	grid, err := codec.Load(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	defer grid.Release()

	d, err := svc.CreateImage(f, grid.Width, grid.Height)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	defer svc.DestroyImage(d.Image)
	if err := vadem.Upload(svc, grid, d); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	if *raw != "" {
		if err := dump(svc, d, *raw); err != nil {
			return fmt.Errorf("convert: %w", err)
		}
	}
	if err := save(svc, d, *output); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Converted %s → %s via %s\n", fs.Arg(0), *output, f)
	return nil
}

// --- gradient ---

func runGradient(args []string) (err error) {
	fs := flag.NewFlagSet("gradient", flag.ContinueOnError)
	var c common
	c.register(fs)
	kind := fs.String("kind", "", "pattern: cbcr or y (default from config)")
	luma := fs.Int("luma", -1, "luma of the cbcr pattern 0-255 (default from config)")
	output := fs.String("o", "", "output image (default from config)")
	raw := fs.String("raw", "", "raw NV12 output (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := c.load()
	if err != nil {
		return err
	}
	if *kind != "" {
		cfg.Gradient.Kind = *kind
	}
	if *luma >= 0 {
		cfg.Gradient.Luma = *luma
	}
	if *output != "" {
		cfg.Gradient.Output = *output
	}
	if *raw != "" {
		cfg.Gradient.RawOutput = *raw
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("gradient: %w", err)
	}

	svc, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, svc.Close()) }()

	d, err := gradient(svc, cfg.Gradient)
	if err != nil {
		return fmt.Errorf("gradient: %w", err)
	}
	defer svc.DestroyImage(d.Image)
	if err := save(svc, d, cfg.Gradient.Output); err != nil {
		return fmt.Errorf("gradient: %w", err)
	}
	if cfg.Gradient.RawOutput != "" {
		if err := dump(svc, d, cfg.Gradient.RawOutput); err != nil {
			return fmt.Errorf("gradient: %w", err)
		}
	}
	return nil
}

// --- info ---

func parseSize(s string) (w, h int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q is not WxH", s)
	}
	if w, err = strconv.Atoi(ws); err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	if h, err = strconv.Atoi(hs); err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", s, err)
	}
	return w, h, nil
}

func runInfo(args []string) (err error) {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	var c common
	c.register(fs)
	format := fs.String("fmt", "nv12", "image format: nv12, rgbx, rgba, rgb3")
	size := fs.String("size", "256x256", "image size WxH")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := parseFourCC(*format)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}
	w, h, err := parseSize(*size)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}
	cfg, err := c.load()
	if err != nil {
		return err
	}

	svc, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, svc.Close()) }()

	d, err := svc.CreateImage(f, w, h)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}
	defer svc.DestroyImage(d.Image)

	fmt.Printf("Format:         %s (0x%08x)\n", d.Format, uint32(d.Format))
	fmt.Printf("Canvas:         %d x %d\n", d.Width, d.Height)
	fmt.Printf("Data size:      %d bytes\n", d.DataSize)
	fmt.Printf("Planes:         %d\n", d.NumPlanes)
	fmt.Printf("Bits per pixel: %d\n", d.BitsPerPixel)
	if d.Format.IsSemiPlanar() {
		fmt.Printf("Chroma plane:   offset %d\n", d.Width*d.Height)
	} else {
		fmt.Printf("Depth:          %d\n", d.Depth)
	}
	return nil
}
