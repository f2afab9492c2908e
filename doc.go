// Package vadem copies still images between RGB pixel grids and buffers
// owned by a hardware video driver.
//
// Hardware images are either packed RGB (RGBX, RGBA or 24-bit RGB3) or NV12,
// the semi-planar 4:2:0 layout of a full-resolution luma plane followed by a
// half-resolution plane of interleaved Cb/Cr pairs. Conversion between NV12
// and RGB uses the BT.601 studio-swing transform.
//
// Every byte access into a mapped hardware buffer is checked against the
// buffer's declared size, and every mapping is released on all exit paths,
// including panics.
//
// Basic usage with the in-memory backend:
//
//	svc := memhw.New()
//	defer svc.Close()
//	d, _ := svc.CreateImage(hw.FourCCNV12, grid.Width, grid.Height)
//	err := vadem.Upload(svc, grid, d)
//	...
//	back, err := vadem.Download(svc, d)
package vadem
