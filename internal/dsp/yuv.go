package dsp

// BT.601 studio-swing YCbCr <-> RGB conversion in exact fixed-point.
// Coefficients follow the Intel IPP "YCbCr and YCCK Color Models" reference,
// which is what VA-API drivers use for NV12 <-> RGBX.
//
// Every coefficient is a whole number of thousandths, so samples are held in
// thousandths and products of a coefficient and a sample in millionths. No
// rounding happens before the final clamp and truncation: a result whose
// exact value is 7 is stored as 7.

// Fixed-point scales.
const (
	Milli = 1000          // units per level of a YCbCr sample
	micro = Milli * Milli // units per level of an RGB product
)

// RGB -> YCbCr multipliers, in thousandths.
const (
	kRToY  = 257  // 0.257
	kGToY  = 504  // 0.504
	kBToY  = 98   // 0.098
	kRToCb = -148 // -0.148
	kGToCb = -291 // -0.291
	kBToCb = 439  // 0.439
	kRToCr = 439  // 0.439
	kGToCr = -368 // -0.368
	kBToCr = -71  // -0.071

	kYOffset = 16 * Milli
	kCOffset = 128 * Milli
)

// YCbCr -> RGB multipliers, in thousandths.
const (
	kYScale = 1164 // 1.164
	kRCr    = 1596 // 1.596
	kGCr    = 813  // 0.813
	kGCb    = 392  // 0.392
	kBCb    = 2017 // 2.017
)

// YCbCr is a luma/chroma sample in thousandths of a level. Components are
// nominally in [0, 255*Milli] but intermediate values may fall outside that
// range.
type YCbCr struct {
	Y, Cb, Cr int
}

// RGB is an 8-bit RGB sample.
type RGB struct {
	R, G, B uint8
}

// clip clamps v, expressed in units of scale per level, to [0, 255] and
// truncates toward zero.
func clip(v, scale int) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255*scale {
		return 255
	}
	return uint8(v / scale)
}

// FromRGB converts an RGB triple to YCbCr. The result is not clamped.
func FromRGB(r, g, b uint8) YCbCr {
	R, G, B := int(r), int(g), int(b)
	return YCbCr{
		Y:  kRToY*R + kGToY*G + kBToY*B + kYOffset,
		Cb: kRToCb*R + kGToCb*G + kBToCb*B + kCOffset,
		Cr: kRToCr*R + kGToCr*G + kBToCr*B + kCOffset,
	}
}

// Sample returns the YCbCr value of a stored byte triple.
func Sample(y, cb, cr uint8) YCbCr {
	return YCbCr{Y: int(y) * Milli, Cb: int(cb) * Milli, Cr: int(cr) * Milli}
}

// Float returns the components in levels.
func (c YCbCr) Float() (y, cb, cr float64) {
	return float64(c.Y) / Milli, float64(c.Cb) / Milli, float64(c.Cr) / Milli
}

// Red returns the unclamped red component in millionths of a level.
func (c YCbCr) Red() int {
	return kYScale*(c.Y-kYOffset) + kRCr*(c.Cr-kCOffset)
}

// Green returns the unclamped green component in millionths of a level.
func (c YCbCr) Green() int {
	return kYScale*(c.Y-kYOffset) - kGCr*(c.Cr-kCOffset) - kGCb*(c.Cb-kCOffset)
}

// Blue returns the unclamped blue component in millionths of a level.
func (c YCbCr) Blue() int {
	return kYScale*(c.Y-kYOffset) + kBCb*(c.Cb-kCOffset)
}

// ToRGB converts to RGB. Each channel is clamped to [0, 255] and then
// truncated, not rounded.
func (c YCbCr) ToRGB() RGB {
	return RGB{R: clip(c.Red(), micro), G: clip(c.Green(), micro), B: clip(c.Blue(), micro)}
}

// ToRGB converts a luma/chroma byte triple to RGB.
func ToRGB(y, cb, cr uint8) RGB {
	return Sample(y, cb, cr).ToRGB()
}

// Quantize stores a component given in thousandths as a byte: clamp to
// [0, 255], then truncate. FromRGB never leaves [16, 240] for 8-bit input,
// so the clamp only matters for samples built by hand.
func Quantize(v int) uint8 {
	return clip(v, Milli)
}

// Bytes returns the quantized (Y, Cb, Cr) bytes.
func (c YCbCr) Bytes() (y, cb, cr uint8) {
	return Quantize(c.Y), Quantize(c.Cb), Quantize(c.Cr)
}
