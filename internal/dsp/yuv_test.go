package dsp

import (
	"math"
	"math/big"
	"testing"
)

func TestFromRGB_KnownValues(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    YCbCr
	}{
		{"black", 0, 0, 0, YCbCr{16000, 128000, 128000}},
		{"white", 255, 255, 255, YCbCr{235045, 128000, 128000}},
		{"red", 255, 0, 0, YCbCr{81535, 90260, 239945}},
		{"green", 0, 255, 0, YCbCr{144520, 53795, 34160}},
		{"blue", 0, 0, 255, YCbCr{40990, 239945, 109895}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromRGB(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("FromRGB(%d,%d,%d) = %+v, want %+v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

// Results whose exact value is a whole number must not lose a level.
func TestExactWholeResults(t *testing.T) {
	if got := ToRGB(0, 129, 96); got != (RGB{0, 7, 0}) {
		t.Errorf("ToRGB(0,129,96) = %+v, want {0 7 0}", got)
	}
	if got := ToRGB(0, 189, 56); got.G != 16 {
		t.Errorf("ToRGB(0,189,56).G = %d, want 16", got.G)
	}
	y, cb, cr := FromRGB(1, 184, 137).Bytes()
	if y != 122 || cb != 134 || cr != 51 {
		t.Errorf("FromRGB(1,184,137).Bytes() = (%d,%d,%d), want (122,134,51)", y, cb, cr)
	}
}

// floorLevel returns floor(num/1000) clamped to [0, 255].
func floorLevel(num int64) uint8 {
	if num < 0 {
		return 0
	}
	if q := num / 1000; q < 255 {
		return uint8(q)
	}
	return 255
}

// refToRGB evaluates the inverse transform as exact thousandths of a level,
// with the offsets folded into constants.
func refToRGB(y, cb, cr int64) RGB {
	return RGB{
		R: floorLevel(1164*y + 1596*cr - 1164*16 - 1596*128),
		G: floorLevel(1164*y - 813*cr - 392*cb - 1164*16 + 813*128 + 392*128),
		B: floorLevel(1164*y + 2017*cb - 1164*16 - 2017*128),
	}
}

func refFromRGB(r, g, b int64) (y, cb, cr uint8) {
	return floorLevel(257*r + 504*g + 98*b + 16000),
		floorLevel(-148*r - 291*g + 439*b + 128000),
		floorLevel(439*r - 368*g - 71*b + 128000)
}

// TestAllTriples compares both directions against the rational reference for
// every byte triple.
func TestAllTriples(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive sweep skipped in -short mode")
	}
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			for c := 0; c < 256; c++ {
				x, y, z := uint8(a), uint8(b), uint8(c)
				if got, want := ToRGB(x, y, z), refToRGB(int64(a), int64(b), int64(c)); got != want {
					t.Fatalf("ToRGB(%d,%d,%d) = %+v, want %+v", a, b, c, got, want)
				}
				gy, gcb, gcr := FromRGB(x, y, z).Bytes()
				wy, wcb, wcr := refFromRGB(int64(a), int64(b), int64(c))
				if gy != wy || gcb != wcb || gcr != wcr {
					t.Fatalf("FromRGB(%d,%d,%d).Bytes() = (%d,%d,%d), want (%d,%d,%d)",
						a, b, c, gy, gcb, gcr, wy, wcb, wcr)
				}
			}
		}
	}
}

func rat(s string) *big.Rat {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		panic("bad rational " + s)
	}
	return r
}

// floorRat returns floor(v) clamped to [0, 255].
func floorRat(v *big.Rat) uint8 {
	if v.Sign() <= 0 {
		return 0
	}
	q := new(big.Int).Quo(v.Num(), v.Denom())
	if q.Cmp(big.NewInt(255)) >= 0 {
		return 255
	}
	return uint8(q.Int64())
}

// TestToRGB_DecimalCoefficients evaluates the published decimal formula with
// big.Rat on a coarse grid.
func TestToRGB_DecimalCoefficients(t *testing.T) {
	var (
		yScale = rat("1.164")
		rCr    = rat("1.596")
		gCr    = rat("0.813")
		gCb    = rat("0.392")
		bCb    = rat("2.017")
	)
	term := func(k *big.Rat, v, off int) *big.Rat {
		return new(big.Rat).Mul(k, new(big.Rat).SetInt64(int64(v-off)))
	}
	for y := 0; y < 256; y += 17 {
		for cb := 0; cb < 256; cb += 17 {
			for cr := 0; cr < 256; cr += 17 {
				ly := term(yScale, y, 16)
				r := new(big.Rat).Add(ly, term(rCr, cr, 128))
				g := new(big.Rat).Sub(ly, term(gCr, cr, 128))
				g.Sub(g, term(gCb, cb, 128))
				b := new(big.Rat).Add(ly, term(bCb, cb, 128))
				want := RGB{floorRat(r), floorRat(g), floorRat(b)}
				if got := ToRGB(uint8(y), uint8(cb), uint8(cr)); got != want {
					t.Fatalf("ToRGB(%d,%d,%d) = %+v, want %+v", y, cb, cr, got, want)
				}
			}
		}
	}
}

// TestRoundTrip_AllColors checks every 8-bit RGB triple. Truncation in ToRGB
// loses at most one level per channel.
func TestRoundTrip_AllColors(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive sweep skipped in -short mode")
	}
	const tolerance = 1
	maxDiff := [3]int{}
	for r := 0; r < 256; r++ {
		for g := 0; g < 256; g++ {
			for b := 0; b < 256; b++ {
				got := FromRGB(uint8(r), uint8(g), uint8(b)).ToRGB()
				d := [3]int{absDiff(int(got.R), r), absDiff(int(got.G), g), absDiff(int(got.B), b)}
				for i := range d {
					if d[i] > maxDiff[i] {
						maxDiff[i] = d[i]
					}
				}
			}
		}
	}
	for i, name := range []string{"R", "G", "B"} {
		if maxDiff[i] > tolerance {
			t.Errorf("round trip max %s error = %d, want <= %d", name, maxDiff[i], tolerance)
		}
	}
}

func TestRoundTrip_Sampled(t *testing.T) {
	for r := 0; r < 256; r += 15 {
		for g := 0; g < 256; g += 15 {
			for b := 0; b < 256; b += 15 {
				got := FromRGB(uint8(r), uint8(g), uint8(b)).ToRGB()
				if absDiff(int(got.R), r) > 1 || absDiff(int(got.G), g) > 1 || absDiff(int(got.B), b) > 1 {
					t.Fatalf("round trip (%d,%d,%d) = %+v", r, g, b, got)
				}
			}
		}
	}
}

func TestToRGB_Gray(t *testing.T) {
	tests := []struct {
		y    uint8
		want uint8
	}{
		{16, 0},
		{93, 89},
		{126, 128},
		{128, 130}, // 1.164 * 112 = 130.368
		{235, 254}, // 1.164 * 219 = 254.916
	}
	for _, tt := range tests {
		got := ToRGB(tt.y, 128, 128)
		want := RGB{tt.want, tt.want, tt.want}
		if got != want {
			t.Errorf("ToRGB(%d, 128, 128) = %+v, want %+v", tt.y, got, want)
		}
	}
}

func TestToRGB_Clamps(t *testing.T) {
	tests := []struct {
		name      string
		y, cb, cr uint8
		want      RGB
	}{
		{"all zero", 0, 0, 0, RGB{0, 135, 0}},
		{"all max", 255, 255, 255, RGB{255, 125, 255}},
		{"luma floor", 0, 128, 128, RGB{0, 0, 0}},
		{"luma ceiling", 255, 128, 128, RGB{255, 255, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToRGB(tt.y, tt.cb, tt.cr)
			if got != tt.want {
				t.Errorf("ToRGB(%d,%d,%d) = %+v, want %+v", tt.y, tt.cb, tt.cr, got, tt.want)
			}
		})
	}
}

func TestToRGB_Truncates(t *testing.T) {
	// 1.164 * (20 - 16) = 4.656; rounding would give 5.
	got := ToRGB(20, 128, 128)
	if got != (RGB{4, 4, 4}) {
		t.Errorf("ToRGB(20,128,128) = %+v, want {4 4 4}", got)
	}
}

func TestComponents(t *testing.T) {
	c := Sample(128, 128, 128)
	want := 1164 * 112 * Milli
	if c.Red() != want || c.Green() != want || c.Blue() != want {
		t.Errorf("Sample(128,128,128) components = (%d,%d,%d), want %d",
			c.Red(), c.Green(), c.Blue(), want)
	}
	if got := Sample(0, 0, 0).Green(); got != 135616000 {
		t.Errorf("Sample(0,0,0).Green() = %d, want 135616000", got)
	}
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		v    int
		want uint8
	}{
		{-5000, 0},
		{0, 0},
		{999, 0},
		{16000, 16},
		{235045, 235},
		{239945, 239},
		{254999, 254},
		{255000, 255},
		{512000, 255},
	}
	for _, tt := range tests {
		if got := Quantize(tt.v); got != tt.want {
			t.Errorf("Quantize(%d) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestFloat(t *testing.T) {
	y, cb, cr := FromRGB(255, 0, 0).Float()
	if math.Abs(y-81.535) > 1e-9 || math.Abs(cb-90.26) > 1e-9 || math.Abs(cr-239.945) > 1e-9 {
		t.Errorf("FromRGB(255,0,0).Float() = (%v, %v, %v)", y, cb, cr)
	}
}

func TestBytes_FromRGB(t *testing.T) {
	y, cb, cr := FromRGB(255, 0, 0).Bytes()
	if y != 81 || cb != 90 || cr != 239 {
		t.Errorf("FromRGB(255,0,0).Bytes() = (%d,%d,%d), want (81,90,239)", y, cb, cr)
	}
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

func BenchmarkFromRGB(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = FromRGB(uint8(i), uint8(i>>8), uint8(i>>16))
	}
}

func BenchmarkToRGB(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = ToRGB(uint8(i), uint8(i>>8), uint8(i>>16))
	}
}
