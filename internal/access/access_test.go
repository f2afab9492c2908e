package access

import (
	"errors"
	"testing"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		offset   int
		wantErr  bool
	}{
		{"zero", 16, 0, false},
		{"last", 16, 15, false},
		{"capacity", 16, 16, true},
		{"past", 16, 100, true},
		{"negative", 16, -1, true},
		{"empty", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Check(tt.capacity, tt.offset)
			if tt.wantErr {
				if !errors.Is(err, ErrOutOfBounds) {
					t.Fatalf("Check(%d, %d) err = %v, want ErrOutOfBounds", tt.capacity, tt.offset, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Check(%d, %d) unexpected error: %v", tt.capacity, tt.offset, err)
			}
			if got != tt.offset {
				t.Errorf("Check(%d, %d) = %d, want %d", tt.capacity, tt.offset, got, tt.offset)
			}
		})
	}
}

func TestGetSet_Boundary(t *testing.T) {
	buf := make([]byte, 8)
	capacity := len(buf)

	if err := Set(buf, capacity, capacity-1, 0xAB); err != nil {
		t.Fatalf("Set at capacity-1: %v", err)
	}
	v, err := Get(buf, capacity, capacity-1)
	if err != nil {
		t.Fatalf("Get at capacity-1: %v", err)
	}
	if v != 0xAB {
		t.Errorf("Get(capacity-1) = %#x, want 0xab", v)
	}

	if _, err := Get(buf, capacity, capacity); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Get(capacity) err = %v, want ErrOutOfBounds", err)
	}
	if err := Set(buf, capacity, capacity, 1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Set(capacity) err = %v, want ErrOutOfBounds", err)
	}
}

func TestSet_OutOfBoundsDoesNotWrite(t *testing.T) {
	// Declared capacity smaller than the slice: bytes past it are off limits.
	buf := make([]byte, 8)
	if err := Set(buf, 4, 4, 0xFF); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("Set err = %v, want ErrOutOfBounds", err)
	}
	for i, b := range buf {
		if b != 0 {
			t.Errorf("buf[%d] = %#x, want 0", i, b)
		}
	}
}

func TestGet_CapacityExceedsMapping(t *testing.T) {
	buf := make([]byte, 4)
	if _, err := Get(buf, 16, 8); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Get err = %v, want ErrOutOfBounds", err)
	}
	if err := Set(buf, 16, 8, 1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Set err = %v, want ErrOutOfBounds", err)
	}
}

func BenchmarkGet(b *testing.B) {
	buf := make([]byte, 4096)
	for i := 0; i < b.N; i++ {
		_, _ = Get(buf, len(buf), i&4095)
	}
}
