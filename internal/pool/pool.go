// Package pool provides bucketed sync.Pool instances for image buffers.
// Buffers are organized by size class to minimize waste.
package pool

import "sync"

// Size classes for bucketed pools. A 256x256 NV12 image is 96K, a 1080p
// RGBX surface just under 8M.
const (
	Size4K   = 4096
	Size64K  = 65536
	Size256K = 262144
	Size1M   = 1048576
	Size4M   = 4194304
	Size16M  = 16777216
)

// bucketIndex returns the pool index for a given size.
func bucketIndex(size int) int {
	switch {
	case size <= Size4K:
		return 0
	case size <= Size64K:
		return 1
	case size <= Size256K:
		return 2
	case size <= Size1M:
		return 3
	case size <= Size4M:
		return 4
	default:
		return 5
	}
}

var sizes = [6]int{Size4K, Size64K, Size256K, Size1M, Size4M, Size16M}

var pools [6]sync.Pool

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
}

// Get returns a byte slice of at least the requested size from the pool.
// The returned slice has length == size and may have a larger capacity.
// Its contents are unspecified. The caller must call Put when done.
func Get(size int) []byte {
	idx := bucketIndex(size)
	bp := pools[idx].Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		b = make([]byte, size)
		*bp = b
		return b
	}
	return b[:size]
}

// GetZeroed is like Get but clears the returned bytes, the way freshly
// allocated driver memory reads back.
func GetZeroed(size int) []byte {
	b := Get(size)
	clear(b)
	return b
}

// Put returns a byte slice to the pool. The slice must have been obtained
// from Get. Slices smaller than Size4K are not pooled.
func Put(b []byte) {
	c := cap(b)
	if c < Size4K {
		return
	}
	idx := bucketIndex(c)
	// A slice may only serve requests up to its own capacity; file it under
	// the largest class it fully covers.
	if c < sizes[idx] && idx > 0 {
		idx--
	}
	b = b[:c]
	pools[idx].Put(&b)
}
