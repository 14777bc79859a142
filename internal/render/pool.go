// Package render runs scene compositing off the input path: a coalescing
// background worker, a frame buffer pool, and an OpenCV-accelerated warp.
package render

import (
	goimage "image"
	"sync"

	"github.com/shirou/gopsutil/v3/mem"
)

// FramePool recycles canvas-sized RGBA frames between renders. Buckets are
// keyed by size so switching targets does not poison the pool.
type FramePool struct {
	mu       sync.Mutex
	buckets  map[poolKey][]*goimage.RGBA
	maxBytes int64
	held     int64
}

type poolKey struct {
	width  int
	height int
}

// Conservative fallback budget when system memory cannot be queried.
const fallbackPoolBudget = 64 << 20

// NewFramePool creates a pool that retains at most maxBytes of idle frames.
// maxBytes <= 0 selects a budget from the machine's available memory.
func NewFramePool(maxBytes int64) *FramePool {
	if maxBytes <= 0 {
		maxBytes = defaultPoolBudget()
	}
	return &FramePool{
		buckets:  make(map[poolKey][]*goimage.RGBA),
		maxBytes: maxBytes,
	}
}

// defaultPoolBudget sizes the pool at an eighth of available memory, capped
// at 256 MiB.
func defaultPoolBudget() int64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return fallbackPoolBudget
	}
	budget := int64(vm.Available / 8)
	if budget > 256<<20 {
		budget = 256 << 20
	}
	if budget < fallbackPoolBudget {
		budget = fallbackPoolBudget
	}
	return budget
}

// Get returns a frame of the given size, reusing an idle one when possible.
// Reused frames are zeroed.
func (p *FramePool) Get(width, height int) *goimage.RGBA {
	key := poolKey{width: width, height: height}

	p.mu.Lock()
	bucket := p.buckets[key]
	if n := len(bucket); n > 0 {
		frame := bucket[n-1]
		p.buckets[key] = bucket[:n-1]
		p.held -= int64(len(frame.Pix))
		p.mu.Unlock()

		for i := range frame.Pix {
			frame.Pix[i] = 0
		}
		return frame
	}
	p.mu.Unlock()

	return goimage.NewRGBA(goimage.Rect(0, 0, width, height))
}

// Put returns a frame to the pool. Frames over budget are discarded.
func (p *FramePool) Put(frame *goimage.RGBA) {
	if frame == nil {
		return
	}
	size := int64(len(frame.Pix))

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.held+size > p.maxBytes {
		return
	}
	key := poolKey{width: frame.Rect.Dx(), height: frame.Rect.Dy()}
	p.buckets[key] = append(p.buckets[key], frame)
	p.held += size
}

// HeldBytes returns the bytes currently idle in the pool.
func (p *FramePool) HeldBytes() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.held
}
