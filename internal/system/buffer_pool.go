package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// ImagePool recycles *image.RGBA buffers of one fixed size. Every frame of
// a dataset is resized to the same target, so each Preprocessor owns one
// pool and its workers stop allocating after the first few samples.
type ImagePool struct {
	bounds image.Rectangle
	pool   sync.Pool
	allocs atomic.Int64
}

func NewImagePool(bounds image.Rectangle) *ImagePool {
	p := &ImagePool{bounds: bounds}
	p.pool.New = func() any {
		p.allocs.Add(1)
		return image.NewRGBA(bounds)
	}
	return p
}

func (p *ImagePool) Bounds() image.Rectangle {
	return p.bounds
}

// Get returns a buffer of p.Bounds(). Contents are undefined; callers
// overwrite every pixel.
func (p *ImagePool) Get() *image.RGBA {
	return p.pool.Get().(*image.RGBA)
}

// Put drops nil buffers and buffers of any other size.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil || img.Rect != p.bounds {
		return
	}
	p.pool.Put(img)
}

// Allocs reports how many buffers the pool has had to allocate.
func (p *ImagePool) Allocs() int64 {
	return p.allocs.Load()
}
