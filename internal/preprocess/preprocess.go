// Package preprocess turns decoded camera frames into model input tensors.
package preprocess

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/vodataset/internal/system"
)

// DefaultCrop keeps the lower 320 rows of a 640x480 frame, where the road is.
var DefaultCrop = image.Rect(0, 160, 640, 480)

// Preprocessor crops, resizes and normalizes frames. Apply is safe for
// concurrent use; resize buffers come from a pool sized to Width x Height.
type Preprocessor struct {
	Crop   image.Rectangle
	Width  int
	Height int

	buffers *system.ImagePool
}

// New returns a Preprocessor producing resize x resize/2 tensors.
func New(crop image.Rectangle, resize int) (*Preprocessor, error) {
	if crop.Empty() {
		return nil, fmt.Errorf("empty crop region %v", crop)
	}
	if resize < 2 {
		return nil, fmt.Errorf("resize %d too small, need at least 2", resize)
	}
	w, h := resize, resize/2
	return &Preprocessor{
		Crop:    crop,
		Width:   w,
		Height:  h,
		buffers: system.NewImagePool(image.Rect(0, 0, w, h)),
	}, nil
}

// BufferAllocs reports how many resize buffers Apply has allocated so far.
func (p *Preprocessor) BufferAllocs() int64 {
	return p.buffers.Allocs()
}

// Apply crops img to p.Crop, resizes bilinearly to Height x Width and
// returns a 3-channel tensor with values in [0, 1].
func (p *Preprocessor) Apply(img image.Image) (Tensor, error) {
	if !p.Crop.In(img.Bounds()) {
		return Tensor{}, fmt.Errorf("crop region %v outside image bounds %v", p.Crop, img.Bounds())
	}

	dst := p.buffers.Get()
	defer p.buffers.Put(dst)

	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, p.Crop, xdraw.Src, nil)

	t := NewTensor(3, p.Height, p.Width)
	plane := p.Height * p.Width
	for y := 0; y < p.Height; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < p.Width; x++ {
			px := row[x*4:]
			i := y*p.Width + x
			t.Data[i] = float32(px[0]) / 255
			t.Data[plane+i] = float32(px[1]) / 255
			t.Data[2*plane+i] = float32(px[2]) / 255
		}
	}
	return t, nil
}
