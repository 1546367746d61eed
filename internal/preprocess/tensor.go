package preprocess

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// Tensor is a channel-first float32 array, Data laid out as [C][H][W].
type Tensor struct {
	C, H, W int
	Data    []float32
}

func NewTensor(c, h, w int) Tensor {
	return Tensor{C: c, H: h, W: w, Data: make([]float32, c*h*w)}
}

func (t Tensor) Shape() [3]int {
	return [3]int{t.C, t.H, t.W}
}

func (t Tensor) At(c, y, x int) float32 {
	return t.Data[(c*t.H+y)*t.W+x]
}

func (t Tensor) Set(c, y, x int, v float32) {
	t.Data[(c*t.H+y)*t.W+x] = v
}

// MinMax returns the smallest and largest value, (0, 0) when empty.
func (t Tensor) MinMax() (float32, float32) {
	if len(t.Data) == 0 {
		return 0, 0
	}
	lo, hi := t.Data[0], t.Data[0]
	for _, v := range t.Data[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Stack concatenates a and b along the channel axis. Both must share H and W.
func Stack(a, b Tensor) (Tensor, error) {
	if a.H != b.H || a.W != b.W {
		return Tensor{}, fmt.Errorf("stack %v with %v: spatial size differs", a.Shape(), b.Shape())
	}
	out := Tensor{C: a.C + b.C, H: a.H, W: a.W, Data: make([]float32, 0, len(a.Data)+len(b.Data))}
	out.Data = append(out.Data, a.Data...)
	out.Data = append(out.Data, b.Data...)
	return out, nil
}

// RGBA renders channels [first, first+3) back into an 8-bit image, for
// eyeballing what the model is fed.
func (t Tensor) RGBA(first int) (*image.RGBA, error) {
	if first < 0 || first+3 > t.C {
		return nil, fmt.Errorf("channels [%d, %d) outside tensor with %d channels", first, first+3, t.C)
	}
	img := image.NewRGBA(image.Rect(0, 0, t.W, t.H))
	for y := 0; y < t.H; y++ {
		for x := 0; x < t.W; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: toByte(t.At(first, y, x)),
				G: toByte(t.At(first+1, y, x)),
				B: toByte(t.At(first+2, y, x)),
				A: 255,
			})
		}
	}
	return img, nil
}

func toByte(v float32) uint8 {
	f := math.Round(float64(v) * 255)
	switch {
	case f < 0:
		return 0
	case f > 255:
		return 255
	}
	return uint8(f)
}
