// Package pose implements planar robot poses and the relative transform
// between consecutive frames.
//
// Headings are in radians and normalized into (-π, π].
package pose

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Pose is a planar position and heading.
type Pose struct {
	X     float64
	Y     float64
	Theta float64
}

// Vec returns the pose as (x, y, theta).
func (p Pose) Vec() [3]float64 {
	return [3]float64{p.X, p.Y, p.Theta}
}

// Normalize wraps theta into (-π, π].
func Normalize(theta float64) float64 {
	if math.IsNaN(theta) || math.IsInf(theta, 0) {
		return theta
	}
	wrapped := math.Mod(theta+math.Pi, 2*math.Pi)
	if wrapped <= 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}

// rotation returns the 2x2 matrix rotating vectors by theta.
func rotation(theta float64) *mat.Dense {
	s, c := math.Sincos(theta)
	return mat.NewDense(2, 2, []float64{
		c, -s,
		s, c,
	})
}

func rotate(theta, x, y float64) (float64, float64) {
	var out mat.VecDense
	out.MulVec(rotation(theta), mat.NewVecDense(2, []float64{x, y}))
	return out.AtVec(0), out.AtVec(1)
}

// Relative expresses b in the frame anchored at a: the translation b-a is
// rotated by -a.Theta and the heading difference is normalized.
func Relative(a, b Pose) Pose {
	x, y := rotate(-a.Theta, b.X-a.X, b.Y-a.Y)
	return Pose{
		X:     x,
		Y:     y,
		Theta: Normalize(b.Theta - a.Theta),
	}
}

// Compose applies rel in the frame of a. Compose(a, Relative(a, b))
// reconstructs b with its heading normalized.
func Compose(a, rel Pose) Pose {
	x, y := rotate(a.Theta, rel.X, rel.Y)
	return Pose{
		X:     a.X + x,
		Y:     a.Y + y,
		Theta: Normalize(a.Theta + rel.Theta),
	}
}

// Accumulate chains relative poses starting from start. The result has
// len(rels)+1 poses, start first.
func Accumulate(start Pose, rels []Pose) []Pose {
	out := make([]Pose, 0, len(rels)+1)
	cur := Pose{X: start.X, Y: start.Y, Theta: Normalize(start.Theta)}
	out = append(out, cur)
	for _, rel := range rels {
		cur = Compose(cur, rel)
		out = append(out, cur)
	}
	return out
}
