package pose

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func assertPose(t *testing.T, want, got Pose) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, "x")
	assert.InDelta(t, want.Y, got.Y, tol, "y")
	assert.InDelta(t, want.Theta, got.Theta, tol, "theta")
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{5.5 * math.Pi, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{3 * math.Pi / 2, -math.Pi / 2},
		{2 * math.Pi, 0},
		{-0.25, -0.25},
		{-7, 2*math.Pi - 7},
	}
	for _, tt := range tests {
		got := Normalize(tt.in)
		assert.InDelta(t, tt.want, got, tol, "Normalize(%v)", tt.in)
		assert.True(t, got > -math.Pi && got <= math.Pi, "Normalize(%v)=%v outside (-π, π]", tt.in, got)
	}
}

func TestRelativeExamples(t *testing.T) {
	tests := []struct {
		name string
		a, b Pose
		want Pose
	}{
		{"straight along x", Pose{0, 0, 0}, Pose{1, 0, 0}, Pose{1, 0, 0}},
		// Heading +y, so a step in +y is straight ahead in a's frame.
		{"ahead while facing +y", Pose{0, 0, math.Pi / 2}, Pose{0, 1, math.Pi / 2}, Pose{1, 0, 0}},
		{"left of heading", Pose{2, 3, 0}, Pose{2, 4, 0.5}, Pose{0, 1, 0.5}},
		{"behind while facing -x", Pose{1, 1, math.Pi}, Pose{2, 1, math.Pi}, Pose{-1, 0, 0}},
		{"heading wraps", Pose{0, 0, 3}, Pose{0, 0, -3}, Pose{0, 0, 2*math.Pi - 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertPose(t, tt.want, Relative(tt.a, tt.b))
		})
	}
}

func TestRelativeToSelfIsZero(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		a := Pose{X: rng.NormFloat64() * 10, Y: rng.NormFloat64() * 10, Theta: rng.Float64()*20 - 10}
		assertPose(t, Pose{}, Relative(a, a))
	}
}

func TestComposeInvertsRelative(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		a := Pose{X: rng.NormFloat64() * 5, Y: rng.NormFloat64() * 5, Theta: rng.Float64()*4*math.Pi - 2*math.Pi}
		b := Pose{X: rng.NormFloat64() * 5, Y: rng.NormFloat64() * 5, Theta: rng.Float64()*4*math.Pi - 2*math.Pi}

		got := Compose(a, Relative(a, b))
		assert.InDelta(t, b.X, got.X, tol)
		assert.InDelta(t, b.Y, got.Y, tol)
		// Compare headings on the circle.
		assert.InDelta(t, 0, Normalize(got.Theta-b.Theta), tol)
	}
}

func TestAccumulate(t *testing.T) {
	start := Pose{X: 1, Y: 1, Theta: math.Pi / 2}
	absolute := []Pose{
		start,
		{X: 1, Y: 2, Theta: math.Pi / 2},
		{X: 0, Y: 2, Theta: math.Pi},
		{X: 0, Y: 1, Theta: -math.Pi / 2},
	}

	var rels []Pose
	for i := 1; i < len(absolute); i++ {
		rels = append(rels, Relative(absolute[i-1], absolute[i]))
	}

	got := Accumulate(start, rels)
	require.Len(t, got, len(absolute))
	for i := range absolute {
		assertPose(t, absolute[i], got[i])
	}
}

func TestAccumulateEmpty(t *testing.T) {
	got := Accumulate(Pose{X: 3, Theta: 2 * math.Pi}, nil)
	require.Len(t, got, 1)
	assertPose(t, Pose{X: 3}, got[0])
}

func TestVec(t *testing.T) {
	assert.Equal(t, [3]float64{1, 2, 3}, Pose{1, 2, 3}.Vec())
}
