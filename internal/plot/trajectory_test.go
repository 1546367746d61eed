package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/vodataset/internal/pose"
)

func TestTrajectoryWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plots", "train.png")

	square := []pose.Pose{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	err := Trajectory(path, "train", Series{Name: "ground truth", Poses: square}, Series{Name: "empty"})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestTrajectorySVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.svg")
	require.NoError(t, Trajectory(path, "run", Series{Name: "a", Poses: []pose.Pose{{X: 2, Y: 3}}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestTrajectoryNothingToPlot(t *testing.T) {
	err := Trajectory(filepath.Join(t.TempDir(), "x.png"), "none", Series{Name: "empty"})
	assert.ErrorContains(t, err, "nothing to plot")
}
