package system

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImagePoolReturnsBounds(t *testing.T) {
	rect := image.Rect(0, 0, 64, 32)
	pool := NewImagePool(rect)
	assert.Equal(t, rect, pool.Bounds())

	img := pool.Get()
	require.NotNil(t, img)
	assert.Equal(t, rect, img.Rect)
	assert.Len(t, img.Pix, 64*32*4)
	assert.Equal(t, int64(1), pool.Allocs())
	pool.Put(img)
}

func TestImagePoolDropsForeignBuffers(t *testing.T) {
	pool := NewImagePool(image.Rect(0, 0, 8, 4))
	pool.Put(nil)
	pool.Put(image.NewRGBA(image.Rect(0, 0, 3, 3)))

	img := pool.Get()
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Rect)
	assert.Equal(t, int64(1), pool.Allocs())
}

func TestDefaultWorkers(t *testing.T) {
	assert.GreaterOrEqual(t, DefaultWorkers(), 1)
}

func TestRaiseOpenFileLimitKeepsHigherLimit(t *testing.T) {
	cur, err := RaiseOpenFileLimit(1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cur, uint64(1))
}

func TestMemoryReport(t *testing.T) {
	assert.NotEmpty(t, MemoryReport())
}
