package loader

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type squares struct {
	n       int
	failAt  int
	calls   atomic.Int32
	running atomic.Int32
	peak    atomic.Int32
}

func (s *squares) Len() int { return s.n }

func (s *squares) Sample(idx int) (int, error) {
	s.calls.Add(1)
	cur := s.running.Add(1)
	defer s.running.Add(-1)
	for {
		p := s.peak.Load()
		if cur <= p || s.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	if idx == s.failAt {
		return 0, errors.New("boom")
	}
	return idx * idx, nil
}

func collect(t *testing.T, l *Loader[int]) []Batch[int] {
	t.Helper()
	var out []Batch[int]
	require.NoError(t, l.Run(context.Background(), 0, func(b Batch[int]) error {
		out = append(out, b)
		return nil
	}))
	return out
}

func TestBatchesCount(t *testing.T) {
	tests := []struct {
		n, size  int
		dropLast bool
		want     int
	}{
		{10, 3, true, 3},
		{10, 3, false, 4},
		{9, 3, true, 3},
		{9, 3, false, 3},
		{2, 3, true, 0},
		{0, 3, false, 0},
		{5, 0, false, 0},
	}
	for _, tt := range tests {
		l := &Loader[int]{Dataset: &squares{n: tt.n, failAt: -1}, BatchSize: tt.size, DropLast: tt.dropLast}
		assert.Equal(t, tt.want, l.Batches(), "n=%d size=%d dropLast=%v", tt.n, tt.size, tt.dropLast)
	}
}

func TestRunSequentialOrder(t *testing.T) {
	l := &Loader[int]{Dataset: &squares{n: 7, failAt: -1}, BatchSize: 3}
	batches := collect(t, l)

	require.Len(t, batches, 3)
	assert.Equal(t, []int{0, 1, 2}, batches[0].Indices)
	assert.Equal(t, []int{0, 1, 4}, batches[0].Samples)
	assert.Equal(t, []int{6}, batches[2].Indices)
	assert.Equal(t, []int{36}, batches[2].Samples)
	assert.Equal(t, 2, batches[2].Number)
}

func TestRunShuffleCoversAllOnce(t *testing.T) {
	ds := &squares{n: 20, failAt: -1}
	l := &Loader[int]{Dataset: ds, BatchSize: 4, Shuffle: true, DropLast: true, Workers: 4, Seed: 7}

	var seen []int
	for _, b := range collect(t, l) {
		require.Len(t, b.Samples, 4)
		for i, idx := range b.Indices {
			assert.Equal(t, idx*idx, b.Samples[i])
		}
		seen = append(seen, b.Indices...)
	}
	sort.Ints(seen)
	want := make([]int, 20)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, seen)
	assert.LessOrEqual(t, ds.peak.Load(), int32(4))
}

func TestOrderReproducible(t *testing.T) {
	l := &Loader[int]{Dataset: &squares{n: 50, failAt: -1}, BatchSize: 5, Shuffle: true, Seed: 3}
	assert.Equal(t, l.Order(1), l.Order(1))
	assert.NotEqual(t, l.Order(1), l.Order(2))

	plain := &Loader[int]{Dataset: &squares{n: 3, failAt: -1}, BatchSize: 5}
	assert.Equal(t, []int{0, 1, 2}, plain.Order(9))
}

func TestRunSampleError(t *testing.T) {
	l := &Loader[int]{Dataset: &squares{n: 10, failAt: 5}, BatchSize: 2, Workers: 2}

	var got int
	err := l.Run(context.Background(), 0, func(b Batch[int]) error {
		got++
		return nil
	})
	assert.ErrorContains(t, err, "batch 2: sample 5: boom")
	assert.Equal(t, 2, got)
}

func TestRunCallbackError(t *testing.T) {
	stop := errors.New("stop")
	l := &Loader[int]{Dataset: &squares{n: 10, failAt: -1}, BatchSize: 2}
	err := l.Run(context.Background(), 0, func(b Batch[int]) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestRunCancelled(t *testing.T) {
	ds := &squares{n: 10, failAt: -1}
	l := &Loader[int]{Dataset: ds, BatchSize: 2}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Run(ctx, 0, func(b Batch[int]) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, ds.calls.Load())
}

func TestRunRejectsBadBatchSize(t *testing.T) {
	l := &Loader[int]{Dataset: &squares{n: 4, failAt: -1}}
	assert.Error(t, l.Run(context.Background(), 0, func(Batch[int]) error { return nil }))
}
