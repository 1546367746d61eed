// Package loader groups dataset samples into batches and decodes each batch
// with a bounded pool of workers.
package loader

import (
	"context"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"
)

// Dataset is anything indexable by sample number. Sample must be safe to
// call from several goroutines at once.
type Dataset[T any] interface {
	Len() int
	Sample(idx int) (T, error)
}

// Batch holds samples in the order of Indices.
type Batch[T any] struct {
	Number  int
	Indices []int
	Samples []T
}

type Loader[T any] struct {
	Dataset   Dataset[T]
	BatchSize int
	Shuffle   bool
	DropLast  bool // skip a final batch smaller than BatchSize
	Workers   int  // <= 0 loads samples sequentially
	Seed      int64
}

// Batches returns how many batches one pass yields.
func (l *Loader[T]) Batches() int {
	if l.BatchSize < 1 {
		return 0
	}
	n := l.Dataset.Len()
	if l.DropLast {
		return n / l.BatchSize
	}
	return (n + l.BatchSize - 1) / l.BatchSize
}

// Order returns the sample order of pass epoch. Shuffled orders are
// reproducible from Seed and epoch.
func (l *Loader[T]) Order(epoch int) []int {
	n := l.Dataset.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if l.Shuffle {
		rng := rand.New(rand.NewSource(l.Seed + int64(epoch)))
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	return order
}

// Run makes one pass over the dataset and calls fn with each batch in turn.
// It stops at the first sample error, fn error or context cancellation.
func (l *Loader[T]) Run(ctx context.Context, epoch int, fn func(Batch[T]) error) error {
	if l.BatchSize < 1 {
		return fmt.Errorf("batch size must be >= 1, got %d", l.BatchSize)
	}

	order := l.Order(epoch)
	batches := l.Batches()
	for b := 0; b < batches; b++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lo := b * l.BatchSize
		hi := min(lo+l.BatchSize, len(order))
		batch, err := l.load(ctx, b, order[lo:hi])
		if err != nil {
			return fmt.Errorf("batch %d: %w", b, err)
		}
		if err := fn(batch); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader[T]) load(ctx context.Context, number int, indices []int) (Batch[T], error) {
	batch := Batch[T]{
		Number:  number,
		Indices: append([]int(nil), indices...),
		Samples: make([]T, len(indices)),
	}

	g, ctx := errgroup.WithContext(ctx)
	if l.Workers > 0 {
		g.SetLimit(l.Workers)
	} else {
		g.SetLimit(1)
	}

	for i, idx := range indices {
		i, idx := i, idx
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := l.Dataset.Sample(idx)
			if err != nil {
				return fmt.Errorf("sample %d: %w", idx, err)
			}
			batch.Samples[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch[T]{}, err
	}
	return batch, nil
}
