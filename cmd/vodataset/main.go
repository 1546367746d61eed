package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/ivlev/vodataset/internal/config"
	"github.com/ivlev/vodataset/internal/dataset"
	"github.com/ivlev/vodataset/internal/loader"
	"github.com/ivlev/vodataset/internal/plot"
	"github.com/ivlev/vodataset/internal/pose"
	"github.com/ivlev/vodataset/internal/preprocess"
	"github.com/ivlev/vodataset/internal/system"
)

func main() {
	configPtr := flag.String("config", "config/dataset.yaml", "Path to the dataset YAML config")
	splitPtr := flag.String("split", "train", "Split to load: train, val, test")
	variantPtr := flag.String("variant", "paired", "Sample layout: paired (stacked frame pairs + relative poses), single (frames only)")
	batchesPtr := flag.Int("batches", 5, "Number of batches to print (0 = full pass)")
	workersPtr := flag.Int("workers", 0, "Loader workers (0 = loader.workers from config, then one per core)")
	seedPtr := flag.Int64("seed", -1, "Shuffle seed (-1 = loader.seed from config)")
	plotPtr := flag.String("plot", "", "Write the split's ground-truth trajectory to this .png/.svg")
	dumpPtr := flag.String("dump", "", "Directory to write the first sample's frames as PNG")
	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}

	recordings, err := cfg.Split(*splitPtr)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}

	workers := cfg.Loader.Workers
	if *workersPtr > 0 {
		workers = *workersPtr
	}
	if workers == 0 {
		workers = system.DefaultWorkers()
	}
	seed := cfg.Loader.Seed
	if *seedPtr >= 0 {
		seed = *seedPtr
	}

	if limit, err := system.RaiseOpenFileLimit(uint64(4 * workers * cfg.TrajectoryLength)); err != nil {
		log.Printf("[!] Could not raise open file limit: %v", err)
	} else {
		fmt.Printf("[*] Open file limit: %d\n", limit)
	}
	fmt.Printf("[*] Host: %s, %d workers\n", system.MemoryReport(), workers)

	builder := &dataset.Builder{DataDir: cfg.DataDir}
	index, err := builder.Build(recordings, cfg.TrajectoryLength)
	if err != nil {
		log.Fatalf("[-] Index error: %v", err)
	}

	if *plotPtr != "" {
		series := plot.Series{Name: *splitPtr + " ground truth", Poses: index.AbsolutePoses()}
		if err := plot.Trajectory(*plotPtr, fmt.Sprintf("%s split, %d frames", *splitPtr, index.Len()), series); err != nil {
			log.Printf("[!] Plot failed: %v", err)
		} else {
			fmt.Printf("[+] Trajectory plot: %s\n", *plotPtr)
		}
	}

	prep, err := preprocess.New(cfg.Crop.Rect(), cfg.Resize)
	if err != nil {
		log.Fatalf("[-] Preprocessing error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	switch *variantPtr {
	case "paired":
		ds, err := dataset.NewPaired(index, cfg.TrajectoryLength, prep)
		if err != nil {
			log.Fatalf("[-] %v", err)
		}
		err = run(ctx, cfg, ds, workers, seed, *batchesPtr, func(b loader.Batch[*dataset.PairedSample]) {
			for k, s := range b.Samples {
				describe(b.Indices[k], s.Images)
				describePoses(s.RelativePoses)
			}
			if *dumpPtr != "" && b.Number == 0 && len(b.Samples) > 0 {
				dump(*dumpPtr, b.Samples[0].Images, 2)
			}
		})
		if err != nil {
			log.Fatalf("[-] Loading failed: %v", err)
		}
	case "single":
		ds, err := dataset.NewSingle(index, cfg.TrajectoryLength, prep)
		if err != nil {
			log.Fatalf("[-] %v", err)
		}
		err = run(ctx, cfg, ds, workers, seed, *batchesPtr, func(b loader.Batch[[]preprocess.Tensor]) {
			for k, s := range b.Samples {
				describe(b.Indices[k], s)
			}
			if *dumpPtr != "" && b.Number == 0 && len(b.Samples) > 0 {
				dump(*dumpPtr, b.Samples[0], 1)
			}
		})
		if err != nil {
			log.Fatalf("[-] Loading failed: %v", err)
		}
	default:
		log.Fatalf("[-] Unknown variant %q, want paired or single", *variantPtr)
	}

	fmt.Printf("[*] Resize buffers allocated: %d\n", prep.BufferAllocs())
	fmt.Printf("[+] Done in %s\n", time.Since(start).Round(time.Millisecond))
}

var errBatchLimit = errors.New("batch limit reached")

func run[T any](ctx context.Context, cfg *config.Config, ds loader.Dataset[T], workers int, seed int64, limit int, fn func(loader.Batch[T])) error {
	l := &loader.Loader[T]{
		Dataset:   ds,
		BatchSize: cfg.Loader.BatchSize,
		Shuffle:   cfg.Loader.Shuffle,
		DropLast:  cfg.Loader.DropLast,
		Workers:   workers,
		Seed:      seed,
	}
	fmt.Printf("[*] %d samples, %d batches of %d\n", ds.Len(), l.Batches(), l.BatchSize)

	err := l.Run(ctx, 0, func(b loader.Batch[T]) error {
		fmt.Printf("[*] Batch %d: samples %v\n", b.Number, b.Indices)
		fn(b)
		if limit > 0 && b.Number+1 >= limit {
			return errBatchLimit
		}
		return nil
	})
	if errors.Is(err, errBatchLimit) {
		return nil
	}
	return err
}

func describe(idx int, images []preprocess.Tensor) {
	if len(images) == 0 {
		return
	}
	lo, hi := images[0].MinMax()
	for _, img := range images[1:] {
		l, h := img.MinMax()
		lo, hi = min(lo, l), max(hi, h)
	}
	fmt.Printf("    sample %d: %d x %v, values [%.3f, %.3f]\n", idx, len(images), images[0].Shape(), lo, hi)
}

func describePoses(rel []pose.Pose) {
	for k, p := range rel {
		fmt.Printf("      step %d: dx=%+.4f dy=%+.4f dtheta=%+.4f\n", k, p.X, p.Y, p.Theta)
	}
}

// dump writes every 3-channel group of each tensor as its own PNG.
func dump(dir string, images []preprocess.Tensor, groups int) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("[!] Dump failed: %v", err)
		return
	}
	for k, t := range images {
		for g := 0; g < groups; g++ {
			img, err := t.RGBA(3 * g)
			if err != nil {
				log.Printf("[!] Dump failed: %v", err)
				return
			}
			path := filepath.Join(dir, fmt.Sprintf("step_%02d_%d.png", k, g))
			f, err := os.Create(path)
			if err != nil {
				log.Printf("[!] Dump failed: %v", err)
				return
			}
			err = png.Encode(f, img)
			f.Close()
			if err != nil {
				log.Printf("[!] Dump failed: %v", err)
				return
			}
		}
	}
	fmt.Printf("[+] First sample written to %s\n", dir)
}
