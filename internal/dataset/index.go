// Package dataset builds the flat trajectory index over a set of recordings
// and serves fixed-length trajectory windows from it.
package dataset

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/ivlev/vodataset/internal/config"
	"github.com/ivlev/vodataset/internal/dataerr"
	"github.com/ivlev/vodataset/internal/groundtruth"
	"github.com/ivlev/vodataset/internal/pose"
	"github.com/ivlev/vodataset/internal/source"
)

// Frame is one row of the flat index.
type Frame struct {
	X              float64
	Y              float64
	Theta          float64
	ThetaCorrected float64
	ImagePath      string
}

// Pose returns the pose used for relative motion, which takes the corrected
// heading.
func (f Frame) Pose() pose.Pose {
	return pose.Pose{X: f.X, Y: f.Y, Theta: f.ThetaCorrected}
}

// Index is the concatenation of every recording's trimmed frames, in
// configuration order. Recordings are not delimited: a window stays inside
// one recording only because each contributes a multiple of the trajectory
// length. An Index is not modified after Build returns.
type Index struct {
	Frames []Frame
}

func (ix *Index) Len() int {
	return len(ix.Frames)
}

// AbsolutePoses returns (x, y, theta_corrected) for every frame.
func (ix *Index) AbsolutePoses() []pose.Pose {
	out := make([]pose.Pose, len(ix.Frames))
	for i, f := range ix.Frames {
		out[i] = f.Pose()
	}
	return out
}

// Builder assembles an Index from recording descriptors whose paths are
// relative to DataDir.
type Builder struct {
	DataDir string
	Logger  *log.Logger
}

func (b *Builder) logger() *log.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return log.Default()
}

// Build reads every recording in order and returns the flat index.
// trajectoryLength must be at least 1.
func (b *Builder) Build(recordings []config.Recording, trajectoryLength int) (*Index, error) {
	if trajectoryLength < 1 {
		return nil, fmt.Errorf("trajectory length must be >= 1, got %d", trajectoryLength)
	}

	total := 0
	for _, rec := range recordings {
		total += Retained(rec.Start, rec.End, trajectoryLength)
	}

	ix := &Index{Frames: make([]Frame, 0, total)}
	for _, rec := range recordings {
		frames, err := b.loadRecording(rec, trajectoryLength)
		if err != nil {
			return nil, err
		}
		ix.Frames = append(ix.Frames, frames...)
	}

	b.logger().Printf("[*] Index: %d frames from %d recordings, trajectory length %d, %d paired samples",
		ix.Len(), len(recordings), trajectoryLength, PairedLen(ix.Len(), trajectoryLength))
	return ix, nil
}

func (b *Builder) loadRecording(rec config.Recording, trajectoryLength int) ([]Frame, error) {
	tablePath := filepath.Join(b.DataDir, rec.File)
	imageDir := filepath.Join(b.DataDir, rec.Dir)

	rows, err := groundtruth.ReadFile(tablePath)
	if err != nil {
		return nil, err
	}

	src, err := source.NewDirSource(imageDir)
	if err != nil {
		return nil, fmt.Errorf("list images of %s: %w", rec.Dir, err)
	}
	if src.Count() != len(rows) {
		return nil, &dataerr.AlignmentError{Dir: imageDir, Table: tablePath, Images: src.Count(), Rows: len(rows)}
	}

	if rec.Start < 0 || rec.End < rec.Start-1 {
		return nil, dataerr.NewDataFormatError(tablePath, 0,
			fmt.Errorf("invalid range [%d, %d]", rec.Start, rec.End))
	}
	if rec.End >= len(rows) {
		return nil, dataerr.NewDataFormatError(tablePath, 0,
			fmt.Errorf("range [%d, %d] exceeds %d rows", rec.Start, rec.End, len(rows)))
	}

	n := Retained(rec.Start, rec.End, trajectoryLength)
	frames := make([]Frame, n)
	for i := range frames {
		row := rows[rec.Start+i]
		frames[i] = Frame{
			X:              row.X,
			Y:              row.Y,
			Theta:          row.Theta,
			ThetaCorrected: row.ThetaCorrected,
			ImagePath:      src.Path(rec.Start + i),
		}
	}

	b.logger().Printf("[*] %s: rows [%d, %d], kept %d of %d", rec.File, rec.Start, rec.End, n, rec.End-rec.Start+1)
	return frames, nil
}

// Retained is the number of rows kept from the inclusive range [start, end]:
// the largest multiple of trajectoryLength not exceeding its length.
func Retained(start, end, trajectoryLength int) int {
	n := end - start + 1
	if n <= 0 || trajectoryLength < 1 {
		return 0
	}
	return n - n%trajectoryLength
}
