package dataset

import (
	"errors"
	"fmt"

	"github.com/ivlev/vodataset/internal/dataerr"
	"github.com/ivlev/vodataset/internal/pose"
	"github.com/ivlev/vodataset/internal/preprocess"
	"github.com/ivlev/vodataset/internal/source"
)

// PairedLen is the sample count of the paired variant: floor((n-1)/l).
// It comes out one window short of floor(n/l) whenever n is a multiple of l,
// and consumers rely on that count as is.
func PairedLen(n, trajectoryLength int) int {
	if n < 1 || trajectoryLength < 1 {
		return 0
	}
	return (n - 1) / trajectoryLength
}

// SingleLen is the sample count of the single-frame variant: floor(n/l).
func SingleLen(n, trajectoryLength int) int {
	if n < 1 || trajectoryLength < 1 {
		return 0
	}
	return n / trajectoryLength
}

// windows holds what both extractors share: the index, the window length
// and the image pipeline.
type windows struct {
	index            *Index
	trajectoryLength int
	prep             *preprocess.Preprocessor
}

func newWindows(ix *Index, trajectoryLength int, prep *preprocess.Preprocessor) (windows, error) {
	if ix == nil {
		return windows{}, errors.New("nil index")
	}
	if trajectoryLength < 1 {
		return windows{}, fmt.Errorf("trajectory length must be >= 1, got %d", trajectoryLength)
	}
	if prep == nil {
		return windows{}, errors.New("nil preprocessor")
	}
	return windows{index: ix, trajectoryLength: trajectoryLength, prep: prep}, nil
}

func (w windows) load(i int) (preprocess.Tensor, error) {
	path := w.index.Frames[i].ImagePath
	img, err := source.DecodeFile(path)
	if err != nil {
		return preprocess.Tensor{}, err
	}
	t, err := w.prep.Apply(img)
	if err != nil {
		return preprocess.Tensor{}, dataerr.NewImageDecodeError(path, err)
	}
	return t, nil
}

// PairedSample is one trajectory window: Images[k] stacks frames k and k+1
// of the window channel-wise (6 channels) and RelativePoses[k] is frame k+1
// expressed in frame k.
type PairedSample struct {
	Images        []preprocess.Tensor
	RelativePoses []pose.Pose
}

// Paired serves windows of trajectoryLength frame pairs. It is safe for
// concurrent use.
type Paired struct {
	windows
}

func NewPaired(ix *Index, trajectoryLength int, prep *preprocess.Preprocessor) (*Paired, error) {
	w, err := newWindows(ix, trajectoryLength, prep)
	if err != nil {
		return nil, err
	}
	return &Paired{windows: w}, nil
}

func (p *Paired) Len() int {
	return PairedLen(p.index.Len(), p.trajectoryLength)
}

// Sample decodes frames idx*L .. idx*L+L, each once, and pairs neighbours.
func (p *Paired) Sample(idx int) (*PairedSample, error) {
	if n := p.Len(); idx < 0 || idx >= n {
		return nil, &dataerr.IndexOutOfRangeError{Index: idx, Len: n}
	}

	start := idx * p.trajectoryLength
	out := &PairedSample{
		Images:        make([]preprocess.Tensor, 0, p.trajectoryLength),
		RelativePoses: make([]pose.Pose, 0, p.trajectoryLength),
	}

	prev, err := p.load(start)
	if err != nil {
		return nil, err
	}
	for i := start; i < start+p.trajectoryLength; i++ {
		next, err := p.load(i + 1)
		if err != nil {
			return nil, err
		}
		stacked, err := preprocess.Stack(prev, next)
		if err != nil {
			return nil, err
		}
		out.Images = append(out.Images, stacked)
		out.RelativePoses = append(out.RelativePoses,
			pose.Relative(p.index.Frames[i].Pose(), p.index.Frames[i+1].Pose()))
		prev = next
	}
	return out, nil
}

// Single serves windows of trajectoryLength individual frames. Unlike
// Paired its Len is floor(N/L).
type Single struct {
	windows
}

func NewSingle(ix *Index, trajectoryLength int, prep *preprocess.Preprocessor) (*Single, error) {
	w, err := newWindows(ix, trajectoryLength, prep)
	if err != nil {
		return nil, err
	}
	return &Single{windows: w}, nil
}

func (s *Single) Len() int {
	return SingleLen(s.index.Len(), s.trajectoryLength)
}

func (s *Single) Sample(idx int) ([]preprocess.Tensor, error) {
	if n := s.Len(); idx < 0 || idx >= n {
		return nil, &dataerr.IndexOutOfRangeError{Index: idx, Len: n}
	}

	start := idx * s.trajectoryLength
	out := make([]preprocess.Tensor, 0, s.trajectoryLength)
	for i := start; i < start+s.trajectoryLength; i++ {
		t, err := s.load(i)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
