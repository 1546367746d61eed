// Package dataerr defines the errors surfaced while indexing and sampling
// trajectory datasets.
package dataerr

import (
	"errors"
	"fmt"
)

// Sentinels matched through errors.Is on the typed errors below.
var (
	// ErrDataFormat marks a malformed ground-truth table or descriptor range.
	ErrDataFormat = errors.New("data format error")

	// ErrAlignment marks a table whose row count differs from its image count.
	ErrAlignment = errors.New("alignment error")

	// ErrIndexOutOfRange marks a sample index outside the dataset.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrImageDecode marks a corrupt, unreadable or undersized image.
	ErrImageDecode = errors.New("image decode error")
)

// DataFormatError reports a ground-truth table that cannot be used.
type DataFormatError struct {
	Path string // table file, empty for in-memory input
	Line int    // 1-based line, 0 when not tied to a line
	Err  error
}

func (e *DataFormatError) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return e.Err.Error()
}

func (e *DataFormatError) Unwrap() error { return e.Err }

func (e *DataFormatError) Is(target error) bool { return target == ErrDataFormat }

// NewDataFormatError wraps err with the table location.
func NewDataFormatError(path string, line int, err error) *DataFormatError {
	return &DataFormatError{Path: path, Line: line, Err: err}
}

// AlignmentError reports a recording whose image directory and
// ground-truth table disagree on the number of frames.
type AlignmentError struct {
	Dir    string
	Table  string
	Images int
	Rows   int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("%d images in %s but %d rows in %s", e.Images, e.Dir, e.Rows, e.Table)
}

func (e *AlignmentError) Is(target error) bool { return target == ErrAlignment }

// IndexOutOfRangeError reports a sample index outside [0, Len).
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("sample index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *IndexOutOfRangeError) Is(target error) bool { return target == ErrIndexOutOfRange }

// ImageDecodeError reports an image that could not be turned into a tensor.
type ImageDecodeError struct {
	Path string
	Err  error
}

func (e *ImageDecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode image: %v", e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *ImageDecodeError) Unwrap() error { return e.Err }

func (e *ImageDecodeError) Is(target error) bool { return target == ErrImageDecode }

// NewImageDecodeError wraps err with the offending path.
func NewImageDecodeError(path string, err error) *ImageDecodeError {
	return &ImageDecodeError{Path: path, Err: err}
}
