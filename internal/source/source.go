package source

import "image"

// Source is an ordered sequence of camera frames.
type Source interface {
	Count() int
	Path(index int) string
	Decode(index int) (image.Image, error)
}
