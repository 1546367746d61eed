package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ivlev/vodataset/internal/dataerr"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

var _ Source = (*DirSource)(nil)

// DirSource lists the frames of one recording. Frame order is the
// lexicographic order of file names, which the recorder keeps equal to
// capture order by zero-padding frame numbers.
type DirSource struct {
	dir   string
	paths []string
}

func NewDirSource(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !imageExts[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		path := filepath.Join(dir, name)
		regular, err := isRegular(path, entry)
		if err != nil {
			return nil, err
		}
		if regular {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	return &DirSource{dir: dir, paths: paths}, nil
}

// isRegular follows symlinks, so frames linked in from a shared tree count.
// A dangling link is an error rather than a silently missing frame.
func isRegular(path string, entry fs.DirEntry) (bool, error) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Type().IsRegular(), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func (s *DirSource) Dir() string {
	return s.dir
}

func (s *DirSource) Count() int {
	return len(s.paths)
}

func (s *DirSource) Path(index int) string {
	return s.paths[index]
}

// Paths returns a copy of the sorted frame paths.
func (s *DirSource) Paths() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

func (s *DirSource) Decode(index int) (image.Image, error) {
	if index < 0 || index >= len(s.paths) {
		return nil, &dataerr.IndexOutOfRangeError{Index: index, Len: len(s.paths)}
	}
	return DecodeFile(s.paths[index])
}

// DecodeFile opens and decodes a single JPEG or PNG frame.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dataerr.NewImageDecodeError(path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, dataerr.NewImageDecodeError(path, err)
	}
	if img.Bounds().Empty() {
		return nil, dataerr.NewImageDecodeError(path, fmt.Errorf("empty %s image", format))
	}
	return img, nil
}
