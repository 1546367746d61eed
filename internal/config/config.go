package config

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Recording identifies one drive: its ground-truth table, its image
// directory (both relative to DataDir) and the inclusive row range to use.
type Recording struct {
	File  string `yaml:"file"`
	Dir   string `yaml:"dir"`
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
}

type Split struct {
	Recordings []Recording `yaml:"recordings"`
}

// Crop is a pixel region in source image space, right/bottom exclusive.
type Crop struct {
	Left   int `yaml:"left"`
	Top    int `yaml:"top"`
	Right  int `yaml:"right"`
	Bottom int `yaml:"bottom"`
}

func (c Crop) Rect() image.Rectangle {
	return image.Rect(c.Left, c.Top, c.Right, c.Bottom)
}

type LoaderConfig struct {
	BatchSize int   `yaml:"batch_size"`
	Shuffle   bool  `yaml:"shuffle"`
	DropLast  bool  `yaml:"drop_last"`
	Workers   int   `yaml:"workers"` // 0 picks one per physical core
	Seed      int64 `yaml:"seed"`
}

type Config struct {
	DataDir          string           `yaml:"data_dir"`
	TrajectoryLength int              `yaml:"trajectory_length"`
	Resize           int              `yaml:"resize"`
	Crop             *Crop            `yaml:"crop,omitempty"`
	Splits           map[string]Split `yaml:"splits"`
	Loader           LoaderConfig     `yaml:"loader"`
}

// Defaults mirror the settings the recordings were collected and trained with.
const (
	DefaultTrajectoryLength = 5
	DefaultResize           = 64
	DefaultBatchSize        = 2
)

var defaultCrop = Crop{Left: 0, Top: 160, Right: 640, Bottom: 480}

// Load reads a YAML config, fills defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	cfg := &Config{
		Loader: LoaderConfig{Shuffle: true, DropLast: true},
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if err := checkIntegers(&root, ""); err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// integerKeys are the config keys decoded into int fields. yaml.v3 would
// truncate 3.7 to 3 there, so their scalars must carry the !!int tag.
var integerKeys = map[string]bool{
	"trajectory_length": true,
	"resize":            true,
	"start":             true,
	"end":               true,
	"left":              true,
	"top":               true,
	"right":             true,
	"bottom":            true,
	"batch_size":        true,
	"workers":           true,
	"seed":              true,
}

func checkIntegers(n *yaml.Node, path string) error {
	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			if err := checkIntegers(c, path); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for i, c := range n.Content {
			if err := checkIntegers(c, path+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			p := key.Value
			if path != "" {
				p = path + "." + key.Value
			}
			if val.Kind == yaml.ScalarNode && integerKeys[key.Value] {
				if tag := val.ShortTag(); tag != "!!int" && tag != "!!null" {
					return fmt.Errorf("line %d: %s must be an integer, got %q", val.Line, p, val.Value)
				}
				continue
			}
			if err := checkIntegers(val, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.TrajectoryLength == 0 {
		c.TrajectoryLength = DefaultTrajectoryLength
	}
	if c.Resize == 0 {
		c.Resize = DefaultResize
	}
	if c.Crop == nil {
		crop := defaultCrop
		c.Crop = &crop
	}
	if c.Loader.BatchSize == 0 {
		c.Loader.BatchSize = DefaultBatchSize
	}
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	if c.TrajectoryLength < 1 {
		errs = append(errs, fmt.Errorf("trajectory_length must be >= 1, got %d", c.TrajectoryLength))
	}
	if c.Resize < 2 {
		errs = append(errs, fmt.Errorf("resize must be >= 2, got %d", c.Resize))
	}
	if c.Crop != nil && c.Crop.Rect().Empty() {
		errs = append(errs, fmt.Errorf("crop region %v is empty", c.Crop.Rect()))
	}
	if c.Loader.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("loader.batch_size must be >= 1, got %d", c.Loader.BatchSize))
	}
	if c.Loader.Workers < 0 {
		errs = append(errs, fmt.Errorf("loader.workers must be >= 0, got %d", c.Loader.Workers))
	}

	for _, name := range c.SplitNames() {
		for i, rec := range c.Splits[name].Recordings {
			where := fmt.Sprintf("splits.%s.recordings[%d]", name, i)
			if rec.File == "" || rec.Dir == "" {
				errs = append(errs, fmt.Errorf("%s: file and dir are required", where))
			}
			if rec.Start < 0 {
				errs = append(errs, fmt.Errorf("%s: start %d is negative", where, rec.Start))
			}
			// End == Start-1 is an empty range and allowed.
			if rec.End < rec.Start-1 {
				errs = append(errs, fmt.Errorf("%s: end %d before start %d", where, rec.End, rec.Start))
			}
		}
	}
	return errors.Join(errs...)
}

// SplitNames returns the configured split names in sorted order.
func (c *Config) SplitNames() []string {
	names := make([]string, 0, len(c.Splits))
	for name := range c.Splits {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Split returns the recordings of the named split.
func (c *Config) Split(name string) ([]Recording, error) {
	s, ok := c.Splits[name]
	if !ok {
		return nil, fmt.Errorf("unknown split %q (have: %s)", name, strings.Join(c.SplitNames(), ", "))
	}
	return s.Recordings, nil
}
