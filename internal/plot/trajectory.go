// Package plot renders top-down trajectory plots.
package plot

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/ivlev/vodataset/internal/pose"
)

// Series is one named trajectory.
type Series struct {
	Name  string
	Poses []pose.Pose
}

// Trajectory draws every series as an x/y polyline with its first pose
// marked and saves the plot to path. The format follows the extension
// (.png, .svg, .pdf, ...).
func Trajectory(path, title string, series ...Series) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Add(plotter.NewGrid())

	drawn := 0
	for i, s := range series {
		if len(s.Poses) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(s.Poses))
		for k, ps := range s.Poses {
			pts[k] = plotter.XY{X: ps.X, Y: ps.Y}
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)

		start, err := plotter.NewScatter(pts[:1])
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}
		start.Color = plotutil.Color(i)
		start.Radius = vg.Points(3)

		p.Add(line, start)
		p.Legend.Add(s.Name, line)
		drawn++
	}
	if drawn == 0 {
		return fmt.Errorf("nothing to plot: all %d series are empty", len(series))
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save trajectory plot: %w", err)
	}
	return nil
}
