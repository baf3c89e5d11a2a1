// Package plot renders a waveform as a line chart of value against sample
// index.
package plot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Options controls labels and output size.
type Options struct {
	Title  string
	XLabel string
	YLabel string
	Width  vg.Length
	Height vg.Length
}

// DefaultOptions returns the standard chart labels on a 10x4 inch canvas.
func DefaultOptions() Options {
	return Options{
		Title:  "One-Dimensional Plot",
		XLabel: "X (Consecutive)",
		YLabel: "Y (Values)",
		Width:  10 * vg.Inch,
		Height: 4 * vg.Inch,
	}
}

// ErrUnsupportedFormat is returned for output extensions the renderer does
// not handle.
var ErrUnsupportedFormat = errors.New("unsupported plot format")

var supported = map[string]bool{
	".png": true, ".svg": true, ".pdf": true, ".jpg": true, ".jpeg": true, ".eps": true, ".tif": true, ".tiff": true,
}

// Points converts samples to x=index, y=value pairs.
func Points(samples []float64) plotter.XYs {
	pts := make(plotter.XYs, len(samples))
	for i, v := range samples {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	return pts
}

// New builds the plot without rendering it.
func New(samples []float64, opts Options) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.Add(plotter.NewGrid())

	if len(samples) == 0 {
		return p, nil
	}
	line, err := plotter.NewLine(Points(samples))
	if err != nil {
		return nil, fmt.Errorf("build line: %w", err)
	}
	p.Add(line)
	return p, nil
}

// CheckPath reports whether path has an extension the renderer can write.
func CheckPath(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !supported[ext] {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return nil
}

// Save renders samples to path; the format follows the file extension.
// The image is rendered under a temporary name and renamed into place, so
// path is either complete or untouched.
func Save(path string, samples []float64, opts Options) (err error) {
	if err := CheckPath(path); err != nil {
		return err
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		def := DefaultOptions()
		opts.Width, opts.Height = def.Width, def.Height
	}
	p, err := New(samples, opts)
	if err != nil {
		return err
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	wt, err := p.WriterTo(opts.Width, opts.Height, format)
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = wt.WriteTo(tmp); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
