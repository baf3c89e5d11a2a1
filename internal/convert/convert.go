// Package convert turns capture files into CSV (and optionally plot) output.
package convert

import (
	"fmt"
	"os"

	"github.com/rjboer/instekcsv/internal/capture"
	"github.com/rjboer/instekcsv/internal/csvout"
	"github.com/rjboer/instekcsv/internal/logging"
	"github.com/rjboer/instekcsv/internal/plot"
)

// Options controls a single conversion.
type Options struct {
	// PlotPath, when set, also renders the waveform to this file.
	PlotPath string
	Logger   logging.Logger
}

// Result describes one conversion attempt.
type Result struct {
	Input    string
	Output   string
	PlotPath string
	Scale    float64
	Samples  []float64
	Err      error
}

// File reads the capture at input, decodes it and writes the samples to
// output as CSV. Nothing is written when decoding fails or the plot path
// has an unsupported format.
func File(input, output string, opts Options) (Result, error) {
	res := Result{Input: input, Output: output}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.With(logging.Field{Key: "input", Value: input})

	if opts.PlotPath != "" {
		if err := plot.CheckPath(opts.PlotPath); err != nil {
			res.Err = fmt.Errorf("plot %s: %w", opts.PlotPath, err)
			return res, res.Err
		}
	}

	raw, err := os.ReadFile(input)
	if err != nil {
		res.Err = fmt.Errorf("read capture: %w", err)
		return res, res.Err
	}
	logger.Debug("capture loaded", logging.Field{Key: "bytes", Value: len(raw)})

	c, err := capture.NewParser(logger).Parse(raw)
	if err != nil {
		res.Err = fmt.Errorf("parse %s: %w", input, err)
		return res, res.Err
	}
	res.Scale = c.Scale
	res.Samples = c.Samples

	if err := csvout.WriteFile(output, c.Samples); err != nil {
		res.Err = fmt.Errorf("write csv %s: %w", output, err)
		return res, res.Err
	}
	logger.Info("csv written",
		logging.Field{Key: "output", Value: output},
		logging.Field{Key: "samples", Value: len(c.Samples)},
		logging.Field{Key: "scale", Value: c.Scale},
	)

	if opts.PlotPath != "" {
		if err := plot.Save(opts.PlotPath, c.Samples, plot.DefaultOptions()); err != nil {
			res.Err = fmt.Errorf("render plot %s: %w", opts.PlotPath, err)
			return res, res.Err
		}
		res.PlotPath = opts.PlotPath
		logger.Info("plot written", logging.Field{Key: "plot", Value: opts.PlotPath})
	}
	return res, nil
}
