package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rjboer/instekcsv/internal/logging"
	"github.com/rjboer/instekcsv/internal/plot"
)

// Batch converts many capture files concurrently. Each file is parsed
// independently; a failure in one file does not affect the others.
type Batch struct {
	// OutDir receives <name>.csv for every input <name>.<ext>.
	OutDir string
	// Workers bounds concurrent conversions; zero means runtime.NumCPU().
	Workers int
	// PlotFormat, when set (e.g. "png"), also renders <name>.<PlotFormat>.
	PlotFormat string
	Logger     logging.Logger
	Reporter   Reporter
}

// OutputPath returns the CSV path used for input.
func (b *Batch) OutputPath(input string) string {
	return filepath.Join(b.OutDir, stem(input)+".csv")
}

func (b *Batch) plotPath(input string) string {
	if b.PlotFormat == "" {
		return ""
	}
	return filepath.Join(b.OutDir, stem(input)+"."+strings.TrimPrefix(b.PlotFormat, "."))
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Run converts inputs and returns one Result per input, in input order.
// The returned error is non-nil only when the batch itself could not run
// (unsupported plot format, conflicting outputs or cancellation); per-file
// failures are in the results.
func (b *Batch) Run(ctx context.Context, inputs []string) ([]Result, error) {
	if b.PlotFormat != "" {
		if err := plot.CheckPath(b.plotPath("x")); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]string, len(inputs))
	for _, in := range inputs {
		out := b.OutputPath(in)
		if prev, ok := seen[out]; ok {
			return nil, fmt.Errorf("inputs %s and %s both map to %s", prev, in, out)
		}
		seen[out] = in
	}

	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := b.Logger
	if logger == nil {
		logger = logging.Default()
	}

	results := make([]Result, len(inputs))
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(inputs); j++ {
				results[j] = Result{Input: inputs[j], Output: b.OutputPath(inputs[j]), Err: err}
			}
			break
		}
		i, in := i, in
		g.Go(func() error {
			res := Result{Input: in, Output: b.OutputPath(in)}
			if err := ctx.Err(); err != nil {
				res.Err = err
			} else {
				// the error is also carried in res.Err
				res, _ = File(in, res.Output, Options{PlotPath: b.plotPath(in), Logger: logger})
			}
			results[i] = res
			if b.Reporter != nil {
				b.Reporter.Report(res)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// Failed counts results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
