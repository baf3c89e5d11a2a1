package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rjboer/instekcsv/internal/convert"
	"github.com/rjboer/instekcsv/internal/logging"
	"github.com/rjboer/instekcsv/internal/plot"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err := run(ctx, os.Args[1:], os.Stdout, os.LookupEnv)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	case errors.As(err, new(usageError)):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type usageError string

func (e usageError) Error() string { return string(e) }

type cliConfig struct {
	outDir     string
	workers    int
	plotFormat string
	logLevel   string
	logFormat  string
	inputs     []string
}

func run(ctx context.Context, args []string, stdout io.Writer, lookup func(string) (string, bool)) error {
	cfg, err := parseConfig(args, lookup, stdout)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.logLevel)
	if err != nil {
		return usageError(err.Error())
	}
	format, err := logging.ParseFormat(cfg.logFormat)
	if err != nil {
		return usageError(err.Error())
	}
	logger := logging.New(level, format, stdout)
	logging.SetDefault(logger)

	inputs, err := expandInputs(cfg.inputs)
	if err != nil {
		return usageError(err.Error())
	}
	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	b := &convert.Batch{
		OutDir:     cfg.outDir,
		Workers:    cfg.workers,
		PlotFormat: cfg.plotFormat,
		Logger:     logger,
		Reporter:   convert.NewLogReporter(logger),
	}
	results, err := b.Run(ctx, inputs)
	if err != nil {
		return err
	}
	failed := convert.Failed(results)
	logger.Info("batch finished",
		logging.Field{Key: "files", Value: len(results)},
		logging.Field{Key: "failed", Value: failed},
	)
	if failed > 0 {
		return fmt.Errorf("%d of %d captures failed", failed, len(results))
	}
	return nil
}

// expandInputs resolves glob patterns so the tool behaves the same on shells
// that do not expand them.
func expandInputs(patterns []string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			out = append(out, p)
			continue
		}
		out = append(out, matches...)
	}
	return out, nil
}

func parseConfig(args []string, lookup func(string) (string, bool), out io.Writer) (cliConfig, error) {
	cfg := cliConfig{}
	fs := flag.NewFlagSet("instekbatch", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: instekbatch [flags] <capture>...")
		fs.PrintDefaults()
	}
	fs.StringVar(&cfg.outDir, "out-dir", envString(lookup, "INSTEK_OUT_DIR", "."), "Directory receiving <name>.csv for every capture")
	fs.IntVar(&cfg.workers, "workers", envInt(lookup, "INSTEK_WORKERS", 0), "Concurrent conversions (0 = number of CPUs)")
	fs.StringVar(&cfg.plotFormat, "plot-format", envString(lookup, "INSTEK_PLOT_FORMAT", ""), "Also render <name>.<format> plots (png, svg, pdf)")
	fs.StringVar(&cfg.logLevel, "log-level", envString(lookup, "INSTEK_LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.logFormat, "log-format", envString(lookup, "INSTEK_LOG_FORMAT", "text"), "Log format (text|json)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cliConfig{}, err
		}
		return cliConfig{}, usageError(err.Error())
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return cliConfig{}, usageError("no capture files given")
	}
	if cfg.workers < 0 {
		return cliConfig{}, usageError("workers must not be negative")
	}
	if cfg.plotFormat != "" {
		if err := plot.CheckPath("plot." + strings.TrimPrefix(cfg.plotFormat, ".")); err != nil {
			return cliConfig{}, usageError(fmt.Sprintf("-plot-format: %v", err))
		}
	}
	cfg.inputs = fs.Args()
	return cfg, nil
}

func envString(lookup func(string) (string, bool), key, def string) string {
	if val, ok := lookup(key); ok {
		return val
	}
	return def
}

func envInt(lookup func(string) (string, bool), key string, def int) int {
	if val, ok := lookup(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}
