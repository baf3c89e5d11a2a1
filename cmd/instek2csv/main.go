package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rjboer/instekcsv/internal/capture"
	"github.com/rjboer/instekcsv/internal/convert"
	"github.com/rjboer/instekcsv/internal/dsp"
	"github.com/rjboer/instekcsv/internal/logging"
	"github.com/rjboer/instekcsv/internal/plot"
)

func main() {
	err := run(os.Args[1:], os.Stdout, os.LookupEnv)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	case errors.As(err, new(usageError)):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	default:
		os.Exit(1)
	}
}

type usageError string

func (e usageError) Error() string { return string(e) }

type cliConfig struct {
	input     string
	output    string
	plotPath  string
	summary   bool
	logLevel  string
	logFormat string
}

type persistentConfig struct {
	PlotPath  string `json:"plot_path"`
	Summary   bool   `json:"summary"`
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}

func run(args []string, stdout io.Writer, lookup func(string) (string, bool)) error {
	defaults := defaultPersistentConfig()
	if path, ok := lookup("INSTEK_CONFIG"); ok && path != "" {
		loaded, err := loadConfig(path, defaults)
		if err != nil {
			return usageError(fmt.Sprintf("load config: %v", err))
		}
		defaults = loaded
	}

	cfg, err := parseConfig(args, lookup, defaults, stdout)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, stdout)
	if err != nil {
		return usageError(err.Error())
	}
	logging.SetDefault(logger)

	res, err := convert.File(cfg.input, cfg.output, convert.Options{PlotPath: cfg.plotPath, Logger: logger})
	if err != nil {
		fields := []logging.Field{{Key: "input", Value: cfg.input}, {Key: "error", Value: err}}
		if kind := capture.KindOf(err); kind != 0 {
			fields = append(fields, logging.Field{Key: "kind", Value: kind.String()})
		}
		logger.Error("conversion failed", fields...)
		return err
	}

	if cfg.summary {
		logSummary(logger, res.Samples)
	}
	return nil
}

func logSummary(logger logging.Logger, samples []float64) {
	s := dsp.Summarize(samples)
	fields := []logging.Field{
		{Key: "count", Value: s.Count},
		{Key: "min", Value: s.Min},
		{Key: "max", Value: s.Max},
		{Key: "mean", Value: s.Mean},
		{Key: "std_dev", Value: s.StdDev},
		{Key: "peak_to_peak", Value: s.PeakToPeak},
		{Key: "rms", Value: s.RMS},
	}
	if len(samples) > 1 {
		spec := dsp.MagnitudeSpectrum(samples)
		fields = append(fields,
			logging.Field{Key: "dominant_bin", Value: spec.DominantBin},
			logging.Field{Key: "dominant_db", Value: spec.DB[spec.DominantBin]},
		)
	}
	logger.Info("waveform summary", fields...)
}

func newLogger(cfg cliConfig, out io.Writer) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.logLevel)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.logFormat)
	if err != nil {
		return nil, err
	}
	return logging.New(level, format, out), nil
}

func parseConfig(args []string, lookup func(string) (string, bool), defaults persistentConfig, out io.Writer) (cliConfig, error) {
	cfg := cliConfig{}
	fs := flag.NewFlagSet("instek2csv", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: instek2csv [flags] <input_file> <output_file>")
		fmt.Fprintln(fs.Output(), "Parse the raw data output from the Instek GDS-1054B oscilloscope and write one sample per CSV row.")
		fs.PrintDefaults()
	}
	fs.StringVar(&cfg.plotPath, "plot", envString(lookup, "INSTEK_PLOT", defaults.PlotPath), "Also render the waveform to this image (png, svg, pdf)")
	fs.BoolVar(&cfg.summary, "summary", envBool(lookup, "INSTEK_SUMMARY", defaults.Summary), "Log waveform statistics after conversion")
	fs.StringVar(&cfg.logLevel, "log-level", envString(lookup, "INSTEK_LOG_LEVEL", defaults.LogLevel), "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.logFormat, "log-format", envString(lookup, "INSTEK_LOG_FORMAT", defaults.LogFormat), "Log format (text|json)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cliConfig{}, err
		}
		return cliConfig{}, usageError(err.Error())
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return cliConfig{}, usageError(fmt.Sprintf("expected 2 arguments (input_file output_file), got %d", fs.NArg()))
	}
	if cfg.plotPath != "" {
		if err := plot.CheckPath(cfg.plotPath); err != nil {
			return cliConfig{}, usageError(fmt.Sprintf("-plot: %v", err))
		}
	}
	cfg.input = fs.Arg(0)
	cfg.output = fs.Arg(1)
	return cfg, nil
}

func loadConfig(path string, defaults persistentConfig) (persistentConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return persistentConfig{}, err
	}
	defer f.Close()

	cfg := defaults
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return persistentConfig{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

func defaultPersistentConfig() persistentConfig {
	return persistentConfig{
		LogLevel:  "info",
		LogFormat: "text",
	}
}

func envString(lookup func(string) (string, bool), key, def string) string {
	if val, ok := lookup(key); ok {
		return val
	}
	return def
}

func envBool(lookup func(string) (string, bool), key string, def bool) bool {
	if val, ok := lookup(key); ok {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return def
}
