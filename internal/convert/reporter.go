package convert

import (
	"github.com/rjboer/instekcsv/internal/capture"
	"github.com/rjboer/instekcsv/internal/logging"
)

// Reporter receives the outcome of each conversion.
type Reporter interface {
	Report(res Result)
}

// LogReporter writes conversion outcomes to a logger.
type LogReporter struct {
	logger logging.Logger
}

// NewLogReporter builds a reporter with the provided logger.
func NewLogReporter(logger logging.Logger) LogReporter {
	if logger == nil {
		logger = logging.Default()
	}
	return LogReporter{logger: logger}
}

func (r LogReporter) Report(res Result) {
	fields := []logging.Field{
		{Key: "subsystem", Value: "convert"},
		{Key: "input", Value: res.Input},
	}
	if res.Err != nil {
		if kind := capture.KindOf(res.Err); kind != 0 {
			fields = append(fields, logging.Field{Key: "kind", Value: kind.String()})
		}
		fields = append(fields, logging.Field{Key: "error", Value: res.Err})
		r.logger.Error("conversion failed", fields...)
		return
	}
	fields = append(fields,
		logging.Field{Key: "output", Value: res.Output},
		logging.Field{Key: "samples", Value: len(res.Samples)},
		logging.Field{Key: "scale", Value: res.Scale},
	)
	if res.PlotPath != "" {
		fields = append(fields, logging.Field{Key: "plot", Value: res.PlotPath})
	}
	r.logger.Info("conversion done", fields...)
}

// MultiReporter fans a result out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Report(res Result) {
	for _, r := range m {
		if r != nil {
			r.Report(res)
		}
	}
}
