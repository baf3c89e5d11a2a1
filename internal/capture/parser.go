package capture

import (
	"fmt"

	"github.com/rjboer/instekcsv/internal/logging"
)

// State is a step of the capture parse.
type State int

const (
	Start State = iota
	ScaleExtracted
	BlockDecoded
	SamplesDecoded
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case ScaleExtracted:
		return "scale-extracted"
	case BlockDecoded:
		return "block-decoded"
	case SamplesDecoded:
		return "samples-decoded"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Capture is the decoded content of one capture file.
type Capture struct {
	// Scale is the vertical scale in volts per division.
	Scale float64
	// Block locates the raw sample payload within the source bytes.
	Block Block
	// Samples are the scaled values in acquisition order.
	Samples []float64
}

// Parser runs the capture decode stages in order. A Parser is not safe for
// concurrent use; create one per goroutine.
type Parser struct {
	logger logging.Logger
	state  State
	err    error
}

// NewParser returns a parser that reports stage progress to logger at debug
// level. A nil logger discards output.
func NewParser(logger logging.Logger) *Parser {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Parser{logger: logger.With(logging.Field{Key: "subsystem", Value: "capture"})}
}

// State returns the state reached by the last Parse call.
func (p *Parser) State() State { return p.state }

// Err returns the failure that moved the parser to Failed, if any.
func (p *Parser) Err() error { return p.err }

// Parse decodes raw. On failure no partial result is returned.
func (p *Parser) Parse(raw []byte) (*Capture, error) {
	p.state, p.err = Start, nil
	cur := NewCursor(raw)

	var (
		scale   float64
		block   Block
		samples []float64
		err     error
	)
	for {
		switch p.state {
		case Start:
			scale, err = ExtractFloat(cur, VerticalScaleMarker, FieldDelimiter)
			if err != nil {
				return nil, p.fail(err)
			}
			p.logger.Debug("vertical scale extracted", logging.Field{Key: "scale", Value: scale})
			p.state = ScaleExtracted
		case ScaleExtracted:
			block, err = DecodeWaveformBlock(cur)
			if err != nil {
				return nil, p.fail(err)
			}
			p.logger.Debug("waveform block decoded",
				logging.Field{Key: "digit_count", Value: block.DigitCount},
				logging.Field{Key: "length", Value: block.Len()},
				logging.Field{Key: "offset", Value: block.Offset},
			)
			p.state = BlockDecoded
		case BlockDecoded:
			samples, err = DecodeSamples(block.Payload, scale)
			if err != nil {
				return nil, p.fail(err)
			}
			p.state = SamplesDecoded
		case SamplesDecoded:
			p.logger.Debug("samples decoded", logging.Field{Key: "count", Value: len(samples)})
			p.state = Done
			return &Capture{Scale: scale, Block: block, Samples: samples}, nil
		default:
			return nil, p.fail(fmt.Errorf("parser in unexpected state %s", p.state))
		}
	}
}

func (p *Parser) fail(err error) error {
	p.logger.Debug("capture parse failed",
		logging.Field{Key: "state", Value: p.state.String()},
		logging.Field{Key: "error", Value: err.Error()},
	)
	p.state = Failed
	p.err = err
	return err
}

// Parse decodes raw with a parser that discards log output.
func Parse(raw []byte) (*Capture, error) {
	return NewParser(nil).Parse(raw)
}
