package capture

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a capture parse failure.
type ErrorKind int

const (
	MarkerNotFound ErrorKind = iota + 1
	DelimiterNotFound
	TextDecodeError
	NumericFormatError
	TruncatedData
	OutOfBounds
	MalformedPayload
)

func (k ErrorKind) String() string {
	switch k {
	case MarkerNotFound:
		return "MarkerNotFound"
	case DelimiterNotFound:
		return "DelimiterNotFound"
	case TextDecodeError:
		return "TextDecodeError"
	case NumericFormatError:
		return "NumericFormatError"
	case TruncatedData:
		return "TruncatedData"
	case OutOfBounds:
		return "OutOfBounds"
	case MalformedPayload:
		return "MalformedPayload"
	default:
		return "UnknownError"
	}
}

// Sentinels for errors.Is matching against a *ParseError of the same kind.
var (
	ErrMarkerNotFound    error = kindError(MarkerNotFound)
	ErrDelimiterNotFound error = kindError(DelimiterNotFound)
	ErrTextDecode        error = kindError(TextDecodeError)
	ErrNumericFormat     error = kindError(NumericFormatError)
	ErrTruncatedData     error = kindError(TruncatedData)
	ErrOutOfBounds       error = kindError(OutOfBounds)
	ErrMalformedPayload  error = kindError(MalformedPayload)
)

type kindError ErrorKind

func (k kindError) Error() string { return ErrorKind(k).String() }

// ParseError describes where and why a capture could not be decoded.
// Start and End delimit the offending byte range in the capture; End is
// -1 when the range is open-ended.
type ParseError struct {
	Kind   ErrorKind
	Stage  string
	Marker string
	Start  int
	End    int
	Text   string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Stage != "" {
		b.WriteString(e.Stage)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Marker != "" {
		fmt.Fprintf(&b, " marker=%q", e.Marker)
	}
	if e.Start >= 0 {
		if e.End >= 0 {
			fmt.Fprintf(&b, " range=[%d,%d)", e.Start, e.End)
		} else {
			fmt.Fprintf(&b, " offset=%d", e.Start)
		}
	}
	if e.Kind == NumericFormatError || e.Kind == TextDecodeError {
		fmt.Fprintf(&b, " text=%q", e.Text)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *ParseError) Is(target error) bool {
	k, ok := target.(kindError)
	return ok && ErrorKind(k) == e.Kind
}

// KindOf returns the ErrorKind carried by err, or 0 when err is not a
// capture parse failure.
func KindOf(err error) ErrorKind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

func newError(kind ErrorKind, stage string, start, end int) *ParseError {
	return &ParseError{Kind: kind, Stage: stage, Start: start, End: end}
}
