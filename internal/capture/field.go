package capture

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ExtractText returns the text between the first occurrence of marker and
// the next delim byte after it, together with the offset of the delimiter.
func ExtractText(cur *Cursor, marker []byte, delim byte) (string, int, error) {
	const stage = "field"

	pos, ok := cur.Find(marker, 0)
	if !ok {
		pe := newError(MarkerNotFound, stage, -1, -1)
		pe.Marker = string(marker)
		return "", 0, pe
	}
	start := pos + len(marker)

	end, ok := cur.FindByte(delim, start)
	if !ok {
		pe := newError(DelimiterNotFound, stage, start, -1)
		pe.Marker = string(marker)
		pe.Text = string([]byte{delim})
		return "", 0, pe
	}

	raw, err := cur.Slice(start, end)
	if err != nil {
		return "", 0, err
	}
	if !utf8.Valid(raw) {
		pe := newError(TextDecodeError, stage, start, end)
		pe.Marker = string(marker)
		pe.Text = string(raw)
		return "", 0, pe
	}
	return string(raw), end, nil
}

// ExtractFloat extracts the field following marker up to delim and parses
// it as a decimal floating-point literal.
func ExtractFloat(cur *Cursor, marker []byte, delim byte) (float64, error) {
	text, end, err := ExtractText(cur, marker, delim)
	if err != nil {
		return 0, err
	}
	v, perr := parseDecimal(text)
	if perr != nil {
		pe := newError(NumericFormatError, "field", end-len(text), end)
		pe.Marker = string(marker)
		pe.Text = text
		pe.Err = perr
		return 0, pe
	}
	return v, nil
}

var errNotFinite = errors.New("value is not finite")

// parseDecimal accepts finite decimal and scientific notation only.
// Hexadecimal forms, inf/nan spellings and values overflowing float64 are
// rejected.
func parseDecimal(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if strings.ContainsAny(s, "xX") {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: s, Err: strconv.ErrSyntax}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: s, Err: errNotFinite}
	}
	return v, nil
}
