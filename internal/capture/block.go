package capture

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Block is a length-prefixed binary payload located inside a capture.
type Block struct {
	// Offset of the first payload byte in the capture.
	Offset int
	// DigitCount is the declared width of the length field.
	DigitCount int
	Payload    []byte
}

// Len returns the payload length in bytes.
func (b Block) Len() int { return len(b.Payload) }

// End returns the offset just past the payload.
func (b Block) End() int { return b.Offset + len(b.Payload) }

// ReadBlock decodes a definite-length block whose preamble starts at at,
// the position immediately after the '#' introducer: one ASCII digit D,
// then D ASCII digits giving the payload length L, then L raw bytes.
//
// D is taken as written and is not checked against the width of L.
func ReadBlock(cur *Cursor, at int) (Block, error) {
	const stage = "block"

	digitCount, err := readDigitCount(cur, at)
	if err != nil {
		return Block{}, err
	}
	lenStart := at + 1
	length, err := readLength(cur, lenStart, digitCount)
	if err != nil {
		return Block{}, err
	}
	payloadStart := lenStart + digitCount
	if length > cur.Len()-payloadStart {
		pe := newError(TruncatedData, stage, payloadStart, -1)
		pe.Text = strconv.Itoa(length)
		pe.Err = fmt.Errorf("declared %d bytes, %d remain", length, max(cur.Len()-payloadStart, 0))
		return Block{}, pe
	}
	payload, err := cur.Slice(payloadStart, payloadStart+length)
	if err != nil {
		return Block{}, err
	}
	return Block{Offset: payloadStart, DigitCount: digitCount, Payload: payload}, nil
}

func readDigitCount(cur *Cursor, at int) (int, error) {
	raw, err := cur.Slice(at, at+1)
	if err != nil {
		pe := newError(TruncatedData, "block digit count", at, -1)
		pe.Err = err
		return 0, pe
	}
	c := raw[0]
	if c < '0' || c > '9' {
		pe := newError(NumericFormatError, "block digit count", at, at+1)
		pe.Text = string(raw)
		return 0, pe
	}
	return int(c - '0'), nil
}

func readLength(cur *Cursor, start, digits int) (int, error) {
	const stage = "block length"

	raw, err := cur.Slice(start, start+digits)
	if err != nil {
		pe := newError(TruncatedData, stage, start, start+digits)
		pe.Err = err
		return 0, pe
	}
	if !utf8.Valid(raw) {
		pe := newError(TextDecodeError, stage, start, start+digits)
		pe.Text = string(raw)
		return 0, pe
	}
	text := string(raw)
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.TrimLeft(trimmed, "0123456789") != "" {
		pe := newError(NumericFormatError, stage, start, start+digits)
		pe.Text = text
		return 0, pe
	}
	n, perr := strconv.ParseInt(trimmed, 10, 64)
	if perr != nil || n > math.MaxInt {
		pe := newError(NumericFormatError, stage, start, start+digits)
		pe.Text = text
		pe.Err = perr
		return 0, pe
	}
	return int(n), nil
}
