package capture

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildCapture assembles a synthetic capture with some binary noise around
// the two fields the parser cares about.
func buildCapture(scale string, payload []byte) []byte {
	var b bytes.Buffer
	b.Write([]byte{0x00, 0x01, 0xfe, 0xff})
	b.WriteString("Memory Length,10000;Trigger Level,0.0;")
	b.WriteString("Vertical Scale," + scale + ";")
	b.WriteString("Vertical Position,0.0;")
	b.Write(WaveformMarker)
	l := strconv.Itoa(len(payload))
	b.WriteString(strconv.Itoa(len(l)))
	b.WriteString(l)
	b.Write(payload)
	return b.Bytes()
}

func be16(vals ...int16) []byte {
	out := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint16(out[2*i:], uint16(v))
	}
	return out
}

func TestCursorFind(t *testing.T) {
	cur := NewCursor([]byte("abcabc"))

	pos, ok := cur.Find([]byte("bc"), 0)
	require.True(t, ok)
	assert.Equal(t, 1, pos)

	pos, ok = cur.Find([]byte("bc"), 2)
	require.True(t, ok)
	assert.Equal(t, 4, pos)

	_, ok = cur.Find([]byte("BC"), 0)
	assert.False(t, ok, "matching must be case sensitive")

	_, ok = cur.Find([]byte("a"), 7)
	assert.False(t, ok)

	pos, ok = cur.FindByte('c', 3)
	require.True(t, ok)
	assert.Equal(t, 5, pos)
}

func TestCursorSlice(t *testing.T) {
	cur := NewCursor([]byte("0123456789"))

	got, err := cur.Slice(2, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("234"), got)

	got, err = cur.Slice(10, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = cur.Slice(5, 11)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = cur.Slice(6, 5)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestExtractFloat(t *testing.T) {
	for _, lit := range []string{"2.0", "0.005", "5e-3", "1E+2", "-0.5", "10", " 2.5 "} {
		t.Run(lit, func(t *testing.T) {
			want, err := strconv.ParseFloat(strings.TrimSpace(lit), 64)
			require.NoError(t, err)
			cur := NewCursor([]byte("xx\x00Vertical Scale," + lit + ";rest"))
			got, err := ExtractFloat(cur, VerticalScaleMarker, FieldDelimiter)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestExtractFloat_Errors(t *testing.T) {
	testCases := []struct {
		name string
		data string
		kind ErrorKind
		text string
	}{
		{name: "missing marker", data: "Horizontal Scale,1.0;", kind: MarkerNotFound},
		{name: "missing delimiter", data: "Vertical Scale,1.0", kind: DelimiterNotFound},
		{name: "invalid utf8", data: "Vertical Scale,\xff\xfe;", kind: TextDecodeError, text: "\xff\xfe"},
		{name: "not a number", data: "Vertical Scale,abc;", kind: NumericFormatError, text: "abc"},
		{name: "empty", data: "Vertical Scale,;", kind: NumericFormatError, text: ""},
		{name: "hex float", data: "Vertical Scale,0x1p-2;", kind: NumericFormatError, text: "0x1p-2"},
		{name: "infinity", data: "Vertical Scale,inf;", kind: NumericFormatError, text: "inf"},
		{name: "negative infinity", data: "Vertical Scale,-Infinity;", kind: NumericFormatError, text: "-Infinity"},
		{name: "nan", data: "Vertical Scale,nan;", kind: NumericFormatError, text: "nan"},
		{name: "overflow", data: "Vertical Scale,1e400;", kind: NumericFormatError, text: "1e400"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractFloat(NewCursor([]byte(tc.data)), VerticalScaleMarker, FieldDelimiter)
			require.Error(t, err)
			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tc.kind, pe.Kind)
			assert.Equal(t, tc.text, pe.Text)
			if tc.kind == MarkerNotFound {
				assert.Equal(t, "Vertical Scale,", pe.Marker)
			}
		})
	}
}

func TestReadBlock(t *testing.T) {
	payload := []byte{0x23, 0x00, 0x0a, 0xff, 0x3b, 0x31}
	for _, prefix := range []string{"", "junk", "##12;\n"} {
		data := append([]byte(prefix+"16"), payload...)
		data = append(data, "trailer"...)
		blk, err := ReadBlock(NewCursor(data), len(prefix))
		require.NoError(t, err)
		assert.Equal(t, payload, blk.Payload)
		assert.Equal(t, 1, blk.DigitCount)
		assert.Equal(t, len(prefix)+2, blk.Offset)
		assert.Equal(t, len(prefix)+2+len(payload), blk.End())
	}
}

func TestReadBlock_TrustsDigitCount(t *testing.T) {
	// digit count 4 with a zero-padded length of 2
	data := []byte("40002\xab\xcdXX")
	blk, err := ReadBlock(NewCursor(data), 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xab, 0xcd}, blk.Payload)
	assert.Equal(t, 4, blk.DigitCount)
}

func TestReadBlock_Errors(t *testing.T) {
	testCases := []struct {
		name string
		data string
		kind ErrorKind
	}{
		{name: "no digit count", data: "", kind: TruncatedData},
		{name: "digit count not a digit", data: "x4abcd", kind: NumericFormatError},
		{name: "zero digit count", data: "0abcd", kind: NumericFormatError},
		{name: "length not digits", data: "2a4abcd", kind: NumericFormatError},
		{name: "signed length", data: "2+4abcd", kind: NumericFormatError},
		{name: "length cut short", data: "31", kind: TruncatedData},
		{name: "length invalid utf8", data: "2\xff\xfe", kind: TextDecodeError},
		{name: "payload cut short", data: "18abcd", kind: TruncatedData},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadBlock(NewCursor([]byte(tc.data)), 0)
			require.Error(t, err)
			assert.Equal(t, tc.kind, KindOf(err))
		})
	}
}

func TestDecodeWaveformBlock_MissingMarker(t *testing.T) {
	_, err := DecodeWaveformBlock(NewCursor([]byte("Waveform Data;#14abcd")))
	require.ErrorIs(t, err, ErrMarkerNotFound)
	assert.ErrorContains(t, err, "Waveform Data;")
}

func TestDecodeSamples(t *testing.T) {
	payload := be16(0, 1, -1, 100, -100, math.MaxInt16, math.MinInt16)
	scale := 0.5
	got, err := DecodeSamples(payload, scale)
	require.NoError(t, err)
	require.Len(t, got, len(payload)/2)
	for i := range got {
		v := int16(binary.BigEndian.Uint16(payload[2*i:]))
		assert.Equal(t, float64(v)*scale/25, got[i])
	}

	again, err := DecodeSamples(payload, scale)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestDecodeSamples_Empty(t *testing.T) {
	got, err := DecodeSamples(nil, 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeSamples_OddLength(t *testing.T) {
	_, err := DecodeSamples([]byte{0, 1, 2}, 1)
	require.ErrorIs(t, err, ErrMalformedPayload)
	assert.NotErrorIs(t, err, ErrTruncatedData)
}

func TestParse_RoundTrip(t *testing.T) {
	data := []byte("Vertical Scale,2.0;Waveform Data;\n#14\x00\x64\xff\x9c")
	p := NewParser(nil)
	c, err := p.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 2.0, c.Scale)
	assert.Equal(t, []float64{8.0, -8.0}, c.Samples)
	assert.Equal(t, Done, p.State())
	assert.NoError(t, p.Err())
}

func TestParse_SyntheticCapture(t *testing.T) {
	codes := make([]int16, 500)
	for i := range codes {
		codes[i] = int16(i*37 - 9000)
	}
	c, err := Parse(buildCapture("5e-1", be16(codes...)))
	require.NoError(t, err)
	require.Len(t, c.Samples, len(codes))
	for i, code := range codes {
		assert.Equal(t, float64(code)*0.5/25, c.Samples[i])
	}
	assert.Equal(t, 1000, c.Block.Len())
	assert.Equal(t, 4, c.Block.DigitCount)
}

func TestParse_Failures(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
		kind ErrorKind
	}{
		{
			name: "missing scale marker",
			data: []byte("Waveform Data;\n#14\x00\x64\xff\x9c"),
			kind: MarkerNotFound,
		},
		{
			name: "scale not numeric",
			data: []byte("Vertical Scale,abc;Waveform Data;\n#14\x00\x64\xff\x9c"),
			kind: NumericFormatError,
		},
		{
			name: "missing waveform marker",
			data: []byte("Vertical Scale,1.0;\x00\x64\xff\x9c"),
			kind: MarkerNotFound,
		},
		{
			name: "truncated payload",
			data: []byte("Vertical Scale,1.0;Waveform Data;\n#16\x00\x64\xff\x9c"),
			kind: TruncatedData,
		},
		{
			name: "odd payload",
			data: []byte("Vertical Scale,1.0;Waveform Data;\n#13\x00\x64\xff\x9c"),
			kind: MalformedPayload,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewParser(nil)
			c, err := p.Parse(tc.data)
			require.Error(t, err)
			assert.Nil(t, c)
			assert.Equal(t, tc.kind, KindOf(err))
			assert.Equal(t, Failed, p.State())
			assert.Equal(t, err, p.Err())
		})
	}
}

func TestParse_NumericFormatErrorNamesText(t *testing.T) {
	_, err := Parse([]byte("Vertical Scale,abc;"))
	require.ErrorIs(t, err, ErrNumericFormat)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "abc", pe.Text)
	assert.Contains(t, err.Error(), `"abc"`)
}

func TestParseError_Message(t *testing.T) {
	pe := &ParseError{Kind: TruncatedData, Stage: "block", Start: 12, End: -1}
	assert.Equal(t, "block: TruncatedData offset=12", pe.Error())

	pe = &ParseError{Kind: MarkerNotFound, Stage: "field", Marker: "Vertical Scale,", Start: -1, End: -1}
	assert.Equal(t, `field: MarkerNotFound marker="Vertical Scale,"`, pe.Error())
	assert.True(t, errors.Is(pe, ErrMarkerNotFound))
	assert.False(t, errors.Is(pe, ErrDelimiterNotFound))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "block-decoded", BlockDecoded.String())
	assert.Equal(t, "state(42)", State(42).String())
}
