package capture

import (
	"encoding/binary"
	"fmt"
)

var (
	// VerticalScaleMarker introduces the volts-per-division text field.
	VerticalScaleMarker = []byte("Vertical Scale,")
	// WaveformMarker introduces the sample block, including its '#'.
	WaveformMarker = []byte("Waveform Data;\n#")
)

const (
	// FieldDelimiter terminates metadata text fields.
	FieldDelimiter byte = ';'

	// VerticalDivisions is the instrument's fixed calibration divisor:
	// a raw code of 25 corresponds to one vertical division.
	VerticalDivisions = 25

	sampleWidth = 2
)

// DecodeWaveformBlock finds the waveform marker and decodes the block that
// follows it.
func DecodeWaveformBlock(cur *Cursor) (Block, error) {
	pos, ok := cur.Find(WaveformMarker, 0)
	if !ok {
		pe := newError(MarkerNotFound, "waveform", -1, -1)
		pe.Marker = string(WaveformMarker)
		return Block{}, pe
	}
	return ReadBlock(cur, pos+len(WaveformMarker))
}

// DecodeSamples converts big-endian signed 16-bit codes into scaled
// samples: out[i] = int16(payload[2i:2i+2]) * scale / 25.
func DecodeSamples(payload []byte, scale float64) ([]float64, error) {
	if len(payload)%sampleWidth != 0 {
		pe := newError(MalformedPayload, "samples", 0, len(payload))
		pe.Err = fmt.Errorf("payload length %d is not a multiple of %d", len(payload), sampleWidth)
		return nil, pe
	}
	out := make([]float64, len(payload)/sampleWidth)
	for i := range out {
		v := int16(binary.BigEndian.Uint16(payload[i*sampleWidth:]))
		out[i] = float64(v) * scale / VerticalDivisions
	}
	return out, nil
}
