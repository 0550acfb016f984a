// This package decodes Standard MIDI Files (SMF, usually with a ".mid"
// extension) held in memory and summarizes them: tempo, meter, key,
// instrumentation, note range, a complexity tier and a rough duration. The
// smf_tool directory contains a command-line interface that prints the
// analysis of a single file, and analysis_server exposes it over HTTP.
package midi

import (
	"fmt"
	"io"
)

// The largest value a MIDI variable-length integer may hold.
const maxVariableInt = 0x0fffffff

// Decodes a MIDI-format variable-length integer at the cursor's position.
// Returns the value and the number of bytes consumed. At most 4 bytes are
// read. This never fails: if the cursor runs out of data, or the 4th byte
// still has its continuation bit set, the value accumulated so far is
// returned as-is.
func DecodeVariableInt(c *ByteCursor) (uint32, int) {
	toReturn := uint32(0)
	consumed := 0
	for consumed < 4 {
		b, e := c.ReadU8()
		if e != nil {
			break
		}
		consumed++
		toReturn = (toReturn << 7) | uint32(b&0x7f)
		if (b & 0x80) == 0 {
			break
		}
	}
	return toReturn, consumed
}

// Writes a MIDI-format variable int (up to 0x0fffffff) to the given output
// stream. Returns an error if one occurs, including if the integer is invalid.
func WriteVariableInt(w io.Writer, n uint32) error {
	if n > maxVariableInt {
		return fmt.Errorf("Integer 0x%08x is too large for a MIDI int", n)
	}
	// Break the number up into 7-bit chunks, least significant first.
	chunks := make([]byte, 0, 4)
	chunks = append(chunks, uint8(n&0x7f))
	n = n >> 7
	for n != 0 {
		chunks = append(chunks, uint8(n&0x7f))
		n = n >> 7
	}
	// Reverse the chunks, setting the top bit on all but the last byte.
	toWrite := make([]byte, len(chunks))
	for i := range chunks {
		b := chunks[len(chunks)-i-1]
		if i != (len(chunks) - 1) {
			b |= 0x80
		}
		toWrite[i] = b
	}
	_, e := w.Write(toWrite)
	return e
}

// Holds a MIDI note value. The values corresponding to keys on a standard
// keyboard are 21 (A0) through 108 (C8).
type MIDINote uint8

func (n MIDINote) String() string {
	if (n < 21) || (n > 108) {
		return fmt.Sprintf("MIDI note %d", uint8(n))
	}
	notes := [...]string{"A", "A#", "B", "C", "C#", "D", "D#", "E", "F",
		"F#", "G", "G#"}
	index := (int(n) - 21) % 12
	octave := (int(n) - 12) / 12
	return fmt.Sprintf("%s%d", notes[index], octave)
}
