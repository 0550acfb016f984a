package midi

import (
	"encoding/binary"
)

// Returns an MThd chunk followed by the given track chunks.
func buildSMF(format, trackCount, division uint16, chunks ...[]byte) []byte {
	data := []byte{'M', 'T', 'h', 'd', 0, 0, 0, 6}
	data = binary.BigEndian.AppendUint16(data, format)
	data = binary.BigEndian.AppendUint16(data, trackCount)
	data = binary.BigEndian.AppendUint16(data, division)
	for _, c := range chunks {
		data = append(data, c...)
	}
	return data
}

// Returns a chunk with the given tag, holding the concatenated events.
func buildChunk(tag string, events ...[]byte) []byte {
	var content []byte
	for _, e := range events {
		content = append(content, e...)
	}
	chunk := []byte(tag)
	chunk = binary.BigEndian.AppendUint32(chunk, uint32(len(content)))
	return append(chunk, content...)
}

func buildTrack(events ...[]byte) []byte {
	return buildChunk("MTrk", events...)
}

var endOfTrack = []byte{0, 0xff, 0x2f, 0}

// The file from the package docs' example: one track setting 500000
// microseconds per quarter note, then playing middle C for one quarter note.
func middleCFile() []byte {
	return buildSMF(1, 1, 96, buildTrack(
		[]byte{0, 0xff, 0x51, 3, 0x07, 0xa1, 0x20},
		[]byte{0, 0x90, 60, 100},
		[]byte{0x60, 0x80, 60, 64},
		endOfTrack,
	))
}
