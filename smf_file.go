package midi

// This file contains code used for reading the header chunk of .mid SMF-format
// files.

import (
	"fmt"
	"math"
)

const (
	headerChunkType = "MThd"
	trackChunkType  = "MTrk"
	// The length of the MThd chunk's data. Always 6.
	headerDataLength = 6
	// The size of the full MThd chunk, including its type and length fields.
	headerChunkSize = 8 + headerDataLength
)

// This corresponds to the division field of the MThd chunk.
type TimeDivision uint16

// Returns true if the top bit is set, meaning the low 15 bits hold an SMPTE
// time code rather than a number of ticks per quarter note.
func (d TimeDivision) IsSMPTE() bool {
	return (d & 0x8000) != 0
}

// Returns the low 15 bits of the division. The analyzer always uses this as
// the number of ticks per quarter note, even for SMPTE divisions.
func (d TimeDivision) Resolution() uint16 {
	return uint16(d & 0x7fff)
}

// Returns the number of ticks per quarter note, or 0 if the time division
// doesn't specify a number of ticks per quarter note.
func (d TimeDivision) TicksPerQuarterNote() uint16 {
	if d.IsSMPTE() {
		return 0
	}
	return uint16(d)
}

// Returns the SMPTE time code (indicating the frames per second) followed by
// the number of MIDI ticks per frame, in that order. Returns 0, 0 if the
// TimeDivision value specifies the number of ticks per quarter note instead.
func (d TimeDivision) SMPTETimeCode() (uint8, uint8) {
	if !d.IsSMPTE() {
		return 0, 0
	}
	// Since the top bit is set, the frames per second is specified as a 2's
	// complement negative 8-bit integer.
	fps := uint8(-int8(d >> 8))
	ticksPerFrame := uint8(d & 0xff)
	return fps, ticksPerFrame
}

func (d TimeDivision) String() string {
	if (d & 0x7fff) == 0 {
		return fmt.Sprintf("Invalid TimeDivision value: 0x%04x", uint16(d))
	}
	qnTicks := d.TicksPerQuarterNote()
	if qnTicks != 0 {
		return fmt.Sprintf("%d ticks per quarter note", qnTicks)
	}
	fps, ticksPerFrame := d.SMPTETimeCode()
	return fmt.Sprintf("%d frames per second, %d ticks per frame", fps,
		ticksPerFrame)
}

// The fields of the SMF file header. Immutable once parsed.
type SMFHeader struct {
	// 0, 1 or 2. Nothing here depends on the format.
	Format uint16
	// The number of tracks the file claims to contain.
	TrackCount uint16
	// Specifies what the delta-times mean in this file.
	Division TimeDivision
}

func (h *SMFHeader) String() string {
	return fmt.Sprintf("Format %d, with %d track(s), %s", h.Format,
		h.TrackCount, h.Division.String())
}

// Parses the MThd chunk at the cursor's position. Returns an error wrapping
// ErrInvalidMagic if the chunk tag isn't "MThd", ErrMalformedHeader if its
// declared length isn't 6, or ErrUnexpectedEOF if the data is too short.
func ParseSMFHeader(c *ByteCursor) (*SMFHeader, error) {
	chunkType, e := c.ReadBytes(4)
	if e != nil {
		return nil, fmt.Errorf("Failed reading header chunk type: %w", e)
	}
	if string(chunkType) != headerChunkType {
		return nil, fmt.Errorf("Bad chunk type for header: %q: %w",
			string(chunkType), ErrInvalidMagic)
	}
	length, e := c.ReadU32BE()
	if e != nil {
		return nil, fmt.Errorf("Failed reading header length: %w", e)
	}
	if length != headerDataLength {
		return nil, fmt.Errorf("Expected a header length of %d, got %d: %w",
			headerDataLength, length, ErrMalformedHeader)
	}
	var toReturn SMFHeader
	toReturn.Format, e = c.ReadU16BE()
	if e != nil {
		return nil, fmt.Errorf("Failed reading SMF format: %w", e)
	}
	toReturn.TrackCount, e = c.ReadU16BE()
	if e != nil {
		return nil, fmt.Errorf("Failed reading SMF track count: %w", e)
	}
	division, e := c.ReadU16BE()
	if e != nil {
		return nil, fmt.Errorf("Failed reading SMF time division: %w", e)
	}
	toReturn.Division = TimeDivision(division)
	return &toReturn, nil
}

// A quick description of an uploaded file, produced from its header alone.
type HeaderInfo struct {
	Format   uint16 `json:"format"`
	Tracks   uint16 `json:"tracks"`
	Division uint16 `json:"division"`
	// A rough guess in seconds, based only on the file and track sizes.
	EstimatedDuration int `json:"estimatedDuration"`
}

// Returned by SummarizeHeader when the header can't be parsed.
func DefaultHeaderInfo() HeaderInfo {
	return HeaderInfo{
		Format:            1,
		Tracks:            1,
		Division:          480,
		EstimatedDuration: 60,
	}
}

// Reads the header of an SMF file and estimates its duration from the file
// size: two seconds per KiB per track, kept between 30 and 300 seconds. Never
// fails; invalid headers produce DefaultHeaderInfo().
func SummarizeHeader(data []byte) HeaderInfo {
	header, e := ParseSMFHeader(NewByteCursor(data))
	if e != nil {
		logger.WithError(e).Debug("Using default header info")
		return DefaultHeaderInfo()
	}
	estimate := float64(len(data)) / 1024.0 * float64(header.TrackCount) * 2.0
	estimate = math.Max(30, math.Min(300, estimate))
	return HeaderInfo{
		Format:            header.Format,
		Tracks:            header.TrackCount,
		Division:          uint16(header.Division),
		EstimatedDuration: int(math.Round(estimate)),
	}
}
