package midi

// This file contains the parser for MTrk chunks. It only decodes the events
// the analysis needs, and never gives up on a track early unless it runs out
// of data.

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// At most this many events, counted across all tracks, are kept for preview.
const maxPreviewEvents = 100

// Identifies the kind of a RawEvent.
type EventKind uint8

const (
	MetaEvent EventKind = iota
	NoteOnEvent
	NoteOffEvent
	ProgramChangeEvent
	OtherEvent
)

func (k EventKind) String() string {
	switch k {
	case MetaEvent:
		return "meta"
	case NoteOnEvent:
		return "noteOn"
	case NoteOffEvent:
		return "noteOff"
	case ProgramChangeEvent:
		return "programChange"
	case OtherEvent:
		return "other"
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Holds raw bytes from an event. Marshals to a JSON array of numbers rather
// than a base64 string.
type EventData []byte

func (d EventData) MarshalJSON() ([]byte, error) {
	values := make([]int, len(d))
	for i, b := range d {
		values[i] = int(b)
	}
	return json.Marshal(values)
}

// A single decoded track event. Fields that don't apply to the event's kind
// are nil.
type RawEvent struct {
	// The number of ticks since the previous event in the same track.
	DeltaTime uint32    `json:"deltaTime"`
	Kind      EventKind `json:"type"`
	Channel   *uint8    `json:"channel,omitempty"`
	Note      *uint8    `json:"note,omitempty"`
	Velocity  *uint8    `json:"velocity,omitempty"`
	// Only set for meta events.
	MetaType *uint8 `json:"metaType,omitempty"`
	// Meta-event payload, the program number of a program change, or the
	// status byte of an event that wasn't decoded.
	Data EventData `json:"data,omitempty"`
}

func u8(v uint8) *uint8 {
	return &v
}

func (e *RawEvent) String() string {
	switch e.Kind {
	case MetaEvent:
		return fmt.Sprintf("Meta-event. Type 0x%02x, %d bytes: % x",
			*e.MetaType, len(e.Data), []byte(e.Data))
	case NoteOnEvent:
		return fmt.Sprintf("Channel %d: %s on, velocity = %d", *e.Channel,
			MIDINote(*e.Note), *e.Velocity)
	case NoteOffEvent:
		return fmt.Sprintf("Channel %d: %s off, velocity = %d", *e.Channel,
			MIDINote(*e.Note), *e.Velocity)
	case ProgramChangeEvent:
		return fmt.Sprintf("Channel %d: program change to %d (%s)",
			*e.Channel, e.Data[0], InstrumentName(int(e.Data[0])))
	}
	return fmt.Sprintf("Skipped event, status 0x%02x", e.Data[0])
}

// Everything learned from a single MTrk chunk.
type TrackStats struct {
	// The number of note-on events with a nonzero velocity.
	NoteCount int
	// The lowest and highest notes played. MinNote starts at 127 and MaxNote
	// at 0, so MinNote > MaxNote if no notes were played.
	MinNote uint8
	MaxNote uint8
	// Program numbers from program-change events, in the order they were
	// first seen, without duplicates.
	Programs []uint8
	// The sum of all delta-times in the track.
	Ticks uint64
	// The BPM from the track's last set-tempo event, or 0 if it had none.
	Tempo uint32
	// The track's last time and key signatures, or empty strings if it had
	// none.
	TimeSignature string
	KeySignature  string
	// The first events in the track, at most maxPreviewEvents of them.
	Events []RawEvent
}

func newTrackStats() *TrackStats {
	return &TrackStats{
		MinNote:  127,
		MaxNote:  0,
		Programs: []uint8{},
		Events:   []RawEvent{},
	}
}

func (s *TrackStats) addProgram(program uint8) {
	for _, p := range s.Programs {
		if p == program {
			return
		}
	}
	s.Programs = append(s.Programs, program)
}

func (s *TrackStats) record(event RawEvent) {
	if len(s.Events) < maxPreviewEvents {
		s.Events = append(s.Events, event)
	}
}

// Holds state while decoding the events of a single track.
type trackParser struct {
	// Can't read past the end of the track.
	c     *ByteCursor
	stats *TrackStats
}

// Parses the track chunk at the cursor's position, leaving the cursor at the
// chunk's declared end (or the end of the data, if that comes first).
//
// If the cursor is too close to the end of the data to hold a chunk header,
// this returns a nil TrackStats and an error wrapping ErrUnexpectedEOF. If
// the chunk isn't an MTrk chunk, it's skipped, and this returns empty stats
// along with an error wrapping ErrInvalidMagic. If the track's events are cut
// off, the stats gathered so far are returned along with an error wrapping
// ErrUnexpectedEOF.
func ParseTrack(c *ByteCursor) (*TrackStats, error) {
	if !c.HasAtLeast(8) {
		return nil, fmt.Errorf("Failed reading track chunk header: only %d "+
			"bytes left: %w", c.Remaining(), ErrUnexpectedEOF)
	}
	chunkType, _ := c.ReadBytes(4)
	length, _ := c.ReadU32BE()
	dataStart := c.Position()
	truncated := uint64(length) > uint64(c.Remaining())
	end := c.Len()
	if !truncated {
		end = dataStart + int(length)
	}
	if string(chunkType) != trackChunkType {
		c.Seek(end)
		return newTrackStats(), fmt.Errorf("Bad chunk type for track: %q: %w",
			string(chunkType), ErrInvalidMagic)
	}
	p := &trackParser{
		c:     c.Limit(end),
		stats: newTrackStats(),
	}
	e := p.parseEvents()
	c.Seek(end)
	if (e == nil) && truncated {
		e = fmt.Errorf("Track declares %d bytes, but only %d are present: %w",
			length, end-dataStart, ErrUnexpectedEOF)
	}
	return p.stats, e
}

// Reads events until the end of the track. Returns an error if an event is
// cut off by the end of the track or of the data.
func (p *trackParser) parseEvents() error {
	eventCount := 0
	for p.c.Remaining() > 0 {
		deltaTime, _ := DecodeVariableInt(p.c)
		p.stats.Ticks += uint64(deltaTime)
		status, e := p.c.ReadU8()
		if e != nil {
			return fmt.Errorf("Failed reading status for event %d: %w",
				eventCount, e)
		}
		switch {
		case status == 0xff:
			e = p.handleMeta(deltaTime)
		case (status & 0xf0) == 0x90:
			e = p.handleNoteOn(deltaTime, status&0x0f)
		case (status & 0xf0) == 0x80:
			e = p.handleNoteOff(deltaTime, status&0x0f)
		case (status & 0xf0) == 0xc0:
			e = p.handleProgramChange(deltaTime, status&0x0f)
		default:
			e = p.handleOther(deltaTime, status)
		}
		if e != nil {
			return fmt.Errorf("Failed reading event %d: %w", eventCount, e)
		}
		eventCount++
	}
	return nil
}

// Formats a time signature's numerator and denominator exponent, e.g. 6 and 3
// become "6/8".
func formatTimeSignature(numerator, denominatorExponent uint8) string {
	denominator := math.Pow(2, float64(denominatorExponent))
	return strconv.Itoa(int(numerator)) + "/" +
		strconv.FormatFloat(denominator, 'f', -1, 64)
}

// Handles a meta-event. Assumes the 0xff byte has already been consumed.
// Unlike in the SMF spec, the payload length is a single byte rather than a
// variable-length integer.
func (p *trackParser) handleMeta(deltaTime uint32) error {
	metaType, e := p.c.ReadU8()
	if e != nil {
		return fmt.Errorf("Failed reading meta-event type: %w", e)
	}
	length, e := p.c.ReadU8()
	if e != nil {
		return fmt.Errorf("Failed reading meta-event length: %w", e)
	}
	data, e := p.c.ReadBytes(int(length))
	if e != nil {
		return fmt.Errorf("Failed reading meta-event 0x%02x data: %w",
			metaType, e)
	}
	switch metaType {
	case 0x51:
		if len(data) >= 3 {
			microseconds := uint32(data[0])<<16 | uint32(data[1])<<8 |
				uint32(data[2])
			// A zero tempo would mean infinitely many beats per minute.
			if microseconds != 0 {
				p.stats.Tempo = uint32(math.Round(60000000.0 /
					float64(microseconds)))
			}
		}
	case 0x58:
		if len(data) >= 2 {
			p.stats.TimeSignature = formatTimeSignature(data[0], data[1])
		}
	case 0x59:
		if len(data) >= 2 {
			p.stats.KeySignature = KeySignatureName(int8(data[0]),
				data[1] == 0)
		}
	}
	p.stats.record(RawEvent{
		DeltaTime: deltaTime,
		Kind:      MetaEvent,
		MetaType:  u8(metaType),
		Data:      data,
	})
	return nil
}

// Reads the note and velocity bytes of a note-on or note-off event.
func (p *trackParser) readNoteAndVelocity() (uint8, uint8, error) {
	if !p.c.HasAtLeast(2) {
		return 0, 0, fmt.Errorf("Need 2 bytes for note and velocity, have "+
			"%d: %w", p.c.Remaining(), ErrUnexpectedEOF)
	}
	note, _ := p.c.ReadU8()
	velocity, _ := p.c.ReadU8()
	return note, velocity, nil
}

// A note-on event with a velocity of 0 is really a note-off, so it doesn't
// count as a played note.
func (p *trackParser) handleNoteOn(deltaTime uint32, channel uint8) error {
	note, velocity, e := p.readNoteAndVelocity()
	if e != nil {
		return fmt.Errorf("Failed reading note-on: %w", e)
	}
	if velocity > 0 {
		p.stats.NoteCount++
		if note < p.stats.MinNote {
			p.stats.MinNote = note
		}
		if note > p.stats.MaxNote {
			p.stats.MaxNote = note
		}
	}
	p.stats.record(RawEvent{
		DeltaTime: deltaTime,
		Kind:      NoteOnEvent,
		Channel:   u8(channel),
		Note:      u8(note),
		Velocity:  u8(velocity),
	})
	return nil
}

func (p *trackParser) handleNoteOff(deltaTime uint32, channel uint8) error {
	note, velocity, e := p.readNoteAndVelocity()
	if e != nil {
		return fmt.Errorf("Failed reading note-off: %w", e)
	}
	p.stats.record(RawEvent{
		DeltaTime: deltaTime,
		Kind:      NoteOffEvent,
		Channel:   u8(channel),
		Note:      u8(note),
		Velocity:  u8(velocity),
	})
	return nil
}

func (p *trackParser) handleProgramChange(deltaTime uint32,
	channel uint8) error {
	program, e := p.c.ReadU8()
	if e != nil {
		return fmt.Errorf("Failed reading program-change value: %w", e)
	}
	p.stats.addProgram(program)
	p.stats.record(RawEvent{
		DeltaTime: deltaTime,
		Kind:      ProgramChangeEvent,
		Channel:   u8(channel),
		Data:      EventData{program},
	})
	return nil
}

// Handles every other status byte by skipping two bytes, which is right for
// most channel messages but not for single-byte ones or sysex. If the
// "status" is actually a data byte, it's assumed to belong to a message using
// running status, so it's included in the two skipped bytes.
func (p *trackParser) handleOther(deltaTime uint32, status uint8) error {
	if (status & 0x80) == 0 {
		p.c.Unread()
	}
	p.stats.record(RawEvent{
		DeltaTime: deltaTime,
		Kind:      OtherEvent,
		Data:      EventData{status},
	})
	e := p.c.Skip(2)
	if e != nil {
		return fmt.Errorf("Failed skipping event with status 0x%02x: %w",
			status, e)
	}
	return nil
}
