package midi

// This file contains the code that combines per-track statistics into the
// analysis of an entire file.

import (
	"fmt"
	"math"
)

const (
	defaultTempo         = 120
	defaultTimeSignature = "4/4"
	defaultKeySignature  = "C major"
	// Durations shorter than this are rounded up, in seconds.
	minimumDuration = 30.0
)

// A rough measure of how much is going on in a file.
type Complexity uint8

const (
	Simple Complexity = iota
	Moderate
	Complex
)

func (c Complexity) String() string {
	switch c {
	case Simple:
		return "simple"
	case Moderate:
		return "moderate"
	case Complex:
		return "complex"
	}
	return fmt.Sprintf("Complexity(%d)", uint8(c))
}

func (c Complexity) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Returns Complex for more than 1000 notes or 8 tracks, Moderate for more than
// 200 notes or 4 tracks, and Simple otherwise.
func ClassifyComplexity(noteCount int, trackCount uint16) Complexity {
	if (noteCount > 1000) || (trackCount > 8) {
		return Complex
	}
	if (noteCount > 200) || (trackCount > 4) {
		return Moderate
	}
	return Simple
}

// Guesses a genre label from the tempo and the instruments used. Returns
// "unknown" if nothing matches.
func GuessGenre(tempo uint32, instruments []string) string {
	if tempo > 140 {
		return "electronic"
	}
	if tempo < 80 {
		return "ballad"
	}
	if containsString(instruments, "Distortion Guitar") {
		return "rock"
	}
	if containsString(instruments, "Acoustic Grand Piano") {
		return "classical"
	}
	return "unknown"
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// The lowest and highest notes played in a file.
type NoteRange struct {
	Min uint8 `json:"min"`
	Max uint8 `json:"max"`
}

// Returns true if no notes were played. In that case Min is 127 and Max is 0.
func (r NoteRange) Empty() bool {
	return r.Min > r.Max
}

// The summary of an SMF file. It doesn't refer to the data it was created
// from.
type MIDIAnalysis struct {
	// The estimated length of the file, in seconds. Never less than 30.
	Duration      float64    `json:"duration"`
	Tempo         uint32     `json:"tempo"`
	TimeSignature string     `json:"timeSignature"`
	KeySignature  string     `json:"keySignature"`
	Tracks        uint16     `json:"tracks"`
	Instruments   []string   `json:"instruments"`
	NoteRange     NoteRange  `json:"noteRange"`
	Complexity    Complexity `json:"complexity"`
	Genre         string     `json:"genre"`
	Events        []RawEvent `json:"events"`
}

func (a *MIDIAnalysis) String() string {
	return fmt.Sprintf("%d track(s), %.1f seconds at %d BPM in %s, %s, %s "+
		"complexity, genre %s", a.Tracks, a.Duration, a.Tempo,
		a.TimeSignature, a.KeySignature, a.Complexity, a.Genre)
}

// Returns the analysis used when a file can't be analyzed at all.
func DefaultAnalysis() MIDIAnalysis {
	return MIDIAnalysis{
		Duration:      60,
		Tempo:         defaultTempo,
		TimeSignature: defaultTimeSignature,
		KeySignature:  defaultKeySignature,
		Tracks:        1,
		Instruments:   []string{InstrumentName(0)},
		NoteRange:     NoteRange{Min: 60, Max: 72},
		Complexity:    Simple,
		Genre:         "unknown",
		Events:        []RawEvent{},
	}
}

// Estimates a duration in seconds from a total tick count. Never returns less
// than 30. The tempo is in BPM.
func estimateDuration(ticks uint64, tempo uint32, division TimeDivision) float64 {
	ticksPerMinute := float64(tempo) * float64(division.Resolution())
	if ticksPerMinute == 0 {
		return minimumDuration
	}
	return math.Max(minimumDuration, float64(ticks)*60.0/ticksPerMinute)
}

// Combines the stats from each track into the analysis of the whole file.
// Tracks are applied in order, so the last tempo, time signature or key
// signature seen in any track wins. Nil entries are skipped. The delta-times
// of all tracks are added together when estimating the duration.
func Aggregate(header *SMFHeader, tracks []*TrackStats) MIDIAnalysis {
	toReturn := MIDIAnalysis{
		Tempo:         defaultTempo,
		TimeSignature: defaultTimeSignature,
		KeySignature:  defaultKeySignature,
		Tracks:        header.TrackCount,
		Instruments:   []string{},
		NoteRange:     NoteRange{Min: 127, Max: 0},
		Events:        make([]RawEvent, 0, maxPreviewEvents),
	}
	noteCount := 0
	totalTicks := uint64(0)
	for _, t := range tracks {
		if t == nil {
			continue
		}
		noteCount += t.NoteCount
		totalTicks += t.Ticks
		if t.Tempo != 0 {
			toReturn.Tempo = t.Tempo
		}
		if t.TimeSignature != "" {
			toReturn.TimeSignature = t.TimeSignature
		}
		if t.KeySignature != "" {
			toReturn.KeySignature = t.KeySignature
		}
		if t.MinNote < toReturn.NoteRange.Min {
			toReturn.NoteRange.Min = t.MinNote
		}
		if t.MaxNote > toReturn.NoteRange.Max {
			toReturn.NoteRange.Max = t.MaxNote
		}
		for _, program := range t.Programs {
			name := InstrumentName(int(program))
			if !containsString(toReturn.Instruments, name) {
				toReturn.Instruments = append(toReturn.Instruments, name)
			}
		}
		for _, event := range t.Events {
			if len(toReturn.Events) >= maxPreviewEvents {
				break
			}
			toReturn.Events = append(toReturn.Events, event)
		}
	}
	toReturn.Duration = estimateDuration(totalTicks, toReturn.Tempo,
		header.Division)
	toReturn.Complexity = ClassifyComplexity(noteCount, header.TrackCount)
	toReturn.Genre = GuessGenre(toReturn.Tempo, toReturn.Instruments)
	return toReturn
}
