package main

import (
	"bytes"
	"fmt"
	"os"

	gm "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Builds a two-track file: a conductor track in 4/4 at 96 BPM, and a piano
// playing a C major scale in quarter notes.
func buildSampleFile() ([]byte, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	var conductor smf.Track
	conductor.Add(0, smf.MetaMeter(4, 4))
	conductor.Add(0, smf.MetaTempo(96))
	conductor.Close(0)
	e := s.Add(conductor)
	if e != nil {
		return nil, fmt.Errorf("Failed adding conductor track: %w", e)
	}
	var piano smf.Track
	piano.Add(0, gm.ProgramChange(0, 0))
	for _, note := range []uint8{60, 62, 64, 65, 67, 69, 71, 72} {
		piano.Add(0, gm.NoteOn(0, note, 100))
		piano.Add(480, gm.NoteOff(0, note))
	}
	piano.Close(0)
	e = s.Add(piano)
	if e != nil {
		return nil, fmt.Errorf("Failed adding piano track: %w", e)
	}
	var output bytes.Buffer
	_, e = s.WriteTo(&output)
	if e != nil {
		return nil, fmt.Errorf("Failed encoding SMF data: %w", e)
	}
	return output.Bytes(), nil
}

func writeSampleFile(path string) error {
	data, e := buildSampleFile()
	if e != nil {
		return e
	}
	return os.WriteFile(path, data, 0644)
}
