package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	midi "github.com/yalue/smfanalyzer"
)

func TestSampleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.mid")
	require.NoError(t, writeSampleFile(path))
	data, e := os.ReadFile(path)
	require.NoError(t, e)
	analysis, e := midi.Analyze(data)
	require.NoError(t, e)
	assert.Equal(t, uint16(2), analysis.Tracks)
	assert.Equal(t, uint32(96), analysis.Tempo)
	assert.Equal(t, "4/4", analysis.TimeSignature)
	assert.Equal(t, []string{"Acoustic Grand Piano"}, analysis.Instruments)
	assert.Equal(t, midi.NoteRange{Min: 60, Max: 72}, analysis.NoteRange)
	assert.Equal(t, "classical", analysis.Genre)
}

func TestRenderAnalysis(t *testing.T) {
	analysis := midi.DefaultAnalysis()
	text := renderAnalysis("song.mid", &analysis)
	assert.Contains(t, text, "song.mid")
	assert.Contains(t, text, "120 BPM")
	assert.Contains(t, text, "C4 (60) - C5 (72)")
	assert.Contains(t, text, "Acoustic Grand Piano")

	analysis.NoteRange = midi.NoteRange{Min: 127, Max: 0}
	analysis.Instruments = nil
	text = renderAnalysis("empty.mid", &analysis)
	assert.Contains(t, text, "no notes")
	assert.Contains(t, text, "none")
}
