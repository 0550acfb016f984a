package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	midi "github.com/yalue/smfanalyzer"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))
	labelStyle = lipgloss.NewStyle().Width(16).Align(lipgloss.Left).
			Foreground(lipgloss.Color("#666666"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

func formatNoteRange(r midi.NoteRange) string {
	if r.Empty() {
		return "no notes"
	}
	return fmt.Sprintf("%s (%d) - %s (%d)", midi.MIDINote(r.Min), r.Min,
		midi.MIDINote(r.Max), r.Max)
}

// Returns a bordered summary of the analysis, one field per line.
func renderAnalysis(name string, a *midi.MIDIAnalysis) string {
	instruments := "none"
	if len(a.Instruments) != 0 {
		instruments = strings.Join(a.Instruments, ", ")
	}
	fields := [][2]string{
		{"Duration", fmt.Sprintf("%.1f seconds", a.Duration)},
		{"Tempo", fmt.Sprintf("%d BPM", a.Tempo)},
		{"Time signature", a.TimeSignature},
		{"Key signature", a.KeySignature},
		{"Tracks", fmt.Sprintf("%d", a.Tracks)},
		{"Instruments", instruments},
		{"Note range", formatNoteRange(a.NoteRange)},
		{"Complexity", a.Complexity.String()},
		{"Genre", a.Genre},
	}
	lines := []string{titleStyle.Render(name)}
	for _, f := range fields {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(f[0]), valueStyle.Render(f[1])))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
