// This defines a command-line utility for gathering information about the
// instruments, genres and complexity of a directory of MIDI files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	midi "github.com/yalue/smfanalyzer"
)

// Keeps track of our accumulated counts across files.
type instrumentStats struct {
	// The number of files analyzed.
	fileCount int
	// The number of files using each instrument, keyed by name.
	instrumentFiles map[string]int
	// The number of files given each genre label.
	genreFiles map[string]int
	// The number of files in each complexity tier.
	complexityFiles [3]int
	// The sum of all files' estimated durations, in seconds.
	totalDuration float64
}

func newInstrumentStats() *instrumentStats {
	return &instrumentStats{
		instrumentFiles: make(map[string]int),
		genreFiles:      make(map[string]int),
	}
}

// Adds the given analysis to the running totals.
func (s *instrumentStats) add(a *midi.MIDIAnalysis) {
	s.fileCount++
	for _, name := range a.Instruments {
		s.instrumentFiles[name]++
	}
	s.genreFiles[a.Genre]++
	if int(a.Complexity) < len(s.complexityFiles) {
		s.complexityFiles[a.Complexity]++
	}
	s.totalDuration += a.Duration
}

// Adds the analysis of the named MIDI file to the running totals. Returns an
// error if the file can't be read.
func (s *instrumentStats) addFile(name string) error {
	data, e := os.ReadFile(name)
	if e != nil {
		return fmt.Errorf("Failed opening %s: %w", name, e)
	}
	analysis := midi.AnalyzeMIDI(data)
	s.add(&analysis)
	return nil
}

// Returns the keys of m, most frequent first, with ties sorted by name.
func sortedByCount(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Dumps the totals to stdout.
func (s *instrumentStats) printInfo() {
	fmt.Printf("Analyzed %d files, %.1f seconds in total.\n", s.fileCount,
		s.totalDuration)
	for _, name := range sortedByCount(s.instrumentFiles) {
		fmt.Printf("Instrument %s: %d files.\n", name, s.instrumentFiles[name])
	}
	for _, genre := range sortedByCount(s.genreFiles) {
		fmt.Printf("Genre %s: %d files.\n", genre, s.genreFiles[genre])
	}
	for i, count := range s.complexityFiles {
		fmt.Printf("Complexity %s: %d files.\n", midi.Complexity(i), count)
	}
}

func run() int {
	var baseDir, logLevel string
	flag.StringVar(&baseDir, "dir", "", "The directory to scan for .mid files")
	flag.StringVar(&logLevel, "log_level", "warning", "The minimum level of "+
		"log messages to print.")
	flag.Parse()
	if baseDir == "" {
		fmt.Println("A base directory must be specified. " +
			"Run with -help for usage.")
		return 1
	}
	level, e := logrus.ParseLevel(logLevel)
	if e != nil {
		fmt.Printf("Invalid log level %q: %s\n", logLevel, e)
		return 1
	}
	logrus.SetLevel(level)
	filenames, e := filepath.Glob(filepath.Join(baseDir, "*.mid"))
	if e != nil {
		fmt.Printf("Failed looking up MIDI files in dir %s: %s\n", baseDir, e)
		return 1
	}
	if len(filenames) <= 0 {
		fmt.Printf("Didn't find any MIDI (.mid) files in dir %s.\n", baseDir)
		return 1
	}
	stats := newInstrumentStats()
	for i, name := range filenames {
		fmt.Printf("Scanning file %d/%d: %s\n", i+1, len(filenames), name)
		e = stats.addFile(name)
		if e != nil {
			fmt.Printf("Failed analyzing file %s: %s\n", name, e)
		}
	}
	stats.printInfo()
	return 0
}

func main() {
	os.Exit(run())
}
