// This defines a command-line utility for viewing the analysis of standard
// MIDI files (SMF, usually with a ".mid" extension).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	midi "github.com/yalue/smfanalyzer"
)

func run() int {
	var filename, sampleFilename, logLevel string
	var dumpEvents, dumpJSON bool
	flag.StringVar(&filename, "input_file", "", "The .mid file to open.")
	flag.BoolVar(&dumpEvents, "dump_events", false, "If set, print the "+
		"preview events of the file to stdout.")
	flag.BoolVar(&dumpJSON, "json", false, "If set, print the analysis as "+
		"JSON rather than as text.")
	flag.StringVar(&sampleFilename, "write_sample", "", "If set, write a "+
		"short example .mid file to this path and exit.")
	flag.StringVar(&logLevel, "log_level", "info", "The minimum level of log "+
		"messages to print.")
	flag.Parse()
	level, e := logrus.ParseLevel(logLevel)
	if e != nil {
		fmt.Printf("Invalid log level %q: %s\n", logLevel, e)
		return 1
	}
	logrus.SetLevel(level)
	if sampleFilename != "" {
		e = writeSampleFile(sampleFilename)
		if e != nil {
			fmt.Printf("Couldn't write %s: %s\n", sampleFilename, e)
			return 1
		}
		fmt.Printf("Wrote %s OK.\n", sampleFilename)
		return 0
	}
	if filename == "" {
		fmt.Printf("Invalid arguments. Run with -help for more information.\n")
		return 1
	}
	data, e := os.ReadFile(filename)
	if e != nil {
		fmt.Printf("Couldn't open %s: %s\n", filename, e)
		return 1
	}
	analysis := midi.AnalyzeMIDI(data)
	if dumpJSON {
		encoded, e := json.MarshalIndent(&analysis, "", "  ")
		if e != nil {
			fmt.Printf("Couldn't format the analysis: %s\n", e)
			return 1
		}
		fmt.Printf("%s\n", encoded)
		return 0
	}
	fmt.Println(renderAnalysis(filename, &analysis))
	if dumpEvents {
		fmt.Printf("First %d events:\n", len(analysis.Events))
		for i := range analysis.Events {
			fmt.Printf("  %d. Time %d: %s\n", i, analysis.Events[i].DeltaTime,
				analysis.Events[i].String())
		}
	}
	return 0
}

func main() {
	os.Exit(run())
}
