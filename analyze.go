package midi

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Used for all of this package's diagnostics.
var logger logrus.FieldLogger = logrus.StandardLogger()

// Replaces the logger used by this package. Passing nil restores the logrus
// standard logger.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	logger = l
}

// Analyzes the SMF file in data. Returns an error only if the header can't be
// parsed. Problems within individual tracks are logged at debug level, and the
// affected track contributes whatever was read before the problem.
func Analyze(data []byte) (*MIDIAnalysis, error) {
	c := NewByteCursor(data)
	header, e := ParseSMFHeader(c)
	if e != nil {
		return nil, fmt.Errorf("Failed parsing SMF header: %w", e)
	}
	tracks := make([]*TrackStats, 0, header.TrackCount)
	for i := 0; i < int(header.TrackCount); i++ {
		stats, e := ParseTrack(c)
		if e != nil {
			logger.WithFields(logrus.Fields{
				"track":  i,
				"offset": c.Position(),
			}).WithError(e).Debug("Track not fully parsed")
		}
		if stats == nil {
			// There isn't enough data left for another chunk header.
			break
		}
		if errors.Is(e, ErrInvalidMagic) {
			continue
		}
		tracks = append(tracks, stats)
	}
	toReturn := Aggregate(header, tracks)
	return &toReturn, nil
}

// Analyzes the SMF file in data, never failing: if the file can't be analyzed
// at all, this logs a warning and returns DefaultAnalysis(). Safe to call
// from multiple goroutines.
func AnalyzeMIDI(data []byte) (toReturn MIDIAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Warn("MIDI analysis failed, using " +
				"default analysis")
			toReturn = DefaultAnalysis()
		}
	}()
	analysis, e := Analyze(data)
	if e != nil {
		logger.WithError(e).Warn("MIDI analysis failed, using default " +
			"analysis")
		return DefaultAnalysis()
	}
	return *analysis
}
