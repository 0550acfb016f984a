package midi

// This file holds the General MIDI instrument names and key-signature names.
// These are never modified, so they're safe to share between goroutines.

// General MIDI level 1 program names, indexed by program number.
var instrumentNames = [128]string{
	// Piano
	"Acoustic Grand Piano", "Bright Acoustic Piano", "Electric Grand Piano",
	"Honky-tonk Piano", "Electric Piano 1", "Electric Piano 2", "Harpsichord",
	"Clavi",
	// Chromatic percussion
	"Celesta", "Glockenspiel", "Music Box", "Vibraphone", "Marimba",
	"Xylophone", "Tubular Bells", "Dulcimer",
	// Organ
	"Drawbar Organ", "Percussive Organ", "Rock Organ", "Church Organ",
	"Reed Organ", "Accordion", "Harmonica", "Tango Accordion",
	// Guitar
	"Acoustic Guitar (nylon)", "Acoustic Guitar (steel)",
	"Electric Guitar (jazz)", "Electric Guitar (clean)",
	"Electric Guitar (muted)", "Overdriven Guitar", "Distortion Guitar",
	"Guitar harmonics",
	// Bass
	"Acoustic Bass", "Electric Bass (finger)", "Electric Bass (pick)",
	"Fretless Bass", "Slap Bass 1", "Slap Bass 2", "Synth Bass 1",
	"Synth Bass 2",
	// Strings
	"Violin", "Viola", "Cello", "Contrabass", "Tremolo Strings",
	"Pizzicato Strings", "Orchestral Harp", "Timpani",
	// Ensemble
	"String Ensemble 1", "String Ensemble 2", "SynthStrings 1",
	"SynthStrings 2", "Choir Aahs", "Voice Oohs", "Synth Voice",
	"Orchestra Hit",
	// Brass
	"Trumpet", "Trombone", "Tuba", "Muted Trumpet", "French Horn",
	"Brass Section", "SynthBrass 1", "SynthBrass 2",
	// Reed
	"Soprano Sax", "Alto Sax", "Tenor Sax", "Baritone Sax", "Oboe",
	"English Horn", "Bassoon", "Clarinet",
	// Pipe
	"Piccolo", "Flute", "Recorder", "Pan Flute", "Blown Bottle", "Shakuhachi",
	"Whistle", "Ocarina",
	// Synth lead
	"Lead 1 (square)", "Lead 2 (sawtooth)", "Lead 3 (calliope)",
	"Lead 4 (chiff)", "Lead 5 (charang)", "Lead 6 (voice)", "Lead 7 (fifths)",
	"Lead 8 (bass + lead)",
	// Synth pad
	"Pad 1 (new age)", "Pad 2 (warm)", "Pad 3 (polysynth)", "Pad 4 (choir)",
	"Pad 5 (bowed)", "Pad 6 (metallic)", "Pad 7 (halo)", "Pad 8 (sweep)",
	// Synth effects
	"FX 1 (rain)", "FX 2 (soundtrack)", "FX 3 (crystal)", "FX 4 (atmosphere)",
	"FX 5 (brightness)", "FX 6 (goblins)", "FX 7 (echoes)", "FX 8 (sci-fi)",
	// Ethnic
	"Sitar", "Banjo", "Shamisen", "Koto", "Kalimba", "Bag pipe", "Fiddle",
	"Shanai",
	// Percussive
	"Tinkle Bell", "Agogo", "Steel Drums", "Woodblock", "Taiko Drum",
	"Melodic Tom", "Synth Drum", "Reverse Cymbal",
	// Sound effects
	"Guitar Fret Noise", "Breath Noise", "Seashore", "Bird Tweet",
	"Telephone Ring", "Helicopter", "Applause", "Gunshot",
}

// Key names indexed by the key signature's sharp (positive) or flat
// (negative) count plus 7.
var majorKeyNames = [15]string{
	"Cb", "Gb", "Db", "Ab", "Eb", "Bb", "F",
	"C",
	"G", "D", "A", "E", "B", "F#", "C#",
}

var minorKeyNames = [15]string{
	"Ab", "Eb", "Bb", "F", "C", "G", "D",
	"A",
	"E", "B", "F#", "C#", "G#", "D#", "A#",
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Returns the General MIDI name of the given program number. Numbers outside
// of 0-127 are clamped to the nearest valid program.
func InstrumentName(program int) string {
	return instrumentNames[clampIndex(program, len(instrumentNames))]
}

// Returns a name such as "D major" or "F# minor" for a key signature with the
// given number of sharps (positive) or flats (negative). Counts outside of
// -7 to 7 are clamped.
func KeySignatureName(sharpsFlats int8, isMajor bool) string {
	i := clampIndex(int(sharpsFlats)+7, len(majorKeyNames))
	if isMajor {
		return majorKeyNames[i] + " major"
	}
	return minorKeyNames[i] + " minor"
}
