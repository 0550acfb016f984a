package midi

import (
	"errors"
)

// Failures reported while decoding SMF data. Errors returned by this package
// wrap one of these, so callers can check for them using errors.Is.
var (
	// A chunk didn't start with the expected "MThd" or "MTrk" tag.
	ErrInvalidMagic = errors.New("invalid chunk signature")
	// The MThd chunk declared a length other than 6.
	ErrMalformedHeader = errors.New("malformed SMF header")
	// The input ended in the middle of a field.
	ErrUnexpectedEOF = errors.New("unexpected end of SMF data")
)
