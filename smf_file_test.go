package midi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSMFHeader(t *testing.T) {
	data := []byte{
		// MThd
		0x4d, 0x54, 0x68, 0x64,
		// Chunk length
		0, 0, 0, 6,
		// Format 1
		0, 1,
		// One track
		0, 1,
		// 96 ticks per quarter note
		0, 0x60,
	}
	c := NewByteCursor(data)
	header, e := ParseSMFHeader(c)
	require.NoError(t, e)
	assert.Equal(t, uint16(1), header.Format)
	assert.Equal(t, uint16(1), header.TrackCount)
	assert.Equal(t, uint16(96), header.Division.TicksPerQuarterNote())
	assert.Equal(t, 14, c.Position())
	t.Logf("Parsed header: %s\n", header)
}

func TestParseSMFHeaderErrors(t *testing.T) {
	_, e := ParseSMFHeader(NewByteCursor([]byte("RIFF\x00\x00\x00\x06\x00" +
		"\x01\x00\x01\x00\x60")))
	assert.True(t, errors.Is(e, ErrInvalidMagic))

	_, e = ParseSMFHeader(NewByteCursor([]byte("MThd\x00\x00\x00\x10\x00" +
		"\x01\x00\x01\x00\x60")))
	assert.True(t, errors.Is(e, ErrMalformedHeader))
	t.Logf("Got expected error for a bad header length: %s\n", e)

	// Every prefix of a valid header is too short.
	valid := buildSMF(0, 1, 480)
	for i := 0; i < len(valid); i++ {
		_, e = ParseSMFHeader(NewByteCursor(valid[:i]))
		assert.Error(t, e, "prefix of %d bytes", i)
	}
	_, e = ParseSMFHeader(NewByteCursor(valid[:10]))
	assert.True(t, errors.Is(e, ErrUnexpectedEOF))
}

func TestTimeDivision(t *testing.T) {
	d := TimeDivision(480)
	assert.False(t, d.IsSMPTE())
	assert.Equal(t, uint16(480), d.Resolution())
	assert.Equal(t, "480 ticks per quarter note", d.String())

	// -25 frames per second, 40 ticks per frame.
	d = TimeDivision(0xe728)
	assert.True(t, d.IsSMPTE())
	assert.Equal(t, uint16(0), d.TicksPerQuarterNote())
	fps, ticks := d.SMPTETimeCode()
	assert.Equal(t, uint8(25), fps)
	assert.Equal(t, uint8(40), ticks)
	assert.Equal(t, uint16(0x6728), d.Resolution())
}

func TestSummarizeHeader(t *testing.T) {
	// Short files get the 30 second minimum.
	info := SummarizeHeader(middleCFile())
	assert.Equal(t, HeaderInfo{
		Format:            1,
		Tracks:            1,
		Division:          96,
		EstimatedDuration: 30,
	}, info)

	// 20 KiB with 4 tracks: 20 * 4 * 2 = 160 seconds.
	data := make([]byte, 20*1024)
	copy(data, buildSMF(1, 4, 480))
	assert.Equal(t, 160, SummarizeHeader(data).EstimatedDuration)

	// Large files are capped at 300 seconds.
	data = make([]byte, 100*1024)
	copy(data, buildSMF(1, 16, 480))
	assert.Equal(t, 300, SummarizeHeader(data).EstimatedDuration)

	assert.Equal(t, DefaultHeaderInfo(), SummarizeHeader([]byte("MThd")))
	assert.Equal(t, DefaultHeaderInfo(), SummarizeHeader(nil))
}
