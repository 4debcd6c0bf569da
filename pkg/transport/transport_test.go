package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	tr := New(48000.0)
	assert.Equal(t, 120.0, tr.Tempo())
	assert.Equal(t, DefaultTimeSignature, tr.TimeSignature())
	assert.Equal(t, Stopped, tr.PlayingMode())
	assert.Equal(t, Internal, tr.SyncMode())
	assert.Equal(t, 48000.0, tr.SampleRate())
}

func TestTimeSignatureRoundTrip(t *testing.T) {
	tr := New(44100.0)
	tr.SetTimeSignature(TimeSignature{Numerator: 7, Denominator: 8})
	assert.Equal(t, TimeSignature{Numerator: 7, Denominator: 8}, tr.TimeSignature())
}

func TestSamplePosOnlyAdvancesWhilePlaying(t *testing.T) {
	tr := New(44100.0)
	tr.AdvanceSamplePos(64)
	assert.EqualValues(t, 0, tr.CurrentSamplePos())

	tr.SetPlayingMode(Playing)
	tr.AdvanceSamplePos(64)
	tr.AdvanceSamplePos(64)
	assert.EqualValues(t, 128, tr.CurrentSamplePos())

	tr.ResetSamplePos()
	assert.EqualValues(t, 0, tr.CurrentSamplePos())
}

func TestPlayingModeAndSyncModeStrings(t *testing.T) {
	assert.Equal(t, "playing", Playing.String())
	assert.Equal(t, "ableton_link", AbletonLink.String())
}
