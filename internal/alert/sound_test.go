package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSynthesizeChimeShape(t *testing.T) {
	pcm := synthesizeChime([]toneSpec{
		{frequencyHz: 660, duration: 90 * time.Millisecond, volume: 0.16},
		{frequencyHz: 990, duration: 120 * time.Millisecond, volume: 0.16},
	})

	gap := samplesForDuration(25 * time.Millisecond)
	want := samplesForDuration(90*time.Millisecond) + gap + samplesForDuration(120*time.Millisecond)
	require.Len(t, pcm, want)

	// The inter-tone gap is silent.
	start := samplesForDuration(90 * time.Millisecond)
	for _, sample := range pcm[start : start+gap] {
		require.Equal(t, int16(0), sample)
	}
}

func TestSynthesizeToneEnvelope(t *testing.T) {
	pcm := synthesizeTone(toneSpec{frequencyHz: 440, duration: 100 * time.Millisecond, volume: 0.5})
	require.NotEmpty(t, pcm)

	// Attack and release start from silence.
	require.Equal(t, int16(0), pcm[0])
	require.Equal(t, int16(0), pcm[len(pcm)-1])

	// Volume bounds the waveform.
	volume := 0.5
	limit := int16(volume*32767) + 1
	for _, sample := range pcm {
		require.LessOrEqual(t, sample, limit)
		require.GreaterOrEqual(t, sample, -limit)
	}
}

func TestSynthesizeToneDegenerateSpecs(t *testing.T) {
	require.Nil(t, synthesizeTone(toneSpec{frequencyHz: 0, duration: time.Second, volume: 1}))
	require.Nil(t, synthesizeTone(toneSpec{frequencyHz: 440, duration: 0, volume: 1}))
	require.Nil(t, synthesizeTone(toneSpec{frequencyHz: 440, duration: time.Second, volume: 0}))
	require.Nil(t, synthesizeChime(nil))
}

func TestSamplesForDuration(t *testing.T) {
	require.Equal(t, chimeSampleRate, samplesForDuration(time.Second))
	require.Equal(t, 0, samplesForDuration(0))
	require.Equal(t, 0, samplesForDuration(-time.Second))
}
