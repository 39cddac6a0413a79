// SPDX-License-Identifier: EPL-2.0

package silence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/voxedit/audio"
	"github.com/ik5/voxedit/internal/audiotest"
)

func TestSegmentsLoudSilenceLoud(t *testing.T) {
	t.Parallel()

	s := audiotest.Speech(8000, 1000, 1000)
	got := Segments(s, DefaultOptions())

	require.Len(t, got, 2)
	for _, seg := range got {
		assert.GreaterOrEqual(t, seg.DurationMs(), int64(DefaultMinSegmentMs))
	}
	assert.Equal(t, Segment{0, 1500}, got[0])
	assert.Equal(t, Segment{1500, 3000}, got[1])
}

func TestSegmentsShortPauseIgnored(t *testing.T) {
	t.Parallel()

	s := audiotest.Speech(8000, 1000, 200)
	got := Segments(s, Options{})
	require.Len(t, got, 1)
	assert.Equal(t, Segment{0, s.DurationMs()}, got[0])
}

func TestSegmentsDropShortFragments(t *testing.T) {
	t.Parallel()

	// The split lands at 400 ms, leaving a leading fragment below the
	// minimum segment length.
	s := audiotest.Join(
		audiotest.Tone(8000, 1, 100, 440, 12000),
		audiotest.Silence(8000, 1, 600),
		audiotest.Tone(8000, 1, 1000, 440, 12000),
	)
	got := Segments(s, DefaultOptions())
	require.Len(t, got, 1)
	assert.Equal(t, int64(400), got[0].StartMs)
	assert.Equal(t, int64(1700), got[0].EndMs)
}

func TestSegmentsTrailingSilence(t *testing.T) {
	t.Parallel()

	s := audiotest.Join(
		audiotest.Tone(8000, 1, 1000, 440, 12000),
		audiotest.Silence(8000, 1, 1000),
	)
	got := Segments(s, DefaultOptions())
	require.Len(t, got, 1)
	assert.Equal(t, Segment{0, 2000}, got[0])
}

func TestSegmentsAllSilentOrTooShort(t *testing.T) {
	t.Parallel()

	got := Segments(audiotest.Silence(8000, 1, 300), DefaultOptions())
	assert.Empty(t, got)

	got = Segments(&audio.Stream{SampleRate: 8000, Channels: 1}, DefaultOptions())
	assert.Empty(t, got)
}

func TestSegmentsCustomThreshold(t *testing.T) {
	t.Parallel()

	// A quiet tone counts as silence once the threshold is above its peak.
	s := audiotest.Join(
		audiotest.Tone(8000, 1, 1000, 440, 12000),
		audiotest.Tone(8000, 1, 1000, 440, 2000),
		audiotest.Tone(8000, 1, 1000, 440, 12000),
	)
	assert.Len(t, Segments(s, DefaultOptions()), 1)
	assert.Len(t, Segments(s, Options{Threshold: 3000}), 2)
}

func TestEnvelope(t *testing.T) {
	t.Parallel()

	s := &audio.Stream{SampleRate: 1000, Channels: 2, Samples: make([]int16, 2*45)}
	s.Samples[3] = -900 // frame 1, window 0
	s.Samples[50] = 300 // frame 25, window 1
	s.Samples[88] = -32768

	env := Envelope(s, 20)
	assert.Equal(t, []int{900, 300, 32768}, env)
	assert.Nil(t, Envelope(s, 0))
}
