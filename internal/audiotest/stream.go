// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"math"

	"github.com/ik5/voxedit/audio"
)

// Tone returns ms milliseconds of a sine at freq Hz whose peak is amp. All
// channels carry the same signal.
func Tone(rate, channels, ms int, freq float64, amp int16) *audio.Stream {
	frames := rate * ms / 1000
	s := audio.NewStream(rate, channels, frames*channels)
	for i := range frames {
		v := int16(float64(amp) * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
		for range channels {
			s.Samples = append(s.Samples, v)
		}
	}
	return s
}

// Silence returns ms milliseconds of digital silence.
func Silence(rate, channels, ms int) *audio.Stream {
	frames := rate * ms / 1000
	s := audio.NewStream(rate, channels, frames*channels)
	s.Samples = s.Samples[:frames*channels]
	return s
}

// Ramp returns frames frames whose samples count up from zero, wrapping at
// the int16 range. Every sample differs from its neighbours, which makes
// offsets easy to check.
func Ramp(rate, channels, frames int) *audio.Stream {
	s := audio.NewStream(rate, channels, frames*channels)
	for i := range frames * channels {
		s.Samples = append(s.Samples, int16(i))
	}
	return s
}

// Join concatenates parts, which must share the first part's format.
func Join(parts ...*audio.Stream) *audio.Stream {
	if len(parts) == 0 {
		return nil
	}
	n := 0
	for _, p := range parts {
		n += len(p.Samples)
	}
	out := audio.NewStream(parts[0].SampleRate, parts[0].Channels, n)
	for _, p := range parts {
		out.Samples = append(out.Samples, p.Samples...)
	}
	return out
}

// Speech returns [tone][silence][tone] with the given durations, the shape
// the silence segmenter is expected to split in two.
func Speech(rate, loudMs, silentMs int) *audio.Stream {
	return Join(
		Tone(rate, 1, loudMs, 440, 12000),
		Silence(rate, 1, silentMs),
		Tone(rate, 1, loudMs, 440, 12000),
	)
}
