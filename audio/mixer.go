// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// Downmix averages every frame of s into a single mono sample.
func Downmix(s *Stream) *Stream {
	if s.Channels == 1 {
		return s.Clone()
	}
	channels := s.Channels
	frames := s.Frames()
	out := NewStream(s.SampleRate, 1, frames)
	out.Samples = out.Samples[:frames]

	switch channels {
	case 2: // Stereo (most common)
		for f := range frames {
			idx := f << 1
			out.Samples[f] = int16((int32(s.Samples[idx]) + int32(s.Samples[idx+1])) / 2)
		}
	default:
		for f := range frames {
			var sum int32
			base := f * channels
			for c := range channels {
				sum += int32(s.Samples[base+c])
			}
			out.Samples[f] = int16(sum / int32(channels))
		}
	}
	return out
}

// Upmix duplicates a mono stream into channels identical channels.
func Upmix(s *Stream, channels int) (*Stream, error) {
	if s.Channels != 1 {
		return nil, fmt.Errorf("%w: upmix needs mono input, got %d channels", ErrUnsupportedFormat, s.Channels)
	}
	out := NewStream(s.SampleRate, channels, len(s.Samples)*channels)
	for _, v := range s.Samples {
		for range channels {
			out.Samples = append(out.Samples, v)
		}
	}
	return out, nil
}

// Convert brings s to the given rate and channel count. Channel conversion
// happens first so a downmix is never resampled twice.
func Convert(s *Stream, sampleRate, channels int) (*Stream, error) {
	out := s
	var err error
	switch {
	case s.Channels == channels:
	case channels == 1:
		out = Downmix(s)
	case s.Channels == 1:
		if out, err = Upmix(s, channels); err != nil {
			return nil, err
		}
	default:
		mono := Downmix(s)
		if out, err = Upmix(mono, channels); err != nil {
			return nil, err
		}
	}
	if out.SampleRate == sampleRate {
		if out == s {
			return s.Clone(), nil
		}
		return out, nil
	}
	return Resample(out, sampleRate)
}
