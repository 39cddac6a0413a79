// SPDX-License-Identifier: EPL-2.0

package edit

import (
	"fmt"

	"github.com/ik5/voxedit/audio"
)

// frameRange converts a millisecond range into clamped frame indices.
func frameRange(s *audio.Stream, startMs, endMs int64) (int, int, error) {
	start, end := s.FrameAt(startMs), s.FrameAt(endMs)
	if end <= start {
		return 0, 0, fmt.Errorf("%w: [%d ms, %d ms)", ErrEmptyRange, startMs, endMs)
	}
	return start, end, nil
}

// Slice keeps frames in [startMs, endMs).
func Slice(s *audio.Stream, startMs, endMs int64) (*audio.Stream, error) {
	start, end, err := frameRange(s, startMs, endMs)
	if err != nil {
		return nil, err
	}
	ch := s.Channels
	out := audio.NewStream(s.SampleRate, ch, (end-start)*ch)
	out.Samples = append(out.Samples, s.Samples[start*ch:end*ch]...)
	return out, nil
}

// Excise removes frames in [startMs, endMs).
func Excise(s *audio.Stream, startMs, endMs int64) (*audio.Stream, error) {
	start, end, err := frameRange(s, startMs, endMs)
	if err != nil {
		return nil, err
	}
	ch := s.Channels
	out := audio.NewStream(s.SampleRate, ch, len(s.Samples)-(end-start)*ch)
	out.Samples = append(out.Samples, s.Samples[:start*ch]...)
	out.Samples = append(out.Samples, s.Samples[end*ch:]...)
	return out, nil
}

// Concat appends the samples of streams in order. The result takes its
// sample rate and channel count from the last stream, and is truncated to
// whole frames of that layout. Callers wanting a uniform layout should
// convert inputs first with audio.Convert.
func Concat(streams ...*audio.Stream) (*audio.Stream, error) {
	if len(streams) == 0 {
		return nil, ErrNoStreams
	}
	last := streams[len(streams)-1]
	n := 0
	for _, s := range streams {
		n += len(s.Samples)
	}

	out := audio.NewStream(last.SampleRate, last.Channels, n)
	for _, s := range streams {
		out.Samples = append(out.Samples, s.Samples...)
	}
	if last.Channels > 0 {
		out.Samples = out.Samples[:len(out.Samples)-len(out.Samples)%last.Channels]
	}
	return out, nil
}
