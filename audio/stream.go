// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// Stream is an in-memory PCM buffer: interleaved signed 16-bit samples with
// their sample rate and channel count. A Stream belongs to the operation that
// produced it and is never shared between concurrent callers.
type Stream struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// NewStream returns an empty stream with the given format and room for
// capacity samples.
func NewStream(sampleRate, channels, capacity int) *Stream {
	return &Stream{
		Samples:    make([]int16, 0, capacity),
		SampleRate: sampleRate,
		Channels:   channels,
	}
}

// Frames returns the number of interleaved frames.
func (s *Stream) Frames() int {
	if s.Channels <= 0 {
		return 0
	}
	return len(s.Samples) / s.Channels
}

// DurationMs returns the playback length in milliseconds, rounded down.
func (s *Stream) DurationMs() int64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return int64(s.Frames()) * 1000 / int64(s.SampleRate)
}

// FrameAt converts a millisecond offset into a frame index clamped to
// [0, Frames()].
func (s *Stream) FrameAt(ms int64) int {
	if ms <= 0 {
		return 0
	}
	f := ms * int64(s.SampleRate) / 1000
	if f > int64(s.Frames()) {
		return s.Frames()
	}
	return int(f)
}

// Validate checks the channel/sample count invariant.
func (s *Stream) Validate() error {
	if s.Channels <= 0 || s.SampleRate <= 0 {
		return fmt.Errorf("%w: %d Hz, %d channels", ErrUnsupportedFormat, s.SampleRate, s.Channels)
	}
	if len(s.Samples)%s.Channels != 0 {
		return fmt.Errorf("%w: %d samples, %d channels", ErrInvalidStream, len(s.Samples), s.Channels)
	}
	return nil
}

// Clone returns a deep copy of s.
func (s *Stream) Clone() *Stream {
	out := *s
	out.Samples = append([]int16(nil), s.Samples...)
	return &out
}

// AppendPCM appends little-endian 16-bit PCM bytes to the stream. A trailing
// odd byte is ignored.
func (s *Stream) AppendPCM(b []byte) {
	n := len(b) / 2
	if cap(s.Samples)-len(s.Samples) < n {
		grown := make([]int16, len(s.Samples), len(s.Samples)+max(n, cap(s.Samples)))
		copy(grown, s.Samples)
		s.Samples = grown
	}
	for i := range n {
		s.Samples = append(s.Samples, int16(uint16(b[2*i])|uint16(b[2*i+1])<<8))
	}
}

// PCM returns the samples as little-endian bytes.
func (s *Stream) PCM() []byte {
	out := make([]byte, len(s.Samples)*2)
	for i, v := range s.Samples {
		out[2*i] = byte(v)
		out[2*i+1] = byte(uint16(v) >> 8)
	}
	return out
}

// Reader exposes the stream as a Source so it can be fed through the same
// pipelines as decoded files.
func (s *Stream) Reader() Source {
	return &streamSource{s: s}
}

type streamSource struct {
	s   *Stream
	pos int
}

func (r *streamSource) SampleRate() int { return r.s.SampleRate }
func (r *streamSource) Channels() int   { return r.s.Channels }
func (r *streamSource) BufSize() int    { return 4096 }
func (r *streamSource) Close() error    { return nil }
func (r *streamSource) Frames() int64   { return int64(r.s.Frames()) }

func (r *streamSource) ReadSamples(dst []float32) (int, error) {
	if r.pos >= len(r.s.Samples) {
		return 0, io.EOF
	}
	n := min(len(dst), len(r.s.Samples)-r.pos)
	for i := range n {
		dst[i] = float32(r.s.Samples[r.pos+i]) / 32768.0
	}
	r.pos += n
	if r.pos >= len(r.s.Samples) {
		return n, io.EOF
	}
	return n, nil
}
