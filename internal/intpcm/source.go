// SPDX-License-Identifier: EPL-2.0

// Package intpcm adapts the go-audio decoders, which fill integer sample
// buffers, to audio.Source. Only 16-bit material is handled; callers check
// the bit depth before wrapping a decoder.
package intpcm

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
)

// DefaultBufSize is the buffer size reported before the first read.
const DefaultBufSize = 4096

// Reader is the part of the go-audio wav and aiff decoders used here.
type Reader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source streams 16-bit integer PCM as float32 samples.
type Source struct {
	r      Reader
	prefix string
	rate   int
	chans  int
	frames int64
	buf    *goaudio.IntBuffer
}

// New wraps r. prefix names the container in errors ("wav", "aiff"), and
// frames is the total length or -1 when unknown.
func New(prefix string, r Reader, sampleRate, channels int, frames int64) *Source {
	return &Source{r: r, prefix: prefix, rate: sampleRate, chans: channels, frames: frames}
}

func (s *Source) SampleRate() int { return s.rate }
func (s *Source) Channels() int   { return s.chans }
func (s *Source) Close() error    { return nil }
func (s *Source) Frames() int64   { return s.frames }

func (s *Source) BufSize() int {
	if s.buf != nil {
		return cap(s.buf.Data)
	}
	return DefaultBufSize
}

// ReadSamples reports io.EOF together with a short read, so callers see the
// end without an extra empty call.
func (s *Source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.buf == nil || cap(s.buf.Data) < len(dst) {
		s.buf = &goaudio.IntBuffer{Data: make([]int, len(dst)), Format: s.r.Format()}
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.r.PCMBuffer(s.buf)
	for i, v := range s.buf.Data[:n] {
		dst[i] = float32(v) / 32768
	}

	switch {
	case errors.Is(err, io.EOF):
		return n, io.EOF
	case err != nil:
		return n, fmt.Errorf("%s: read pcm: %w", s.prefix, err)
	case n < len(dst):
		return n, io.EOF
	}
	return n, nil
}
