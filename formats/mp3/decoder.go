// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/voxedit/audio"
)

// go-mp3 always produces 16-bit little-endian stereo.
const (
	outputChannels = 2
	bytesPerFrame  = 4
)

var ErrNotMP3File = fmt.Errorf("%w: not an MP3 stream", audio.ErrUnsupportedFormat)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
	Length() int64
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
	pending    []byte // trailing bytes of an incomplete sample
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return outputChannels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 } // return sample capacity, not bytes

// Frames reports the decoded length, or -1 when the stream is not seekable.
func (s *source) Frames() int64 {
	if n := s.dec.Length(); n > 0 {
		return n / bytesPerFrame
	}
	return -1
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	bytesNeeded := len(dst) * 2
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	have := copy(s.buf, s.pending)
	s.pending = s.pending[:0]

	n, err := s.dec.Read(s.buf[have:])
	n += have
	if n < 2 {
		if err == nil {
			// Not a whole sample yet.
			s.pending = append(s.pending, s.buf[:n]...)
			return 0, nil
		}
		if errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("mp3: read: %w", err)
	}

	samples := n / 2
	if n%2 == 1 {
		s.pending = append(s.pending, s.buf[n-1])
	}
	for i := range samples {
		val := int16(uint16(s.buf[2*i]) | uint16(s.buf[2*i+1])<<8)
		dst[i] = float32(val) / 32768.0
	}

	if errors.Is(err, io.EOF) {
		return samples, io.EOF
	}
	if err != nil {
		return samples, fmt.Errorf("mp3: read: %w", err)
	}
	return samples, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3File, err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
