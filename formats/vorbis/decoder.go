package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/voxedit/audio"
)

var ErrNotVorbisFile = fmt.Errorf("%w: not an Ogg Vorbis stream", audio.ErrUnsupportedFormat)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Length() int64
	Read([]float32) (int, error)
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

// Frames reports the stream length in frames, or -1 if it is unknown.
func (s *source) Frames() int64 {
	if n := s.dec.Length(); n > 0 {
		return n
	}
	return -1
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	// Only hand whole frames to the decoder.
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}

	// oggvorbis returns interleaved values, always a multiple of Channels().
	n, err := s.dec.Read(dst[:want])
	if errors.Is(err, io.EOF) {
		if n == 0 {
			return 0, io.EOF
		}
		return n, io.EOF
	}
	if err != nil {
		return n, fmt.Errorf("vorbis: read: %w", err)
	}
	return n, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotVorbisFile, err)
	}
	if dec.Channels() <= 0 {
		return nil, ErrNotVorbisFile
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}
