// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/voxedit/audio"
	"github.com/ik5/voxedit/utils"
)

// DefaultUnitFrames is the number of frames per access unit produced by a
// SourceExtractor.
const DefaultUnitFrames = 1024

// SourceExtractor exposes an audio.Source as a single MIMERaw track. Each
// access unit holds up to DefaultUnitFrames frames of 16-bit PCM.
type SourceExtractor struct {
	src      audio.Source
	format   MediaFormat
	floats   []float32
	unit     []byte
	frames   int64
	selected bool
	done     bool
	err      error
}

// NewSourceExtractor wraps src. The track duration is filled in when src
// implements audio.FrameCounter.
func NewSourceExtractor(src audio.Source) (*SourceExtractor, error) {
	rate, ch := src.SampleRate(), src.Channels()
	if rate <= 0 || ch <= 0 {
		return nil, fmt.Errorf("%w: %d Hz, %d channels", audio.ErrUnsupportedFormat, rate, ch)
	}

	format := MediaFormat{
		MIME:         MIMERaw,
		SampleRate:   rate,
		Channels:     ch,
		MaxInputSize: DefaultUnitFrames * ch * 2,
	}
	if fc, ok := src.(audio.FrameCounter); ok {
		if n := fc.Frames(); n > 0 {
			format.DurationUs = n * 1_000_000 / int64(rate)
		}
	}

	return &SourceExtractor{
		src:    src,
		format: format,
		floats: make([]float32, DefaultUnitFrames*ch),
	}, nil
}

func (e *SourceExtractor) TrackCount() int { return 1 }

func (e *SourceExtractor) TrackFormat(track int) (MediaFormat, error) {
	if track != 0 {
		return MediaFormat{}, fmt.Errorf("%w: %d", ErrBadTrack, track)
	}
	return e.format, nil
}

func (e *SourceExtractor) SelectTrack(track int) error {
	if track != 0 {
		return fmt.Errorf("%w: %d", ErrBadTrack, track)
	}
	if !e.selected {
		e.selected = true
		return e.fill()
	}
	return nil
}

func (e *SourceExtractor) ReadSample(dst []byte) (int, error) {
	if !e.selected {
		return 0, fmt.Errorf("%w: no track selected", ErrBadTrack)
	}
	if e.err != nil {
		return 0, e.err
	}
	if len(e.unit) == 0 {
		return 0, io.EOF
	}
	if len(dst) < len(e.unit) {
		return 0, io.ErrShortBuffer
	}
	return copy(dst, e.unit), nil
}

// SampleTime returns the presentation time of the current unit in
// microseconds.
func (e *SourceExtractor) SampleTime() int64 {
	return e.frames * 1_000_000 / int64(e.format.SampleRate)
}

func (e *SourceExtractor) Advance() bool {
	if len(e.unit) == 0 {
		return false
	}
	e.frames += int64(len(e.unit) / e.format.BytesPerFrame())
	if err := e.fill(); err != nil {
		// Surfaced by the next ReadSample.
		e.err = err
		return false
	}
	return len(e.unit) > 0
}

func (e *SourceExtractor) Close() error {
	return e.src.Close()
}

// fill reads the next unit of whole frames from the source.
func (e *SourceExtractor) fill() error {
	e.unit = e.unit[:0]
	if e.done {
		return nil
	}

	ch := e.format.Channels
	got := 0
	for got < len(e.floats) {
		n, err := e.src.ReadSamples(e.floats[got:])
		got += n
		if errors.Is(err, io.EOF) {
			e.done = true
			break
		}
		if err != nil {
			return fmt.Errorf("codec: read source: %w", err)
		}
		if n == 0 {
			break
		}
	}
	got -= got % ch

	if cap(e.unit) < got*2 {
		e.unit = make([]byte, 0, len(e.floats)*2)
	}
	for _, f := range e.floats[:got] {
		v := utils.Float32ToPCM16(f)
		e.unit = append(e.unit, byte(v), byte(uint16(v)>>8))
	}
	return nil
}
