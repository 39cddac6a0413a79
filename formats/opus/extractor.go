// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/voxedit/codec"
	"github.com/ik5/voxedit/formats/ogg"
)

const minInputSize = 1500

type packet struct {
	data []byte
	// start is the position of the first sample in 48 kHz samples,
	// before pre-skip is removed.
	start int64
}

// Extractor exposes the audio packets of an Ogg Opus stream as a single
// track. The stream is read completely by NewExtractor.
type Extractor struct {
	head     Head
	packets  []packet
	total    int64
	maxSize  int
	pos      int
	selected bool
}

func NewExtractor(r io.Reader) (*Extractor, error) {
	or := ogg.NewReader(r)

	first, err := or.ReadPacket()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNotOpus
		}
		return nil, fmt.Errorf("opus: read head: %w", err)
	}
	head, err := ParseHead(first.Data)
	if err != nil {
		return nil, err
	}

	tags, err := or.ReadPacket()
	if err != nil || !isTags(tags.Data) {
		return nil, ErrMissingTags
	}

	e := &Extractor{head: head, maxSize: minInputSize}
	for {
		p, err := or.ReadPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("opus: read packet %d: %w", len(e.packets), err)
		}
		if len(p.Data) == 0 {
			continue
		}
		n, err := PacketSamples(p.Data)
		if err != nil {
			return nil, fmt.Errorf("opus: packet %d: %w", len(e.packets), err)
		}
		e.packets = append(e.packets, packet{data: p.Data, start: e.total})
		e.total += int64(n)
		e.maxSize = max(e.maxSize, len(p.Data))
	}
	return e, nil
}

func (e *Extractor) Head() Head { return e.head }

// Samples returns the stream length in 48 kHz samples per channel, with
// pre-skip removed.
func (e *Extractor) Samples() int64 {
	return max(e.total-int64(e.head.PreSkip), 0)
}

func (e *Extractor) TrackCount() int { return 1 }

func (e *Extractor) TrackFormat(track int) (codec.MediaFormat, error) {
	if track != 0 {
		return codec.MediaFormat{}, fmt.Errorf("%w: %d", codec.ErrBadTrack, track)
	}
	return codec.MediaFormat{
		MIME:         MIME,
		SampleRate:   e.head.DecodeRate(),
		Channels:     e.head.Channels,
		DurationUs:   e.Samples() * 1_000_000 / SampleRate,
		MaxInputSize: e.maxSize,
		CSD:          [][]byte{e.head.Bytes()},
	}, nil
}

func (e *Extractor) SelectTrack(track int) error {
	if track != 0 {
		return fmt.Errorf("%w: %d", codec.ErrBadTrack, track)
	}
	e.selected = true
	return nil
}

func (e *Extractor) ReadSample(dst []byte) (int, error) {
	if !e.selected {
		return 0, fmt.Errorf("%w: no track selected", codec.ErrBadTrack)
	}
	if e.pos >= len(e.packets) {
		return 0, io.EOF
	}
	p := e.packets[e.pos].data
	if len(dst) < len(p) {
		return 0, io.ErrShortBuffer
	}
	return copy(dst, p), nil
}

func (e *Extractor) SampleTime() int64 {
	if e.pos >= len(e.packets) {
		return -1
	}
	t := e.packets[e.pos].start - int64(e.head.PreSkip)
	return max(t, 0) * 1_000_000 / SampleRate
}

func (e *Extractor) Advance() bool {
	if e.pos < len(e.packets) {
		e.pos++
	}
	return e.pos < len(e.packets)
}

func (e *Extractor) Close() error { return nil }
