// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"fmt"
	"io"
	"strings"

	"github.com/ik5/voxedit/codec"
	"github.com/ik5/voxedit/formats/ogg"
)

// Vendor is written into the OpusTags header.
const Vendor = "voxedit"

// Muxer writes one Opus track as an Ogg stream, one packet per page.
// Granule positions advance by the duration encoded in each packet's TOC.
type Muxer struct {
	w       *ogg.Writer
	format  codec.MediaFormat
	tracks  int
	started bool
	stopped bool

	granule int64
	pending []byte
}

func NewMuxer(w io.Writer, serial uint32) *Muxer {
	return &Muxer{w: ogg.NewWriter(w, serial)}
}

func (m *Muxer) AddTrack(format codec.MediaFormat) (int, error) {
	if m.started || m.tracks > 0 {
		return -1, ErrTrackCount
	}
	if !strings.EqualFold(format.MIME, MIME) {
		return -1, fmt.Errorf("%w: %q", codec.ErrNoCodec, format.MIME)
	}
	m.format = format
	m.tracks++
	return 0, nil
}

// Start writes the identification and comment header pages. The
// identification header is taken from the track's codec specific data when
// present.
func (m *Muxer) Start() error {
	if m.tracks == 0 || m.started {
		return ErrMuxerState
	}

	head := Head{Channels: m.format.Channels, InputSampleRate: uint32(m.format.SampleRate)}
	if len(m.format.CSD) > 0 {
		h, err := ParseHead(m.format.CSD[0])
		if err != nil {
			return err
		}
		head = h
	}
	if head.Channels < 1 || head.Channels > 2 {
		return ErrChannels
	}

	if err := m.w.WritePacket(head.Bytes(), 0, ogg.FlagBOS); err != nil {
		return err
	}
	if err := m.w.WritePacket(TagsPacket(Vendor), 0, 0); err != nil {
		return err
	}
	m.granule = 0
	m.started = true
	return nil
}

func (m *Muxer) WriteSampleData(track int, data []byte, _ codec.BufferInfo) error {
	if !m.started || m.stopped {
		return ErrMuxerState
	}
	if track != 0 {
		return fmt.Errorf("%w: %d", codec.ErrBadTrack, track)
	}
	n, err := PacketSamples(data)
	if err != nil {
		return err
	}

	// Hold one packet back so the last page can carry the EOS flag.
	if err := m.flush(0); err != nil {
		return err
	}
	m.granule += int64(n)
	m.pending = append(m.pending[:0], data...)
	return nil
}

func (m *Muxer) flush(flags byte) error {
	if len(m.pending) == 0 {
		return nil
	}
	if err := m.w.WritePacket(m.pending, m.granule, flags); err != nil {
		return err
	}
	m.pending = m.pending[:0]
	return nil
}

// Stop writes the final page.
func (m *Muxer) Stop() error {
	if !m.started {
		return ErrMuxerState
	}
	if m.stopped {
		return nil
	}
	m.stopped = true
	if len(m.pending) == 0 {
		// An empty packet only carries the end of stream.
		return m.w.WritePacket(nil, m.granule, ogg.FlagEOS)
	}
	return m.flush(ogg.FlagEOS)
}

func (m *Muxer) Release() error { return nil }

// Granule returns the granule position of the last written packet.
func (m *Muxer) Granule() int64 { return m.granule }
