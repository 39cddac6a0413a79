// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// MIME is the track mime type of Opus audio.
const MIME = "audio/opus"

// SampleRate is the unit of Ogg granule positions and pre-skip, and the
// decode rate of streams that do not record a supported input rate.
const SampleRate = 48000

const headSize = 19

var (
	headMagic = []byte("OpusHead")
	tagsMagic = []byte("OpusTags")
)

// Head is the Opus identification header.
type Head struct {
	Version         uint8
	Channels        int
	PreSkip         uint16
	InputSampleRate uint32
	OutputGain      int16
	MappingFamily   uint8
}

// Bytes encodes the header. Version is always written as 1.
func (h Head) Bytes() []byte {
	b := make([]byte, headSize)
	copy(b, headMagic)
	b[8] = 1
	b[9] = byte(h.Channels)
	binary.LittleEndian.PutUint16(b[10:], h.PreSkip)
	binary.LittleEndian.PutUint32(b[12:], h.InputSampleRate)
	binary.LittleEndian.PutUint16(b[16:], uint16(h.OutputGain))
	b[18] = h.MappingFamily
	return b
}

// DecodeRate is the rate a stream is decoded at: the input rate recorded
// by the encoder when the decoder supports it, 48 kHz otherwise.
func (h Head) DecodeRate() int {
	if r := int(h.InputSampleRate); SupportedRate(r) {
		return r
	}
	return SampleRate
}

// ParseHead decodes an identification header packet.
func ParseHead(b []byte) (Head, error) {
	if len(b) < headSize || !bytes.Equal(b[:8], headMagic) {
		return Head{}, ErrNotOpus
	}
	h := Head{
		Version:         b[8],
		Channels:        int(b[9]),
		PreSkip:         binary.LittleEndian.Uint16(b[10:]),
		InputSampleRate: binary.LittleEndian.Uint32(b[12:]),
		OutputGain:      int16(binary.LittleEndian.Uint16(b[16:])),
		MappingFamily:   b[18],
	}
	// Major version 0 is the only one defined.
	if h.Version>>4 != 0 {
		return Head{}, fmt.Errorf("%w: version %d", ErrBadHead, h.Version)
	}
	if h.Channels == 0 {
		return Head{}, fmt.Errorf("%w: zero channels", ErrBadHead)
	}
	if h.MappingFamily != 0 {
		return Head{}, fmt.Errorf("%w: family %d", ErrUnsupportedMap, h.MappingFamily)
	}
	return h, nil
}

// TagsPacket builds an OpusTags packet with no user comments.
func TagsPacket(vendor string) []byte {
	b := make([]byte, 0, 16+len(vendor))
	b = append(b, tagsMagic...)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(vendor)))
	b = append(b, vendor...)
	return binary.LittleEndian.AppendUint32(b, 0)
}

func isTags(b []byte) bool {
	return len(b) >= 8 && bytes.Equal(b[:8], tagsMagic)
}

// frameSizes holds the frame duration in 48 kHz samples for each TOC
// configuration number.
var frameSizes = [32]int{
	// SILK NB, MB, WB: 10, 20, 40, 60 ms
	480, 960, 1920, 2880,
	480, 960, 1920, 2880,
	480, 960, 1920, 2880,
	// Hybrid SWB, FB: 10, 20 ms
	480, 960,
	480, 960,
	// CELT NB, WB, SWB, FB: 2.5, 5, 10, 20 ms
	120, 240, 480, 960,
	120, 240, 480, 960,
	120, 240, 480, 960,
	120, 240, 480, 960,
}

// PacketSamples returns the duration of a packet in 48 kHz samples, read
// from its table-of-contents byte.
func PacketSamples(packet []byte) (int, error) {
	if len(packet) == 0 {
		return 0, fmt.Errorf("%w: empty", ErrBadPacket)
	}
	toc := packet[0]
	size := frameSizes[toc>>3]

	var frames int
	switch toc & 0x03 {
	case 0:
		frames = 1
	case 1, 2:
		frames = 2
	default:
		if len(packet) < 2 {
			return 0, fmt.Errorf("%w: missing frame count", ErrBadPacket)
		}
		frames = int(packet[1] & 0x3F)
	}

	total := frames * size
	// At most 120 ms per packet.
	if frames == 0 || total > 5760 {
		return 0, fmt.Errorf("%w: %d frames of %d samples", ErrBadPacket, frames, size)
	}
	return total, nil
}
