// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Header type flags.
const (
	FlagContinued = 0x01
	FlagBOS       = 0x02
	FlagEOS       = 0x04
)

const (
	headerSize  = 27
	maxSegments = 255
	// MaxPageData is the largest payload a single page can carry.
	MaxPageData = maxSegments * 255
)

var capturePattern = [4]byte{'O', 'g', 'g', 'S'}

// Page is one decoded Ogg page.
type Page struct {
	Flags    byte
	Granule  int64
	Serial   uint32
	Sequence uint32
	Segments []byte
	Data     []byte
}

func (p *Page) bytes() []byte {
	buf := make([]byte, headerSize+len(p.Segments)+len(p.Data))
	copy(buf, capturePattern[:])
	buf[4] = 0
	buf[5] = p.Flags
	binary.LittleEndian.PutUint64(buf[6:], uint64(p.Granule))
	binary.LittleEndian.PutUint32(buf[14:], p.Serial)
	binary.LittleEndian.PutUint32(buf[18:], p.Sequence)
	buf[26] = byte(len(p.Segments))
	copy(buf[headerSize:], p.Segments)
	copy(buf[headerSize+len(p.Segments):], p.Data)
	binary.LittleEndian.PutUint32(buf[22:], crcUpdate(0, buf))
	return buf
}

// ReadPage reads and verifies a single page.
func ReadPage(r io.Reader) (*Page, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	if [4]byte(hdr[:4]) != capturePattern {
		return nil, ErrBadCapture
	}
	if hdr[4] != 0 {
		return nil, ErrBadVersion
	}

	p := &Page{
		Flags:    hdr[5],
		Granule:  int64(binary.LittleEndian.Uint64(hdr[6:])),
		Serial:   binary.LittleEndian.Uint32(hdr[14:]),
		Sequence: binary.LittleEndian.Uint32(hdr[18:]),
		Segments: make([]byte, hdr[26]),
	}
	if _, err := io.ReadFull(r, p.Segments); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	size := 0
	for _, s := range p.Segments {
		size += int(s)
	}
	p.Data = make([]byte, size)
	if _, err := io.ReadFull(r, p.Data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
	}

	want := binary.LittleEndian.Uint32(hdr[22:])
	clear(hdr[22:26])
	crc := crcUpdate(0, hdr[:])
	crc = crcUpdate(crc, p.Segments)
	crc = crcUpdate(crc, p.Data)
	if crc != want {
		return nil, fmt.Errorf("%w: page %d", ErrBadChecksum, p.Sequence)
	}
	return p, nil
}
