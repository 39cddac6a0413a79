// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"fmt"
	"io"
)

// Writer writes packets of one logical bitstream, one packet per page.
type Writer struct {
	w        io.Writer
	serial   uint32
	sequence uint32
}

func NewWriter(w io.Writer, serial uint32) *Writer {
	return &Writer{w: w, serial: serial}
}

// WritePacket writes packet on a fresh page. flags may carry FlagBOS or
// FlagEOS; granule is stored on the page that completes the packet, every
// earlier page of a split packet carries -1.
func (w *Writer) WritePacket(packet []byte, granule int64, flags byte) error {
	cont := false
	for {
		segs, n, done := lacing(packet)
		p := Page{
			Serial:   w.serial,
			Sequence: w.sequence,
			Segments: segs,
			Data:     packet[:n],
			Granule:  -1,
		}
		if cont {
			p.Flags |= FlagContinued
		}
		if w.sequence == 0 {
			p.Flags |= flags & FlagBOS
		}
		if done {
			p.Granule = granule
			p.Flags |= flags & FlagEOS
		}
		if _, err := w.w.Write(p.bytes()); err != nil {
			return fmt.Errorf("ogg: write page %d: %w", w.sequence, err)
		}
		w.sequence++
		if done {
			return nil
		}
		packet = packet[n:]
		cont = true
	}
}

// lacing returns the segment table for as much of packet as fits one page,
// the number of bytes it covers and whether the packet ends on this page.
func lacing(packet []byte) ([]byte, int, bool) {
	full := len(packet) / 255
	if full >= maxSegments {
		segs := make([]byte, maxSegments)
		for i := range segs {
			segs[i] = 255
		}
		// A packet of exactly MaxPageData bytes still needs a terminating
		// zero-length segment on the next page.
		return segs, MaxPageData, false
	}
	segs := make([]byte, full+1)
	for i := range full {
		segs[i] = 255
	}
	segs[full] = byte(len(packet) % 255)
	return segs, len(packet), true
}
