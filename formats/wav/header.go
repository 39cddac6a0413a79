// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// HeaderSize is the length of the canonical header this package writes.
	HeaderSize = 44

	bytesPerSample = 2
	riffHeaderSize = 12
	chunkHeaderLen = 8

	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// Header describes a 16-bit PCM WAV file. DataOffset and DataSize locate the
// sample bytes of the data chunk within the file.
type Header struct {
	RIFFSize      uint32
	Channels      int
	SampleRate    int
	ByteRate      int
	BlockAlign    int
	BitsPerSample int
	DataOffset    int64
	DataSize      int64
}

// NewHeader returns the header of a canonical 44-byte file holding dataSize
// bytes of 16-bit samples.
func NewHeader(sampleRate, channels int, dataSize int64) Header {
	return Header{
		RIFFSize:      uint32(dataSize + HeaderSize - 8),
		Channels:      channels,
		SampleRate:    sampleRate,
		ByteRate:      sampleRate * channels * bytesPerSample,
		BlockAlign:    channels * bytesPerSample,
		BitsPerSample: 16,
		DataOffset:    HeaderSize,
		DataSize:      dataSize,
	}
}

// Bytes encodes h as a fresh 44-byte RIFF/WAVE header. The RIFF size is
// recomputed from DataSize.
func (h Header) Bytes() []byte {
	header := make([]byte, HeaderSize)

	// RIFF header (12 bytes)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(h.DataSize+HeaderSize-8))
	copy(header[8:12], "WAVE")

	// fmt chunk (24 bytes)
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(header[20:22], formatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(h.Channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(h.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(h.SampleRate*h.Channels*bytesPerSample))
	binary.LittleEndian.PutUint16(header[32:34], uint16(h.Channels*bytesPerSample))
	binary.LittleEndian.PutUint16(header[34:36], 16)

	// data chunk header (8 bytes)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(h.DataSize))

	return header
}

// Frames returns the number of sample frames in the data chunk.
func (h Header) Frames() int64 {
	if h.BlockAlign <= 0 {
		return 0
	}
	return h.DataSize / int64(h.BlockAlign)
}

// DurationMs returns the data chunk length in milliseconds, rounded down.
func (h Header) DurationMs() int64 {
	if h.ByteRate <= 0 {
		return 0
	}
	return h.DataSize * 1000 / int64(h.ByteRate)
}

// ByteOffset converts a time offset into a byte offset within the data chunk:
// floor(ms / 1000 * byteRate), rounded down to a multiple of BlockAlign so a
// cut never splits a frame. Negative offsets map to zero.
func (h Header) ByteOffset(ms int64) int64 {
	if ms <= 0 || h.BlockAlign <= 0 {
		return 0
	}
	off := ms * int64(h.ByteRate) / 1000
	return off - off%int64(h.BlockAlign)
}

// ReadHeader parses the RIFF header and walks the chunk list from offset 12
// until it finds the data chunk. Chunks other than "fmt " are skipped by their
// declared size, so metadata such as LIST or fact may appear anywhere before
// the samples. The returned DataSize is clamped to the bytes actually present
// and rounded down to whole frames.
//
// On return r is positioned at the first sample byte.
func ReadHeader(r io.ReadSeeker) (Header, error) {
	var h Header

	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return h, fmt.Errorf("wav: seek: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return h, fmt.Errorf("wav: seek: %w", err)
	}

	riff := make([]byte, riffHeaderSize)
	if _, err := io.ReadFull(r, riff); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return h, ErrNotWavFile
		}
		return h, fmt.Errorf("wav: read RIFF header: %w", err)
	}
	if !bytes.Equal(riff[0:4], []byte("RIFF")) || !bytes.Equal(riff[8:12], []byte("WAVE")) {
		return h, ErrNotWavFile
	}
	h.RIFFSize = binary.LittleEndian.Uint32(riff[4:8])

	var fmtFound bool
	offset := int64(riffHeaderSize)
	chunk := make([]byte, chunkHeaderLen)

	for {
		if _, err := io.ReadFull(r, chunk); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return h, ErrNoDataChunk
			}
			return h, fmt.Errorf("wav: read chunk header: %w", err)
		}
		id := string(chunk[0:4])
		chunkSize := int64(binary.LittleEndian.Uint32(chunk[4:8]))
		body := offset + chunkHeaderLen

		switch id {
		case "fmt ":
			if err := h.parseFmt(r, chunkSize); err != nil {
				return h, err
			}
			fmtFound = true

		case "data":
			if !fmtFound {
				return h, ErrNoFmtChunk
			}
			h.DataOffset = body
			h.DataSize = min(chunkSize, size-body)
			h.DataSize -= h.DataSize % int64(h.BlockAlign)
			return h, nil
		}

		// RIFF chunks are padded to an even length.
		offset = body + chunkSize + chunkSize%2
		if offset >= size {
			return h, ErrNoDataChunk
		}
		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			return h, fmt.Errorf("wav: seek: %w", err)
		}
	}
}

func (h *Header) parseFmt(r io.Reader, chunkSize int64) error {
	if chunkSize < 16 {
		return ErrUnsupportedWavLayout
	}
	fmtBody := make([]byte, 16)
	if _, err := io.ReadFull(r, fmtBody); err != nil {
		return ErrTruncated
	}

	audioFormat := binary.LittleEndian.Uint16(fmtBody[0:2])
	h.Channels = int(binary.LittleEndian.Uint16(fmtBody[2:4]))
	h.SampleRate = int(binary.LittleEndian.Uint32(fmtBody[4:8]))
	h.ByteRate = int(binary.LittleEndian.Uint32(fmtBody[8:12]))
	h.BlockAlign = int(binary.LittleEndian.Uint16(fmtBody[12:14]))
	h.BitsPerSample = int(binary.LittleEndian.Uint16(fmtBody[14:16]))

	if h.BitsPerSample != 16 {
		return ErrOnlyPCM16bitSupported
	}
	if audioFormat != formatPCM && audioFormat != formatExtensible {
		return ErrOnlyPCM16bitSupported
	}
	if h.Channels <= 0 || h.SampleRate <= 0 {
		return ErrUnsupportedWavLayout
	}

	// Trust the channel count over a missing or inconsistent blockAlign.
	h.BlockAlign = h.Channels * bytesPerSample
	h.ByteRate = h.SampleRate * h.BlockAlign
	return nil
}
