// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ik5/voxedit/audio"
)

// Read loads the whole data chunk of a 16-bit PCM WAV into memory.
func Read(r io.ReadSeeker) (*audio.Stream, Header, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, h, err
	}

	pcm := make([]byte, h.DataSize)
	if _, err := io.ReadFull(r, pcm); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, h, ErrTruncated
		}
		return nil, h, fmt.Errorf("wav: read data: %w", err)
	}

	s := audio.NewStream(h.SampleRate, h.Channels, len(pcm)/2)
	s.AppendPCM(pcm)
	return s, h, nil
}

// ReadFile is Read on the file at path.
func ReadFile(path string) (*audio.Stream, Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Header{}, fmt.Errorf("wav: open %q: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}

// Write emits a fresh 44-byte header followed by the samples of s.
func Write(w io.Writer, s *audio.Stream) error {
	if err := s.Validate(); err != nil {
		return err
	}

	h := NewHeader(s.SampleRate, s.Channels, int64(len(s.Samples))*bytesPerSample)
	if _, err := w.Write(h.Bytes()); err != nil {
		return fmt.Errorf("wav: write header: %w", err)
	}
	return writeSamples(w, s.Samples)
}

// WriteFile creates (or truncates) path and writes s to it.
func WriteFile(path string, s *audio.Stream) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wav: create %q: %w", path, err)
	}

	bw := bufio.NewWriter(f)
	if err := Write(bw, s); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("wav: flush %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("wav: close %q: %w", path, err)
	}
	return nil
}

func writeSamples(w io.Writer, samples []int16) error {
	if len(samples) == 0 {
		return nil
	}

	// Write 8K samples at a time
	const chunkSize = 8192
	buf := make([]byte, min(len(samples), chunkSize)*bytesPerSample)

	for i := 0; i < len(samples); i += chunkSize {
		chunk := samples[i:min(i+chunkSize, len(samples))]
		buf = buf[:len(chunk)*bytesPerSample]

		for j, s := range chunk {
			binary.LittleEndian.PutUint16(buf[j*2:j*2+2], uint16(s))
		}

		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("wav: write samples: %w", err)
		}
	}

	return nil
}
