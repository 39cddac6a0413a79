// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"os"
)

// Range is a block-aligned byte range inside a data chunk.
type Range struct {
	Start int64
	End   int64
}

// Len returns the number of bytes in the range.
func (r Range) Len() int64 { return r.End - r.Start }

// AlignedRange converts [startMs, endMs) into data chunk byte offsets. Both
// ends are rounded down to the block boundary and the end is clamped to the
// chunk size.
func (h Header) AlignedRange(startMs, endMs int64) Range {
	return Range{
		Start: min(h.ByteOffset(startMs), h.DataSize),
		End:   min(h.ByteOffset(endMs), h.DataSize),
	}
}

// Trim copies the data bytes of [startMs, endMs) from r into w under a fresh
// header sized to the copied length. It returns the header written to w.
func Trim(r io.ReadSeeker, w io.Writer, startMs, endMs int64) (Header, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return Header{}, err
	}

	rng := h.AlignedRange(startMs, endMs)
	if rng.Len() <= 0 {
		return Header{}, fmt.Errorf("%w: trim %d-%d ms", ErrEmptyRange, startMs, endMs)
	}

	out := NewHeader(h.SampleRate, h.Channels, rng.Len())
	if _, err := w.Write(out.Bytes()); err != nil {
		return Header{}, fmt.Errorf("wav: write header: %w", err)
	}
	if err := copySection(r, w, h.DataOffset+rng.Start, rng.Len()); err != nil {
		return Header{}, err
	}
	return out, nil
}

// Excise copies everything except [startMs, endMs): bytes [0, start) followed
// by [end, chunkSize). It fails with ErrEmptyRange when the aligned end does
// not lie after the aligned start.
func Excise(r io.ReadSeeker, w io.Writer, startMs, endMs int64) (Header, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return Header{}, err
	}

	rng := h.AlignedRange(startMs, endMs)
	if rng.End <= rng.Start {
		return Header{}, fmt.Errorf("%w: excise %d-%d ms", ErrEmptyRange, startMs, endMs)
	}

	out := NewHeader(h.SampleRate, h.Channels, h.DataSize-rng.Len())
	if _, err := w.Write(out.Bytes()); err != nil {
		return Header{}, fmt.Errorf("wav: write header: %w", err)
	}
	if err := copySection(r, w, h.DataOffset, rng.Start); err != nil {
		return Header{}, err
	}
	if err := copySection(r, w, h.DataOffset+rng.End, h.DataSize-rng.End); err != nil {
		return Header{}, err
	}
	return out, nil
}

func copySection(r io.ReadSeeker, w io.Writer, offset, n int64) error {
	if n <= 0 {
		return nil
	}
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("wav: seek: %w", err)
	}
	if _, err := io.CopyN(w, r, n); err != nil {
		return fmt.Errorf("wav: copy %d bytes: %w", n, err)
	}
	return nil
}

// RewriteHeader recomputes the RIFF and data sizes from the current length of
// f and overwrites the first 44 bytes with a canonical header. The samples
// must already start at offset 44.
func RewriteHeader(f *os.File, sampleRate, channels int) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("wav: stat: %w", err)
	}
	if info.Size() < HeaderSize {
		return ErrTruncated
	}

	h := NewHeader(sampleRate, channels, info.Size()-HeaderSize)
	if _, err := f.WriteAt(h.Bytes(), 0); err != nil {
		return fmt.Errorf("wav: rewrite header: %w", err)
	}
	return nil
}

// TrimInPlace keeps only [startMs, endMs) of the WAV at path. The kept bytes
// are moved down to offset 44, the file is truncated and its header is
// rewritten in place. Any chunks that preceded the data are dropped.
func TrimInPlace(path string, startMs, endMs int64) (Header, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return Header{}, fmt.Errorf("wav: open %q: %w", path, err)
	}
	defer f.Close()

	h, err := ReadHeader(f)
	if err != nil {
		return Header{}, err
	}
	rng := h.AlignedRange(startMs, endMs)
	if rng.Len() <= 0 {
		return Header{}, fmt.Errorf("%w: trim %d-%d ms", ErrEmptyRange, startMs, endMs)
	}

	// The destination never overtakes the source: HeaderSize <= DataOffset.
	buf := make([]byte, 64*1024)
	src := h.DataOffset + rng.Start
	dst := int64(HeaderSize)
	for remaining := rng.Len(); remaining > 0; {
		n := int(min(int64(len(buf)), remaining))
		if _, err := f.ReadAt(buf[:n], src); err != nil {
			return Header{}, fmt.Errorf("wav: read at %d: %w", src, err)
		}
		if _, err := f.WriteAt(buf[:n], dst); err != nil {
			return Header{}, fmt.Errorf("wav: write at %d: %w", dst, err)
		}
		src += int64(n)
		dst += int64(n)
		remaining -= int64(n)
	}

	if err := f.Truncate(HeaderSize + rng.Len()); err != nil {
		return Header{}, fmt.Errorf("wav: truncate: %w", err)
	}
	if err := RewriteHeader(f, h.SampleRate, h.Channels); err != nil {
		return Header{}, err
	}
	if err := f.Sync(); err != nil {
		return Header{}, fmt.Errorf("wav: sync: %w", err)
	}
	return NewHeader(h.SampleRate, h.Channels, rng.Len()), nil
}
