// SPDX-License-Identifier: EPL-2.0

package voxedit

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ik5/voxedit/audio"
	"github.com/ik5/voxedit/edit"
	"github.com/ik5/voxedit/formats/wav"
)

// transform decodes src, applies fn and writes the result to dst.
func (e *Engine) transform(ctx context.Context, src, dst string, fn func(*audio.Stream) (*audio.Stream, error)) error {
	if !e.writable(dst) {
		return fmt.Errorf("%w: %q", ErrUnsupportedOutput, filepath.Ext(dst))
	}
	s, err := e.Decode(ctx, src)
	if err != nil {
		return err
	}
	if fn != nil {
		if s, err = fn(s); err != nil {
			return err
		}
	}
	return e.stage(dst, []string{src}, func(f *os.File) error {
		return e.encode(ctx, s, dst, f)
	})
}

// copyWAV runs a byte level WAV edit from src into a staged dst.
func (e *Engine) copyWAV(src, dst string, fn func(r io.ReadSeeker, w io.Writer) (wav.Header, error)) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %q: %w", src, err)
	}
	defer in.Close()

	return e.stage(dst, []string{src}, func(f *os.File) error {
		bw := bufio.NewWriter(f)
		if _, err := fn(in, bw); err != nil {
			return err
		}
		return bw.Flush()
	})
}

func (e *Engine) bothWAV(src, dst string) bool {
	return e.kindOf(src) == kindWAV && e.kindOf(dst) == kindWAV
}

// Trim writes the [startMs, endMs) range of src to dst. Between WAV files
// the block-aligned data bytes are copied without decoding.
func (e *Engine) Trim(ctx context.Context, src, dst string, startMs, endMs int64) error {
	return e.run(ctx, "trim", func() error {
		if e.bothWAV(src, dst) {
			return e.copyWAV(src, dst, func(r io.ReadSeeker, w io.Writer) (wav.Header, error) {
				return wav.Trim(r, w, startMs, endMs)
			})
		}
		return e.transform(ctx, src, dst, func(s *audio.Stream) (*audio.Stream, error) {
			return edit.Slice(s, startMs, endMs)
		})
	})
}

// Excise writes src without its [startMs, endMs) range to dst.
func (e *Engine) Excise(ctx context.Context, src, dst string, startMs, endMs int64) error {
	return e.run(ctx, "excise", func() error {
		if e.bothWAV(src, dst) {
			return e.copyWAV(src, dst, func(r io.ReadSeeker, w io.Writer) (wav.Header, error) {
				return wav.Excise(r, w, startMs, endMs)
			})
		}
		return e.transform(ctx, src, dst, func(s *audio.Stream) (*audio.Stream, error) {
			return edit.Excise(s, startMs, endMs)
		})
	})
}

// TrimInPlace keeps only [startMs, endMs) of the file at path. A WAV file
// is rewritten in place with its header updated; other formats are
// re-encoded into a staged file renamed over the original.
func (e *Engine) TrimInPlace(ctx context.Context, path string, startMs, endMs int64) error {
	return e.run(ctx, "trim_in_place", func() error {
		if e.kindOf(path) != kindWAV {
			return e.transform(ctx, path, path, func(s *audio.Stream) (*audio.Stream, error) {
				return edit.Slice(s, startMs, endMs)
			})
		}
		if _, err := wav.TrimInPlace(path, startMs, endMs); err != nil {
			return err
		}
		if err := e.cache.Invalidate(path); err != nil {
			e.log.Warn("could not invalidate waveform cache", "path", path, "error", err)
		}
		return nil
	})
}

// ApplyGain scales src by gainDb decibels into dst.
func (e *Engine) ApplyGain(ctx context.Context, src, dst string, gainDb float64) error {
	return e.run(ctx, "gain", func() error {
		return e.transform(ctx, src, dst, func(s *audio.Stream) (*audio.Stream, error) {
			return edit.Gain(s, gainDb), nil
		})
	})
}

// Normalize scales src so its peak reaches targetPeak of full scale. A
// targetPeak of zero selects the engine default.
func (e *Engine) Normalize(ctx context.Context, src, dst string, targetPeak float64) error {
	if targetPeak == 0 {
		targetPeak = e.targetPeak
	}
	return e.run(ctx, "normalize", func() error {
		return e.transform(ctx, src, dst, func(s *audio.Stream) (*audio.Stream, error) {
			return edit.Normalize(s, targetPeak)
		})
	})
}

// Fade applies linear fade-in and fade-out ramps.
func (e *Engine) Fade(ctx context.Context, src, dst string, fadeInMs, fadeOutMs int64) error {
	return e.run(ctx, "fade", func() error {
		if fadeInMs < 0 || fadeOutMs < 0 {
			return fmt.Errorf("%w: negative fade", audio.ErrInvalidRange)
		}
		return e.transform(ctx, src, dst, func(s *audio.Stream) (*audio.Stream, error) {
			return edit.Fade(s, fadeInMs, fadeOutMs), nil
		})
	})
}

// Convert re-encodes src into the container selected by dst's extension.
func (e *Engine) Convert(ctx context.Context, src, dst string) error {
	return e.run(ctx, "convert", func() error {
		return e.transform(ctx, src, dst, nil)
	})
}

// Duration returns the length of the file at path in milliseconds. Headers
// and track metadata are used when they carry it; otherwise the file is
// decoded.
func (e *Engine) Duration(ctx context.Context, path string) (int64, error) {
	var ms int64
	err := e.run(ctx, "duration", func() error {
		if e.kindOf(path) == kindWAV {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %q: %w", path, err)
			}
			defer f.Close()
			h, err := wav.ReadHeader(f)
			if err != nil {
				return err
			}
			ms = h.DurationMs()
			return nil
		}

		ex, err := e.openExtractor(path)
		if err != nil {
			return err
		}
		format, ferr := ex.TrackFormat(0)
		ex.Close()
		if ferr == nil && format.DurationUs > 0 {
			ms = format.DurationUs / 1000
			return nil
		}

		s, err := e.Decode(ctx, path)
		if err != nil {
			return err
		}
		ms = s.DurationMs()
		return nil
	})
	return ms, err
}
