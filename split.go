// SPDX-License-Identifier: EPL-2.0

package voxedit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/voxedit/audio"
	"github.com/ik5/voxedit/edit"
	"github.com/ik5/voxedit/formats/wav"
	"github.com/ik5/voxedit/silence"
)

// Segments decodes src and returns its non-silent ranges.
func (e *Engine) Segments(ctx context.Context, src string) ([]silence.Segment, error) {
	var segs []silence.Segment
	err := e.run(ctx, "segments", func() error {
		s, err := e.Decode(ctx, src)
		if err != nil {
			return err
		}
		segs = silence.Segments(s, e.silence)
		return nil
	})
	return segs, err
}

// partPath names the n-th segment file of src inside dir.
func partPath(src, dir string, n int, ext string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(dir, fmt.Sprintf("%s_part%02d%s", base, n, ext))
}

// SplitOnSilence writes every non-silent segment of src into dstDir as
// <base>_partNN.<ext> and returns the paths in order. WAV sources are cut
// by byte range; other sources are re-encoded as Ogg Opus, or kept as
// .ogg/.opus when they already are. If any part fails, the parts already
// written are removed.
func (e *Engine) SplitOnSilence(ctx context.Context, src, dstDir string) ([]string, error) {
	var paths []string
	err := e.run(ctx, "split", func() error {
		s, err := e.Decode(ctx, src)
		if err != nil {
			return err
		}
		segs := silence.Segments(s, e.silence)
		if len(segs) == 0 {
			return ErrNoSegments
		}

		ext := strings.ToLower(filepath.Ext(src))
		if !e.writable(src) {
			ext = CompressedOutput.Ext()
		}

		if err := os.MkdirAll(dstDir, 0o755); err != nil {
			return fmt.Errorf("create %q: %w", dstDir, err)
		}

		var in *os.File
		if e.kindOf(src) == kindWAV {
			if in, err = os.Open(src); err != nil {
				return fmt.Errorf("open %q: %w", src, err)
			}
			defer in.Close()
		}

		for i, seg := range segs {
			if err := ctx.Err(); err != nil {
				return errors.Join(err, removeAll(paths))
			}
			dst := partPath(src, dstDir, i+1, ext)
			if err := e.writeSegment(ctx, s, in, seg, dst); err != nil {
				return errors.Join(fmt.Errorf("segment %s: %w", seg, err), removeAll(paths))
			}
			paths = append(paths, dst)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// writeSegment writes one segment. When in is set the source is a WAV file
// and its bytes are copied directly.
func (e *Engine) writeSegment(ctx context.Context, s *audio.Stream, in io.ReadSeeker, seg silence.Segment, dst string) error {
	if in != nil {
		return e.stage(dst, nil, func(f *os.File) error {
			_, err := wav.Trim(in, f, seg.StartMs, seg.EndMs)
			return err
		})
	}
	part, err := edit.Slice(s, seg.StartMs, seg.EndMs)
	if err != nil {
		return err
	}
	return e.stage(dst, nil, func(f *os.File) error {
		return e.encode(ctx, part, dst, f)
	})
}

func removeAll(paths []string) error {
	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
