// SPDX-License-Identifier: EPL-2.0

package voxedit

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ik5/voxedit/audio"
	"github.com/ik5/voxedit/codec"
	"github.com/ik5/voxedit/formats/opus"
	"github.com/ik5/voxedit/formats/wav"
)

// Decode reads the whole file at path into a PCM stream.
func (e *Engine) Decode(ctx context.Context, path string) (*audio.Stream, error) {
	switch e.kindOf(path) {
	case kindWAV:
		s, _, err := wav.ReadFile(path)
		return s, err
	case kindDecodeOnly:
		return e.collect(path)
	}

	ex, err := e.openExtractor(path)
	if err != nil {
		return nil, err
	}
	defer ex.Close()
	return codec.Decode(ctx, ex, e.factory, e.codecOpts)
}

// collect drains a registry decoder. Its samples are PCM already, so the
// codec bridge would only pass them through.
func (e *Engine) collect(path string) (*audio.Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	dec, _ := e.registry.Get(filepath.Ext(path))
	src, err := dec.Decode(f)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return audio.Collect(src, src.BufSize())
}

// openExtractor opens path as a codec track. The returned extractor owns
// the file.
func (e *Engine) openExtractor(path string) (codec.Extractor, error) {
	k := e.kindOf(path)
	if k == kindUnknown {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedInput, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}

	if k == kindOpus || k == kindOgg {
		ex, err := opus.NewExtractor(f)
		if err == nil {
			return &fileExtractor{Extractor: ex, f: f}, nil
		}
		if k == kindOpus || !errors.Is(err, opus.ErrNotOpus) {
			f.Close()
			return nil, err
		}
		// Ogg but not Opus: try Vorbis from the start.
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return nil, fmt.Errorf("seek %q: %w", path, err)
		}
	}

	dec, _ := e.registry.Get(filepath.Ext(path))
	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	ex, err := codec.NewSourceExtractor(src)
	if err != nil {
		src.Close()
		f.Close()
		return nil, err
	}
	return &fileExtractor{Extractor: ex, f: f}, nil
}

// fileExtractor closes the underlying file with the extractor.
type fileExtractor struct {
	codec.Extractor
	f *os.File
}

func (x *fileExtractor) Close() error {
	err := x.Extractor.Close()
	if cerr := x.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// encode writes s to w in the container selected by dst's extension.
func (e *Engine) encode(ctx context.Context, s *audio.Stream, dst string, w io.Writer) error {
	bw := bufio.NewWriter(w)
	var err error
	switch e.kindOf(dst) {
	case kindWAV:
		err = wav.Write(bw, s)
	case kindOpus, kindOgg:
		err = e.encodeOpus(ctx, s, bw)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedOutput, filepath.Ext(dst))
	}
	if err != nil {
		return err
	}
	return bw.Flush()
}

// encodeOpus brings s to a layout Opus accepts and encodes it through the
// codec bridge.
func (e *Engine) encodeOpus(ctx context.Context, s *audio.Stream, w io.Writer) error {
	rate, ch := s.SampleRate, s.Channels
	if !opus.SupportedRate(rate) {
		rate = opus.SampleRate
	}
	if ch > 2 {
		ch = 1
	}
	if rate != s.SampleRate || ch != s.Channels {
		e.log.Debug("adapting stream for opus", "from_rate", s.SampleRate, "from_channels", s.Channels, "rate", rate, "channels", ch)
		var err error
		if s, err = audio.Convert(s, rate, ch); err != nil {
			return err
		}
	}

	mux := opus.NewMuxer(w, uuid.New().ID())
	defer mux.Release()
	return codec.Encode(ctx, s, e.factory, mux, codec.MediaFormat{MIME: opus.MIME, BitRate: e.bitrate}, e.codecOpts)
}

// Encode writes s to dst, choosing WAV or Ogg Opus by extension.
func (e *Engine) Encode(ctx context.Context, s *audio.Stream, dst string) error {
	return e.run(ctx, "encode", func() error {
		if !e.writable(dst) {
			return fmt.Errorf("%w: %q", ErrUnsupportedOutput, filepath.Ext(dst))
		}
		return e.stage(dst, nil, func(f *os.File) error {
			return e.encode(ctx, s, dst, f)
		})
	})
}
