// SPDX-License-Identifier: EPL-2.0

package voxedit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/ik5/voxedit/audio"
	"github.com/ik5/voxedit/codec"
	"github.com/ik5/voxedit/edit"
	"github.com/ik5/voxedit/formats/aiff"
	"github.com/ik5/voxedit/formats/mp3"
	"github.com/ik5/voxedit/formats/opus"
	"github.com/ik5/voxedit/formats/vorbis"
	"github.com/ik5/voxedit/formats/wav"
	"github.com/ik5/voxedit/internal/observe"
	"github.com/ik5/voxedit/silence"
	"github.com/ik5/voxedit/waveform"
)

// DefaultOpusBitrate suits mono speech.
const DefaultOpusBitrate = 32000

// Options configure an Engine. The zero value is usable.
type Options struct {
	Logger *slog.Logger
	// MeterProvider receives engine metrics; nil disables them.
	MeterProvider metric.MeterProvider
	// Cache stores waveform envelopes; nil selects a FileCache.
	Cache waveform.Cache

	Codec    codec.Options
	Silence  silence.Options
	Waveform waveform.Options

	// TargetPeak is the default Normalize target, a fraction of full
	// scale.
	TargetPeak  float64
	OpusBitrate int
}

// Engine runs file level operations. Create it with New.
type Engine struct {
	log      *slog.Logger
	metrics  *observe.Metrics
	cache    waveform.Cache
	factory  *codec.Factory
	registry *audio.Registry

	codecOpts  codec.Options
	silence    silence.Options
	waveform   waveform.Options
	targetPeak float64
	bitrate    int
}

// New returns an engine with every supported format registered.
func New(opts Options) *Engine {
	e := &Engine{
		log:        opts.Logger,
		cache:      opts.Cache,
		factory:    codec.NewFactory(),
		registry:   audio.NewRegistry(),
		codecOpts:  opts.Codec,
		silence:    opts.Silence,
		waveform:   opts.Waveform,
		targetPeak: opts.TargetPeak,
		bitrate:    opts.OpusBitrate,
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	e.codecOpts.Logger = e.log

	var err error
	if e.metrics, err = observe.NewMetrics(opts.MeterProvider); err != nil {
		e.log.Warn("metrics disabled", "error", err)
		e.metrics = observe.Noop()
	}
	if e.cache == nil {
		e.cache = waveform.NewFileCache()
	}
	if e.targetPeak <= 0 {
		e.targetPeak = edit.DefaultTargetPeak
	}
	if e.bitrate <= 0 {
		e.bitrate = DefaultOpusBitrate
	}

	opus.Register(e.factory)
	e.registry.Register("wav", wav.Decoder{})
	e.registry.Register("mp3", mp3.Decoder{})
	e.registry.Register("ogg", vorbis.Decoder{})
	e.registry.Register("oga", vorbis.Decoder{})
	e.registry.Register("aiff", aiff.Decoder{})
	e.registry.Register("aif", aiff.Decoder{})
	return e
}

// Formats lists the extensions the engine can read.
func (e *Engine) Formats() []string {
	formats := append(e.registry.Formats(), "opus")
	slices.Sort(formats)
	return formats
}

// Cache returns the waveform cache.
func (e *Engine) Cache() waveform.Cache { return e.cache }

// kind of file selected by extension.
type kind int

const (
	kindUnknown kind = iota
	kindWAV
	kindOpus
	kindOgg // Opus or Vorbis, sniffed on open
	kindDecodeOnly
)

func (e *Engine) kindOf(path string) kind {
	ext := audio.FormatKey(filepath.Ext(path))
	switch ext {
	case "wav":
		return kindWAV
	case "opus":
		return kindOpus
	case "ogg", "oga":
		return kindOgg
	}
	if _, ok := e.registry.Get(ext); ok {
		return kindDecodeOnly
	}
	return kindUnknown
}

// writable reports whether the engine can produce path.
func (e *Engine) writable(path string) bool {
	switch e.kindOf(path) {
	case kindWAV, kindOpus, kindOgg:
		return true
	}
	return false
}

// run wraps an operation with logging and metrics.
func (e *Engine) run(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	err := fn()
	e.metrics.RecordOperation(ctx, op, start, err)
	if err != nil {
		e.log.Debug("operation failed", "op", op, "error", err, "elapsed", time.Since(start))
		return fmt.Errorf("voxedit: %s: %w", op, err)
	}
	e.log.Debug("operation finished", "op", op, "elapsed", time.Since(start))
	return nil
}

// stage writes dst through a temporary file in the same directory and
// renames it into place once fn succeeds. On failure the temporary file is
// removed, and so is dst unless it is one of srcs.
func (e *Engine) stage(dst string, srcs []string, fn func(f *os.File) error) error {
	tmp := fmt.Sprintf("%s.%s.tmp", dst, uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %q: %w", tmp, err)
	}

	err = fn(f)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, dst)
	}
	if err != nil {
		_ = os.Remove(tmp)
		if !sameFile(dst, srcs) {
			if rerr := os.Remove(dst); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
				e.log.Warn("could not remove failed output", "path", dst, "error", rerr)
			}
		}
		return err
	}

	if ierr := e.cache.Invalidate(dst); ierr != nil {
		e.log.Warn("could not invalidate waveform cache", "path", dst, "error", ierr)
	}
	return nil
}

func sameFile(path string, others []string) bool {
	a, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, o := range others {
		if b, err := filepath.Abs(o); err == nil && a == b {
			return true
		}
	}
	return false
}
