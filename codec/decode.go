// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ik5/voxedit/audio"
)

const (
	DefaultPollTimeout  = 10 * time.Millisecond
	DefaultMaxIdlePolls = 50
)

// Options tune the decode and encode loops.
type Options struct {
	// PollTimeout bounds every dequeue call.
	PollTimeout time.Duration
	// MaxIdlePolls is the number of consecutive try-again polls tolerated
	// after input end of stream before the loop gives up on the codec.
	MaxIdlePolls int
	// Skip is the number of extra access units advanced past after each
	// fed unit while decoding.
	Skip   int
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.PollTimeout <= 0 {
		o.PollTimeout = DefaultPollTimeout
	}
	if o.MaxIdlePolls <= 0 {
		o.MaxIdlePolls = DefaultMaxIdlePolls
	}
	if o.Skip < 0 {
		o.Skip = 0
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Sink receives each decoded PCM buffer. The slice is only valid for the
// duration of the call.
type Sink func(pcm []byte, info BufferInfo) error

// Decode decodes the first audio track of ex into a Stream. Sample rate and
// channel count come from the track format.
func Decode(ctx context.Context, ex Extractor, f *Factory, opts Options) (*audio.Stream, error) {
	var s *audio.Stream
	format, err := DecodeTo(ctx, ex, f, opts, func(pcm []byte, _ BufferInfo) error {
		s.AppendPCM(pcm)
		return nil
	}, func(format MediaFormat) {
		capacity := 0
		if format.DurationUs > 0 {
			capacity = int(format.DurationUs * int64(format.SampleRate) / 1_000_000 * int64(format.Channels))
		}
		s = audio.NewStream(format.SampleRate, format.Channels, capacity)
	})
	if err != nil {
		return nil, err
	}

	// Drop a trailing partial frame left by a misbehaving decoder.
	if rem := len(s.Samples) % format.Channels; rem != 0 {
		s.Samples = s.Samples[:len(s.Samples)-rem]
	}
	return s, nil
}

// DecodeTo runs the decode loop, handing every output buffer to sink.
// onFormat, when non-nil, is called with the selected track format before
// the first buffer is fed.
func DecodeTo(ctx context.Context, ex Extractor, f *Factory, opts Options, sink Sink, onFormat func(MediaFormat)) (MediaFormat, error) {
	opts = opts.withDefaults()

	_, format, err := SelectAudioTrack(ex)
	if err != nil {
		return MediaFormat{}, err
	}
	if format.SampleRate <= 0 || format.Channels <= 0 {
		return MediaFormat{}, fmt.Errorf("%w: track declares %d Hz, %d channels", audio.ErrUnsupportedFormat, format.SampleRate, format.Channels)
	}
	if onFormat != nil {
		onFormat(format)
	}

	dec, err := f.NewDecoder(format)
	if err != nil {
		return MediaFormat{}, err
	}
	defer dec.Release()

	if err := dec.Start(); err != nil {
		return MediaFormat{}, fmt.Errorf("%w: start decoder: %w", audio.ErrCodecSession, err)
	}

	m := decodeMachine{ex: ex, dec: dec, opts: opts, sink: sink}
	if err := m.run(ctx); err != nil {
		_ = dec.Stop()
		return MediaFormat{}, err
	}
	if err := dec.Stop(); err != nil {
		return MediaFormat{}, fmt.Errorf("%w: stop decoder: %w", audio.ErrCodecSession, err)
	}
	return format, nil
}

type decodeMachine struct {
	ex   Extractor
	dec  Codec
	opts Options
	sink Sink

	inputDone  bool
	outputDone bool
	idle       int
	fed        int
}

func (m *decodeMachine) run(ctx context.Context) error {
	for !m.outputDone {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !m.inputDone {
			if err := m.feed(); err != nil {
				return err
			}
		}
		if err := m.drain(); err != nil {
			return err
		}
	}
	return nil
}

// feed hands the next access unit to the decoder, or end of stream once
// the extractor is exhausted.
func (m *decodeMachine) feed() error {
	idx, err := m.dec.DequeueInputBuffer(m.opts.PollTimeout)
	if err != nil {
		return fmt.Errorf("%w: dequeue input: %w", audio.ErrCodecSession, err)
	}
	if idx < 0 {
		return nil
	}

	buf := m.dec.InputBuffer(idx)
	n, err := m.ex.ReadSample(buf)
	if errors.Is(err, io.EOF) {
		m.inputDone = true
		m.opts.Logger.Debug("decoder input exhausted", "units", m.fed)
		if err := m.dec.QueueInputBuffer(idx, 0, 0, 0, FlagEndOfStream); err != nil {
			return fmt.Errorf("%w: queue end of stream: %w", audio.ErrCodecSession, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read sample: %w", audio.ErrCodecSession, err)
	}

	if err := m.dec.QueueInputBuffer(idx, 0, n, m.ex.SampleTime(), 0); err != nil {
		return fmt.Errorf("%w: queue input: %w", audio.ErrCodecSession, err)
	}
	m.fed++
	m.ex.Advance()
	for range m.opts.Skip {
		if !m.ex.Advance() {
			break
		}
	}
	return nil
}

func (m *decodeMachine) drain() error {
	var info BufferInfo
	idx, err := m.dec.DequeueOutputBuffer(&info, m.opts.PollTimeout)
	if err != nil {
		return fmt.Errorf("%w: dequeue output: %w", audio.ErrCodecSession, err)
	}

	switch {
	case idx == InfoOutputFormatChanged:
		out := m.dec.OutputFormat()
		m.opts.Logger.Debug("decoder output format changed", "mime", out.MIME, "rate", out.SampleRate, "channels", out.Channels)
		m.idle = 0
	case idx == InfoTryAgainLater:
		if !m.inputDone {
			return nil
		}
		m.idle++
		if m.idle >= m.opts.MaxIdlePolls {
			m.opts.Logger.Debug("decoder drained without end of stream flag", "polls", m.idle)
			m.outputDone = true
		}
	case idx >= 0:
		m.idle = 0
		if info.Size > 0 && m.sink != nil {
			data := m.dec.OutputBuffer(idx)
			if err := m.sink(data[info.Offset:info.Offset+info.Size], info); err != nil {
				_ = m.dec.ReleaseOutputBuffer(idx)
				return err
			}
		}
		if err := m.dec.ReleaseOutputBuffer(idx); err != nil {
			return fmt.Errorf("%w: release output: %w", audio.ErrCodecSession, err)
		}
		if info.EndOfStream() {
			m.outputDone = true
		}
	}
	return nil
}
