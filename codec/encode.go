// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"context"
	"fmt"

	"github.com/ik5/voxedit/audio"
)

// Encode encodes s with an encoder for format.MIME and writes the result
// through mux. The muxer is started on the encoder's first output format
// change and stopped once the encoder signals end of stream; releasing it
// is left to the caller.
func Encode(ctx context.Context, s *audio.Stream, f *Factory, mux Muxer, format MediaFormat, opts Options) error {
	opts = opts.withDefaults()
	if err := s.Validate(); err != nil {
		return err
	}
	format.SampleRate = s.SampleRate
	format.Channels = s.Channels

	enc, err := f.NewEncoder(format)
	if err != nil {
		return err
	}
	defer enc.Release()

	if err := enc.Start(); err != nil {
		return fmt.Errorf("%w: start encoder: %w", audio.ErrCodecSession, err)
	}

	m := encodeMachine{
		pcm:           s.PCM(),
		bytesPerFrame: s.Channels * 2,
		sampleRate:    int64(s.SampleRate),
		enc:           enc,
		mux:           mux,
		opts:          opts,
		track:         -1,
	}
	if err := m.run(ctx); err != nil {
		_ = enc.Stop()
		return err
	}
	if err := enc.Stop(); err != nil {
		return fmt.Errorf("%w: stop encoder: %w", audio.ErrCodecSession, err)
	}
	if err := mux.Stop(); err != nil {
		return fmt.Errorf("%w: stop muxer: %w", audio.ErrCodecSession, err)
	}
	return nil
}

type encodeMachine struct {
	pcm           []byte
	bytesPerFrame int
	sampleRate    int64
	consumed      int

	enc  Codec
	mux  Muxer
	opts Options

	inputDone  bool
	outputDone bool
	idle       int
	track      int
	started    bool
}

func (m *encodeMachine) run(ctx context.Context) error {
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

// presentationTimeUs derives the timestamp of the next input chunk from the
// bytes consumed so far.
func (m *encodeMachine) presentationTimeUs() int64 {
	return int64(m.consumed/m.bytesPerFrame) * 1_000_000 / m.sampleRate
}

func (m *encodeMachine) feed() error {
	idx, err := m.enc.DequeueInputBuffer(m.opts.PollTimeout)
	if err != nil {
		return fmt.Errorf("%w: dequeue input: %w", audio.ErrCodecSession, err)
	}
	if idx < 0 {
		return nil
	}

	pts := m.presentationTimeUs()
	remaining := len(m.pcm) - m.consumed
	if remaining == 0 {
		m.inputDone = true
		if err := m.enc.QueueInputBuffer(idx, 0, 0, pts, FlagEndOfStream); err != nil {
			return fmt.Errorf("%w: queue end of stream: %w", audio.ErrCodecSession, err)
		}
		return nil
	}

	buf := m.enc.InputBuffer(idx)
	n := min(len(buf), remaining)
	n -= n % m.bytesPerFrame
	if n == 0 {
		return fmt.Errorf("%w: %d bytes, frame is %d", ErrBufferTooSmall, len(buf), m.bytesPerFrame)
	}
	copy(buf, m.pcm[m.consumed:m.consumed+n])
	if err := m.enc.QueueInputBuffer(idx, 0, n, pts, 0); err != nil {
		return fmt.Errorf("%w: queue input: %w", audio.ErrCodecSession, err)
	}
	m.consumed += n
	return nil
}

func (m *encodeMachine) drain() error {
	var info BufferInfo
	idx, err := m.enc.DequeueOutputBuffer(&info, m.opts.PollTimeout)
	if err != nil {
		return fmt.Errorf("%w: dequeue output: %w", audio.ErrCodecSession, err)
	}

	switch {
	case idx == InfoOutputFormatChanged:
		if m.started {
			return ErrFormatChanged
		}
		out := m.enc.OutputFormat()
		m.track, err = m.mux.AddTrack(out)
		if err != nil {
			return fmt.Errorf("%w: add track: %w", audio.ErrCodecSession, err)
		}
		if err := m.mux.Start(); err != nil {
			return fmt.Errorf("%w: start muxer: %w", audio.ErrCodecSession, err)
		}
		m.started = true
		m.idle = 0
		m.opts.Logger.Debug("muxer started", "mime", out.MIME, "rate", out.SampleRate, "channels", out.Channels)
	case idx == InfoTryAgainLater:
		if !m.inputDone {
			return nil
		}
		m.idle++
		if m.idle >= m.opts.MaxIdlePolls {
			return ErrNoEndOfStream
		}
	case idx >= 0:
		m.idle = 0
		if info.CodecConfig() {
			// Configuration travels in the track format.
			info.Size = 0
		}
		if info.Size > 0 {
			if !m.started {
				_ = m.enc.ReleaseOutputBuffer(idx)
				return ErrMuxerNotStarted
			}
			data := m.enc.OutputBuffer(idx)
			if err := m.mux.WriteSampleData(m.track, data[info.Offset:info.Offset+info.Size], info); err != nil {
				_ = m.enc.ReleaseOutputBuffer(idx)
				return fmt.Errorf("%w: write sample: %w", audio.ErrCodecSession, err)
			}
		}
		if err := m.enc.ReleaseOutputBuffer(idx); err != nil {
			return fmt.Errorf("%w: release output: %w", audio.ErrCodecSession, err)
		}
		if info.EndOfStream() {
			if !m.started {
				return ErrMuxerNotStarted
			}
			m.outputDone = true
		}
	}
	return nil
}
