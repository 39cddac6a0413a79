// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/voxedit/audio"
	"github.com/ik5/voxedit/internal/audiotest"
)

type muxedSample struct {
	data []byte
	info BufferInfo
}

type fakeMuxer struct {
	tracks   []MediaFormat
	starts   int
	stopped  bool
	released bool
	samples  []muxedSample
}

func (m *fakeMuxer) AddTrack(f MediaFormat) (int, error) {
	m.tracks = append(m.tracks, f)
	return len(m.tracks) - 1, nil
}

func (m *fakeMuxer) Start() error { m.starts++; return nil }

func (m *fakeMuxer) WriteSampleData(track int, data []byte, info BufferInfo) error {
	m.samples = append(m.samples, muxedSample{data: append([]byte(nil), data...), info: info})
	return nil
}

func (m *fakeMuxer) Stop() error    { m.stopped = true; return nil }
func (m *fakeMuxer) Release() error { m.released = true; return nil }

func (m *fakeMuxer) payload() []byte {
	var out []byte
	for _, s := range m.samples {
		out = append(out, s.data...)
	}
	return out
}

func rampStream(rate, channels, frames int) *audio.Stream {
	s := audio.NewStream(rate, channels, frames*channels)
	for i := range frames * channels {
		s.Samples = append(s.Samples, int16(i%2000-1000))
	}
	return s
}

func TestEncodeRawPassThrough(t *testing.T) {
	t.Parallel()

	s := rampStream(1000, 2, 1000)
	mux := &fakeMuxer{}
	err := Encode(context.Background(), s, NewFactory(), mux,
		MediaFormat{MIME: MIMERaw, MaxInputSize: 402}, Options{})
	require.NoError(t, err)

	require.Len(t, mux.tracks, 1)
	assert.Equal(t, 1, mux.starts)
	assert.True(t, mux.stopped)
	assert.False(t, mux.released, "release belongs to the caller")
	assert.Equal(t, s.PCM(), mux.payload())

	// 402 rounds down to 400 bytes, 100 stereo frames per chunk at 1 kHz.
	for i, smp := range mux.samples {
		assert.Equal(t, 400, len(smp.data), "chunk %d", i)
		assert.Equal(t, int64(i)*100_000, smp.info.PresentationTimeUs, "chunk %d", i)
	}
}

func TestEncodeEmptyStream(t *testing.T) {
	t.Parallel()

	mux := &fakeMuxer{}
	err := Encode(context.Background(), audio.NewStream(8000, 1, 0), NewFactory(), mux, MediaFormat{MIME: MIMERaw}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, mux.starts)
	assert.Empty(t, mux.samples)
}

type configProcessor struct{ sentConfig bool }

func (p *configProcessor) Process(data []byte, pts int64, flags int) ([]Output, error) {
	var out []Output
	if !p.sentConfig {
		p.sentConfig = true
		out = append(out, Output{Data: []byte("config"), Flags: FlagCodecConfig})
	}
	raw, err := rawProcessor{}.Process(data, pts, flags)
	return append(out, raw...), err
}

func TestEncodeCodecConfigNotMuxed(t *testing.T) {
	t.Parallel()

	f := NewFactory()
	f.RegisterEncoder("audio/test", func(format MediaFormat) (Codec, error) {
		return NewSession(&configProcessor{}, format, 2, 64), nil
	})

	s := rampStream(8000, 1, 100)
	mux := &fakeMuxer{}
	require.NoError(t, Encode(context.Background(), s, f, mux, MediaFormat{MIME: "audio/test"}, Options{}))
	assert.Equal(t, s.PCM(), mux.payload())
	for _, smp := range mux.samples {
		assert.False(t, smp.info.CodecConfig())
	}
}

// chattyEncoder reports a format change on every poll.
type chattyEncoder struct{ *Session }

func (c chattyEncoder) DequeueOutputBuffer(*BufferInfo, time.Duration) (int, error) {
	return InfoOutputFormatChanged, nil
}

func TestEncodeFormatChangedTwice(t *testing.T) {
	t.Parallel()

	f := NewFactory()
	f.RegisterEncoder("audio/chatty", func(format MediaFormat) (Codec, error) {
		return chattyEncoder{NewSession(rawProcessor{}, format, 1, 64)}, nil
	})

	mux := &fakeMuxer{}
	err := Encode(context.Background(), rampStream(8000, 1, 10), f, mux, MediaFormat{MIME: "audio/chatty"}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, audio.ErrRuntimeInvariant)
	assert.Equal(t, 1, mux.starts)
}

// silentEncoder never produces output.
type silentEncoder struct{ *Session }

func (silentEncoder) DequeueOutputBuffer(*BufferInfo, time.Duration) (int, error) {
	return InfoTryAgainLater, nil
}

func TestEncodeNoEndOfStream(t *testing.T) {
	t.Parallel()

	f := NewFactory()
	f.RegisterEncoder("audio/silent", func(format MediaFormat) (Codec, error) {
		return silentEncoder{NewSession(rawProcessor{}, format, 1, 64)}, nil
	})
	err := Encode(context.Background(), rampStream(8000, 1, 10), f, &fakeMuxer{}, MediaFormat{MIME: "audio/silent"}, Options{MaxIdlePolls: 3})
	assert.ErrorIs(t, err, ErrNoEndOfStream)
	assert.ErrorIs(t, err, audio.ErrCodecSession)
}

func TestEncodeBufferSmallerThanFrame(t *testing.T) {
	t.Parallel()

	f := NewFactory()
	f.RegisterEncoder("audio/tiny", func(format MediaFormat) (Codec, error) {
		return NewSession(rawProcessor{}, format, 1, 3), nil
	})
	err := Encode(context.Background(), rampStream(8000, 2, 10), f, &fakeMuxer{}, MediaFormat{MIME: "audio/tiny"}, Options{})
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestEncodeUnknownMIME(t *testing.T) {
	t.Parallel()

	err := Encode(context.Background(), rampStream(8000, 1, 10), NewFactory(), &fakeMuxer{}, MediaFormat{MIME: "audio/nope"}, Options{})
	assert.ErrorIs(t, err, audio.ErrUnsupportedFormat)
}

func TestDecodeSourceRoundTrip(t *testing.T) {
	t.Parallel()

	s := rampStream(16000, 2, 5000)
	ex, err := NewSourceExtractor(s.Reader())
	require.NoError(t, err)

	got, err := Decode(context.Background(), ex, NewFactory(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 16000, got.SampleRate)
	assert.Equal(t, 2, got.Channels)
	assert.Equal(t, s.Samples, got.Samples)
}

func TestDecodeSkip(t *testing.T) {
	t.Parallel()

	// 10 units of DefaultUnitFrames mono frames.
	s := rampStream(8000, 1, 10*DefaultUnitFrames)
	ex, err := NewSourceExtractor(s.Reader())
	require.NoError(t, err)

	var buffers int
	_, err = DecodeTo(context.Background(), ex, NewFactory(), Options{Skip: 1}, func(pcm []byte, _ BufferInfo) error {
		buffers++
		assert.Len(t, pcm, DefaultUnitFrames*2)
		return nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, buffers)
}

func TestDecodeSinkError(t *testing.T) {
	t.Parallel()

	ex, err := NewSourceExtractor(rampStream(8000, 1, 4000).Reader())
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = DecodeTo(context.Background(), ex, NewFactory(), Options{}, func([]byte, BufferInfo) error {
		return boom
	}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestDecodeSourceReadError(t *testing.T) {
	t.Parallel()

	src := &audiotest.FailingSource{Rate: 8000, Chans: 1, Total: 8000, Value: 0.25, FailAfter: 1}
	ex, err := NewSourceExtractor(src)
	require.NoError(t, err)

	var buffers int
	_, err = DecodeTo(context.Background(), ex, NewFactory(), Options{}, func([]byte, BufferInfo) error {
		buffers++
		return nil
	}, nil)
	require.ErrorIs(t, err, audiotest.ErrInjected)
	assert.ErrorIs(t, err, audio.ErrCodecSession)
	assert.LessOrEqual(t, buffers, 1)
}

func TestDecodeCanceled(t *testing.T) {
	t.Parallel()

	ex, err := NewSourceExtractor(rampStream(8000, 1, 4000).Reader())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Decode(ctx, ex, NewFactory(), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

type videoOnly struct{ SourceExtractor }

func (videoOnly) TrackFormat(int) (MediaFormat, error) {
	return MediaFormat{MIME: "video/avc"}, nil
}

func TestDecodeNoAudioTrack(t *testing.T) {
	t.Parallel()

	_, err := Decode(context.Background(), &videoOnly{}, NewFactory(), Options{})
	assert.ErrorIs(t, err, audio.ErrNoAudioTrack)
}

// endlessDecoder drops the end of stream flag, so the loop must stop on idle
// polls.
type endlessDecoder struct{ *Session }

func (d endlessDecoder) DequeueOutputBuffer(info *BufferInfo, timeout time.Duration) (int, error) {
	idx, err := d.Session.DequeueOutputBuffer(info, timeout)
	info.Flags &^= FlagEndOfStream
	return idx, err
}

func TestDecodeIdleDrain(t *testing.T) {
	t.Parallel()

	f := NewFactory()
	f.RegisterDecoder(MIMERaw, func(format MediaFormat) (Codec, error) {
		return endlessDecoder{NewSession(rawProcessor{}, format, 2, format.MaxInputSize)}, nil
	})

	s := rampStream(8000, 1, 3000)
	ex, err := NewSourceExtractor(s.Reader())
	require.NoError(t, err)

	got, err := Decode(context.Background(), ex, f, Options{MaxIdlePolls: 2, PollTimeout: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, s.Samples, got.Samples)
}

func TestSourceExtractor(t *testing.T) {
	t.Parallel()

	s := rampStream(1000, 1, DefaultUnitFrames+10)
	ex, err := NewSourceExtractor(s.Reader())
	require.NoError(t, err)

	format, err := ex.TrackFormat(0)
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultUnitFrames+10)*1000, format.DurationUs)

	_, err = ex.TrackFormat(1)
	assert.ErrorIs(t, err, ErrBadTrack)

	require.NoError(t, ex.SelectTrack(0))
	buf := make([]byte, format.MaxInputSize)

	n, err := ex.ReadSample(buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultUnitFrames*2, n)
	assert.Equal(t, int64(0), ex.SampleTime())

	_, err = ex.ReadSample(make([]byte, 4))
	assert.ErrorIs(t, err, io.ErrShortBuffer)

	require.True(t, ex.Advance())
	assert.Equal(t, int64(DefaultUnitFrames)*1000, ex.SampleTime())
	n, err = ex.ReadSample(buf)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	assert.False(t, ex.Advance())
	_, err = ex.ReadSample(buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSessionBufferOwnership(t *testing.T) {
	t.Parallel()

	c, err := NewRawCodec(MediaFormat{MIME: MIMERaw, SampleRate: 8000, Channels: 1})
	require.NoError(t, err)

	_, err = c.DequeueInputBuffer(0)
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, c.Start())
	assert.ErrorIs(t, c.QueueInputBuffer(3, 0, 0, 0, 0), ErrBadBufferIndex)
	assert.ErrorIs(t, c.ReleaseOutputBuffer(0), ErrBadBufferIndex)

	var info BufferInfo
	idx, err := c.DequeueOutputBuffer(&info, 0)
	require.NoError(t, err)
	assert.Equal(t, InfoOutputFormatChanged, idx)
	idx, err = c.DequeueOutputBuffer(&info, 0)
	require.NoError(t, err)
	assert.Equal(t, InfoTryAgainLater, idx)
}

func TestNewRawCodecRejectsLayout(t *testing.T) {
	t.Parallel()

	_, err := NewRawCodec(MediaFormat{MIME: MIMERaw})
	assert.ErrorIs(t, err, audio.ErrUnsupportedFormat)
}

func TestPresentationTime(t *testing.T) {
	t.Parallel()

	m := encodeMachine{bytesPerFrame: 4, sampleRate: 44100, consumed: 4 * 44100}
	assert.Equal(t, int64(1_000_000), m.presentationTimeUs())

	m.consumed = 4 * 441
	assert.Equal(t, int64(10_000), m.presentationTimeUs())
}
