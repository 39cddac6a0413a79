// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"fmt"

	"layeh.com/gopus"

	"github.com/ik5/voxedit/audio"
	"github.com/ik5/voxedit/codec"
)

const (
	// frameMs is the encoder frame duration.
	frameMs = 20
	// maxFrameSamples is the longest packet, 120 ms at 48 kHz.
	maxFrameSamples = 5760
	maxPacketBytes  = 4000
	inputBuffers    = 4
	// lookahead is the encoder delay in 48 kHz samples, 2.5 ms plus the
	// 4 ms delay compensation of the audio application.
	lookahead = 312
)

// SupportedRate reports whether the encoder accepts rate directly.
func SupportedRate(rate int) bool {
	switch rate {
	case 8000, 12000, 16000, 24000, 48000:
		return true
	}
	return false
}

type decodeProcessor struct {
	dec      *gopus.Decoder
	channels int
	maxFrame int
	skip     int // samples per channel still to drop
}

func (p *decodeProcessor) Process(data []byte, pts int64, flags int) ([]codec.Output, error) {
	var out []codec.Output
	if len(data) > 0 {
		pcm, err := p.dec.Decode(data, p.maxFrame, false)
		if err != nil {
			return nil, fmt.Errorf("%w: opus decode: %w", audio.ErrCodecSession, err)
		}
		if p.skip > 0 {
			drop := min(p.skip, len(pcm)/p.channels)
			pcm = pcm[drop*p.channels:]
			p.skip -= drop
		}
		if len(pcm) > 0 {
			out = append(out, codec.Output{Data: int16sToBytes(pcm), PresentationTimeUs: pts})
		}
	}
	if flags&codec.FlagEndOfStream != 0 {
		out = append(out, codec.Output{PresentationTimeUs: pts, Flags: codec.FlagEndOfStream})
	}
	return out, nil
}

// NewDecoder returns a decoder session for an Opus track. Output is
// interleaved 16-bit PCM at format.SampleRate, or 48 kHz when the track
// declares a rate the decoder cannot produce, with the stream's pre-skip
// removed.
func NewDecoder(format codec.MediaFormat) (codec.Codec, error) {
	if format.Channels < 1 || format.Channels > 2 {
		return nil, ErrChannels
	}
	rate := format.SampleRate
	if !SupportedRate(rate) {
		rate = SampleRate
	}
	dec, err := gopus.NewDecoder(rate, format.Channels)
	if err != nil {
		return nil, fmt.Errorf("%w: create opus decoder: %w", audio.ErrCodecSession, err)
	}

	p := &decodeProcessor{
		dec:      dec,
		channels: format.Channels,
		maxFrame: maxFrameSamples * rate / SampleRate,
	}
	if len(format.CSD) > 0 {
		if h, err := ParseHead(format.CSD[0]); err == nil {
			// Pre-skip counts 48 kHz samples.
			p.skip = int(h.PreSkip) * rate / SampleRate
		}
	}

	out := codec.MediaFormat{MIME: codec.MIMERaw, SampleRate: rate, Channels: format.Channels}
	size := max(format.MaxInputSize, minInputSize)
	return codec.NewSession(p, out, inputBuffers, size), nil
}

type encodeProcessor struct {
	enc       *gopus.Encoder
	channels  int
	rate      int
	frameSize int
	delay     int // encoder lookahead in samples per channel at rate
	head      []byte

	pending []int16
	encoded int64 // samples per channel already encoded
	config  bool
}

func (p *encodeProcessor) Process(data []byte, _ int64, flags int) ([]codec.Output, error) {
	var out []codec.Output
	if !p.config {
		p.config = true
		out = append(out, codec.Output{Data: p.head, Flags: codec.FlagCodecConfig})
	}

	p.pending = append(p.pending, bytesToInt16s(data)...)
	frame := p.frameSize * p.channels
	for len(p.pending) >= frame {
		o, err := p.encodeFrame(p.pending[:frame])
		if err != nil {
			return nil, err
		}
		out = append(out, o)
		p.pending = p.pending[frame:]
	}

	if flags&codec.FlagEndOfStream != 0 {
		// Flush the encoder delay so the tail survives pre-skip removal.
		if p.encoded > 0 || len(p.pending) > 0 {
			p.pending = append(p.pending, make([]int16, p.delay*p.channels)...)
		}
		for len(p.pending) >= frame {
			o, err := p.encodeFrame(p.pending[:frame])
			if err != nil {
				return nil, err
			}
			out = append(out, o)
			p.pending = p.pending[frame:]
		}
		if len(p.pending) > 0 {
			last := make([]int16, frame)
			copy(last, p.pending)
			o, err := p.encodeFrame(last)
			if err != nil {
				return nil, err
			}
			out = append(out, o)
			p.pending = nil
		}
		out = append(out, codec.Output{PresentationTimeUs: p.timeUs(), Flags: codec.FlagEndOfStream})
	}
	return out, nil
}

func (p *encodeProcessor) encodeFrame(pcm []int16) (codec.Output, error) {
	pkt, err := p.enc.Encode(pcm, p.frameSize, maxPacketBytes)
	if err != nil {
		return codec.Output{}, fmt.Errorf("%w: opus encode: %w", audio.ErrCodecSession, err)
	}
	o := codec.Output{Data: pkt, PresentationTimeUs: p.timeUs()}
	p.encoded += int64(p.frameSize)
	return o, nil
}

func (p *encodeProcessor) timeUs() int64 {
	return p.encoded * 1_000_000 / int64(p.rate)
}

// NewEncoder returns an encoder session taking interleaved 16-bit PCM at
// format.SampleRate. format.BitRate, when set, overrides the encoder
// default. The session's output format carries the OpusHead as codec
// specific data.
func NewEncoder(format codec.MediaFormat) (codec.Codec, error) {
	if !SupportedRate(format.SampleRate) {
		return nil, fmt.Errorf("%w: %d Hz", ErrSampleRate, format.SampleRate)
	}
	if format.Channels < 1 || format.Channels > 2 {
		return nil, ErrChannels
	}

	enc, err := gopus.NewEncoder(format.SampleRate, format.Channels, gopus.Audio)
	if err != nil {
		return nil, fmt.Errorf("%w: create opus encoder: %w", audio.ErrCodecSession, err)
	}
	if format.BitRate > 0 {
		enc.SetBitrate(format.BitRate)
	}

	head := Head{
		Channels:        format.Channels,
		PreSkip:         lookahead,
		InputSampleRate: uint32(format.SampleRate),
	}.Bytes()
	frameSize := format.SampleRate * frameMs / 1000
	p := &encodeProcessor{
		enc:       enc,
		channels:  format.Channels,
		rate:      format.SampleRate,
		frameSize: frameSize,
		delay:     lookahead * format.SampleRate / SampleRate,
		head:      head,
	}

	out := codec.MediaFormat{
		MIME:       MIME,
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		BitRate:    format.BitRate,
		CSD:        [][]byte{head},
	}
	return codec.NewSession(p, out, inputBuffers, frameSize*format.Channels*2*inputBuffers), nil
}

// Register adds the Opus decoder and encoder to f.
func Register(f *codec.Factory) {
	f.RegisterDecoder(MIME, NewDecoder)
	f.RegisterEncoder(MIME, NewEncoder)
}

func int16sToBytes(pcm []int16) []byte {
	b := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		b[i*2] = byte(s)
		b[i*2+1] = byte(s >> 8)
	}
	return b
}

func bytesToInt16s(b []byte) []int16 {
	pcm := make([]int16, len(b)/2)
	for i := range pcm {
		pcm[i] = int16(b[i*2]) | int16(b[i*2+1])<<8
	}
	return pcm
}
