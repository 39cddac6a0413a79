// SPDX-License-Identifier: EPL-2.0

package codec

const (
	rawInputBuffers = 4
	rawDefaultInput = 8192
)

type rawProcessor struct{}

func (rawProcessor) Process(data []byte, pts int64, flags int) ([]Output, error) {
	var out []Output
	if len(data) > 0 {
		out = append(out, Output{Data: append([]byte(nil), data...), PresentationTimeUs: pts})
	}
	if flags&FlagEndOfStream != 0 {
		out = append(out, Output{PresentationTimeUs: pts, Flags: FlagEndOfStream})
	}
	return out, nil
}

// NewRawCodec returns a pass-through session for interleaved 16-bit PCM. It
// serves as both decoder and encoder of MIMERaw tracks.
func NewRawCodec(format MediaFormat) (Codec, error) {
	if format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, ErrUnsupportedLayout
	}
	size := format.MaxInputSize
	if size <= 0 {
		size = rawDefaultInput
	}
	// Whole frames only.
	size -= size % format.BytesPerFrame()
	if size == 0 {
		size = format.BytesPerFrame()
	}

	out := format
	out.MIME = MIMERaw
	return NewSession(rawProcessor{}, out, rawInputBuffers, size), nil
}
