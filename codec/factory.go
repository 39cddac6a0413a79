// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ik5/voxedit/audio"
)

// NewFunc creates a codec session configured for format.
type NewFunc func(format MediaFormat) (Codec, error)

// Factory maps mime types to decoder and encoder constructors. It is safe
// for concurrent use.
type Factory struct {
	mu       sync.RWMutex
	decoders map[string]NewFunc
	encoders map[string]NewFunc
}

// NewFactory returns a factory with the raw PCM pass-through codec
// registered in both directions.
func NewFactory() *Factory {
	f := &Factory{
		decoders: make(map[string]NewFunc),
		encoders: make(map[string]NewFunc),
	}
	f.RegisterDecoder(MIMERaw, NewRawCodec)
	f.RegisterEncoder(MIMERaw, NewRawCodec)
	return f
}

func (f *Factory) RegisterDecoder(mime string, fn NewFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decoders[strings.ToLower(mime)] = fn
}

func (f *Factory) RegisterEncoder(mime string, fn NewFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.encoders[strings.ToLower(mime)] = fn
}

// NewDecoder creates a decoder for a track format.
func (f *Factory) NewDecoder(format MediaFormat) (Codec, error) {
	return f.create(f.decoders, "decoder", format)
}

// NewEncoder creates an encoder whose output is format.MIME and whose input
// is PCM at format.SampleRate and format.Channels.
func (f *Factory) NewEncoder(format MediaFormat) (Codec, error) {
	return f.create(f.encoders, "encoder", format)
}

func (f *Factory) create(m map[string]NewFunc, kind string, format MediaFormat) (Codec, error) {
	f.mu.RLock()
	fn, ok := m[strings.ToLower(format.MIME)]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrNoCodec, kind, format.MIME)
	}
	c, err := fn(format)
	if err != nil {
		return nil, fmt.Errorf("codec: create %s for %q: %w", kind, format.MIME, err)
	}
	return c, nil
}

// SelectAudioTrack selects the first track whose mime type begins with
// "audio/".
func SelectAudioTrack(ex Extractor) (int, MediaFormat, error) {
	for i := range ex.TrackCount() {
		format, err := ex.TrackFormat(i)
		if err != nil {
			return -1, MediaFormat{}, fmt.Errorf("codec: track %d format: %w", i, err)
		}
		if !format.IsAudio() {
			continue
		}
		if err := ex.SelectTrack(i); err != nil {
			return -1, MediaFormat{}, fmt.Errorf("codec: select track %d: %w", i, err)
		}
		return i, format, nil
	}
	return -1, MediaFormat{}, audio.ErrNoAudioTrack
}
