package wav

import (
	"bytes"
	"fmt"
	"io"

	gowav "github.com/go-audio/wav"

	"github.com/ik5/voxedit/audio"
	"github.com/ik5/voxedit/internal/intpcm"
)

// Decoder opens WAV files as streaming audio.Source values. Unlike Read it
// never holds the whole data chunk in memory.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("wav: read data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if dec.BitDepth != 16 {
		return nil, ErrOnlyPCM16bitSupported
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDataChunk, err)
	}

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 {
		return nil, ErrUnsupportedWavLayout
	}

	frames := dec.PCMLen() / int64(format.NumChannels*bytesPerSample)
	return intpcm.New("wav", dec, format.SampleRate, format.NumChannels, frames), nil
}
