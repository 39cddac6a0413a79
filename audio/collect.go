// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/voxedit/utils"
)

// Collect drains src into an in-memory Stream. bufferSize is the number of
// float32 values requested per read; it is rounded down to whole frames.
//
// Samples are converted back with utils.Float32ToPCM16, which inverts the
// /32768 scaling used by the decoders, so 16-bit input survives unchanged.
//
// Example:
//
//	src, _ := mp3.Decoder{}.Decode(file)
//	stream, err := audio.Collect(src, 4096)
func Collect(src Source, bufferSize int) (*Stream, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
	}
	if bufferSize < channels {
		bufferSize = 4096
	}
	bufferSize -= bufferSize % channels

	estimated := src.SampleRate() * channels * 2
	if fc, ok := src.(FrameCounter); ok && fc.Frames() > 0 {
		estimated = int(fc.Frames()) * channels
	}
	out := NewStream(src.SampleRate(), channels, estimated)
	buf := make([]float32, bufferSize)

	for {
		n, err := src.ReadSamples(buf)
		for i := range n {
			out.Samples = append(out.Samples, utils.Float32ToPCM16(buf[i]))
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("collect samples: %w", err)
		}
	}

	// A truncated final frame would break the channel invariant.
	out.Samples = out.Samples[:len(out.Samples)-len(out.Samples)%channels]
	return out, nil
}
