// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"

	"github.com/ik5/voxedit/utils"
)

// lowPassAlpha is the coefficient of the one-pole filter applied before
// downsampling. It is a cheap anti-aliasing stage, not a proper FIR.
const lowPassAlpha = 0.5

// Resample converts s to dstRate using Catmull-Rom cubic interpolation over a
// four frame window. The channel count is preserved. When downsampling, a
// one-pole low-pass filter runs over the input first.
func Resample(s *Stream, dstRate int) (*Stream, error) {
	if dstRate <= 0 || s.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: resample %d Hz -> %d Hz", ErrUnsupportedFormat, s.SampleRate, dstRate)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.SampleRate == dstRate {
		return s.Clone(), nil
	}

	ch := s.Channels
	frames := s.Frames()
	ratio := float64(s.SampleRate) / float64(dstRate)
	outFrames := int(int64(frames) * int64(dstRate) / int64(s.SampleRate))

	src := s.Samples
	if ratio > 1 {
		src = lowPass(s)
	}

	// at returns the sample of channel c at frame f, repeating edge frames.
	at := func(f, c int) float64 {
		f = max(0, min(f, frames-1))
		return float64(src[f*ch+c])
	}

	out := NewStream(dstRate, ch, outFrames*ch)
	for i := range outFrames {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := pos - float64(idx)
		for c := range ch {
			v := utils.CubicInterpolate(at(idx-1, c), at(idx, c), at(idx+1, c), at(idx+2, c), frac)
			out.Samples = append(out.Samples, utils.ClampPCM16(v))
		}
	}
	return out, nil
}

func lowPass(s *Stream) []int16 {
	ch := s.Channels
	out := make([]int16, len(s.Samples))
	if len(s.Samples) == 0 {
		return out
	}
	state := make([]float64, ch)
	// Seed with the first frame to avoid a warm-up transient.
	for c := range ch {
		state[c] = float64(s.Samples[c])
	}
	for i, v := range s.Samples {
		c := i % ch
		state[c] = lowPassAlpha*float64(v) + (1-lowPassAlpha)*state[c]
		out[i] = utils.ClampPCM16(state[c])
	}
	return out
}
