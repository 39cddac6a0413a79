// SPDX-License-Identifier: EPL-2.0

package edit

import (
	"math"

	"github.com/ik5/voxedit/audio"
	"github.com/ik5/voxedit/utils"
)

// DefaultTargetPeak is the normalization target as a fraction of full
// scale.
const DefaultTargetPeak = 0.95

// GainFactor converts decibels to a linear factor.
func GainFactor(gainDb float64) float64 {
	return math.Pow(10, gainDb/20)
}

// Gain scales every sample by 10^(gainDb/20).
func Gain(s *audio.Stream, gainDb float64) *audio.Stream {
	return scale(s, GainFactor(gainDb))
}

// Peak returns the largest sample magnitude.
func Peak(s *audio.Stream) int {
	peak := 0
	for _, v := range s.Samples {
		a := int(v)
		if a < 0 {
			a = -a
		}
		peak = max(peak, a)
	}
	return peak
}

// Normalize scales s so its peak becomes targetPeak of full scale
// (32767). Silence is returned unchanged.
func Normalize(s *audio.Stream, targetPeak float64) (*audio.Stream, error) {
	if targetPeak <= 0 || targetPeak > 1 || math.IsNaN(targetPeak) {
		return nil, ErrTargetPeak
	}
	peak := Peak(s)
	if peak == 0 {
		return s.Clone(), nil
	}

	// Divide last: the peak sample then lands exactly on the target.
	target := targetPeak * math.MaxInt16
	out := s.Clone()
	for i, v := range out.Samples {
		out.Samples[i] = utils.ClampSymmetric(float64(v) * target / float64(peak))
	}
	return out, nil
}

func scale(s *audio.Stream, factor float64) *audio.Stream {
	out := s.Clone()
	for i, v := range out.Samples {
		out.Samples[i] = utils.ClampSymmetric(float64(v) * factor)
	}
	return out
}

// Fade applies linear fade-in and fade-out ramps. Durations are converted
// to frames and clamped to the stream length; frames outside both ramps are
// copied unchanged.
func Fade(s *audio.Stream, fadeInMs, fadeOutMs int64) *audio.Stream {
	out := s.Clone()
	total := s.Frames()
	ch := s.Channels
	fadeIn := s.FrameAt(fadeInMs)
	fadeOut := s.FrameAt(fadeOutMs)

	for i := range fadeIn {
		ramp(out.Samples[i*ch:(i+1)*ch], i, fadeIn)
	}
	for i := total - fadeOut; i < total; i++ {
		ramp(out.Samples[i*ch:(i+1)*ch], total-1-i, fadeOut)
	}
	return out
}

// ramp scales one frame by num/den.
func ramp(frame []int16, num, den int) {
	for c, v := range frame {
		frame[c] = utils.ClampSymmetric(float64(v) * float64(num) / float64(den))
	}
}
