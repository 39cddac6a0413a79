// SPDX-License-Identifier: EPL-2.0

// Package silence splits a PCM stream into non-silent segments.
//
// The stream is reduced to a coarse envelope, the peak magnitude of each
// fixed analysis window. A run of quiet windows that lasts long enough is a
// split point placed at the middle of the run. Segments shorter than the
// minimum length are dropped rather than merged, so the result covers the
// source without necessarily spanning it edge to edge.
package silence

import (
	"fmt"

	"github.com/ik5/voxedit/audio"
)

// Defaults tuned for speech recordings.
const (
	DefaultThreshold    = 800
	DefaultMinSilenceMs = 400
	DefaultMinSegmentMs = 500
	DefaultWindowMs     = 20
)

// Options control segmentation. Zero fields take the defaults.
type Options struct {
	// Threshold is the window peak, out of 32767, below which a window
	// counts as silent.
	Threshold    int
	MinSilenceMs int64
	MinSegmentMs int64
	WindowMs     int64
}

func DefaultOptions() Options {
	return Options{
		Threshold:    DefaultThreshold,
		MinSilenceMs: DefaultMinSilenceMs,
		MinSegmentMs: DefaultMinSegmentMs,
		WindowMs:     DefaultWindowMs,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Threshold <= 0 {
		o.Threshold = d.Threshold
	}
	if o.MinSilenceMs <= 0 {
		o.MinSilenceMs = d.MinSilenceMs
	}
	if o.MinSegmentMs <= 0 {
		o.MinSegmentMs = d.MinSegmentMs
	}
	if o.WindowMs <= 0 {
		o.WindowMs = d.WindowMs
	}
	return o
}

// Segment is a time range [StartMs, EndMs) relative to the stream start.
type Segment struct {
	StartMs int64
	EndMs   int64
}

func (s Segment) DurationMs() int64 { return s.EndMs - s.StartMs }

func (s Segment) String() string {
	return fmt.Sprintf("[%d ms, %d ms)", s.StartMs, s.EndMs)
}

// Envelope returns the peak sample magnitude, across all channels, of each
// window of windowMs. The last window may be partial.
func Envelope(s *audio.Stream, windowMs int64) []int {
	frames := s.Frames()
	per := int(int64(s.SampleRate) * windowMs / 1000)
	if per <= 0 || frames == 0 {
		return nil
	}

	env := make([]int, 0, (frames+per-1)/per)
	ch := s.Channels
	for start := 0; start < frames; start += per {
		end := min(start+per, frames)
		peak := 0
		for _, v := range s.Samples[start*ch : end*ch] {
			a := int(v)
			if a < 0 {
				a = -a
			}
			peak = max(peak, a)
		}
		env = append(env, peak)
	}
	return env
}

// Segments returns the non-silent segments of s in order.
func Segments(s *audio.Stream, opts Options) []Segment {
	opts = opts.withDefaults()
	env := Envelope(s, opts.WindowMs)
	total := s.DurationMs()

	var (
		out      []Segment
		segStart int64
		runStart = -1
	)
	for i, peak := range env {
		if peak < opts.Threshold {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart < 0 {
			continue
		}

		// A loud window closes the silent run.
		from, to := int64(runStart)*opts.WindowMs, int64(i)*opts.WindowMs
		runStart = -1
		if to-from < opts.MinSilenceMs {
			continue
		}
		split := (from + to) / 2
		if split-segStart >= opts.MinSegmentMs {
			out = append(out, Segment{StartMs: segStart, EndMs: split})
		}
		segStart = split
	}

	if total-segStart >= opts.MinSegmentMs {
		out = append(out, Segment{StartMs: segStart, EndMs: total})
	}
	return out
}
