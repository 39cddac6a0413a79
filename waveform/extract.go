// SPDX-License-Identifier: EPL-2.0

package waveform

import (
	"context"
	"fmt"

	"github.com/ik5/voxedit/audio"
	"github.com/ik5/voxedit/codec"
)

// MaxBar is the value of a full scale bar.
const MaxBar = 100

// Off turns off SkipCap, NoiseGate or Floor. A zero field takes its
// default.
const Off = -1

// Options hold the empirically tuned extraction constants.
type Options struct {
	// SkipDivisor and SkipCap give the number of access units skipped after
	// each decoded one: min(durationSeconds/SkipDivisor, SkipCap).
	SkipDivisor int
	SkipCap     int
	// Stride is the distance between inspected samples of a buffer.
	Stride int
	// NoiseGate zeroes magnitudes below it before averaging.
	NoiseGate int
	// Boost compensates for quiet speech.
	Boost float64
	// Floor is the smallest bar value.
	Floor int
}

func DefaultOptions() Options {
	return Options{
		SkipDivisor: 10,
		SkipCap:     100,
		Stride:      100,
		NoiseGate:   150,
		Boost:       3,
		Floor:       5,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SkipDivisor <= 0 {
		o.SkipDivisor = d.SkipDivisor
	}
	switch {
	case o.SkipCap == 0:
		o.SkipCap = d.SkipCap
	case o.SkipCap < 0:
		o.SkipCap = Off
	}
	if o.Stride <= 0 {
		o.Stride = d.Stride
	}
	switch {
	case o.NoiseGate == 0:
		o.NoiseGate = d.NoiseGate
	case o.NoiseGate < 0:
		o.NoiseGate = Off
	}
	if o.Boost <= 0 {
		o.Boost = d.Boost
	}
	switch {
	case o.Floor == 0 || o.Floor > MaxBar:
		o.Floor = d.Floor
	case o.Floor < 0:
		o.Floor = Off
	}
	return o
}

// SkipCount returns the number of units to skip for a track lasting
// durationUs.
func (o Options) SkipCount(durationUs int64) int {
	o = o.withDefaults()
	seconds := int(durationUs / 1_000_000)
	return min(seconds/o.SkipDivisor, max(o.SkipCap, 0))
}

// Extractor computes envelopes over the codec bridge.
type Extractor struct {
	Factory *codec.Factory
	Codec   codec.Options
	Options Options
}

// Extract decodes the audio track of ex and returns numBars values.
func (e *Extractor) Extract(ctx context.Context, ex codec.Extractor, numBars int) ([]int, error) {
	if numBars <= 0 {
		return nil, fmt.Errorf("%w: %d bars", audio.ErrInvalidRange, numBars)
	}
	opts := e.Options.withDefaults()

	// The skip count needs the duration, which is only known once a track
	// is chosen.
	_, format, err := codec.SelectAudioTrack(ex)
	if err != nil {
		return nil, err
	}
	copts := e.Codec
	copts.Skip = opts.SkipCount(format.DurationUs)

	var raw []float64
	_, err = codec.DecodeTo(ctx, ex, e.Factory, copts, func(pcm []byte, _ codec.BufferInfo) error {
		if v, ok := bufferLevel(pcm, opts); ok {
			raw = append(raw, v)
		}
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return Bars(raw, numBars, opts), nil
}

// bufferLevel averages every Stride-th sample magnitude of a PCM buffer,
// treating magnitudes under the noise gate as zero.
func bufferLevel(pcm []byte, opts Options) (float64, bool) {
	n := len(pcm) / 2
	if n == 0 {
		return 0, false
	}
	var sum, count int
	for i := 0; i < n; i += opts.Stride {
		v := int(int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8))
		if v < 0 {
			v = -v
		}
		if v < opts.NoiseGate {
			v = 0
		}
		sum += v
		count++
	}
	return float64(sum) / float64(count), true
}

// Bars downsamples raw levels to numBars by chunked averaging and scales
// each average to [opts.Floor, MaxBar]. When raw is shorter than numBars
// values are repeated; when it is empty every bar is at the floor.
func Bars(raw []float64, numBars int, opts Options) []int {
	opts = opts.withDefaults()
	floor := max(opts.Floor, 0)
	bars := make([]int, numBars)
	if len(raw) == 0 {
		for i := range bars {
			bars[i] = floor
		}
		return bars
	}

	for b := range bars {
		from := b * len(raw) / numBars
		to := (b + 1) * len(raw) / numBars
		if to <= from {
			to = from + 1
		}
		var sum float64
		for _, v := range raw[from:to] {
			sum += v
		}
		avg := sum / float64(to-from)
		bars[b] = min(max(int(avg/32768*100*opts.Boost), floor), MaxBar)
	}
	return bars
}
