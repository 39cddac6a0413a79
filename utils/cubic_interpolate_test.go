// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float64
		x              float64
		want           float64
	}{
		{"start hits y1", 0, 1, 2, 3, 0, 1},
		{"end hits y2", 0, 1, 2, 3, 1, 2},
		{"line stays a line", 1, 2, 3, 4, 0.25, 2.25},
		{"constant", 7, 7, 7, 7, 0.6, 7},
		{"symmetric peak", 0, 1, 1, 0, 0.5, 1.125},
		{"pcm scale", -32767, 0, 32767, 0, 1, 32767},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CubicInterpolate(%v, %v, %v, %v, %v) = %v, want %v",
					tt.y0, tt.y1, tt.y2, tt.y3, tt.x, got, tt.want)
			}
		})
	}
}

// The resampler relies on the spline passing through the known samples, so
// an integer source position reproduces the input exactly.
func TestCubicInterpolate_PassesThroughSamples(t *testing.T) {
	t.Parallel()

	samples := []float64{0, 1200, -3400, 32767, -32767, 5, 0}
	for i := 1; i+2 < len(samples); i++ {
		y0, y1, y2, y3 := samples[i-1], samples[i], samples[i+1], samples[i+2]
		if got := CubicInterpolate(y0, y1, y2, y3, 0); got != y1 {
			t.Errorf("x=0 at %d: got %v, want %v", i, got, y1)
		}
		if got := CubicInterpolate(y0, y1, y2, y3, 1); math.Abs(got-y2) > 1e-9 {
			t.Errorf("x=1 at %d: got %v, want %v", i, got, y2)
		}
	}
}

func BenchmarkCubicInterpolate(b *testing.B) {
	var sink float64
	x := 0.0
	for b.Loop() {
		sink += CubicInterpolate(0.1, 0.5, 0.3, -0.2, x)
		x += 0.01
		if x > 1 {
			x = 0
		}
	}
	_ = sink
}
