// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestFloat32ToPCM16_RoundTrip(t *testing.T) {
	t.Parallel()

	for v := math.MinInt16; v <= math.MaxInt16; v += 7 {
		in := int16(v)
		got := Float32ToPCM16(PCM16ToFloat32(in))
		if got != in {
			t.Fatalf("Float32ToPCM16(PCM16ToFloat32(%d)) = %d", in, got)
		}
	}
}

func TestFloat32ToPCM16_Clamps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float32
		want  int16
	}{
		{"over max", 1.5, math.MaxInt16},
		{"exact one", 1.0, math.MaxInt16},
		{"under min", -2.0, math.MinInt16},
		{"exact minus one", -1.0, math.MinInt16},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Float32ToPCM16(tt.input); got != tt.want {
				t.Errorf("Float32ToPCM16(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestClampPCM16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input float64
		want  int16
	}{
		{0, 0},
		{100.9, 100},
		{-100.9, -100},
		{40000, math.MaxInt16},
		{-40000, math.MinInt16},
		{32767, 32767},
		{-32768, -32768},
	}

	for _, tt := range tests {
		if got := ClampPCM16(tt.input); got != tt.want {
			t.Errorf("ClampPCM16(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestClampSymmetric(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input float64
		want  int16
	}{
		{0, 0},
		{1.99, 1},
		{-1.99, -1},
		{32767.5, 32767},
		{-32768, -32767},
		{-99999, -32767},
	}

	for _, tt := range tests {
		if got := ClampSymmetric(tt.input); got != tt.want {
			t.Errorf("ClampSymmetric(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
