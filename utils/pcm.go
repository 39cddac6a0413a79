// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Float32ToPCM16 is the exact inverse of dividing an int16 sample by 32768,
// which is how the format decoders produce float32 data.
func Float32ToPCM16(x float32) int16 {
	return ClampPCM16(math.Round(float64(x) * 32768.0))
}

// PCM16ToFloat32 scales a sample into [-1,1).
func PCM16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}

// ClampPCM16 truncates v toward zero and clamps it to the int16 range.
func ClampPCM16(v float64) int16 {
	if v >= math.MaxInt16 {
		return math.MaxInt16
	}
	if v <= math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// ClampSymmetric truncates v toward zero and clamps it to [-32767, 32767].
// Gain and normalization use this range so that a sample and its negation
// always have the same magnitude.
func ClampSymmetric(v float64) int16 {
	if v >= math.MaxInt16 {
		return math.MaxInt16
	}
	if v <= -math.MaxInt16 {
		return -math.MaxInt16
	}
	return int16(v)
}
