// SPDX-License-Identifier: EPL-2.0

// Package edit implements pure sample-domain transforms over audio.Stream.
//
// Every function returns a new stream and leaves its input untouched.
// Amplitude changes truncate toward zero and clamp to [-32767, 32767], which
// keeps Normalize idempotent and makes Gain reversible up to rounding for
// samples that did not clip.
package edit
