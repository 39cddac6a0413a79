// SPDX-License-Identifier: EPL-2.0

// Package waveform computes coarse amplitude envelopes for display.
//
// An Extractor decodes through the codec bridge while skipping access units
// in proportion to the track duration, reduces each decoded buffer to one
// gated average magnitude, and downsamples that sequence to the requested
// number of bars in [Floor, 100].
//
// Results are kept by a Cache. FileCache stores them in memory and in a
// "<audiofile>.wave" sidecar of comma separated integers, keyed by the
// canonical absolute path of the audio file.
package waveform
