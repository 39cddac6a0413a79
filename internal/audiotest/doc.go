// Package audiotest provides synthetic audio for tests: int16 streams built
// from tones and silence, float sources with injectable failures, and WAV
// fixtures written to a test's temporary directory.
package audiotest
