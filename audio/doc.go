// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM primitives shared by the rest of voxedit.
//
// This package contains the core building blocks:
//   - Stream, the in-memory 16-bit PCM buffer every edit works on
//   - Source interface for streaming decoders
//   - Collect to drain a Source into a Stream
//   - Resample, Downmix and Convert for format adaptation
//   - Format registry keyed by file extension
//   - The error kinds returned across the module
//
// # Streams
//
// A Stream holds interleaved signed 16-bit samples:
//
//	type Stream struct {
//	    Samples    []int16
//	    SampleRate int
//	    Channels   int
//	}
//
// len(Samples) is always a multiple of Channels. Use Validate to check it.
//
// # Source Interface
//
// Decoders expose files as streaming sources of float32 samples in [-1, 1]:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Collect reads a Source to the end and converts it back to 16-bit samples.
// The conversion is exact for sources that were 16-bit to begin with.
//
// # Resampling
//
// Resample changes the sample rate of a Stream using cubic interpolation,
// with a one-pole low-pass filter applied when downsampling:
//
//	out, err := audio.Resample(stream, 48000)
//
// # Format Registry
//
// The registry maps file extensions to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, _ := registry.Get(".WAV")
//
// # Error Handling
//
// Sources return io.EOF when no more data is available. Every other error in
// the module wraps one of the kinds declared here (ErrUnsupportedFormat,
// ErrMalformedHeader, ...) so callers can test them with errors.Is.
package audio
