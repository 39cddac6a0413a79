// SPDX-License-Identifier: EPL-2.0

// Package voxedit is an audio transcode and edit engine for voice
// recordings.
//
// An Engine reads uncompressed WAV and compressed containers, exposes them
// as 16-bit PCM streams, edits them in the sample domain and writes the
// result back as WAV or Ogg Opus. The path a file takes is chosen by its
// extension:
//
//   - WAV files go through the container codec in formats/wav. Trim and
//     excise between WAV files copy block-aligned bytes without decoding.
//   - Ogg Opus files go through the codec bridge: an extractor, a gopus
//     decoder session and, on output, an encoder session and Ogg muxer.
//   - MP3, Ogg Vorbis and AIFF are decode only. Their sources are exposed
//     as raw PCM tracks so they travel the same bridge.
//
// # Quick Start
//
//	eng := voxedit.New(voxedit.Options{})
//	if err := eng.Trim(ctx, "memo.wav", "memo-cut.wav", 1500, 9000); err != nil {
//	    // errors.Is(err, audio.ErrInvalidRange) for an empty selection
//	}
//
//	out, err := eng.Merge(ctx, []string{"a.wav", "b.mp3"}, "joined")
//	// out is "joined.opus": any compressed input selects the Opus path
//
// # Errors
//
// Every operation returns an error wrapping one of the kinds declared in
// the audio package. A failed operation leaves no partial output: results
// are staged next to the destination and renamed into place, and the
// destination is removed on failure unless it is also a source.
//
// # Waveforms
//
// Waveform envelopes are cached through the injected waveform.Cache, by
// default a FileCache writing "<audiofile>.wave" sidecars. Operations that
// rewrite a file invalidate its entry.
//
// # Concurrency
//
// An Engine is safe for concurrent use on different files. Callers must
// serialize operations that touch the same file.
package voxedit
