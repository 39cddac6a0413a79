// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files into an audio.Source.
//
// Decoding is done by github.com/hajimehoshi/go-mp3, which always yields
// 16-bit stereo. The source reports its length through Frames when the
// underlying reader is seekable, which lets the waveform extractor size its
// skip count without a second pass.
//
// MP3 is decode only. Edited or merged output is written as WAV or Ogg Opus.
package mp3
