// SPDX-License-Identifier: EPL-2.0

// Package wav reads, writes and edits 16-bit PCM WAV files.
//
// The package works at two levels. Read, Write, Trim, Excise and TrimInPlace
// operate on the RIFF container directly: the chunk list is walked from
// offset 12 until the data chunk is found, and edits copy raw sample bytes
// without decoding. Decoder wraps github.com/go-audio/wav and exposes a file
// as a streaming audio.Source for read paths that must not load the whole
// file.
//
// # Supported Formats
//
//   - PCM 16-bit only; any other bit depth fails with ErrOnlyPCM16bitSupported
//   - Any channel count and sample rate
//   - Arbitrary chunks (LIST, fact, ...) before the data chunk
//
// Every file written by this package has the canonical 44-byte header.
//
// # Time and Byte Offsets
//
// Millisecond positions map to data chunk offsets with
//
//	offset = floor(ms / 1000 * byteRate)
//
// rounded down to a multiple of blockAlign (channels * 2) so a cut never
// splits a frame:
//
//	h, _ := wav.ReadHeader(f)
//	off := h.ByteOffset(1500)
//
// # Editing
//
//	in, _ := os.Open("memo.wav")
//	out, _ := os.Create("clip.wav")
//	_, err := wav.Trim(in, out, 1000, 4000)
//
// TrimInPlace rewrites an existing file and patches its header in place.
package wav
