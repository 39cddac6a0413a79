// SPDX-License-Identifier: EPL-2.0

// Package opus reads and writes Ogg Opus (RFC 7845), the compressed output
// format of voxedit.
//
// Extractor and Muxer adapt an Ogg stream to the codec package's capability
// interfaces. NewDecoder and NewEncoder return codec sessions backed by
// layeh.com/gopus; register them on a codec.Factory under MIME.
//
// Opus always decodes at 48 kHz. The encoder accepts 8, 12, 16, 24 and
// 48 kHz input with one or two channels and works in 20 ms frames, padding
// the final frame with silence.
package opus
