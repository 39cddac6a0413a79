// SPDX-License-Identifier: EPL-2.0

// Package codec bridges compressed containers and PCM streams.
//
// A conversion is driven by two cooperative, single-threaded state machines
// over three capability interfaces:
//
//   - Extractor demuxes access units of one selected audio track.
//   - Codec is a buffer-queue decoder or encoder session polled with a
//     bounded timeout.
//   - Muxer collects encoded access units into an output container.
//
// Decode feeds access units into a decoder and drains PCM into a sink until
// the decoder reports end of stream. Encode slices a Stream into
// frame-aligned input buffers, stamps presentation times, starts the muxer
// on the encoder's single format change and writes every encoded buffer.
//
// Any audio.Source can be exposed as an Extractor through SourceExtractor;
// paired with the pass-through RawCodec this is how MP3, Vorbis and AIFF
// inputs travel the same decode path as Ogg Opus.
package codec
