// Package vorbis decodes Ogg Vorbis files into an audio.Source using
// github.com/jfreymuth/oggvorbis.
//
// Samples are interleaved float32 in [-1, 1]; reads always return whole
// frames.
package vorbis
