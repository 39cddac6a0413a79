// Package aiff decodes 16-bit PCM AIFF files into an audio.Source.
//
// Parsing is delegated to github.com/go-audio/aiff. Non-seekable readers
// are buffered in memory before decoding.
package aiff
