// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"strings"
	"time"
)

// Special indices returned by the Dequeue methods of a Codec.
const (
	InfoTryAgainLater       = -1
	InfoOutputFormatChanged = -2
)

// Buffer flags.
const (
	FlagCodecConfig = 1 << 1
	FlagEndOfStream = 1 << 2
)

// MIMERaw identifies interleaved signed 16-bit little-endian PCM.
const MIMERaw = "audio/raw"

// MediaFormat describes one track.
type MediaFormat struct {
	MIME         string
	SampleRate   int
	Channels     int
	BitRate      int
	DurationUs   int64
	MaxInputSize int
	// CSD holds codec specific data, such as an Opus identification header.
	CSD [][]byte
}

// IsAudio reports whether the track carries audio.
func (f MediaFormat) IsAudio() bool {
	return strings.HasPrefix(f.MIME, "audio/")
}

// BytesPerFrame is the size of one interleaved 16-bit PCM frame.
func (f MediaFormat) BytesPerFrame() int {
	return f.Channels * 2
}

// BufferInfo describes the valid region of a codec buffer.
type BufferInfo struct {
	Offset             int
	Size               int
	PresentationTimeUs int64
	Flags              int
}

func (i BufferInfo) EndOfStream() bool { return i.Flags&FlagEndOfStream != 0 }
func (i BufferInfo) CodecConfig() bool { return i.Flags&FlagCodecConfig != 0 }

// Extractor reads access units of a container. ReadSample copies the
// current unit of the selected track into dst and returns io.EOF once the
// track is exhausted; Advance moves to the next unit and reports whether
// one exists.
type Extractor interface {
	TrackCount() int
	TrackFormat(track int) (MediaFormat, error)
	SelectTrack(track int) error
	ReadSample(dst []byte) (int, error)
	SampleTime() int64
	Advance() bool
	Close() error
}

// Codec is a decoder or encoder session with indexed input and output
// buffers. Dequeue methods wait at most timeout and return a buffer index,
// InfoTryAgainLater or InfoOutputFormatChanged.
type Codec interface {
	Start() error
	DequeueInputBuffer(timeout time.Duration) (int, error)
	InputBuffer(index int) []byte
	QueueInputBuffer(index, offset, size int, presentationTimeUs int64, flags int) error
	DequeueOutputBuffer(info *BufferInfo, timeout time.Duration) (int, error)
	OutputBuffer(index int) []byte
	OutputFormat() MediaFormat
	ReleaseOutputBuffer(index int) error
	Stop() error
	Release() error
}

// Muxer writes encoded samples of added tracks to a container.
type Muxer interface {
	AddTrack(format MediaFormat) (int, error)
	Start() error
	WriteSampleData(track int, data []byte, info BufferInfo) error
	Stop() error
	Release() error
}
