package wav

import (
	"fmt"

	"github.com/ik5/voxedit/audio"
)

var (
	ErrNotWavFile            = fmt.Errorf("%w: not a WAV file", audio.ErrUnsupportedFormat)
	ErrUnsupportedWavLayout  = fmt.Errorf("%w: unsupported WAV layout", audio.ErrUnsupportedFormat)
	ErrOnlyPCM16bitSupported = fmt.Errorf("%w: only PCM 16-bit supported", audio.ErrUnsupportedFormat)
	ErrNoFmtChunk            = fmt.Errorf("%w: fmt chunk not found before data", audio.ErrMalformedHeader)
	ErrNoDataChunk           = fmt.Errorf("%w: data chunk not found", audio.ErrMalformedHeader)
	ErrTruncated             = fmt.Errorf("%w: truncated WAV file", audio.ErrMalformedHeader)
	ErrEmptyRange            = fmt.Errorf("%w: empty or inverted range", audio.ErrInvalidRange)
)
