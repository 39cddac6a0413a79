package aiff

import (
	"fmt"

	"github.com/ik5/voxedit/audio"
)

var (
	// ErrNotAiffFile indicates the file is not a valid AIFF file
	ErrNotAiffFile = fmt.Errorf("%w: not an AIFF file", audio.ErrUnsupportedFormat)

	// ErrOnlyPCM16bitSupported indicates only 16-bit PCM is supported
	ErrOnlyPCM16bitSupported = fmt.Errorf("%w: only 16-bit PCM AIFF is supported", audio.ErrUnsupportedFormat)

	// ErrUnsupportedAiffLayout indicates an unsupported AIFF layout
	ErrUnsupportedAiffLayout = fmt.Errorf("%w: unsupported AIFF layout", audio.ErrMalformedHeader)
)
