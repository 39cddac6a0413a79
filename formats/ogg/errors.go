// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"fmt"

	"github.com/ik5/voxedit/audio"
)

var (
	ErrBadCapture  = fmt.Errorf("%w: missing OggS capture pattern", audio.ErrMalformedHeader)
	ErrBadVersion  = fmt.Errorf("%w: unsupported Ogg stream version", audio.ErrUnsupportedFormat)
	ErrBadChecksum = fmt.Errorf("%w: Ogg page checksum mismatch", audio.ErrMalformedHeader)
	ErrTruncated   = fmt.Errorf("%w: truncated Ogg page", audio.ErrMalformedHeader)
)
