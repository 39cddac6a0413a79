// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"fmt"

	"github.com/ik5/voxedit/audio"
)

var (
	ErrNotOpus        = fmt.Errorf("%w: not an Ogg Opus stream", audio.ErrUnsupportedFormat)
	ErrBadHead        = fmt.Errorf("%w: invalid OpusHead", audio.ErrMalformedHeader)
	ErrMissingTags    = fmt.Errorf("%w: missing OpusTags", audio.ErrMalformedHeader)
	ErrBadPacket      = fmt.Errorf("%w: invalid Opus packet", audio.ErrMalformedHeader)
	ErrUnsupportedMap = fmt.Errorf("%w: only channel mapping family 0 is supported", audio.ErrUnsupportedFormat)
	ErrSampleRate     = fmt.Errorf("%w: Opus input must be 8, 12, 16, 24 or 48 kHz", audio.ErrUnsupportedFormat)
	ErrChannels       = fmt.Errorf("%w: Opus supports one or two channels", audio.ErrUnsupportedFormat)
	ErrTrackCount     = fmt.Errorf("%w: Ogg Opus muxer holds a single track", audio.ErrCodecSession)
	ErrMuxerState     = fmt.Errorf("%w: muxer used out of order", audio.ErrCodecSession)
)
