// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"fmt"

	"github.com/ik5/voxedit/audio"
)

var (
	ErrNoCodec           = fmt.Errorf("%w: no codec for mime type", audio.ErrUnsupportedFormat)
	ErrBadTrack          = fmt.Errorf("%w: track index out of range", audio.ErrCodecSession)
	ErrBufferTooSmall    = fmt.Errorf("%w: input buffer smaller than one frame", audio.ErrCodecSession)
	ErrNoEndOfStream     = fmt.Errorf("%w: codec never signaled end of stream", audio.ErrCodecSession)
	ErrFormatChanged     = fmt.Errorf("%w: output format changed twice", audio.ErrRuntimeInvariant)
	ErrMuxerNotStarted   = fmt.Errorf("%w: encoded output before format change", audio.ErrRuntimeInvariant)
	ErrBadBufferIndex    = fmt.Errorf("%w: buffer index not owned by caller", audio.ErrCodecSession)
	ErrQueueAfterEOS     = fmt.Errorf("%w: input queued after end of stream", audio.ErrCodecSession)
	ErrNotStarted        = fmt.Errorf("%w: codec not started", audio.ErrCodecSession)
	ErrUnsupportedLayout = fmt.Errorf("%w: unsupported sample rate or channel layout", audio.ErrUnsupportedFormat)
)
