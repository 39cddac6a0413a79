// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

// Error kinds shared by every package of the module. Package specific
// sentinels wrap one of these so callers can use errors.Is on the kind.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrNoAudioTrack      = errors.New("no audio track")
	ErrMalformedHeader   = errors.New("malformed header")
	ErrCodecSession      = errors.New("codec session error")
	ErrInvalidRange      = errors.New("invalid range")
	ErrRuntimeInvariant  = errors.New("runtime invariant violated")
	ErrInvalidStream     = errors.New("sample count must be a multiple of channel count")
)
