// SPDX-License-Identifier: EPL-2.0

package voxedit

import (
	"fmt"

	"github.com/ik5/voxedit/audio"
)

var (
	ErrTooFewInputs      = fmt.Errorf("%w: merge needs at least two inputs", audio.ErrInvalidRange)
	ErrNoSamples         = fmt.Errorf("%w: no input could be decoded", audio.ErrInvalidStream)
	ErrNoSegments        = fmt.Errorf("%w: nothing above the silence threshold", audio.ErrInvalidStream)
	ErrUnsupportedInput  = fmt.Errorf("%w: no decoder for file extension", audio.ErrUnsupportedFormat)
	ErrUnsupportedOutput = fmt.Errorf("%w: cannot write file extension", audio.ErrUnsupportedFormat)
)
