// SPDX-License-Identifier: EPL-2.0

package edit

import (
	"fmt"

	"github.com/ik5/voxedit/audio"
)

var (
	ErrEmptyRange = fmt.Errorf("%w: empty or inverted range", audio.ErrInvalidRange)
	ErrNoStreams  = fmt.Errorf("%w: nothing to concatenate", audio.ErrInvalidStream)
	ErrTargetPeak = fmt.Errorf("%w: target peak must be in (0, 1]", audio.ErrInvalidRange)
)
