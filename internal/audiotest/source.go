// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"io"
)

// ErrInjected is returned by a FailingSource once its budget is spent.
var ErrInjected = errors.New("audiotest: injected read failure")

// FailingSource generates a constant signal and fails after a fixed number
// of successful reads. It implements audio.Source and audio.FrameCounter.
type FailingSource struct {
	Rate      int
	Chans     int
	Total     int // frames
	Value     float32
	FailAfter int // successful reads before ErrInjected, negative for never

	generated int
	reads     int
}

func (m *FailingSource) SampleRate() int { return m.Rate }
func (m *FailingSource) Channels() int   { return m.Chans }
func (m *FailingSource) BufSize() int    { return 4096 }
func (m *FailingSource) Close() error    { return nil }
func (m *FailingSource) Frames() int64   { return int64(m.Total) }

func (m *FailingSource) ReadSamples(dst []float32) (int, error) {
	if m.FailAfter >= 0 && m.reads >= m.FailAfter {
		return 0, ErrInjected
	}
	m.reads++
	if m.generated >= m.Total {
		return 0, io.EOF
	}

	frames := min(len(dst)/m.Chans, m.Total-m.generated)
	for i := range frames * m.Chans {
		dst[i] = m.Value
	}
	m.generated += frames
	if m.generated >= m.Total {
		return frames * m.Chans, io.EOF
	}
	return frames * m.Chans, nil
}
