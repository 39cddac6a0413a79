// SPDX-License-Identifier: EPL-2.0

package voxedit

import (
	"context"

	"github.com/ik5/voxedit/waveform"
)

// Waveform returns numBars envelope values of the file at path. A cached
// envelope of the same length is returned without decoding. One of a
// different length is ignored: the file is decoded again and the cache
// entry replaced.
func (e *Engine) Waveform(ctx context.Context, path string, numBars int) ([]int, error) {
	if bars, ok := e.cache.Get(path); ok && len(bars) == numBars {
		e.metrics.RecordCache(ctx, true)
		return bars, nil
	}
	e.metrics.RecordCache(ctx, false)

	var bars []int
	err := e.run(ctx, "waveform", func() error {
		ex, err := e.openExtractor(path)
		if err != nil {
			return err
		}
		defer ex.Close()

		x := waveform.Extractor{Factory: e.factory, Codec: e.codecOpts, Options: e.waveform}
		if bars, err = x.Extract(ctx, ex, numBars); err != nil {
			return err
		}
		if err := e.cache.Put(path, bars); err != nil {
			e.log.Warn("could not cache waveform", "path", path, "error", err)
		}
		return nil
	})
	return bars, err
}

// InvalidateWaveform drops the cached envelope of path.
func (e *Engine) InvalidateWaveform(path string) error {
	return e.cache.Invalidate(path)
}
