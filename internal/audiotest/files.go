// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/voxedit/audio"
	"github.com/ik5/voxedit/formats/wav"
)

// WriteWAV writes s as a WAV file named name inside dir and returns its
// path. dir is usually t.TempDir().
func WriteWAV(tb testing.TB, dir, name string, s *audio.Stream) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := wav.WriteFile(path, s); err != nil {
		tb.Fatalf("audiotest: write %s: %v", path, err)
	}
	return path
}

// WriteFile writes raw bytes, for fixtures that must not be valid audio.
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("audiotest: write %s: %v", path, err)
	}
	return path
}
