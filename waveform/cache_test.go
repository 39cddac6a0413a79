// SPDX-License-Identifier: EPL-2.0

package waveform

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestFormatParseBars(t *testing.T) {
	t.Parallel()

	bars := []int{5, 42, 100}
	s := FormatBars(bars)
	if s != "5,42,100" {
		t.Errorf("FormatBars() = %q", s)
	}
	got, err := ParseBars(" 5, 42,100\n")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, bars) {
		t.Errorf("ParseBars() = %v", got)
	}
	if _, err := ParseBars("1,x"); err == nil {
		t.Error("ParseBars() accepted garbage")
	}
	if got, _ := ParseBars(""); got != nil {
		t.Errorf("ParseBars(\"\") = %v", got)
	}
}

func TestFileCache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	audioPath := filepath.Join(dir, "memo.wav")
	if err := os.WriteFile(audioPath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewFileCache()
	if _, ok := c.Get(audioPath); ok {
		t.Fatal("Get() hit on an empty cache")
	}

	bars := []int{5, 10, 90}
	if err := c.Put(audioPath, bars); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(audioPath + SidecarExt)
	if err != nil {
		t.Fatalf("sidecar not written: %v", err)
	}
	if string(data) != "5,10,90" {
		t.Errorf("sidecar = %q", data)
	}

	// A fresh cache loads from the sidecar.
	fresh := NewFileCache()
	got, ok := fresh.Get(audioPath)
	if !ok || !slices.Equal(got, bars) {
		t.Errorf("Get() = %v, %v", got, ok)
	}

	got[0] = 99
	again, _ := fresh.Get(audioPath)
	if again[0] != 5 {
		t.Error("Get() returned shared storage")
	}

	if err := fresh.Invalidate(audioPath); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(audioPath + SidecarExt); !os.IsNotExist(err) {
		t.Errorf("sidecar still present: %v", err)
	}
	if _, ok := fresh.Get(audioPath); ok {
		t.Error("Get() hit after Invalidate")
	}
	if err := fresh.Invalidate(audioPath); err != nil {
		t.Errorf("second Invalidate() error = %v", err)
	}
}

func TestFileCacheEmptySidecar(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	audioPath := filepath.Join(dir, "a.opus")
	if err := os.WriteFile(SidecarPath(audioPath), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := NewFileCache().Get(audioPath); ok {
		t.Error("empty sidecar counted as a hit")
	}
}

func TestFileCacheSymlinkSidecar(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "store", "take1.wav")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "latest.wav")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	c := NewFileCache()
	if err := c.Put(link, []int{7, 8}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(SidecarPath(link)); err != nil {
		t.Errorf("sidecar not next to the given path: %v", err)
	}
	if _, err := os.Stat(SidecarPath(target)); !os.IsNotExist(err) {
		t.Errorf("sidecar written next to the link target: %v", err)
	}

	// Both names share one memory entry.
	if got, ok := c.Get(target); !ok || !slices.Equal(got, []int{7, 8}) {
		t.Errorf("Get(target) = %v, %v", got, ok)
	}
}
