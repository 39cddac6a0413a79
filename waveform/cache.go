// SPDX-License-Identifier: EPL-2.0

package waveform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// SidecarExt is appended to an audio file name to form its cache file.
const SidecarExt = ".wave"

// Cache stores envelopes per audio file.
type Cache interface {
	Get(path string) ([]int, bool)
	Put(path string, bars []int) error
	Invalidate(path string) error
}

// SidecarPath returns the cache file of an audio file.
func SidecarPath(path string) string {
	return path + SidecarExt
}

// FileCache is a Cache backed by memory and sidecar files. It is safe for
// concurrent use.
type FileCache struct {
	mu  sync.RWMutex
	mem map[string][]int
}

func NewFileCache() *FileCache {
	return &FileCache{mem: make(map[string][]int)}
}

// canonical resolves path to an absolute path with symlinks evaluated. A
// path that cannot be resolved is used as given.
func canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// Get returns the cached envelope, loading the sidecar on a memory miss. An
// empty or unreadable sidecar is a miss.
func (c *FileCache) Get(path string) ([]int, bool) {
	key := canonical(path)

	c.mu.RLock()
	bars, ok := c.mem[key]
	c.mu.RUnlock()
	if ok {
		return append([]int(nil), bars...), true
	}

	data, err := os.ReadFile(SidecarPath(path))
	if err != nil {
		return nil, false
	}
	bars, err = ParseBars(string(data))
	if err != nil || len(bars) == 0 {
		return nil, false
	}

	c.mu.Lock()
	c.mem[key] = bars
	c.mu.Unlock()
	return append([]int(nil), bars...), true
}

// Put stores bars in memory and writes the sidecar next to path as given,
// so a symlinked file gets its own sidecar.
func (c *FileCache) Put(path string, bars []int) error {
	key := canonical(path)
	if err := os.WriteFile(SidecarPath(path), []byte(FormatBars(bars)), 0o644); err != nil {
		return fmt.Errorf("waveform: write sidecar: %w", err)
	}

	c.mu.Lock()
	c.mem[key] = append([]int(nil), bars...)
	c.mu.Unlock()
	return nil
}

// Invalidate drops the memory entry and deletes the sidecar.
func (c *FileCache) Invalidate(path string) error {
	key := canonical(path)

	c.mu.Lock()
	delete(c.mem, key)
	c.mu.Unlock()

	err := os.Remove(SidecarPath(path))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("waveform: remove sidecar: %w", err)
	}
	return nil
}

// FormatBars joins bars with commas.
func FormatBars(bars []int) string {
	parts := make([]string, len(bars))
	for i, b := range bars {
		parts[i] = strconv.Itoa(b)
	}
	return strings.Join(parts, ",")
}

// ParseBars parses a comma separated list of integers.
func ParseBars(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	bars := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("waveform: bar %d: %w", i, err)
		}
		bars[i] = v
	}
	return bars, nil
}
