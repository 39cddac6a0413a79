// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"fmt"
	"sync"
	"time"
)

// Output is one buffer produced by a Processor.
type Output struct {
	Data               []byte
	PresentationTimeUs int64
	Flags              int
}

// Processor turns one queued input buffer into zero or more outputs. On the
// input carrying FlagEndOfStream it must flush and return a final output
// flagged FlagEndOfStream.
type Processor interface {
	Process(data []byte, presentationTimeUs int64, flags int) ([]Output, error)
}

// Session implements the buffer-queue side of Codec over a synchronous
// Processor. Output format is announced with InfoOutputFormatChanged before
// the first output buffer.
type Session struct {
	mu sync.Mutex

	proc   Processor
	format MediaFormat

	inputs  [][]byte
	free    []int
	queued  map[int]bool
	pending []Output
	held    map[int][]byte
	nextOut int

	started   bool
	announced bool
	eos       bool
}

// NewSession returns a session with n input buffers of size bytes each.
func NewSession(proc Processor, out MediaFormat, n, size int) *Session {
	s := &Session{
		proc:   proc,
		format: out,
		inputs: make([][]byte, n),
		queued: make(map[int]bool),
		held:   make(map[int][]byte),
	}
	for i := range s.inputs {
		s.inputs[i] = make([]byte, size)
		s.free = append(s.free, i)
	}
	return s
}

func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	return nil
}

func (s *Session) DequeueInputBuffer(time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return InfoTryAgainLater, ErrNotStarted
	}
	if s.eos || len(s.free) == 0 {
		return InfoTryAgainLater, nil
	}
	idx := s.free[0]
	s.free = s.free[1:]
	s.queued[idx] = true
	return idx, nil
}

func (s *Session) InputBuffer(index int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.inputs) {
		return nil
	}
	return s.inputs[index]
}

func (s *Session) QueueInputBuffer(index, offset, size int, presentationTimeUs int64, flags int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.queued[index] {
		return fmt.Errorf("%w: input %d", ErrBadBufferIndex, index)
	}
	if s.eos {
		return ErrQueueAfterEOS
	}
	buf := s.inputs[index]
	if offset < 0 || size < 0 || offset+size > len(buf) {
		return fmt.Errorf("%w: region %d+%d of %d", ErrBadBufferIndex, offset, size, len(buf))
	}

	out, err := s.proc.Process(buf[offset:offset+size], presentationTimeUs, flags)
	delete(s.queued, index)
	s.free = append(s.free, index)
	if err != nil {
		return err
	}
	s.pending = append(s.pending, out...)
	if flags&FlagEndOfStream != 0 {
		s.eos = true
	}
	return nil
}

func (s *Session) DequeueOutputBuffer(info *BufferInfo, _ time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return InfoTryAgainLater, ErrNotStarted
	}
	if !s.announced {
		s.announced = true
		return InfoOutputFormatChanged, nil
	}
	if len(s.pending) == 0 {
		return InfoTryAgainLater, nil
	}

	out := s.pending[0]
	s.pending = s.pending[1:]
	idx := s.nextOut
	s.nextOut++
	s.held[idx] = out.Data
	*info = BufferInfo{
		Size:               len(out.Data),
		PresentationTimeUs: out.PresentationTimeUs,
		Flags:              out.Flags,
	}
	return idx, nil
}

func (s *Session) OutputBuffer(index int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held[index]
}

func (s *Session) OutputFormat() MediaFormat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}

func (s *Session) ReleaseOutputBuffer(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.held[index]; !ok {
		return fmt.Errorf("%w: output %d", ErrBadBufferIndex, index)
	}
	delete(s.held, index)
	return nil
}

func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	return nil
}

func (s *Session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	s.pending = nil
	clear(s.held)
	return nil
}
