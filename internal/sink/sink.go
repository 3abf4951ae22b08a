// Package sink abstracts where captured value bytes go: an io.Writer, a
// bounded memory region, both, or nowhere.
package sink

import (
	"fmt"
	"io"

	"github.com/jacoelho/jv/internal/errcode"
)

// Sink receives captured bytes. A nil *Sink discards everything and is what
// skip operations use.
type Sink struct {
	w         io.Writer
	mem       []byte
	memSize   int
	truncated bool
}

// New returns a sink writing to w (if not nil) and keeping up to memSize
// bytes in memory (if memSize > 0).
func New(w io.Writer, memSize int) *Sink {
	s := &Sink{w: w}
	if memSize > 0 {
		s.memSize = memSize
		s.mem = make([]byte, 0, memSize)
	}
	return s
}

// Writer returns a sink that only forwards to w.
func Writer(w io.Writer) *Sink {
	return New(w, 0)
}

// Memory returns a sink that only keeps up to size bytes in memory.
func Memory(size int) *Sink {
	return New(nil, size)
}

// Capture forwards p to the writer and appends as much of p as fits to the
// memory region. Bytes past the memory capacity are dropped silently.
func (s *Sink) Capture(p []byte) error {
	if s == nil || len(p) == 0 {
		return nil
	}

	if s.w != nil {
		if _, err := s.w.Write(p); err != nil {
			return fmt.Errorf("%w: %v", errcode.StreamWriteError, err)
		}
	}

	if s.memSize > 0 {
		room := s.memSize - len(s.mem)
		if len(p) > room {
			p = p[:room]
			s.truncated = true
		}
		s.mem = append(s.mem, p...)
	}

	return nil
}

// Bytes returns the bytes held in memory. The slice aliases the sink.
func (s *Sink) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.mem
}

// Truncated reports whether captured bytes were dropped because the memory
// region was full.
func (s *Sink) Truncated() bool {
	return s != nil && s.truncated
}

// Reset empties the memory region.
func (s *Sink) Reset() {
	if s == nil {
		return
	}
	s.mem = s.mem[:0]
	s.truncated = false
}
