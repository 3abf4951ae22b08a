// Package stream implements a forward-only JSON byte reader over a fixed-size
// buffer and the structural traversal primitives built on it.
//
// The reader never holds more than one buffer of input. SearchTo and Advance
// cross buffer boundaries transparently while capturing the bytes they pass
// over into a sink, so the engine behaves identically however the source
// chunks its reads.
package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/jacoelho/jv/internal/errcode"
	"github.com/jacoelho/jv/internal/sink"
)

const (
	// DefaultBufferSize is the number of bytes read from the source per refill.
	DefaultBufferSize = 2048

	maxEmptyReads = 100
)

// Reader is the streaming parse state. It is not safe for concurrent use.
type Reader struct {
	src  io.Reader
	buf  []byte
	n    int // valid bytes in buf
	pos  int
	prev byte

	exhausted bool
	pending   error // source error delivered with the last bytes read
	err       error
}

// NewReader returns a reader over src with a buffer of size bytes. A size
// below 1 selects DefaultBufferSize. Call Init before any other operation.
func NewReader(src io.Reader, size int) *Reader {
	if size < 1 {
		size = DefaultBufferSize
	}
	return &Reader{
		src: src,
		buf: make([]byte, size),
	}
}

// Init clears the lookback state and performs the first fill.
func (r *Reader) Init() error {
	r.n = 0
	r.pos = 0
	r.prev = 0
	r.exhausted = false
	r.pending = nil
	r.err = nil

	err := r.refill()
	if errors.Is(err, errcode.EndOfStream) {
		r.exhausted = true
	}
	return r.record(err)
}

// Current returns the byte at the read position, or 0 once the source is
// exhausted or after a failed refill.
func (r *Reader) Current() byte {
	if r.exhausted || r.pos >= r.n {
		return 0
	}
	return r.buf[r.pos]
}

// Prev returns the byte immediately before the read position, even when it
// belonged to a previous buffer fill.
func (r *Reader) Prev() byte {
	return r.prev
}

// Exhausted reports whether every byte of the source has been consumed.
func (r *Reader) Exhausted() bool {
	return r.exhausted
}

// Err returns the first failure recorded by the reader.
func (r *Reader) Err() error {
	return r.err
}

// Advance captures the current byte into s and moves to the next one,
// refilling when the buffer is used up. Consuming the final byte of the
// source is not a failure: the reader becomes exhausted and the next
// operation that needs a byte reports EndOfStream.
func (r *Reader) Advance(s *sink.Sink) error {
	return r.record(r.advance(s))
}

// SearchTo moves to the first byte after the current one that is in set,
// capturing every byte passed over (the current byte included) into s.
// On success the reader is positioned on the match.
func (r *Reader) SearchTo(set *ByteSet, s *sink.Sink) error {
	return r.record(r.search(set, s))
}

// Record stores err as the reader's failure unless one is already recorded.
// Callers use it for failures detected outside the reader, such as a bad
// path, so that Err always reports the first one.
func (r *Reader) Record(err error) {
	r.record(err)
}

func (r *Reader) record(err error) error {
	if err != nil && r.err == nil {
		r.err = err
	}
	return err
}

func (r *Reader) refill() error {
	if r.pending != nil {
		err := r.pending
		r.pending = nil
		return err
	}

	if r.n > 0 {
		r.prev = r.buf[r.n-1]
	}

	for range maxEmptyReads {
		n, err := r.src.Read(r.buf)
		if n > 0 {
			r.n = n
			r.pos = 0
			if err != nil {
				r.pending = sourceError(err)
			}
			return nil
		}
		if err != nil {
			return sourceError(err)
		}
	}

	return fmt.Errorf("%w: %w", errcode.ReadError, io.ErrNoProgress)
}

func sourceError(err error) error {
	if errors.Is(err, io.EOF) {
		return errcode.EndOfStream
	}
	return fmt.Errorf("%w: %w", errcode.ReadError, err)
}

func (r *Reader) advance(s *sink.Sink) error {
	if r.exhausted {
		return errcode.EndOfStream
	}

	if err := s.Capture(r.buf[r.pos : r.pos+1]); err != nil {
		return err
	}
	r.prev = r.buf[r.pos]
	r.pos++
	if r.pos < r.n {
		return nil
	}

	err := r.refill()
	if errors.Is(err, errcode.EndOfStream) {
		r.exhausted = true
		return nil
	}
	return err
}

func (r *Reader) search(set *ByteSet, s *sink.Sink) error {
	if r.exhausted {
		return errcode.EndOfStream
	}

	start := r.pos + 1
	for {
		if i := set.Index(r.buf[start:r.n]); i >= 0 {
			at := start + i
			if err := s.Capture(r.buf[r.pos:at]); err != nil {
				return err
			}
			if at > 0 {
				r.prev = r.buf[at-1]
			}
			r.pos = at
			return nil
		}

		if err := s.Capture(r.buf[r.pos:r.n]); err != nil {
			return err
		}
		if err := r.refill(); err != nil {
			if errors.Is(err, errcode.EndOfStream) {
				r.exhausted = true
			}
			return err
		}
		start = 0
	}
}
