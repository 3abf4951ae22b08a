// Package extract runs a complete extraction: it initializes a stream reader
// over a source, scans for a path and pipes the matched value to a sink.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/jacoelho/jv/internal/scan"
	"github.com/jacoelho/jv/internal/sink"
	"github.com/jacoelho/jv/internal/stream"
)

// ErrInit wraps failures of the first read from the source.
var ErrInit = errors.New("initialize stream")

// Status is the terminal outcome of a successful extraction.
type Status int

const (
	NoMatch Status = iota
	Matched
)

func (s Status) String() string {
	if s == Matched {
		return "matched"
	}
	return "no match"
}

type options struct {
	bufferSize int
	logger     *zap.Logger
}

// Option configures an extraction.
type Option func(*options)

// WithBufferSize sets the reader buffer size. Values below 1 select
// stream.DefaultBufferSize.
func WithBufferSize(size int) Option {
	return func(o *options) {
		o.bufferSize = size
	}
}

// WithLogger traces the extraction at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Pipe reads a JSON document from src and captures the value at path into
// out. Bytes may already have reached out when an error is returned.
func Pipe(src io.Reader, path string, out *sink.Sink, opts ...Option) (Status, error) {
	o := options{
		bufferSize: stream.DefaultBufferSize,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := stream.NewReader(src, o.bufferSize)
	if err := r.Init(); err != nil {
		return NoMatch, fmt.Errorf("%w: %w", ErrInit, err)
	}

	s := scan.New(r, scan.WithLogger(o.logger))
	rest, err := s.Document(path)
	if err != nil {
		return NoMatch, err
	}
	if !scan.Matched(rest) {
		o.logger.Debug("path not found", zap.String("path", path), zap.String("unmatched", rest))
		return NoMatch, nil
	}

	o.logger.Debug("path matched", zap.String("path", path))
	if err := s.Pipe(out); err != nil {
		return Matched, err
	}
	return Matched, nil
}

// Value returns the raw bytes of the value at path. At most limit bytes are
// kept when limit is positive. The boolean reports whether the path matched.
func Value(src io.Reader, path string, limit int, opts ...Option) ([]byte, bool, error) {
	if limit > 0 {
		out := sink.Memory(limit)
		status, err := Pipe(src, path, out, opts...)
		return out.Bytes(), status == Matched, err
	}

	var buf bytes.Buffer
	status, err := Pipe(src, path, sink.Writer(&buf), opts...)
	return buf.Bytes(), status == Matched, err
}
