// Package runner executes one extraction as configured on the command line.
package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/jacoelho/jv/internal/config"
	"github.com/jacoelho/jv/internal/errcode"
	"github.com/jacoelho/jv/internal/exit"
	"github.com/jacoelho/jv/internal/extract"
	"github.com/jacoelho/jv/internal/logging"
	"github.com/jacoelho/jv/internal/pathkey"
	"github.com/jacoelho/jv/internal/ratelimit"
	"github.com/jacoelho/jv/internal/sink"
)

// Runner extracts a value from a file or stdin and writes it to stdout.
type Runner struct {
	config      *config.Config
	input       io.Reader
	closer      io.Closer
	stdout      io.Writer
	stderr      io.Writer
	logger      *zap.Logger
	rateLimiter *ratelimit.Limiter
}

// Option overrides the process streams, mostly for tests.
type Option func(*Runner)

func WithStdin(r io.Reader) Option {
	return func(rn *Runner) { rn.input = r }
}

func WithStdout(w io.Writer) Option {
	return func(rn *Runner) { rn.stdout = w }
}

func WithStderr(w io.Writer) Option {
	return func(rn *Runner) { rn.stderr = w }
}

// New creates a new Runner with the provided configuration.
// If the input file cannot be opened, returns nil runner and exit result.
func New(cfg *config.Config, opts ...Option) (*Runner, *exit.Result) {
	r := &Runner{
		config:      cfg,
		input:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		rateLimiter: ratelimit.New(cfg.RateLimit),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.logger = logging.New(cfg.Debug, r.stderr)

	if cfg.File != "" && !cfg.JSONPath {
		f, err := os.Open(cfg.File)
		if err != nil {
			result := exit.OpenError(cfg.File, err)
			result.Output = r.stderr
			return nil, result
		}
		r.input = f
		r.closer = f
	}

	return r, nil
}

// Run performs the extraction and returns the process exit code.
func (r *Runner) Run(ctx context.Context) int {
	defer r.close()
	defer func() { _ = r.logger.Sync() }()

	if r.config.JSONPath {
		return r.printJSONPath()
	}

	logger := r.logger.With(zap.String("path", r.config.Path))
	if r.config.File != "" {
		logger = logger.With(zap.String("file", r.config.File))
	}

	src := r.rateLimiter.Reader(ctx, r.input)
	w := bufio.NewWriter(r.stdout)

	var out *sink.Sink
	if r.config.Limit > 0 {
		out = sink.Memory(r.config.Limit)
	} else {
		out = sink.Writer(w)
	}

	status, err := extract.Pipe(src, r.config.Path, out,
		extract.WithBufferSize(r.config.BufferSize),
		extract.WithLogger(logger),
	)

	if r.config.Limit > 0 {
		_, _ = w.Write(out.Bytes())
		if out.Truncated() {
			logger.Warn("output truncated", zap.Int("limit", r.config.Limit))
		}
	}

	if flushErr := w.Flush(); flushErr != nil && err == nil {
		err = fmt.Errorf("%w: %v", errcode.StreamWriteError, flushErr)
	}

	if err != nil {
		return r.fail(err)
	}

	logger.Debug("extraction finished", zap.Stringer("status", status))
	return 0
}

func (r *Runner) printJSONPath() int {
	query, err := pathkey.ToJSONPath(r.config.Path)
	if err != nil {
		return r.fail(err)
	}

	if _, err := fmt.Fprintln(r.stdout, query); err != nil {
		return r.fail(fmt.Errorf("%w: %v", errcode.WriteError, err))
	}
	return 0
}

func (r *Runner) fail(err error) int {
	result := exit.FromError(err)
	result.Output = r.stderr
	result.Print()
	return result.ExitCode
}

func (r *Runner) close() {
	if r.closer == nil {
		return
	}
	if err := r.closer.Close(); err != nil {
		r.logger.Warn("failed to close input", zap.Error(err))
	}
}
