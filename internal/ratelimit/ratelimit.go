// Package ratelimit throttles how fast a JSON source is read.
package ratelimit

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

type Limiter struct {
	limiter *rate.Limiter
}

// New uses 0 or negative limit for no rate limiting. The burst equals one
// second worth of bytes, so a single read never exceeds bytesPerSecond.
func New(bytesPerSecond int) *Limiter {
	if bytesPerSecond <= 0 {
		return &Limiter{
			limiter: rate.NewLimiter(rate.Inf, 1),
		}
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(bytesPerSecond), bytesPerSecond),
	}
}

// WaitN blocks until n bytes may be consumed or ctx is done.
func (l *Limiter) WaitN(ctx context.Context, n int) error {
	return l.limiter.WaitN(ctx, n)
}

// SetLimit can be called at runtime.
func (l *Limiter) SetLimit(bytesPerSecond int) {
	if bytesPerSecond <= 0 {
		l.limiter.SetLimit(rate.Inf)
		return
	}
	l.limiter.SetBurst(bytesPerSecond)
	l.limiter.SetLimit(rate.Limit(bytesPerSecond))
}

// Limit returns the configured bytes per second, 0 when unlimited.
func (l *Limiter) Limit() int {
	limit := l.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}
	return int(limit)
}

func (l *Limiter) unlimited() bool {
	return l.limiter.Limit() == rate.Inf
}

// Reader wraps r so reads are paced by the limiter. Bytes already read are
// returned together with the error when ctx ends while waiting.
func (l *Limiter) Reader(ctx context.Context, r io.Reader) io.Reader {
	if l.unlimited() {
		return r
	}
	return &reader{ctx: ctx, r: r, l: l}
}

type reader struct {
	ctx context.Context
	r   io.Reader
	l   *Limiter
}

func (r *reader) Read(p []byte) (int, error) {
	if burst := r.l.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}

	n, err := r.r.Read(p)
	if n > 0 {
		if werr := r.l.WaitN(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
