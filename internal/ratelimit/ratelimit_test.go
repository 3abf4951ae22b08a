package ratelimit

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		bytesPerSecond  int
		expectUnlimited bool
	}{
		{
			name:            "unlimited_zero",
			bytesPerSecond:  0,
			expectUnlimited: true,
		},
		{
			name:            "unlimited_negative",
			bytesPerSecond:  -1,
			expectUnlimited: true,
		},
		{
			name:            "limited_one_byte",
			bytesPerSecond:  1,
			expectUnlimited: false,
		},
		{
			name:            "limited_kilobyte",
			bytesPerSecond:  1024,
			expectUnlimited: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := New(tt.bytesPerSecond)
			if limiter == nil {
				t.Fatal("New() returned nil")
			}

			limit := limiter.Limit()
			if tt.expectUnlimited {
				if limit != 0 {
					t.Errorf("Expected unlimited (0), got %d", limit)
				}
			} else if limit != tt.bytesPerSecond {
				t.Errorf("Expected limit %d, got %d", tt.bytesPerSecond, limit)
			}
		})
	}
}

func TestLimiter_SetLimit(t *testing.T) {
	limiter := New(0)

	limiter.SetLimit(64)
	if got := limiter.Limit(); got != 64 {
		t.Errorf("Limit() = %d, want 64", got)
	}

	limiter.SetLimit(-5)
	if got := limiter.Limit(); got != 0 {
		t.Errorf("Limit() = %d, want 0", got)
	}
}

func TestReader_Unlimited(t *testing.T) {
	src := strings.NewReader("{}")
	r := New(0).Reader(context.Background(), src)

	if r != io.Reader(src) {
		t.Error("unlimited limiter should return the source unchanged")
	}
}

func TestReader_CapsReadsToBurst(t *testing.T) {
	r := New(4).Reader(context.Background(), strings.NewReader(`{"a":1}`))

	p := make([]byte, 64)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if n != 4 {
		t.Errorf("Read() n = %d, want 4", n)
	}
	if got := string(p[:n]); got != `{"a"` {
		t.Errorf("Read() = %q, want %q", got, `{"a"`)
	}
}

func TestReader_Paces(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 150)
	r := New(100).Reader(context.Background(), bytes.NewReader(data))

	start := time.Now()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	elapsed := time.Since(start)

	if !bytes.Equal(got, data) {
		t.Errorf("ReadAll() returned %d bytes, want %d", len(got), len(data))
	}
	// The first 100 bytes are the burst, the remaining 50 take half a second.
	if elapsed < 400*time.Millisecond {
		t.Errorf("reading took %v, expected at least 400ms", elapsed)
	}
}

func TestReader_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(1).Reader(ctx, strings.NewReader("[1]"))

	p := make([]byte, 8)
	n, err := r.Read(p)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Read() error = %v, want context.Canceled", err)
	}
	if n != 1 {
		t.Errorf("Read() n = %d, want the byte already read", n)
	}
}
