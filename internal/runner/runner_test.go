package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jacoelho/jv/internal/config"
)

const dogs = `{"dogs": [{"name": "Rex", "tags": ["a\"b", "c"]}, {"name": "Fido", "age": 3, "owner": null}]}`

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func newConfig(path string) *config.Config {
	return &config.Config{Path: path, BufferSize: 2048}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		configure  func(*config.Config)
		path       string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "string_value",
			input:      dogs,
			path:       "dogs[0].name",
			wantStdout: "Rex",
		},
		{
			name:       "escaped_string_verbatim",
			input:      dogs,
			path:       "dogs[0].tags[0]",
			wantStdout: `a\"b`,
		},
		{
			name:       "object_value",
			input:      dogs,
			path:       "dogs[1]",
			wantStdout: `{"name": "Fido", "age": 3, "owner": null}`,
		},
		{
			name:       "null_value",
			input:      dogs,
			path:       `dogs[1]["owner"]`,
			wantStdout: "null",
		},
		{
			name:  "no_match",
			input: dogs,
			path:  "dogs[2]",
		},
		{
			name:       "small_buffer",
			input:      dogs,
			path:       "dogs[1].age",
			configure:  func(c *config.Config) { c.BufferSize = 1 },
			wantStdout: "3",
		},
		{
			name:       "rate_limited",
			input:      dogs,
			path:       "dogs[1].name",
			configure:  func(c *config.Config) { c.RateLimit = 1 << 20 },
			wantStdout: "Fido",
		},
		{
			name:       "limit_truncates",
			input:      dogs,
			path:       "dogs[1]",
			configure:  func(c *config.Config) { c.Limit = 8 },
			wantStdout: `{"name":`,
			wantStderr: "output truncated",
		},
		{
			name:       "debug_trace",
			input:      dogs,
			path:       "dogs[0].name",
			configure:  func(c *config.Config) { c.Debug = true },
			wantStdout: "Rex",
			wantStderr: "path matched",
		},
		{
			name:       "boolean_rejected",
			input:      `{"ok": true}`,
			path:       "ok",
			wantCode:   7,
			wantStderr: "boolean",
		},
		{
			name:       "bad_path",
			input:      `{"a": [1]}`,
			path:       "a[",
			wantCode:   9,
			wantStderr: "Error:",
		},
		{
			name:     "leading_zero_index",
			input:    dogs,
			path:     "dogs[01]",
			wantCode: 6,
		},
		{
			name:     "truncated_document",
			input:    `{"a": {"b": `,
			path:     "a.c",
			wantCode: 3,
		},
		{
			name:     "empty_input",
			input:    "",
			path:     "a",
			wantCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newConfig(tt.path)
			if tt.configure != nil {
				tt.configure(cfg)
			}

			var stdout, stderr bytes.Buffer
			r, exitResult := New(cfg,
				WithStdin(strings.NewReader(tt.input)),
				WithStdout(&stdout),
				WithStderr(&stderr),
			)
			if exitResult != nil {
				t.Fatalf("New() unexpected exit result: %s", exitResult.Message)
			}

			code := r.Run(context.Background())
			if code != tt.wantCode {
				t.Errorf("Run() = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if stdout.String() != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestRunFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "dogs.json")
	if err := os.WriteFile(file, []byte(dogs), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := newConfig("dogs[1].name")
	cfg.File = file

	var stdout bytes.Buffer
	r, exitResult := New(cfg, WithStdout(&stdout), WithStderr(&bytes.Buffer{}))
	if exitResult != nil {
		t.Fatalf("New() unexpected exit result: %s", exitResult.Message)
	}

	if code := r.Run(context.Background()); code != 0 {
		t.Fatalf("Run() = %d, want 0", code)
	}
	if stdout.String() != "Fido" {
		t.Errorf("stdout = %q, want %q", stdout.String(), "Fido")
	}
}

func TestNewMissingFile(t *testing.T) {
	cfg := newConfig("a")
	cfg.File = filepath.Join(t.TempDir(), "missing.json")

	var stderr bytes.Buffer
	r, exitResult := New(cfg, WithStderr(&stderr))
	if r != nil {
		t.Error("New() expected nil runner")
	}
	if exitResult == nil {
		t.Fatal("New() expected exit result")
	}
	if exitResult.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", exitResult.ExitCode)
	}
	if exitResult.Output != &stderr {
		t.Error("exit result should print to the configured stderr")
	}
}

func TestRunJSONPath(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantCode   int
		wantStdout string
	}{
		{
			name:       "mixed_segments",
			path:       `dogs[0]["a.b"].name`,
			wantStdout: "$[\"dogs\"][0][\"a.b\"][\"name\"]\n",
		},
		{
			name:       "root",
			path:       "",
			wantStdout: "$\n",
		},
		{
			name:     "bad_path",
			path:     "a[x]",
			wantCode: 9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newConfig(tt.path)
			cfg.JSONPath = true
			// The file is never opened when only converting the path.
			cfg.File = filepath.Join(t.TempDir(), "missing.json")

			var stdout, stderr bytes.Buffer
			r, exitResult := New(cfg, WithStdout(&stdout), WithStderr(&stderr))
			if exitResult != nil {
				t.Fatalf("New() unexpected exit result: %s", exitResult.Message)
			}

			if code := r.Run(context.Background()); code != tt.wantCode {
				t.Errorf("Run() = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if stdout.String() != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
			}
		})
	}
}

func TestRunWriteFailure(t *testing.T) {
	var stderr bytes.Buffer
	r, exitResult := New(newConfig("dogs[0].name"),
		WithStdin(strings.NewReader(dogs)),
		WithStdout(failingWriter{}),
		WithStderr(&stderr),
	)
	if exitResult != nil {
		t.Fatalf("New() unexpected exit result: %s", exitResult.Message)
	}

	if code := r.Run(context.Background()); code != 5 {
		t.Errorf("Run() = %d, want 5 (stderr: %s)", code, stderr.String())
	}
}

func TestRunCanceledWhileThrottled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := newConfig("dogs[1].name")
	cfg.RateLimit = 1

	var stderr bytes.Buffer
	r, exitResult := New(cfg,
		WithStdin(strings.NewReader(dogs)),
		WithStdout(&bytes.Buffer{}),
		WithStderr(&stderr),
	)
	if exitResult != nil {
		t.Fatalf("New() unexpected exit result: %s", exitResult.Message)
	}

	// The first byte is delivered before the cancellation surfaces as a
	// read error on the next refill.
	if code := r.Run(ctx); code != 4 {
		t.Errorf("Run() = %d, want 4 (stderr: %s)", code, stderr.String())
	}
}
