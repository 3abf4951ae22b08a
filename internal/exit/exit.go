package exit

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/jv/internal/errcode"
	"github.com/jacoelho/jv/internal/extract"
)

const (
	// CodeUsage is returned for invalid arguments, configuration and
	// stream initialization failures.
	CodeUsage = 1
	// CodeOpen is returned when the input file cannot be opened.
	CodeOpen = 2
)

// Result holds the output destination and exit code for program termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the result message to the configured output destination.
func (r *Result) Print() {
	fmt.Fprint(r.Output, r.Message)
}

// Success creates a successful exit result that outputs to stdout with exit code 0.
func Success(message string) *Result {
	return &Result{
		Output:   os.Stdout,
		ExitCode: 0,
		Message:  message,
	}
}

// Error creates an error exit result that outputs to stderr with exit code 1.
func Error(message string) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeUsage,
		Message:  message,
	}
}

// Errorf creates an error exit result with formatted message.
func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}

// OpenError reports an input file that could not be opened.
func OpenError(path string, err error) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeOpen,
		Message:  fmt.Sprintf("Error: could not open %s: %v\n", path, err),
	}
}

// FromError maps an extraction error to its exit result. A nil error maps
// to nil.
func FromError(err error) *Result {
	if err == nil {
		return nil
	}

	result := Errorf("Error: %v\n", err)
	if errors.Is(err, extract.ErrInit) {
		return result
	}
	if code, ok := errcode.Of(err); ok && code != errcode.OK {
		result.ExitCode = int(code)
	}
	return result
}
