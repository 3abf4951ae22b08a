// Package errcode defines the flat set of failure kinds reported by the
// extraction engine. Each kind has a stable numeric value that the CLI uses
// as its process exit code.
package errcode

import "errors"

// Code identifies a failure kind. Code implements error so that kinds can be
// wrapped with fmt.Errorf("%w: ...") and matched with errors.Is.
type Code int

const (
	OK Code = iota
	EndOfBuffer
	OutOfBounds
	EndOfStream
	ReadError
	StreamWriteError
	ArrayIndexError
	NotAtValue
	// KeyMismatch is an internal signal and never reaches the user.
	KeyMismatch
	BadPath
	EmptyPath
	WriteError
)

var names = map[Code]string{
	OK:               "ok",
	EndOfBuffer:      "end of buffer",
	OutOfBounds:      "out of bounds",
	EndOfStream:      "unexpected end of stream",
	ReadError:        "stream read error",
	StreamWriteError: "stream write error",
	ArrayIndexError:  "invalid array index",
	NotAtValue:       "not positioned at a value",
	KeyMismatch:      "key mismatch",
	BadPath:          "malformed path",
	EmptyPath:        "empty path",
	WriteError:       "write error",
}

func (c Code) Error() string {
	if name, ok := names[c]; ok {
		return name
	}
	return "unknown error"
}

// String returns the human-readable name of the code.
func (c Code) String() string {
	return c.Error()
}

// Of returns the code carried by err. It returns OK for a nil error and
// false when err carries no code.
func Of(err error) (Code, bool) {
	if err == nil {
		return OK, true
	}

	var c Code
	if errors.As(err, &c) {
		return c, true
	}

	return 0, false
}
