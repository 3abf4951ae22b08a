package stream

import (
	"errors"
	"fmt"

	"github.com/jacoelho/jv/internal/errcode"
	"github.com/jacoelho/jv/internal/sink"
)

// TraverseCollection moves past the end of the object or array the reader is
// in. open is '{' or '[' and count is the number of opening bytes already
// passed, usually 1. The reader may start on the opening byte, on the
// closing byte, or anywhere between values, but never inside a string.
// It ends on the byte after the closing byte.
func (r *Reader) TraverseCollection(open byte, count int, s *sink.Sink) error {
	return r.record(r.traverseCollection(open, count, s))
}

// TraverseString moves from an opening quote to the byte after the matching
// closing quote, capturing the quotes too.
func (r *Reader) TraverseString(s *sink.Sink) error {
	return r.record(r.traverseString(s))
}

// TraverseStringContents is TraverseString without capturing the quotes.
func (r *Reader) TraverseStringContents(s *sink.Sink) error {
	return r.record(r.traverseStringContents(s))
}

// TraverseStringBody moves from a byte inside a string to its closing quote
// without consuming the quote or capturing anything.
func (r *Reader) TraverseStringBody() error {
	return r.record(r.stringBody(nil))
}

// TraverseNumber moves to the first byte that can follow a number. The end
// of the source also terminates a number.
func (r *Reader) TraverseNumber(s *sink.Sink) error {
	return r.record(r.traverseNumber(s))
}

// TraverseNull moves past four bytes. The literal is not checked.
func (r *Reader) TraverseNull(s *sink.Sink) error {
	return r.record(r.traverseNull(s))
}

func (r *Reader) SkipCollection() error {
	return r.TraverseCollection(r.Current(), 1, nil)
}

func (r *Reader) SkipString() error {
	return r.TraverseString(nil)
}

func (r *Reader) SkipNumber() error {
	return r.TraverseNumber(nil)
}

func (r *Reader) SkipNull() error {
	return r.TraverseNull(nil)
}

// SkipValue moves from the first byte of a value to the byte after it.
func (r *Reader) SkipValue() error {
	if r.exhausted {
		return r.record(errcode.EndOfStream)
	}

	switch c := r.Current(); {
	case c == '{' || c == '[':
		return r.SkipCollection()
	case c == '"':
		return r.SkipString()
	case c == '-' || isDigit(c):
		return r.SkipNumber()
	case c == 'n':
		return r.SkipNull()
	default:
		return r.record(NotAtValue(c))
	}
}

// NotAtValue builds the error for a byte that does not start a supported
// value.
func NotAtValue(c byte) error {
	if c == 't' || c == 'f' {
		return fmt.Errorf("%w: boolean literals are not supported", errcode.NotAtValue)
	}
	return fmt.Errorf("%w: unexpected %q", errcode.NotAtValue, c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func closerOf(open byte) (byte, *ByteSet, bool) {
	switch open {
	case '{':
		return '}', &objectMarks, true
	case '[':
		return ']', &arrayMarks, true
	}
	return 0, nil, false
}

func (r *Reader) traverseCollection(open byte, count int, s *sink.Sink) error {
	closer, marks, ok := closerOf(open)
	if !ok {
		return NotAtValue(open)
	}
	if r.exhausted {
		return errcode.EndOfStream
	}

	if r.buf[r.pos] == closer {
		count--
	}

	for count > 0 {
		if err := r.search(marks, s); err != nil {
			return err
		}

		switch r.buf[r.pos] {
		case '"':
			if err := r.advance(s); err != nil {
				return err
			}
			if err := r.stringBody(s); err != nil {
				return err
			}
		case open:
			count++
		case closer:
			count--
		}
	}

	return r.advance(s)
}

// stringBody consumes string contents starting at the current byte and
// stops on the closing quote without consuming it. The byte following a
// backslash is always consumed as content.
func (r *Reader) stringBody(s *sink.Sink) error {
	for {
		if r.exhausted {
			return errcode.EndOfStream
		}

		switch r.buf[r.pos] {
		case '"':
			return nil
		case '\\':
			if err := r.advance(s); err != nil {
				return err
			}
		}

		if err := r.search(&quoteOrEscape, s); err != nil {
			return err
		}
	}
}

func (r *Reader) traverseString(s *sink.Sink) error {
	if err := r.advance(s); err != nil {
		return err
	}
	if err := r.stringBody(s); err != nil {
		return err
	}
	return r.advance(s)
}

func (r *Reader) traverseStringContents(s *sink.Sink) error {
	if err := r.advance(nil); err != nil {
		return err
	}
	if err := r.stringBody(s); err != nil {
		return err
	}
	return r.advance(nil)
}

func (r *Reader) traverseNumber(s *sink.Sink) error {
	if r.exhausted {
		return errcode.EndOfStream
	}

	err := r.search(&numberEnd, s)
	if errors.Is(err, errcode.EndOfStream) {
		return nil
	}
	return err
}

func (r *Reader) traverseNull(s *sink.Sink) error {
	for range 4 {
		if err := r.advance(s); err != nil {
			return err
		}
	}
	return nil
}
