// Package scan matches a value path against a JSON stream in a single
// forward pass and pipes the matched value to a sink.
//
// Scan methods return the remaining path. An empty result means the whole
// path matched and the reader is on the first byte of the value. A non-empty
// result means nothing matched and the reader is on the byte after the
// scanned value. Errors are also recorded on the reader.
package scan

import (
	"go.uber.org/zap"

	"github.com/jacoelho/jv/internal/errcode"
	"github.com/jacoelho/jv/internal/pathkey"
	"github.com/jacoelho/jv/internal/stream"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// Scanner drives a stream.Reader through object and array structure.
type Scanner struct {
	r      *stream.Reader
	logger *zap.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger traces scan decisions at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a scanner over an initialized reader.
func New(r *stream.Reader, opts ...Option) *Scanner {
	s := &Scanner{
		r:      r,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Matched reports whether a remaining path returned by a scan method denotes
// a full match.
func Matched(rest string) bool {
	return rest == ""
}

// Document skips a leading byte order mark and whitespace, then scans the
// top-level value.
func (s *Scanner) Document(path string) (string, error) {
	if err := s.skipBOM(); err != nil {
		return "", err
	}
	if s.r.Exhausted() {
		return "", s.fail(errcode.EndOfStream)
	}
	if !stream.ValueStart.Contains(s.r.Current()) {
		if !stream.Whitespace.Contains(s.r.Current()) {
			return "", s.fail(stream.NotAtValue(s.r.Current()))
		}
		if err := s.r.SearchTo(&stream.ValueStart, nil); err != nil {
			return "", err
		}
	}
	return s.Value(path)
}

// Value scans the value under the reader.
func (s *Scanner) Value(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	switch s.r.Current() {
	case '{':
		return s.Object(path)
	case '[':
		return s.Array(path)
	default:
		// A scalar cannot hold the rest of the path.
		if err := s.r.SkipValue(); err != nil {
			return "", err
		}
		return path, nil
	}
}

// Object scans the members of the object whose '{' is under the reader.
func (s *Scanner) Object(path string) (string, error) {
	s.logger.Debug("scanning object", zap.String("path", path))

	if err := s.r.SearchTo(&stream.KeyOrClose, nil); err != nil {
		return "", err
	}

	for s.r.Current() != '}' {
		rest, err := s.Pair(path)
		if err != nil {
			return "", err
		}
		if Matched(rest) {
			return rest, nil
		}

		// The reader is on the byte after the value.
		if s.r.Current() != '}' {
			if err := s.r.SearchTo(&stream.KeyOrClose, nil); err != nil {
				return "", err
			}
		}
	}

	if err := s.r.Advance(nil); err != nil {
		return "", err
	}
	return path, nil
}

// Pair scans one key-value member. The reader must be on the key's opening
// quote.
func (s *Scanner) Pair(path string) (string, error) {
	key, err := pathkey.Parse(path)
	if err != nil {
		return "", s.fail(err)
	}

	matched, err := s.Key(key)
	if err != nil {
		return "", err
	}

	if err := s.r.SearchTo(&stream.ValueStart, nil); err != nil {
		return "", err
	}

	if !matched {
		if err := s.r.SkipValue(); err != nil {
			return "", err
		}
		return path, nil
	}

	return s.Value(key.Rest())
}

// Key compares the object key under the reader with key, byte for byte and
// without decoding escapes. The reader must be on the opening quote and is
// left on the closing quote.
func (s *Scanner) Key(key pathkey.Key) (bool, error) {
	want := key.Value()

	if err := s.r.Advance(nil); err != nil {
		return false, err
	}

	escaped := false
	for i := 0; i < len(want); i++ {
		c := s.r.Current()
		if c != want[i] || (c == '"' && !escaped) {
			return false, s.mismatch(want, escaped)
		}
		escaped = c == '\\' && !escaped
		if err := s.r.Advance(nil); err != nil {
			return false, err
		}
	}

	if s.r.Current() != '"' || escaped {
		return false, s.mismatch(want, escaped)
	}
	return true, nil
}

// mismatch moves the reader to the closing quote of the current key.
func (s *Scanner) mismatch(want string, escaped bool) error {
	s.logger.Debug("key mismatch", zap.String("want", want))

	// The byte after an unescaped backslash is content, never the closing
	// quote.
	if escaped {
		if err := s.r.Advance(nil); err != nil {
			return err
		}
	}
	if s.r.Current() == '"' {
		return nil
	}
	return s.r.TraverseStringBody()
}

// Array walks the elements of the array whose '[' is under the reader up to
// the index named by the first path segment.
func (s *Scanner) Array(path string) (string, error) {
	key, err := pathkey.Parse(path)
	if err != nil {
		return "", s.fail(err)
	}

	if key.Kind != pathkey.ArrayIndex {
		s.logger.Debug("array does not match name segment", zap.String("segment", key.Value()))
		if err := s.r.SkipCollection(); err != nil {
			return "", err
		}
		return path, nil
	}

	index, err := key.Index()
	if err != nil {
		return "", s.fail(err)
	}

	s.logger.Debug("scanning array", zap.Int("index", index), zap.String("path", path))

	for i := 0; i <= index; i++ {
		if i == 0 || s.r.Current() != ']' {
			if err := s.r.SearchTo(&stream.ElementOrClose, nil); err != nil {
				return "", err
			}
		}

		if s.r.Current() == ']' {
			s.logger.Debug("array ended before index", zap.Int("index", index), zap.Int("length", i))
			if err := s.r.Advance(nil); err != nil {
				return "", err
			}
			return path, nil
		}

		if i == index {
			rest, err := s.Value(key.Rest())
			if err != nil || Matched(rest) {
				return rest, err
			}
			break
		}

		if err := s.r.SkipValue(); err != nil {
			return "", err
		}
	}

	// The reader is on the byte after the element at index.
	if err := s.r.TraverseCollection('[', 1, nil); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Scanner) skipBOM() error {
	for _, b := range bom {
		if s.r.Current() != b {
			return nil
		}
		if err := s.r.Advance(nil); err != nil {
			return err
		}
	}
	return nil
}

// fail records err on the reader so that Err reports the first failure.
func (s *Scanner) fail(err error) error {
	s.r.Record(err)
	return err
}
