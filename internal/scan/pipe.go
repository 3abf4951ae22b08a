package scan

import (
	"go.uber.org/zap"

	"github.com/jacoelho/jv/internal/errcode"
	"github.com/jacoelho/jv/internal/sink"
	"github.com/jacoelho/jv/internal/stream"
)

// Pipe captures the value under the reader into out. Objects and arrays are
// copied verbatim, strings without their quotes and with escapes untouched.
// On return the reader is on the byte after the value.
func (s *Scanner) Pipe(out *sink.Sink) error {
	if s.r.Exhausted() {
		return s.fail(errcode.EndOfStream)
	}

	switch c := s.r.Current(); {
	case c == '{' || c == '[':
		s.logger.Debug("piping collection")
		return s.r.TraverseCollection(c, 1, out)
	case c == '"':
		s.logger.Debug("piping string")
		return s.r.TraverseStringContents(out)
	case c == '-' || (c >= '0' && c <= '9'):
		s.logger.Debug("piping number")
		return s.r.TraverseNumber(out)
	case c == 'n':
		s.logger.Debug("piping null")
		return s.r.TraverseNull(out)
	default:
		s.logger.Debug("not at a value", zap.String("byte", string(c)))
		return s.fail(stream.NotAtValue(c))
	}
}
