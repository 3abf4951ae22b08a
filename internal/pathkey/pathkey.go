// Package pathkey tokenizes value paths such as `dogs[0]["breed"].name` one
// segment at a time. Keys are views into the path string; parsing never
// copies.
package pathkey

import (
	"fmt"
	"strconv"

	"github.com/jacoelho/jv/internal/errcode"
)

// Kind identifies the syntax of a path segment.
type Kind uint8

const (
	ArrayIndex Kind = iota
	BracketedName
	Name
)

func (k Kind) String() string {
	switch k {
	case ArrayIndex:
		return "index"
	case BracketedName:
		return "bracketed name"
	case Name:
		return "name"
	default:
		return "unknown"
	}
}

// Key is one parsed path segment.
type Key struct {
	Kind Kind

	path  string
	start int // first byte of the name or index digits
	end   int // byte after the name or index digits
	next  int // first byte of the following segment
}

// Value returns the segment text without dots, brackets or quotes. Escapes
// in bracketed names are left as written.
func (k Key) Value() string {
	return k.path[k.start:k.end]
}

// Span returns the offset and length of Value within the path.
func (k Key) Span() (start, length int) {
	return k.start, k.end - k.start
}

// Rest returns the path following this segment.
func (k Key) Rest() string {
	return k.path[k.next:]
}

// Index parses the value of an ArrayIndex key. "0" is valid; any other
// value with a leading zero, a non-digit or an overflow is rejected.
func (k Key) Index() (int, error) {
	if k.Kind != ArrayIndex {
		return 0, fmt.Errorf("%w: %s segment %q is not an index", errcode.ArrayIndexError, k.Kind, k.Value())
	}
	return ParseIndex(k.Value())
}

// ParseIndex parses a decimal array index.
func ParseIndex(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty index", errcode.ArrayIndexError)
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, fmt.Errorf("%w: leading zero in %q", errcode.ArrayIndexError, s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%w: %q is not a decimal index", errcode.ArrayIndexError, s)
		}
	}

	index, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q out of range", errcode.ArrayIndexError, s)
	}
	return index, nil
}

// Parse returns the first segment of path.
func Parse(path string) (Key, error) {
	if path == "" {
		return Key{}, errcode.EmptyPath
	}

	key := Key{path: path}

	switch path[0] {
	case '[':
		if len(path) < 2 {
			return Key{}, badPath(path, "unterminated bracket")
		}
		switch c := path[1]; {
		case c >= '0' && c <= '9':
			key.Kind = ArrayIndex
			key.start = 1
		case c == '"':
			key.Kind = BracketedName
			key.start = 2
		default:
			return Key{}, badPath(path, "expected index or quoted name after '['")
		}
	case '.':
		key.Kind = Name
		key.start = 1
	default:
		key.Kind = Name
	}

	switch key.Kind {
	case ArrayIndex:
		end := indexByte(path, key.start, ']')
		if end < 0 {
			return Key{}, badPath(path, "missing ']'")
		}
		key.end = end
		key.next = end + 1

	case BracketedName:
		end := closingQuote(path, key.start)
		if end < 0 {
			return Key{}, badPath(path, "missing closing quote")
		}
		if end+1 >= len(path) || path[end+1] != ']' {
			return Key{}, badPath(path, "expected ']' after closing quote")
		}
		key.end = end
		key.next = end + 2

	case Name:
		end := len(path)
		for i := key.start; i < len(path); i++ {
			if path[i] == '[' || path[i] == '.' {
				end = i
				break
			}
		}
		key.end = end
		key.next = end
	}

	return key, nil
}

// Split tokenizes every segment of path.
func Split(path string) ([]Key, error) {
	var keys []Key
	for path != "" {
		key, err := Parse(path)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
		path = key.Rest()
	}
	return keys, nil
}

func badPath(path, reason string) error {
	return fmt.Errorf("%w: %s in %q", errcode.BadPath, reason, path)
}

func indexByte(s string, from int, c byte) int {
	for i := from; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

// closingQuote returns the offset of the first unescaped '"' at or after
// from, or -1.
func closingQuote(s string, from int) int {
	for i := from; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
