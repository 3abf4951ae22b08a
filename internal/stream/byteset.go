package stream

// ByteSet is a membership table over all 256 byte values.
type ByteSet [256]bool

// NewByteSet returns the set of bytes in chars.
func NewByteSet(chars string) ByteSet {
	var set ByteSet
	for i := 0; i < len(chars); i++ {
		set[chars[i]] = true
	}
	return set
}

// Contains reports whether b is in the set.
func (s *ByteSet) Contains(b byte) bool {
	return s[b]
}

// Index returns the index of the first byte of p in the set, or -1.
func (s *ByteSet) Index(p []byte) int {
	for i, b := range p {
		if s[b] {
			return i
		}
	}
	return -1
}

// Union returns a new set holding the members of both sets.
func (s ByteSet) Union(other ByteSet) ByteSet {
	for b, ok := range other {
		if ok {
			s[b] = true
		}
	}
	return s
}

var (
	// ValueStart holds the bytes that can begin a JSON value. The boolean
	// initials are included so that booleans are found and rejected instead
	// of silently skipped.
	ValueStart = NewByteSet("{[\"0123456789-ntf")

	// ElementOrClose is ValueStart plus the array terminator.
	ElementOrClose = NewByteSet("]").Union(ValueStart)

	// KeyOrClose finds the next object key or the object terminator.
	KeyOrClose = NewByteSet("\"}")

	// Whitespace is JSON insignificant whitespace.
	Whitespace = NewByteSet(" \t\r\n")

	numberEnd     = NewByteSet(" \t\r\n}],")
	quoteOrEscape = NewByteSet("\"\\")
	objectMarks   = NewByteSet("{}\"")
	arrayMarks    = NewByteSet("[]\"")
)
