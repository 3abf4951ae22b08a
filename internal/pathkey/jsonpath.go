package pathkey

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theory/jsonpath"

	"github.com/jacoelho/jv/internal/errcode"
)

// ToJSONPath renders path as an RFC 9535 JSONPath query using bracket
// notation for every segment, e.g. `dogs[0].breed` becomes
// `$["dogs"][0]["breed"]`. The empty path selects the root.
func ToJSONPath(path string) (string, error) {
	keys, err := Split(path)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteByte('$')
	for _, key := range keys {
		switch key.Kind {
		case ArrayIndex:
			index, err := key.Index()
			if err != nil {
				return "", err
			}
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(index))
			b.WriteByte(']')
		case BracketedName:
			// Already written with JSON escapes.
			b.WriteString(`["`)
			b.WriteString(key.Value())
			b.WriteString(`"]`)
		case Name:
			b.WriteString(`["`)
			writeEscaped(&b, key.Value())
			b.WriteString(`"]`)
		}
	}

	query := b.String()
	if _, err := jsonpath.Parse(query); err != nil {
		return "", fmt.Errorf("%w: %q is not a valid JSONPath: %v", errcode.BadPath, query, err)
	}

	return query, nil
}

func writeEscaped(b *strings.Builder, s string) {
	const hex = "0123456789abcdef"
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c < 0x20:
			b.WriteString(`\u00`)
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0xf])
		default:
			b.WriteByte(c)
		}
	}
}
