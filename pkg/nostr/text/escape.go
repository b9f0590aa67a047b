// Package text implements the string escaping required for the canonical
// event form, which is minimal JSON escaping as in RFC8259 with no HTML
// escaping and no non-mandatory unicode escapes.
package text

// AppendEscaped appends s to dst as JSON string content, without the
// surrounding quotes.
func AppendEscaped(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			dst = append(dst, '\\', '"')
		case c == '\\':
			dst = append(dst, '\\', '\\')
		case c >= 0x20:
			dst = append(dst, c)
		case c == 0x08:
			dst = append(dst, '\\', 'b')
		case c == 0x09:
			dst = append(dst, '\\', 't')
		case c == 0x0a:
			dst = append(dst, '\\', 'n')
		case c == 0x0c:
			dst = append(dst, '\\', 'f')
		case c == 0x0d:
			dst = append(dst, '\\', 'r')
		default:
			const hexChars = "0123456789abcdef"
			dst = append(dst, '\\', 'u', '0', '0',
				hexChars[c>>4], hexChars[c&0xf])
		}
	}
	return dst
}

// EscapeJSONStringAndWrap returns s as a complete JSON string token.
func EscapeJSONStringAndWrap(s string) []byte {
	dst := make([]byte, 0, len(s)+2)
	dst = append(dst, '"')
	dst = AppendEscaped(dst, s)
	dst = append(dst, '"')
	return dst
}
