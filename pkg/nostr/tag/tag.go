package tag

import (
	"strings"

	"github.com/silkworks/filament/pkg/nostr/text"
)

// The tag position meanings so they are clear when reading.
const (
	Key = iota
	Value
	Relay
)

// T is a list of strings with a literal ordering. Not a set, there can be
// repeating elements.
type T []string

// StartsWith checks a tag has the same initial set of elements. The last
// element of the prefix is matched as an initial substring of its
// corresponding element.
func (t T) StartsWith(prefix []string) bool {
	prefixLen := len(prefix)
	if prefixLen > len(t) {
		return false
	}
	for i := 0; i < prefixLen-1; i++ {
		if prefix[i] != t[i] {
			return false
		}
	}
	return strings.HasPrefix(t[prefixLen-1], prefix[prefixLen-1])
}

// Key returns the first element of the tag.
func (t T) Key() string {
	if len(t) > Key {
		return t[Key]
	}
	return ""
}

// Value returns the second element of the tag.
func (t T) Value() string {
	if len(t) > Value {
		return t[Value]
	}
	return ""
}

// Contains reports whether s is an element of the tag.
func (t T) Contains(s string) bool {
	for i := range t {
		if t[i] == s {
			return true
		}
	}
	return false
}

// Equals compares two tags for equal length and content.
func (t T) Equals(t1 T) bool {
	if len(t) != len(t1) {
		return false
	}
	for i := range t {
		if t[i] != t1[i] {
			return false
		}
	}
	return true
}

func (t T) Clone() (c T) {
	c = make(T, len(t))
	copy(c, t)
	return
}

// MarshalTo appends the JSON form of T to dst. String escaping is minimal
// as required for the canonical event form.
func (t T) MarshalTo(dst []byte) []byte {
	dst = append(dst, '[')
	for i, s := range t {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, text.EscapeJSONStringAndWrap(s)...)
	}
	dst = append(dst, ']')
	return dst
}

func (t T) String() string { return string(t.MarshalTo(nil)) }
