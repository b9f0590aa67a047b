package tags

import (
	"github.com/silkworks/filament/pkg/nostr/tag"
)

// T is a list of tag.T, lists of string elements with ordering and no
// uniqueness constraint (not a set).
type T []tag.T

// GetFirst gets the first tag in tags that matches the prefix, see
// [tag.T.StartsWith].
func (t T) GetFirst(tagPrefix []string) *tag.T {
	for _, v := range t {
		if v.StartsWith(tagPrefix) {
			return &v
		}
	}
	return nil
}

// GetLast gets the last tag in tags that matches the prefix.
func (t T) GetLast(tagPrefix []string) *tag.T {
	for i := len(t) - 1; i >= 0; i-- {
		v := t[i]
		if v.StartsWith(tagPrefix) {
			return &v
		}
	}
	return nil
}

// GetAll gets all the tags that match the prefix.
func (t T) GetAll(tagPrefix ...string) T {
	result := make(T, 0, len(t))
	for _, v := range t {
		if v.StartsWith(tagPrefix) {
			result = append(result, v)
		}
	}
	return result
}

// FilterOut removes all tags that match the prefix.
func (t T) FilterOut(tagPrefix []string) T {
	filtered := make(T, 0, len(t))
	for _, v := range t {
		if !v.StartsWith(tagPrefix) {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// AppendUnique appends a tag if no existing tag shares its first two
// elements, otherwise does nothing.
func (t T) AppendUnique(tag tag.T) T {
	n := len(tag)
	if n > 2 {
		n = 2
	}
	if t.GetFirst(tag[:n]) == nil {
		return append(t, tag)
	}
	return t
}

// ContainsAny returns true if any tag with the given name has a value
// matching any of the candidate values.
func (t T) ContainsAny(tagName string, values ...string) bool {
	for _, v := range t {
		if len(v) < 2 {
			continue
		}
		if v.Key() != tagName {
			continue
		}
		for _, candidate := range values {
			if v.Value() == candidate {
				return true
			}
		}
	}
	return false
}

// ContainsProtectedMarker reports whether the event carries the NIP-70
// protected tag, a tag whose sole element is "-".
func (t T) ContainsProtectedMarker() bool {
	for _, v := range t {
		if len(v) == 1 && v[0] == "-" {
			return true
		}
	}
	return false
}

// MarshalTo appends the JSON encoding of T as [][]string to dst.
func (t T) MarshalTo(dst []byte) []byte {
	dst = append(dst, '[')
	for i, v := range t {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = v.MarshalTo(dst)
	}
	dst = append(dst, ']')
	return dst
}

func (t T) String() string { return string(t.MarshalTo(nil)) }
