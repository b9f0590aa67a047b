package kinds

import (
	"github.com/silkworks/filament/pkg/nostr/kind"
)

// T is a set of kinds, as found in the kinds field of a filter.
type T []kind.T

func (k T) Contains(s kind.T) bool {
	for i := range k {
		if k[i] == s {
			return true
		}
	}
	return false
}

func (k T) Equals(k1 T) bool {
	if len(k) != len(k1) {
		return false
	}
	for i := range k {
		if k[i] != k1[i] {
			return false
		}
	}
	return true
}

func (k T) Clone() (c T) {
	c = make(T, len(k))
	copy(c, k)
	return
}
