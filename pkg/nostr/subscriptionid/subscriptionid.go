package subscriptionid

import (
	"errors"

	"github.com/silkworks/filament/pkg/nostr/text"
)

// T is an arbitrary string of 1-64 characters in length used as a
// session-scoped subscription identifier.
type T string

func (si T) String() string { return string(si) }

func (si T) MarshalJSON() (b []byte, err error) {
	return text.EscapeJSONStringAndWrap(string(si)), nil
}

func (si *T) UnmarshalJSON(b []byte) (err error) {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return errors.New("subscription ID not a JSON string")
	}
	*si = T(b[1 : len(b)-1])
	return
}

// New inspects a string and converts it to T if it is valid.
func New(s string) (T, error) {
	si := T(s)
	if si.IsValid() {
		return si, nil
	}
	return si[:0], errors.New(
		"invalid subscription ID - either empty or > 64 char length")
}

// IsValid returns true if the subscription id is between 1 and 64
// characters.
func (si T) IsValid() bool { return len(si) <= 64 && len(si) > 0 }
