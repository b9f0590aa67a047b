package eventid

import (
	"fmt"

	"github.com/silkworks/filament/pkg/hex"
	"github.com/silkworks/filament/pkg/nostr/text"
)

// T is the SHA256 hash in hexadecimal of the canonical form of an event.
type T string

func (ei T) String() string { return string(ei) }

func (ei T) Bytes() (b []byte) {
	b, _ = hex.Dec(string(ei))
	return
}

func (ei T) MarshalJSON() (b []byte, err error) {
	return text.EscapeJSONStringAndWrap(string(ei)), nil
}

func (ei *T) UnmarshalJSON(b []byte) (err error) {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("event ID not a JSON string: %s", b)
	}
	*ei = T(b[1 : len(b)-1])
	return
}

// New inspects a string and ensures it is a valid, 64 character long
// hexadecimal string, returning the string coerced to the type.
func New(s string) (ei T, err error) {
	ei = T(s)
	if err = ei.Validate(); err != nil {
		ei = ei[:0]
		return
	}
	return
}

// Validate checks the T string is valid hex and 64 characters long.
func (ei T) Validate() (err error) {
	if _, err = hex.Dec(string(ei)); err != nil {
		return
	}
	if len(ei) != 64 {
		return fmt.Errorf("event ID invalid length: got %d expect 64",
			len(ei))
	}
	return
}
