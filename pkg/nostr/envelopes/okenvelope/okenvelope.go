package okenvelope

import (
	"encoding/json"
	"fmt"

	"github.com/silkworks/filament/pkg/nostr/envelopes/labels"
	"github.com/silkworks/filament/pkg/nostr/eventid"
	"github.com/silkworks/filament/pkg/nostr/interfaces/enveloper"
	"github.com/silkworks/filament/pkg/nostr/text"
)

// Machine readable prefixes of the reason string.
const (
	PoW         = "pow"
	Duplicate   = "duplicate"
	Blocked     = "blocked"
	RateLimited = "rate-limited"
	Invalid     = "invalid"
	Error       = "error"
)

var _ enveloper.I = (*T)(nil)

// T is a relay message sent in response to a submitted event to indicate
// acceptance (OK is true) or rejection, with a human readable Reason.
type T struct {
	ID     eventid.T
	OK     bool
	Reason string
}

func (env *T) Label() string { return labels.OK }

func (env *T) Bytes() (b []byte) {
	b = append(b, `["OK",`...)
	b = append(b, text.EscapeJSONStringAndWrap(env.ID.String())...)
	b = append(b, ',')
	if env.OK {
		b = append(b, "true"...)
	} else {
		b = append(b, "false"...)
	}
	b = append(b, ',')
	b = append(b, text.EscapeJSONStringAndWrap(env.Reason)...)
	b = append(b, ']')
	return
}

func (env *T) String() string { return string(env.Bytes()) }

func (env *T) MarshalJSON() ([]byte, error) { return env.Bytes(), nil }

func (env *T) Unmarshal(elems []json.RawMessage) (err error) {
	if len(elems) < 2 {
		return fmt.Errorf("OK envelope expects at least 2 fields, got %d",
			len(elems))
	}
	if err = json.Unmarshal(elems[0], &env.ID); err != nil {
		return
	}
	if err = json.Unmarshal(elems[1], &env.OK); err != nil {
		return
	}
	if len(elems) > 2 {
		return json.Unmarshal(elems[2], &env.Reason)
	}
	return
}
