package closedenvelope

import (
	"encoding/json"
	"fmt"

	"github.com/silkworks/filament/pkg/nostr/envelopes/labels"
	"github.com/silkworks/filament/pkg/nostr/interfaces/enveloper"
	"github.com/silkworks/filament/pkg/nostr/subscriptionid"
	"github.com/silkworks/filament/pkg/nostr/text"
)

var _ enveloper.I = (*T)(nil)

// T notifies the client that the relay ended a subscription on its side:
// ["CLOSED", <subscription id>, <reason>].
type T struct {
	ID     subscriptionid.T
	Reason string
}

func (env *T) Label() string { return labels.CLOSED }

func (env *T) Bytes() (b []byte) {
	b = append(b, `["CLOSED",`...)
	sid, _ := env.ID.MarshalJSON()
	b = append(b, sid...)
	b = append(b, ',')
	b = append(b, text.EscapeJSONStringAndWrap(env.Reason)...)
	b = append(b, ']')
	return
}

func (env *T) String() string { return string(env.Bytes()) }

func (env *T) MarshalJSON() ([]byte, error) { return env.Bytes(), nil }

func (env *T) Unmarshal(elems []json.RawMessage) (err error) {
	if len(elems) < 1 {
		return fmt.Errorf("CLOSED envelope expects at least 1 field")
	}
	if err = json.Unmarshal(elems[0], &env.ID); err != nil {
		return
	}
	if len(elems) > 1 {
		return json.Unmarshal(elems[1], &env.Reason)
	}
	return
}
