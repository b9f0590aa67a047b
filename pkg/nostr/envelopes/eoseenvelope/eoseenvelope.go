package eoseenvelope

import (
	"encoding/json"
	"fmt"

	"github.com/silkworks/filament/pkg/nostr/envelopes/labels"
	"github.com/silkworks/filament/pkg/nostr/interfaces/enveloper"
	"github.com/silkworks/filament/pkg/nostr/subscriptionid"
)

var _ enveloper.I = (*T)(nil)

// T marks the end of stored events for a subscription; everything after it
// is live: ["EOSE", <subscription id>].
type T struct {
	Sub subscriptionid.T
}

func (env *T) Label() string { return labels.EOSE }

func (env *T) Bytes() (b []byte) {
	b = append(b, `["EOSE",`...)
	sid, _ := env.Sub.MarshalJSON()
	b = append(b, sid...)
	b = append(b, ']')
	return
}

func (env *T) String() string { return string(env.Bytes()) }

func (env *T) MarshalJSON() ([]byte, error) { return env.Bytes(), nil }

func (env *T) Unmarshal(elems []json.RawMessage) (err error) {
	if len(elems) != 1 {
		return fmt.Errorf("EOSE envelope expects 1 field, got %d",
			len(elems))
	}
	return json.Unmarshal(elems[0], &env.Sub)
}
