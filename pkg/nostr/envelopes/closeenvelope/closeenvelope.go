package closeenvelope

import (
	"encoding/json"
	"fmt"

	"github.com/silkworks/filament/pkg/nostr/envelopes/labels"
	"github.com/silkworks/filament/pkg/nostr/interfaces/enveloper"
	"github.com/silkworks/filament/pkg/nostr/subscriptionid"
)

var _ enveloper.I = (*T)(nil)

// T is the client request to destroy a subscription:
// ["CLOSE", <subscription id>].
type T struct {
	ID subscriptionid.T
}

func (env *T) Label() string { return labels.CLOSE }

func (env *T) Bytes() (b []byte) {
	b = append(b, `["CLOSE",`...)
	sid, _ := env.ID.MarshalJSON()
	b = append(b, sid...)
	b = append(b, ']')
	return
}

func (env *T) String() string { return string(env.Bytes()) }

func (env *T) MarshalJSON() ([]byte, error) { return env.Bytes(), nil }

func (env *T) Unmarshal(elems []json.RawMessage) (err error) {
	if len(elems) != 1 {
		return fmt.Errorf("CLOSE envelope expects 1 field, got %d",
			len(elems))
	}
	return json.Unmarshal(elems[0], &env.ID)
}
