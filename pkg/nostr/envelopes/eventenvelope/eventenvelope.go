package eventenvelope

import (
	"encoding/json"
	"fmt"

	"github.com/silkworks/filament/pkg/nostr/envelopes/labels"
	"github.com/silkworks/filament/pkg/nostr/event"
	"github.com/silkworks/filament/pkg/nostr/interfaces/enveloper"
	"github.com/silkworks/filament/pkg/nostr/subscriptionid"
)

var _ enveloper.I = (*T)(nil)

// T is both the client submission form ["EVENT", <event>] and the relay
// delivery form ["EVENT", <subscription id>, <event>]; the subscription id
// is present only on relay to client deliveries.
type T struct {
	SubscriptionID subscriptionid.T
	Event          *event.T
}

func (env *T) Label() string { return labels.EVENT }

func (env *T) Bytes() (b []byte) {
	b = append(b, `["EVENT",`...)
	if env.SubscriptionID != "" {
		sid, _ := env.SubscriptionID.MarshalJSON()
		b = append(b, sid...)
		b = append(b, ',')
	}
	b = append(b, env.Event.Serialize()...)
	b = append(b, ']')
	return
}

func (env *T) String() string { return string(env.Bytes()) }

func (env *T) MarshalJSON() ([]byte, error) { return env.Bytes(), nil }

// Unmarshal decodes the array elements after the label.
func (env *T) Unmarshal(elems []json.RawMessage) (err error) {
	switch len(elems) {
	case 1:
		env.Event = &event.T{}
		return json.Unmarshal(elems[0], env.Event)
	case 2:
		if err = json.Unmarshal(elems[0], &env.SubscriptionID); err != nil {
			return
		}
		env.Event = &event.T{}
		return json.Unmarshal(elems[1], env.Event)
	default:
		return fmt.Errorf("EVENT envelope expects 1 or 2 fields, got %d",
			len(elems))
	}
}
