package reqenvelope

import (
	"encoding/json"
	"fmt"

	"github.com/silkworks/filament/pkg/nostr/envelopes/labels"
	"github.com/silkworks/filament/pkg/nostr/filter"
	"github.com/silkworks/filament/pkg/nostr/filters"
	"github.com/silkworks/filament/pkg/nostr/interfaces/enveloper"
	"github.com/silkworks/filament/pkg/nostr/subscriptionid"
)

var _ enveloper.I = (*T)(nil)

// T is the client request to create or replace a subscription:
// ["REQ", <subscription id>, <filter>...].
type T struct {
	SubscriptionID subscriptionid.T
	Filters        filters.T
}

func (env *T) Label() string { return labels.REQ }

func (env *T) Bytes() (b []byte) {
	b = append(b, `["REQ",`...)
	sid, _ := env.SubscriptionID.MarshalJSON()
	b = append(b, sid...)
	for _, f := range env.Filters {
		b = append(b, ',')
		fb, _ := f.MarshalJSON()
		b = append(b, fb...)
	}
	b = append(b, ']')
	return
}

func (env *T) String() string { return string(env.Bytes()) }

func (env *T) MarshalJSON() ([]byte, error) { return env.Bytes(), nil }

func (env *T) Unmarshal(elems []json.RawMessage) (err error) {
	if len(elems) < 2 {
		return fmt.Errorf("REQ envelope expects at least 2 fields, got %d",
			len(elems))
	}
	if err = json.Unmarshal(elems[0], &env.SubscriptionID); err != nil {
		return
	}
	if !env.SubscriptionID.IsValid() {
		return fmt.Errorf("invalid subscription ID in REQ envelope")
	}
	env.Filters = make(filters.T, 0, len(elems)-1)
	for _, raw := range elems[1:] {
		f := &filter.T{}
		if err = json.Unmarshal(raw, f); err != nil {
			return
		}
		env.Filters = append(env.Filters, f)
	}
	return
}
