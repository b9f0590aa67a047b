package filters

import (
	"encoding/json"

	"github.com/silkworks/filament/pkg/nostr/event"
	"github.com/silkworks/filament/pkg/nostr/filter"
)

// T is the set of filters of one subscription. An event matches the
// subscription when at least one filter matches it (disjunction), so adding
// a filter to the set can never turn a match into a non-match.
type T []*filter.T

// Match tests the event against each filter in the set.
func (ff T) Match(ev *event.T) bool {
	for _, f := range ff {
		if f.Matches(ev) {
			return true
		}
	}
	return false
}

func (ff T) String() string {
	b, _ := json.Marshal(ff)
	return string(b)
}
