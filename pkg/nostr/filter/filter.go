package filter

import (
	"os"
	"strings"

	"github.com/silkworks/filament/pkg/nostr/event"
	"github.com/silkworks/filament/pkg/nostr/kinds"
	"github.com/silkworks/filament/pkg/nostr/tag"
	"github.com/silkworks/filament/pkg/nostr/timestamp"
	"github.com/silkworks/filament/pkg/slog"
)

var log, chk = slog.New(os.Stderr)

// T is a query where any subset of the fields can be filled in. A filter
// matches an event when every present constraint is satisfied (conjunction).
//
// The Tags field is a special case on the wire: each tag constraint appears
// as its own JSON key of the form "#<name>", promoted to the top level of
// the filter object. The custom marshaller in json.go handles that.
type T struct {
	IDs     tag.T         `json:"ids,omitempty"`
	Kinds   kinds.T       `json:"kinds,omitempty"`
	Authors tag.T         `json:"authors,omitempty"`
	Tags    TagMap        `json:"-"`
	Since   *timestamp.Tp `json:"since,omitempty"`
	Until   *timestamp.Tp `json:"until,omitempty"`
	Limit   *int          `json:"limit,omitempty"`
	Search  string        `json:"search,omitempty"`
}

// TagMap maps a tag name to the set of acceptable values.
type TagMap map[string]tag.T

func (t TagMap) Clone() (t1 TagMap) {
	if t == nil {
		return
	}
	t1 = make(TagMap)
	for i := range t {
		t1[i] = t[i].Clone()
	}
	return
}

// matchPrefix reports whether any element of the set is a prefix of s. Full
// length values therefore match exactly.
func matchPrefix(set tag.T, s string) bool {
	for i := range set {
		if strings.HasPrefix(s, set[i]) {
			return true
		}
	}
	return false
}

// Matches checks the event against every present constraint of the filter.
// Since and Until are both inclusive bounds on created_at.
func (f *T) Matches(ev *event.T) bool {
	if ev == nil {
		return false
	}
	if f.IDs != nil && !matchPrefix(f.IDs, ev.ID.String()) {
		return false
	}
	if f.Kinds != nil && !f.Kinds.Contains(ev.Kind) {
		return false
	}
	if f.Authors != nil && !matchPrefix(f.Authors, ev.PubKey) {
		return false
	}
	for name, values := range f.Tags {
		if values != nil && !ev.Tags.ContainsAny(name, values...) {
			return false
		}
	}
	if f.Since != nil && ev.CreatedAt < f.Since.T() {
		return false
	}
	if f.Until != nil && ev.CreatedAt > f.Until.T() {
		return false
	}
	return true
}

func arePointerValuesEqual[V comparable](a *V, b *V) bool {
	if a == nil && b == nil {
		return true
	}
	if a != nil && b != nil {
		return *a == *b
	}
	return false
}

// Equal checks two filters for matching-relevant equality.
func Equal(a, b *T) bool {
	switch {
	case !a.Kinds.Equals(b.Kinds),
		!a.IDs.Equals(b.IDs),
		!a.Authors.Equals(b.Authors),
		len(a.Tags) != len(b.Tags),
		!arePointerValuesEqual(a.Since, b.Since),
		!arePointerValuesEqual(a.Until, b.Until),
		a.Search != b.Search:

		return false
	}
	for name, av := range a.Tags {
		if bv, ok := b.Tags[name]; !ok {
			return false
		} else if !av.Equals(bv) {
			return false
		}
	}
	return true
}

func (f *T) Clone() (clone *T) {
	clone = &T{
		IDs:     f.IDs.Clone(),
		Authors: f.Authors.Clone(),
		Kinds:   f.Kinds.Clone(),
		Search:  f.Search,
		Tags:    f.Tags.Clone(),
		Since:   f.Since.Clone(),
		Until:   f.Until.Clone(),
	}
	if f.Limit != nil {
		lim := *f.Limit
		clone.Limit = &lim
	}
	return
}
