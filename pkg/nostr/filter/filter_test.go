package filter

import (
	"encoding/json"
	"testing"

	"github.com/silkworks/filament/pkg/nostr/event"
	"github.com/silkworks/filament/pkg/nostr/kind"
	"github.com/silkworks/filament/pkg/nostr/kinds"
	"github.com/silkworks/filament/pkg/nostr/tag"
	"github.com/silkworks/filament/pkg/nostr/tags"
	"github.com/silkworks/filament/pkg/nostr/timestamp"
)

func ts(t int64) *timestamp.Tp { return timestamp.T(t).Ptr() }

func sampleEvent() *event.T {
	return &event.T{
		ID:        "5d2b66a88f9a9d0b1b7b8e5c4e2f6a1c0d9e8f7a6b5c4d3e2f1a0b9c8d7e6f5a",
		PubKey:    "8e0d3d3eb2881ec137a11debe736a9086715a8c8beeeda615780064d68bc25dd",
		CreatedAt: 1000,
		Kind:      kind.TextNote,
		Tags:      tags.T{{"t", "news"}, {"p", "deadbeef"}},
		Content:   "hi",
	}
}

func TestMatchesEmptyFilter(t *testing.T) {
	f := &T{}
	if !f.Matches(sampleEvent()) {
		t.Fatal("empty filter must match everything")
	}
	if f.Matches(nil) {
		t.Fatal("nil event matched")
	}
}

func TestMatchesConjunction(t *testing.T) {
	ev := sampleEvent()
	f := &T{
		Kinds:   kinds.T{kind.TextNote},
		Authors: tag.T{ev.PubKey},
		Tags:    TagMap{"t": tag.T{"news", "sports"}},
	}
	if !f.Matches(ev) {
		t.Fatal("conforming event did not match")
	}
	f.Kinds = kinds.T{kind.Deletion}
	if f.Matches(ev) {
		t.Fatal("wrong kind matched")
	}
}

func TestMatchesPrefix(t *testing.T) {
	ev := sampleEvent()
	f := &T{Authors: tag.T{ev.PubKey[:8]}}
	if !f.Matches(ev) {
		t.Fatal("author prefix did not match")
	}
	f = &T{IDs: tag.T{ev.ID.String()[:4]}}
	if !f.Matches(ev) {
		t.Fatal("id prefix did not match")
	}
	f = &T{Authors: tag.T{"ffff"}}
	if f.Matches(ev) {
		t.Fatal("wrong author prefix matched")
	}
}

func TestMatchesTimeBoundsInclusive(t *testing.T) {
	ev := sampleEvent() // created_at 1000
	for _, c := range []struct {
		since, until int64
		want         bool
	}{
		{1000, 1000, true},
		{999, 1001, true},
		{1001, 0, false},
		{0, 999, false},
	} {
		f := &T{}
		if c.since != 0 {
			f.Since = ts(c.since)
		}
		if c.until != 0 {
			f.Until = ts(c.until)
		}
		if got := f.Matches(ev); got != c.want {
			t.Fatalf("since=%d until=%d: got %v want %v",
				c.since, c.until, got, c.want)
		}
	}
}

func TestTagQueryRoundTrip(t *testing.T) {
	f := &T{
		Kinds: kinds.T{kind.TextNote},
		Tags:  TagMap{"e": tag.T{"abc"}, "p": tag.T{"def"}},
		Since: ts(5),
	}
	b, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	f2 := &T{}
	if err = json.Unmarshal(b, f2); err != nil {
		t.Fatal(err)
	}
	if !Equal(f, f2) {
		t.Fatalf("round trip changed filter: %s", string(b))
	}
	if len(f2.sortedTagKeys()) != 2 {
		t.Fatal("tag constraints lost in round trip")
	}
}

func TestEqual(t *testing.T) {
	a := &T{Kinds: kinds.T{1}, Since: ts(10)}
	b := &T{Kinds: kinds.T{1}, Since: ts(10)}
	if !Equal(a, b) {
		t.Fatal("identical filters not equal")
	}
	b.Until = ts(20)
	if Equal(a, b) {
		t.Fatal("different filters equal")
	}
}
