package badger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/silkworks/filament/pkg/eventstore"
	"github.com/silkworks/filament/pkg/nostr/event"
	"github.com/silkworks/filament/pkg/nostr/filter"
	"github.com/silkworks/filament/pkg/nostr/kind"
	"github.com/silkworks/filament/pkg/nostr/kinds"
	"github.com/silkworks/filament/pkg/nostr/tag"
	"github.com/silkworks/filament/pkg/nostr/tags"
	"github.com/silkworks/filament/pkg/nostr/timestamp"
)

var testSec = "f16dca5c36931305a4ac30d31b77962af96ea6b7240736da11af318fb7e11317"

func testBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{InMemory: true}
	if err := b.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(b.Close)
	return b
}

func signedNote(t *testing.T, ts timestamp.T, content string) *event.T {
	t.Helper()
	ev := &event.T{
		CreatedAt: ts,
		Kind:      kind.TextNote,
		Tags:      tags.T{{"t", "test"}},
		Content:   content,
	}
	if err := ev.Sign(testSec); err != nil {
		t.Fatal(err)
	}
	return ev
}

func collect(t *testing.T, b *Backend, f *filter.T) (evs []*event.T) {
	t.Helper()
	ch, err := b.QueryEvents(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	for ev := range ch {
		evs = append(evs, ev)
	}
	return
}

func TestSaveAndQueryNewestFirst(t *testing.T) {
	b := testBackend(t)
	c := context.Background()
	for i := 0; i < 5; i++ {
		ev := signedNote(t, timestamp.T(1000+i), fmt.Sprintf("note %d", i))
		if err := b.SaveEvent(c, ev); err != nil {
			t.Fatal(err)
		}
	}
	evs := collect(t, b, &filter.T{Kinds: kinds.T{kind.TextNote}})
	if len(evs) != 5 {
		t.Fatalf("expected 5 events, got %d", len(evs))
	}
	for i := 1; i < len(evs); i++ {
		if evs[i].CreatedAt > evs[i-1].CreatedAt {
			t.Fatal("results not in reverse chronological order")
		}
	}
}

func TestDuplicateSave(t *testing.T) {
	b := testBackend(t)
	c := context.Background()
	ev := signedNote(t, 1000, "once")
	if err := b.SaveEvent(c, ev); err != nil {
		t.Fatal(err)
	}
	err := b.SaveEvent(c, ev)
	if !errors.Is(err, eventstore.ErrDupEvent) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if evs := collect(t, b, &filter.T{}); len(evs) != 1 {
		t.Fatalf("duplicate was stored: %d events", len(evs))
	}
}

func TestQueryByID(t *testing.T) {
	b := testBackend(t)
	c := context.Background()
	ev := signedNote(t, 1000, "target")
	other := signedNote(t, 1001, "other")
	if err := b.SaveEvent(c, ev); err != nil {
		t.Fatal(err)
	}
	if err := b.SaveEvent(c, other); err != nil {
		t.Fatal(err)
	}
	evs := collect(t, b, &filter.T{IDs: tag.T{ev.ID.String()}})
	if len(evs) != 1 || evs[0].ID != ev.ID {
		t.Fatalf("id query returned wrong results: %v", evs)
	}
}

func TestQueryLimit(t *testing.T) {
	b := testBackend(t)
	c := context.Background()
	for i := 0; i < 10; i++ {
		ev := signedNote(t, timestamp.T(1000+i), fmt.Sprintf("n%d", i))
		if err := b.SaveEvent(c, ev); err != nil {
			t.Fatal(err)
		}
	}
	limit := 3
	evs := collect(t, b, &filter.T{Limit: &limit})
	if len(evs) != 3 {
		t.Fatalf("limit ignored: got %d events", len(evs))
	}
	// newest events win when capped
	if evs[0].CreatedAt != 1009 {
		t.Fatalf("expected newest event first, got %d", evs[0].CreatedAt)
	}
}

func TestReplaceableEviction(t *testing.T) {
	b := testBackend(t)
	c := context.Background()
	older := &event.T{
		CreatedAt: 1000,
		Kind:      kind.ProfileMetadata,
		Content:   `{"name":"old"}`,
	}
	if err := older.Sign(testSec); err != nil {
		t.Fatal(err)
	}
	newer := &event.T{
		CreatedAt: 2000,
		Kind:      kind.ProfileMetadata,
		Content:   `{"name":"new"}`,
	}
	if err := newer.Sign(testSec); err != nil {
		t.Fatal(err)
	}
	if err := b.SaveEvent(c, older); err != nil {
		t.Fatal(err)
	}
	if err := b.SaveEvent(c, newer); err != nil {
		t.Fatal(err)
	}
	evs := collect(t, b, &filter.T{Kinds: kinds.T{kind.ProfileMetadata}})
	if len(evs) != 1 || evs[0].ID != newer.ID {
		t.Fatalf("replaceable event not evicted: %v", evs)
	}
	// a late arriving older version must not evict the newer one
	stale := &event.T{
		CreatedAt: 500,
		Kind:      kind.ProfileMetadata,
		Content:   `{"name":"stale"}`,
	}
	if err := stale.Sign(testSec); err != nil {
		t.Fatal(err)
	}
	if err := b.SaveEvent(c, stale); err != nil {
		t.Fatal(err)
	}
	evs = collect(t, b, &filter.T{Kinds: kinds.T{kind.ProfileMetadata}})
	for _, ev := range evs {
		if ev.ID == newer.ID {
			return
		}
	}
	t.Fatal("newer replaceable event evicted by a stale one")
}

func TestDeleteEvent(t *testing.T) {
	b := testBackend(t)
	c := context.Background()
	ev := signedNote(t, 1000, "doomed")
	if err := b.SaveEvent(c, ev); err != nil {
		t.Fatal(err)
	}
	if err := b.DeleteEvent(c, ev); err != nil {
		t.Fatal(err)
	}
	if evs := collect(t, b, &filter.T{}); len(evs) != 0 {
		t.Fatalf("deleted event still queryable: %v", evs)
	}
	if err := b.DeleteEvent(c, ev); !errors.Is(err,
		eventstore.ErrEventNotExists) {
		t.Fatalf("expected not-exists, got %v", err)
	}
}

func TestCountEvents(t *testing.T) {
	b := testBackend(t)
	c := context.Background()
	for i := 0; i < 4; i++ {
		ev := signedNote(t, timestamp.T(1000+i), fmt.Sprintf("c%d", i))
		if err := b.SaveEvent(c, ev); err != nil {
			t.Fatal(err)
		}
	}
	count, err := b.CountEvents(c, &filter.T{Kinds: kinds.T{kind.TextNote}})
	if err != nil {
		t.Fatal(err)
	}
	if count != 4 {
		t.Fatalf("expected 4, got %d", count)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	b := testBackend(t)
	c := context.Background()
	for i := 0; i < 3; i++ {
		ev := signedNote(t, timestamp.T(1000+i), fmt.Sprintf("x%d", i))
		if err := b.SaveEvent(c, ev); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := b.Export(c, &buf); err != nil {
		t.Fatal(err)
	}
	b2 := testBackend(t)
	count, err := b2.Import(c, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("expected 3 imported, got %d", count)
	}
	if evs := collect(t, b2, &filter.T{}); len(evs) != 3 {
		t.Fatalf("import lost events: %d", len(evs))
	}
}
