package badger

import (
	"context"
	"encoding/json"

	"github.com/dgraph-io/badger/v4"
	"github.com/silkworks/filament/pkg/eventstore"
	"github.com/silkworks/filament/pkg/nostr/event"
	"github.com/silkworks/filament/pkg/nostr/filter"
	"github.com/silkworks/filament/pkg/nostr/kinds"
	"github.com/silkworks/filament/pkg/nostr/tag"
)

// SaveEvent writes the event and its indexes, deduplicating by id.
// Replaceable kinds evict the prior event of the same (pubkey, kind), and
// parameterized replaceable kinds of the same (pubkey, kind, d tag).
func (b *Backend) SaveEvent(c context.Context, ev *event.T) (err error) {
	b.WG.Add(1)
	defer b.WG.Done()
	// evict what this event replaces before storing it
	if ev.Kind.IsReplaceable() || ev.Kind.IsParameterizedReplaceable() {
		if err = b.deleteReplaced(c, ev); chk.E(err) {
			return
		}
	}
	return b.DB.Update(func(txn *badger.Txn) (err error) {
		// dedup: seek the id index
		it := txn.NewIterator(badger.IteratorOptions{})
		defer it.Close()
		prefix := idIndexPrefixKey(ev.ID)
		it.Seek(prefix)
		if it.ValidForPrefix(prefix) {
			return eventstore.ErrDupEvent
		}
		var ser uint64
		if ser, err = b.Serial(); chk.E(err) {
			return
		}
		sb := serialBytes(ser)
		var bin []byte
		if bin, err = json.Marshal(ev); chk.E(err) {
			return
		}
		if err = txn.Set(rawEventKey(sb), bin); chk.E(err) {
			return
		}
		if err = txn.Set(idIndexKey(ev.ID, sb), nil); chk.E(err) {
			return
		}
		if err = txn.Set(timeIndexKey(ev.CreatedAt, sb), nil); chk.E(err) {
			return
		}
		log.T.F("event %s saved at serial %d", ev.ID, ser)
		return
	})
}

// deleteReplaced removes the events the incoming replaceable event
// supersedes. A late-arriving older version never evicts a newer one: only
// events with created_at at or before the incoming event are removed.
func (b *Backend) deleteReplaced(c context.Context, ev *event.T) (err error) {
	f := &filter.T{
		Authors: tag.T{ev.PubKey},
		Kinds:   kinds.T{ev.Kind},
	}
	if ev.Kind.IsParameterizedReplaceable() {
		d := ev.Tags.GetFirst([]string{"d"})
		var dv string
		if d != nil {
			dv = d.Value()
		}
		f.Tags = filter.TagMap{"d": tag.T{dv}}
	}
	var ch event.C
	if ch, err = b.QueryEvents(c, f); chk.E(err) {
		return
	}
	for prev := range ch {
		if prev.CreatedAt > ev.CreatedAt {
			continue
		}
		if err = b.DeleteEvent(c, prev); chk.E(err) {
			return
		}
	}
	return
}
