package badger

import (
	"context"
	"encoding/json"

	"github.com/dgraph-io/badger/v4"
	"github.com/silkworks/filament/pkg/nostr/event"
	"github.com/silkworks/filament/pkg/nostr/eventid"
	"github.com/silkworks/filament/pkg/nostr/filter"
)

// QueryEvents returns matching events newest first, capped by the filter
// limit or the backend MaxLimit. The channel is closed when the stored set
// is exhausted, which the caller signals onward as end-of-stored-events.
func (b *Backend) QueryEvents(c context.Context,
	f *filter.T) (ch event.C, err error) {

	limit := b.MaxLimit
	if f.Limit != nil && *f.Limit > 0 && *f.Limit < limit {
		limit = *f.Limit
	}
	var evs []*event.T
	if evs, err = b.queryStored(c, f, limit); chk.E(err) {
		return
	}
	ch = make(event.C)
	go func() {
		defer close(ch)
		for _, ev := range evs {
			select {
			case <-c.Done():
				return
			case ch <- ev:
			}
		}
	}()
	return
}

// CountEvents runs the query without a limit and returns only the tally.
func (b *Backend) CountEvents(c context.Context,
	f *filter.T) (count int, err error) {

	var evs []*event.T
	if evs, err = b.queryStored(c, f, 0); chk.E(err) {
		return
	}
	return len(evs), nil
}

func (b *Backend) queryStored(c context.Context, f *filter.T,
	limit int) (evs []*event.T, err error) {

	b.WG.Add(1)
	defer b.WG.Done()
	// exact ids short-circuit through the id index
	if len(f.IDs) > 0 && allFullLength(f.IDs) {
		return b.queryByIDs(f, limit)
	}
	err = b.DB.View(func(txn *badger.Txn) (err error) {
		it := txn.NewIterator(badger.IteratorOptions{
			Reverse:        true,
			PrefetchValues: false,
		})
		defer it.Close()
		// seek past the end of the time index then walk backwards
		for it.Seek([]byte{timeIndexPrefix + 1}); it.ValidForPrefix(
			[]byte{timeIndexPrefix}); it.Next() {

			select {
			case <-c.Done():
				return c.Err()
			default:
			}
			ser := serialFromIndexKey(it.Item().Key())
			var ev *event.T
			if ev, err = getEventBySerial(txn, ser); err != nil {
				// indexes can outlive a deleted record; skip
				err = nil
				continue
			}
			if !f.Matches(ev) {
				continue
			}
			evs = append(evs, ev)
			if limit > 0 && len(evs) >= limit {
				return
			}
		}
		return
	})
	chk.E(err)
	return
}

func (b *Backend) queryByIDs(f *filter.T, limit int) (evs []*event.T,
	err error) {

	err = b.DB.View(func(txn *badger.Txn) (err error) {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()
		for _, id := range f.IDs {
			prefix := idIndexPrefixKey(eventid.T(id))
			it.Seek(prefix)
			if !it.ValidForPrefix(prefix) {
				continue
			}
			ser := serialFromIndexKey(it.Item().Key())
			var ev *event.T
			if ev, err = getEventBySerial(txn, ser); err != nil {
				err = nil
				continue
			}
			if !f.Matches(ev) {
				continue
			}
			evs = append(evs, ev)
			if limit > 0 && len(evs) >= limit {
				return
			}
		}
		return
	})
	chk.E(err)
	return
}

func getEventBySerial(txn *badger.Txn, ser []byte) (ev *event.T, err error) {
	var item *badger.Item
	if item, err = txn.Get(rawEventKey(ser)); err != nil {
		return
	}
	var bin []byte
	if bin, err = item.ValueCopy(nil); err != nil {
		return
	}
	ev = &event.T{}
	if err = json.Unmarshal(bin, ev); err != nil {
		return
	}
	return
}

func allFullLength(ids []string) bool {
	for _, id := range ids {
		if len(id) != 64 {
			return false
		}
	}
	return true
}
