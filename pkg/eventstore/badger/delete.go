package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/silkworks/filament/pkg/eventstore"
	"github.com/silkworks/filament/pkg/nostr/event"
)

// DeleteEvent removes the event record and all its index keys.
func (b *Backend) DeleteEvent(c context.Context,
	ev *event.T) (err error) {

	b.WG.Add(1)
	defer b.WG.Done()
	return b.DB.Update(func(txn *badger.Txn) (err error) {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()
		prefix := idIndexPrefixKey(ev.ID)
		it.Seek(prefix)
		if !it.ValidForPrefix(prefix) {
			return eventstore.ErrEventNotExists
		}
		idKey := it.Item().KeyCopy(nil)
		ser := serialFromIndexKey(idKey)
		if err = txn.Delete(rawEventKey(ser)); chk.E(err) {
			return
		}
		if err = txn.Delete(idKey); chk.E(err) {
			return
		}
		if err = txn.Delete(timeIndexKey(ev.CreatedAt, ser)); chk.E(err) {
			return
		}
		log.T.F("event %s deleted", ev.ID)
		return
	})
}

// Wipe drops every key in the store.
func (b *Backend) Wipe() (err error) {
	return b.DB.DropAll()
}
