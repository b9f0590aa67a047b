package badger

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"github.com/dgraph-io/badger/v4"
	"github.com/silkworks/filament/pkg/nostr/event"
)

// Export dumps the whole event set as line delimited JSON, in insertion
// order.
func (b *Backend) Export(c context.Context, w io.Writer) (err error) {
	b.WG.Add(1)
	defer b.WG.Done()
	return b.DB.View(func(txn *badger.Txn) (err error) {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte{rawEventPrefix}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-c.Done():
				return c.Err()
			default:
			}
			var bin []byte
			if bin, err = it.Item().ValueCopy(nil); chk.E(err) {
				return
			}
			if _, err = w.Write(bin); chk.E(err) {
				return
			}
			if _, err = w.Write([]byte{'\n'}); chk.E(err) {
				return
			}
		}
		return
	})
}

// Import reads line delimited JSON events, validates each and saves the
// ones that check out. Returns the number of events stored.
func (b *Backend) Import(c context.Context, r io.Reader) (count int,
	err error) {

	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 1_000_000), 1_000_000)
	for scan.Scan() {
		line := scan.Bytes()
		if len(line) == 0 {
			continue
		}
		ev := &event.T{}
		if err = json.Unmarshal(line, ev); log.E.Chk(err) {
			err = nil
			continue
		}
		if !ev.CheckID() {
			log.W.F("skipping import of event with bad id %s", ev.ID)
			continue
		}
		var ok bool
		if ok, err = ev.CheckSignature(); !ok || log.E.Chk(err) {
			err = nil
			continue
		}
		if err = b.SaveEvent(c, ev); err != nil {
			err = nil
			continue
		}
		count++
	}
	err = scan.Err()
	chk.E(err)
	return
}
