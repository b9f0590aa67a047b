// Package badger implements the event store on a badger key/value
// database.
//
// Key layout, all big-endian:
//
//	'e' <serial:8>                    -> event wire JSON
//	'i' <id:32> <serial:8>            -> nil (id lookup/dedup index)
//	'c' <created_at:8> <serial:8>     -> nil (chronological index)
//
// The serial is a monotonic insertion counter; iterating the 'c' index in
// reverse yields newest-first with insertion order as tiebreak.
package badger

import (
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/silkworks/filament/pkg/eventstore"
	"github.com/silkworks/filament/pkg/slog"
)

var log, chk = slog.New(os.Stderr)

var (
	_ eventstore.Store    = (*Backend)(nil)
	_ eventstore.Exporter = (*Backend)(nil)
)

const (
	rawEventPrefix  = byte('e')
	idIndexPrefix   = byte('i')
	timeIndexPrefix = byte('c')
)

// DefaultMaxLimit caps results for queries that don't carry their own
// limit.
const DefaultMaxLimit = 512

type Backend struct {
	Path string
	// MaxLimit caps the number of events returned by one filter query; zero
	// means DefaultMaxLimit.
	MaxLimit int
	// InMemory runs badger without files, used by tests.
	InMemory bool

	DB  *badger.DB
	seq *badger.Sequence
	// WG makes Close wait for in-flight transactions.
	WG sync.WaitGroup
}

// Init opens the database and the serial sequence.
func (b *Backend) Init() (err error) {
	opts := badger.DefaultOptions(b.Path)
	if b.InMemory {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)
	if b.DB, err = badger.Open(opts); chk.E(err) {
		return
	}
	if b.seq, err = b.DB.GetSequence([]byte("events"), 1000); chk.E(err) {
		return
	}
	if b.MaxLimit == 0 {
		b.MaxLimit = DefaultMaxLimit
	}
	log.D.F("badger event store open at '%s'", b.Path)
	return
}

// Close releases the sequence and the database.
func (b *Backend) Close() {
	b.WG.Wait()
	if b.seq != nil {
		chk.E(b.seq.Release())
	}
	if b.DB != nil {
		chk.E(b.DB.Close())
	}
}

// Serial returns the next insertion counter value.
func (b *Backend) Serial() (ser uint64, err error) {
	if ser, err = b.seq.Next(); chk.E(err) {
		return
	}
	return
}
