package badger

import (
	"encoding/binary"

	"github.com/silkworks/filament/pkg/nostr/eventid"
	"github.com/silkworks/filament/pkg/nostr/timestamp"
)

func serialBytes(ser uint64) (b []byte) {
	b = make([]byte, 8)
	binary.BigEndian.PutUint64(b, ser)
	return
}

func rawEventKey(ser []byte) (key []byte) {
	key = make([]byte, 0, 9)
	key = append(key, rawEventPrefix)
	key = append(key, ser...)
	return
}

func idIndexKey(id eventid.T, ser []byte) (key []byte) {
	key = make([]byte, 0, 41)
	key = append(key, idIndexPrefix)
	key = append(key, id.Bytes()...)
	key = append(key, ser...)
	return
}

// idIndexPrefixKey is the id index key without the serial, for prefix
// seeks.
func idIndexPrefixKey(id eventid.T) (key []byte) {
	key = make([]byte, 0, 33)
	key = append(key, idIndexPrefix)
	key = append(key, id.Bytes()...)
	return
}

func timeIndexKey(ts timestamp.T, ser []byte) (key []byte) {
	key = make([]byte, 0, 17)
	key = append(key, timeIndexPrefix)
	key = append(key, ts.Bytes()...)
	key = append(key, ser...)
	return
}

// serialFromIndexKey extracts the trailing 8 byte serial of any index key.
func serialFromIndexKey(key []byte) (ser []byte) {
	return key[len(key)-8:]
}
