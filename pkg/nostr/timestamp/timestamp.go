package timestamp

import (
	"encoding/binary"
	"fmt"
	"time"
)

// T is a convenience type for UNIX 64 bit timestamps of 1 second precision.
type T int64

// Tp is a synonym that allows a field to register as set/unset via a pointer.
type Tp T

// Now returns the current UNIX timestamp of the current second.
func Now() T { return T(time.Now().Unix()) }

func (t T) U64() uint64 { return uint64(t) }
func (t T) I64() int64  { return int64(t) }
func (t T) Int() int    { return int(t) }

// Time converts a timestamp into a stdlib time.Time.
func (t T) Time() time.Time { return time.Unix(int64(t), 0) }

func (t T) Bytes() (b []byte) {
	b = make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(t))
	return
}

// Ptr returns the pointer so values can register as nil and omitted.
func (t T) Ptr() *Tp {
	tp := Tp(t)
	return &tp
}

func (tp *Tp) T() T { return T(*tp) }

// FromTime returns a T from a time.Time.
func FromTime(t time.Time) T { return T(t.Unix()) }

// FromUnix converts from a standard int64 unix timestamp.
func FromUnix(t int64) T { return T(t) }

// FromBytes converts from an 8 byte big-endian encoding.
func FromBytes(b []byte) T { return T(binary.BigEndian.Uint64(b)) }

func (tp *Tp) String() string { return fmt.Sprint(tp.T()) }

func (tp *Tp) Clone() (tc *Tp) {
	if tp == nil {
		return
	}
	cp := *tp
	return &cp
}
