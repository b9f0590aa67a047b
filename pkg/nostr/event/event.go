package event

import (
	"strconv"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/minio/sha256-simd"
	"github.com/silkworks/filament/pkg/hex"
	"github.com/silkworks/filament/pkg/nostr/eventid"
	"github.com/silkworks/filament/pkg/nostr/kind"
	"github.com/silkworks/filament/pkg/nostr/tags"
	"github.com/silkworks/filament/pkg/nostr/text"
	"github.com/silkworks/filament/pkg/nostr/timestamp"
)

// T is the primary datatype of nostr. Once validated it is immutable; the
// relay never mutates a stored event.
type T struct {

	// ID is the SHA256 hash of the canonical encoding of the event.
	ID eventid.T `json:"id"`

	// PubKey is the public key of the event creator in hexadecimal format.
	PubKey string `json:"pubkey"`

	// CreatedAt is the UNIX timestamp of the event according to the event
	// creator (never trust a timestamp!)
	CreatedAt timestamp.T `json:"created_at"`

	// Kind is the protocol code for the type of event. See kind.T.
	Kind kind.T `json:"kind"`

	// Tags are a list of tags, which are a list of strings.
	Tags tags.T `json:"tags"`

	// Content is an arbitrary string, usually conforming to a convention
	// relating to the Kind and the Tags.
	Content string `json:"content"`

	// Sig is the signature on the ID hash that validates as coming from
	// the PubKey.
	Sig string `json:"sig"`
}

// C is a channel that carries events out of query backends.
type C chan *T

// Ascending is a slice of events that sorts in ascending chronological order.
type Ascending []*T

func (ev Ascending) Len() int           { return len(ev) }
func (ev Ascending) Less(i, j int) bool { return ev[i].CreatedAt < ev[j].CreatedAt }
func (ev Ascending) Swap(i, j int)      { ev[i], ev[j] = ev[j], ev[i] }

// Descending sorts a slice of events in reverse chronological order.
type Descending []*T

func (ev Descending) Len() int           { return len(ev) }
func (ev Descending) Less(i, j int) bool { return ev[i].CreatedAt > ev[j].CreatedAt }
func (ev Descending) Swap(i, j int)      { ev[i], ev[j] = ev[j], ev[i] }

func Hash(in []byte) (out []byte) {
	h := sha256.Sum256(in)
	return h[:]
}

// ToCanonical generates the canonical form used to compute the ID hash that
// is signed:
//
//	[0,"<pubkey>",<created_at>,<kind>,<tags>,"<content>"]
//
// with minimal RFC8259 string escaping and no whitespace.
func (ev *T) ToCanonical() (b []byte) {
	b = append(b, "[0,"...)
	b = append(b, text.EscapeJSONStringAndWrap(ev.PubKey)...)
	b = append(b, ',')
	b = strconv.AppendInt(b, ev.CreatedAt.I64(), 10)
	b = append(b, ',')
	b = strconv.AppendInt(b, int64(ev.Kind), 10)
	b = append(b, ',')
	if ev.Tags == nil {
		b = append(b, "[]"...)
	} else {
		b = ev.Tags.MarshalTo(b)
	}
	b = append(b, ',')
	b = append(b, text.EscapeJSONStringAndWrap(ev.Content)...)
	b = append(b, ']')
	return
}

// GetIDBytes returns the raw SHA256 hash of the canonical form of the event.
func (ev *T) GetIDBytes() []byte { return Hash(ev.ToCanonical()) }

// GetID serializes and returns the event ID as a hexadecimal string.
func (ev *T) GetID() eventid.T { return eventid.T(hex.Enc(ev.GetIDBytes())) }

// CheckID recomputes the canonical hash and requires equality with the
// claimed ID. A mismatch is fatal for the event, never silently corrected.
func (ev *T) CheckID() bool { return ev.GetID() == ev.ID }

// CheckSignature checks if the signature is valid for the id (which is a
// hash of the serialized event content). Returns an error if the signature
// itself is malformed.
func (ev *T) CheckSignature() (valid bool, err error) {

	// decode pubkey hex to bytes.
	var pkBytes []byte
	if pkBytes, err = hex.Dec(ev.PubKey); err != nil {
		err = log.E.Err("event pubkey '%s' is invalid hex: %v", ev.PubKey,
			err)
		return
	}

	// parse pubkey bytes.
	var pk *btcec.PublicKey
	if pk, err = schnorr.ParsePubKey(pkBytes); err != nil {
		err = log.E.Err("event has invalid pubkey '%s': %v", ev.PubKey, err)
		return
	}

	// decode signature hex to bytes.
	var sigBytes []byte
	if sigBytes, err = hex.Dec(ev.Sig); err != nil {
		err = log.E.Err("signature '%s' is invalid hex: %v", ev.Sig, err)
		return
	}

	// parse signature bytes.
	var sig *schnorr.Signature
	if sig, err = schnorr.ParseSignature(sigBytes); err != nil {
		err = log.E.Err("failed to parse signature: %v", err)
		return
	}

	// the signature is over the ID hash, which must itself be correct.
	valid = sig.Verify(ev.GetIDBytes(), pk)
	return
}

// Sign signs an event with a given secret key encoded in hexadecimal,
// filling in ID, PubKey and Sig.
func (ev *T) Sign(skStr string) (err error) {
	if len(skStr) != 64 {
		return log.E.Err("invalid secret key length, 64 required, got %d",
			len(skStr))
	}
	var skBytes []byte
	if skBytes, err = hex.Dec(skStr); chk.D(err) {
		return log.E.Err("sign called with invalid secret key: %v", err)
	}
	sk, _ := btcec.PrivKeyFromBytes(skBytes)
	return ev.SignWithSecKey(sk)
}

// SignWithSecKey signs an event with a given *btcec.PrivateKey.
func (ev *T) SignWithSecKey(sk *btcec.PrivateKey) (err error) {
	ev.PubKey = hex.Enc(schnorr.SerializePubKey(sk.PubKey()))
	id := ev.GetIDBytes()
	var sig *schnorr.Signature
	if sig, err = schnorr.Sign(sk, id); chk.D(err) {
		return
	}
	ev.ID = eventid.T(hex.Enc(id))
	ev.Sig = hex.Enc(sig.Serialize())
	return
}
