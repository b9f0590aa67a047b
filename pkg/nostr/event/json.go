package event

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/silkworks/filament/pkg/hex"
	"github.com/silkworks/filament/pkg/nostr/text"
	"github.com/silkworks/filament/pkg/slog"
)

var log, chk = slog.New(os.Stderr)

// Serialize renders the event as its wire form JSON object with the
// canonical field order and minimal escaping.
func (ev *T) Serialize() (b []byte) {
	b = append(b, `{"id":`...)
	b = append(b, text.EscapeJSONStringAndWrap(ev.ID.String())...)
	b = append(b, `,"pubkey":`...)
	b = append(b, text.EscapeJSONStringAndWrap(ev.PubKey)...)
	b = append(b, `,"created_at":`...)
	b = strconv.AppendInt(b, ev.CreatedAt.I64(), 10)
	b = append(b, `,"kind":`...)
	b = strconv.AppendInt(b, int64(ev.Kind), 10)
	b = append(b, `,"tags":`...)
	if ev.Tags == nil {
		b = append(b, "[]"...)
	} else {
		b = ev.Tags.MarshalTo(b)
	}
	b = append(b, `,"content":`...)
	b = append(b, text.EscapeJSONStringAndWrap(ev.Content)...)
	b = append(b, `,"sig":`...)
	b = append(b, text.EscapeJSONStringAndWrap(ev.Sig)...)
	b = append(b, '}')
	return
}

func (ev *T) MarshalJSON() ([]byte, error) { return ev.Serialize(), nil }

func (ev *T) String() string { return string(ev.Serialize()) }

// UnmarshalJSON decodes the wire form. Structural validation beyond JSON
// well-formedness is done separately by Validate.
func (ev *T) UnmarshalJSON(b []byte) (err error) {
	type raw T
	var r raw
	if err = json.Unmarshal(b, &r); err != nil {
		return
	}
	*ev = T(r)
	return
}

// Validate performs the structural checks on a decoded event: required
// fields present and of the correct size, kind and created_at within
// representable range. It does not check the hash or signature.
func (ev *T) Validate() (err error) {
	if err = ev.ID.Validate(); err != nil {
		return log.E.Err("invalid: event id: %v", err)
	}
	if len(ev.PubKey) != 64 {
		return log.E.Err("invalid: pubkey invalid length: got %d expect 64",
			len(ev.PubKey))
	}
	if _, err = hex.Dec(ev.PubKey); err != nil {
		return log.E.Err("invalid: pubkey is not hexadecimal: %v", err)
	}
	if len(ev.Sig) != 128 {
		return log.E.Err("invalid: sig invalid length: got %d expect 128",
			len(ev.Sig))
	}
	if _, err = hex.Dec(ev.Sig); err != nil {
		return log.E.Err("invalid: sig is not hexadecimal: %v", err)
	}
	if ev.Kind < 0 || int64(ev.Kind) > 65535 {
		return log.E.Err("invalid: kind %d out of range", ev.Kind)
	}
	if ev.CreatedAt < 0 {
		return log.E.Err("invalid: created_at %d out of range", ev.CreatedAt)
	}
	return
}
