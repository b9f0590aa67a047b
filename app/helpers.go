package app

import (
	"context"
	"hash/maphash"
	"os"
	"unsafe"

	"github.com/sebest/xff"
	"github.com/silkworks/filament/pkg/nostr/envelopes/authenvelope"
	"github.com/silkworks/filament/pkg/nostr/relayws"
	"github.com/silkworks/filament/pkg/slog"
)

type contextKey int

const (
	wsKey contextKey = iota
	subscriptionIdKey
)

var log, chk = slog.New(os.Stderr)

// RequestAuth sends the connection its challenge; the client answers with a
// signed authentication event referencing it.
func RequestAuth(c context.Context, envType string) {
	ws := GetConnection(c)
	log.D.Ln("requesting auth from", GetIP(c), "for", envType)
	chk.E(ws.WriteEnvelope(&authenvelope.Challenge{Challenge: ws.Challenge()}))
}

// GetConnection recovers the session's websocket from its context.
func GetConnection(c context.Context) *relayws.WebSocket {
	v, ok := c.Value(wsKey).(*relayws.WebSocket)
	if !ok {
		return nil
	}
	return v
}

// GetAuthed returns the authenticated pubkey of the session, empty when the
// session never completed a challenge-response.
func GetAuthed(c context.Context) string {
	if ws := GetConnection(c); ws != nil {
		return ws.AuthPubKey()
	}
	return ""
}

// GetIP returns the real client address honoring forwarding headers.
func GetIP(c context.Context) string {
	return xff.GetRemoteAddr(GetConnection(c).Request)
}

// GetSubscriptionID returns the subscription being served in a backfill
// context.
func GetSubscriptionID(c context.Context) string {
	v, _ := c.Value(subscriptionIdKey).(string)
	return v
}

func PointerHasher[V any](_ maphash.Seed, k *V) uint64 {
	return uint64(uintptr(unsafe.Pointer(k)))
}
