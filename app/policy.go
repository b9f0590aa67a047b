package app

import (
	"context"

	"github.com/silkworks/filament/pkg/nostr/event"
	"github.com/silkworks/filament/pkg/nostr/filter"
	"github.com/silkworks/filament/pkg/nostr/kinds"
	"github.com/silkworks/filament/pkg/nostr/subscriptionid"
)

// Rejection reasons for the protected tag policy. Clients display these
// verbatim so the wording is part of the protocol surface.
const (
	ReasonProtectedNotAccepted = "Relay does not accept events with protected tags."
	ReasonProtectedNeedsAuth   = "Protected tag events require NIP-42 authentication."
)

// ProtectedTagPolicy is the pure decision function for NIP-70: given
// whether enforcement and the authentication requirement are enabled and
// the authenticated pubkey of the originating session (empty when
// unauthenticated), it decides whether the event may be accepted.
func ProtectedTagPolicy(enforced, authRequired bool, authedPubkey string,
	ev *event.T) (reject bool, msg string) {

	if !enforced {
		return
	}
	if !ev.Tags.ContainsProtectedMarker() {
		return
	}
	if !authRequired {
		// the relay has no way to let anyone publish protected events
		return true, ReasonProtectedNotAccepted
	}
	if authedPubkey == "" || authedPubkey != ev.PubKey {
		// only the author may publish their protected events
		return true, ReasonProtectedNeedsAuth
	}
	return
}

// protectedTagPolicy adapts ProtectedTagPolicy to the RejectEvent hook,
// pulling the session auth state from the context.
func (rl *Relay) protectedTagPolicy(c context.Context,
	ev *event.T) (reject bool, msg string) {

	return ProtectedTagPolicy(!rl.Config.NoProtectedTags,
		rl.Config.AuthRequired, GetAuthed(c), ev)
}

// privilegedFilterPolicy requires authentication before a subscription may
// ask for privileged (messaging) kinds, when the relay requires auth at
// all. Delivery-time party checks are done separately per event.
func (rl *Relay) privilegedFilterPolicy(c context.Context,
	id subscriptionid.T, f *filter.T) (reject bool, msg string) {

	if !rl.Info.Limitation.AuthRequired {
		return
	}
	if GetAuthed(c) != "" {
		return
	}
	for _, k := range f.Kinds {
		if kinds.IsPrivileged(k) {
			return true, "auth-required: this relay requires authentication for messaging kinds"
		}
	}
	return
}

// AuthCheck issues the challenge immediately on connect when the relay
// requires authentication, saving the client a round trip (OnConnect
// hook).
func (rl *Relay) AuthCheck(c context.Context) {
	if rl.Info.Limitation.AuthRequired {
		RequestAuth(c, "connect")
	}
}
