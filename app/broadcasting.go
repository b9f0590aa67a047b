package app

import (
	"github.com/silkworks/filament/pkg/nostr/envelopes/eventenvelope"
	"github.com/silkworks/filament/pkg/nostr/event"
	"github.com/silkworks/filament/pkg/nostr/kinds"
	"github.com/silkworks/filament/pkg/nostr/relayws"
	"github.com/silkworks/filament/pkg/nostr/subscriptionid"
)

// BroadcastEvent emits an accepted event to every live subscription whose
// filters match. The broadcast mutex serializes fan-out: one event's
// deliveries are all enqueued before the next event's, so each subscription
// sees accepted events in a single order.
func (rl *Relay) BroadcastEvent(evt *event.T) {
	rl.broadcastMx.Lock()
	defer rl.broadcastMx.Unlock()
	listeners.Range(func(ws *relayws.WebSocket, subs ListenerMap) bool {
		subs.Range(func(id string, listener *Listener) bool {
			if !listener.filters.Match(evt) {
				return true
			}
			if kinds.IsPrivileged(evt.Kind) && !authedToParty(ws, evt) {
				log.T.Ln("not broadcasting privileged event to",
					ws.RealRemote(), "not authenticated as a party")
				return true
			}
			log.T.F("sending event %s to subscriber %s sub %s",
				evt.ID, ws.RealRemote(), id)
			chk.E(ws.WriteEnvelope(&eventenvelope.T{
				SubscriptionID: subscriptionid.T(id),
				Event:          evt,
			}))
			return true
		})
		return true
	})
}
