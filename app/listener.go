package app

import (
	"context"
	"fmt"

	"github.com/puzpuzpuz/xsync/v2"
	"github.com/silkworks/filament/pkg/nostr/filter"
	"github.com/silkworks/filament/pkg/nostr/filters"
	"github.com/silkworks/filament/pkg/nostr/relayws"
)

// Listener is one live subscription: the filter set of a REQ and the cancel
// function of its backfill context.
type Listener struct {
	filters filters.T
	cancel  context.CancelCauseFunc
	ws      *relayws.WebSocket
}

type ListenerMap = *xsync.MapOf[string, *Listener]

// listeners is the dispatcher's live set: connection -> subscription id ->
// listener. The registry holds plain references back to the sessions;
// sessions own their subscriptions and remove them on termination.
var listeners = xsync.NewTypedMapOf[*relayws.WebSocket,
	ListenerMap](PointerHasher[relayws.WebSocket])

// SetListener installs or atomically replaces the subscription under the
// given id for the connection; a replaced subscription's backfill is
// cancelled.
func SetListener(id string, ws *relayws.WebSocket, f filters.T,
	c context.CancelCauseFunc) {

	subs, _ := listeners.LoadOrCompute(ws, func() ListenerMap {
		return xsync.NewMapOf[*Listener]()
	})
	if prev, ok := subs.Load(id); ok {
		prev.cancel(fmt.Errorf("subscription replaced by new REQ"))
	}
	subs.Store(id, &Listener{filters: f, cancel: c, ws: ws})
}

// RemoveListenerId removes a specific subscription id from listeners for a
// given ws client and cancels its specific context. Removal is immediately
// visible to the dispatcher: no delivery is enqueued for it afterwards.
func RemoveListenerId(ws *relayws.WebSocket, id string) {
	if subs, ok := listeners.Load(ws); ok {
		if listener, ok := subs.LoadAndDelete(id); ok {
			listener.cancel(fmt.Errorf("subscription closed by client"))
		}
		if subs.Size() == 0 {
			listeners.Delete(ws)
		}
	}
}

// RemoveListener removes a websocket conn from listeners (no need to cancel
// contexts as they are all inherited from the main connection context).
func RemoveListener(ws *relayws.WebSocket) { listeners.Delete(ws) }

// GetListeningFilters returns the distinct filters currently subscribed to
// across all connections.
func GetListeningFilters() (respFilters filters.T) {
	respFilters = make(filters.T, 0, listeners.Size()*2)
	listeners.Range(func(_ *relayws.WebSocket, subs ListenerMap) bool {
		subs.Range(func(_ string, listener *Listener) bool {
			for _, listenerFilter := range listener.filters {
				for _, respFilter := range respFilters {
					if filter.Equal(listenerFilter, respFilter) {
						goto next
					}
				}
				respFilters = append(respFilters, listenerFilter)
			next:
				continue
			}
			return true
		})
		return true
	})
	return
}

// GetOpenSubscriptions returns the filters of the calling session.
func GetOpenSubscriptions(c context.Context) filters.T {
	if subs, ok := listeners.Load(GetConnection(c)); ok {
		res := make(filters.T, 0, subs.Size()*2)
		subs.Range(func(_ string, sub *Listener) bool {
			res = append(res, sub.filters...)
			return true
		})
		return res
	}
	return nil
}
