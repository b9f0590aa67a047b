package app

import (
	"context"
	"errors"

	"github.com/silkworks/filament/pkg/eventstore"
	"github.com/silkworks/filament/pkg/nostr/event"
	"github.com/silkworks/filament/pkg/nostr/normalize"
)

// AddEvent sends an event through the normal add pipeline, as if it was
// received from a websocket: policy hooks, storage (ephemeral kinds are
// never stored), then fan-out to live subscriptions.
func (rl *Relay) AddEvent(c context.Context, ev *event.T) (err error) {
	if ev == nil {
		err = errors.New("error: event is nil")
		log.E.Ln(err)
		return
	}
	for _, rej := range rl.RejectEvent {
		if reject, msg := rej(c, ev); reject {
			if msg == "" {
				err = errors.New("blocked: no reason")
			} else {
				err = errors.New(normalize.Reason(msg, "blocked"))
			}
			log.D.Ln(ev.ID, err)
			return
		}
	}
	if !ev.Kind.IsEphemeral() {
		for _, store := range rl.StoreEvent {
			if saveErr := store(c, ev); saveErr != nil {
				switch {
				case errors.Is(saveErr, eventstore.ErrDupEvent):
					// the caller turns this into an OK true
					return saveErr
				default:
					err = errors.New(normalize.Reason(saveErr.Error(),
						"error"))
					log.E.Ln(ev.ID, err)
					return
				}
			}
		}
		for _, ons := range rl.OnEventSaved {
			ons(c, ev)
		}
	} else {
		log.T.Ln("ephemeral event", ev.ID)
	}
	rl.BroadcastEvent(ev)
	return nil
}
