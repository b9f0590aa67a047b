package app

import (
	"context"
	"errors"
	"sync"

	"github.com/silkworks/filament/pkg/nostr/envelopes/eventenvelope"
	"github.com/silkworks/filament/pkg/nostr/envelopes/noticeenvelope"
	"github.com/silkworks/filament/pkg/nostr/event"
	"github.com/silkworks/filament/pkg/nostr/filter"
	"github.com/silkworks/filament/pkg/nostr/kinds"
	"github.com/silkworks/filament/pkg/nostr/normalize"
	"github.com/silkworks/filament/pkg/nostr/relayws"
	"github.com/silkworks/filament/pkg/nostr/subscriptionid"
	"github.com/silkworks/filament/pkg/nostr/tag"
)

type handleFilterParams struct {
	c    context.Context
	id   subscriptionid.T
	eose *sync.WaitGroup
	ws   *relayws.WebSocket
	f    *filter.T
}

// handleFilter runs the backfill for one filter of a REQ: policy hooks,
// stored event query, then delivery. The eose waitgroup gates the EOSE
// envelope so it only goes out after every filter's backfill is drained.
func (rl *Relay) handleFilter(h handleFilterParams) (err error) {
	defer h.eose.Done()
	for _, ovw := range rl.OverwriteFilter {
		ovw(h.c, h.f)
	}
	if h.f.Limit != nil && *h.f.Limit < 0 {
		err = errors.New("blocked: filter invalidated")
		log.E.Ln(err)
		return
	}
	for _, reject := range rl.RejectFilter {
		if rej, msg := reject(h.c, h.id, h.f); rej {
			return errors.New(normalize.Reason(msg, "blocked"))
		}
	}
	h.eose.Add(len(rl.QueryEvents))
	for _, query := range rl.QueryEvents {
		var ch event.C
		if ch, err = query(h.c, h.f); chk.E(err) {
			chk.E(h.ws.WriteEnvelope(&noticeenvelope.T{Text: err.Error()}))
			h.eose.Done()
			err = nil
			continue
		}
		go func(ch event.C) {
			defer h.eose.Done()
			for ev := range ch {
				if ev == nil {
					continue
				}
				if kinds.IsPrivileged(ev.Kind) &&
					!authedToParty(h.ws, ev) {
					continue
				}
				chk.E(h.ws.WriteEnvelope(&eventenvelope.T{
					SubscriptionID: h.id,
					Event:          ev,
				}))
			}
		}(ch)
	}
	return nil
}

// authedToParty reports whether the session's authenticated pubkey is the
// author of or a "p" tagged party to a privileged (messaging) event.
func authedToParty(ws *relayws.WebSocket, ev *event.T) bool {
	pk := ws.AuthPubKey()
	if pk == "" {
		return false
	}
	parties := tag.T{ev.PubKey}
	pTags := ev.Tags.GetAll("p")
	for i := range pTags {
		parties = append(parties, pTags[i].Value())
	}
	return parties.Contains(pk)
}
