package app

import (
	"context"

	"github.com/silkworks/filament/pkg/nostr/envelopes/noticeenvelope"
	"github.com/silkworks/filament/pkg/nostr/filter"
	"github.com/silkworks/filament/pkg/nostr/relayws"
	"github.com/silkworks/filament/pkg/nostr/subscriptionid"
)

func (rl *Relay) handleCountRequest(c context.Context, id subscriptionid.T,
	ws *relayws.WebSocket, f *filter.T) (subtotal int) {

	for _, ovw := range rl.OverwriteFilter {
		ovw(c, f)
	}
	for _, reject := range rl.RejectCountFilter {
		if rej, msg := reject(c, id, f); rej {
			chk.E(ws.WriteEnvelope(&noticeenvelope.T{Text: msg}))
			return 0
		}
	}
	var err error
	var res int
	for _, count := range rl.CountEvents {
		if res, err = count(c, f); chk.E(err) {
			chk.E(ws.WriteEnvelope(&noticeenvelope.T{Text: err.Error()}))
			continue
		}
		subtotal += res
	}
	return
}
