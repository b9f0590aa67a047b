package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/silkworks/filament/pkg/nostr/auth"
	"github.com/silkworks/filament/pkg/nostr/envelopes"
	"github.com/silkworks/filament/pkg/nostr/envelopes/authenvelope"
	"github.com/silkworks/filament/pkg/nostr/envelopes/closedenvelope"
	"github.com/silkworks/filament/pkg/nostr/envelopes/closeenvelope"
	"github.com/silkworks/filament/pkg/nostr/envelopes/countenvelope"
	"github.com/silkworks/filament/pkg/nostr/envelopes/eoseenvelope"
	"github.com/silkworks/filament/pkg/nostr/envelopes/eventenvelope"
	"github.com/silkworks/filament/pkg/nostr/envelopes/noticeenvelope"
	"github.com/silkworks/filament/pkg/nostr/envelopes/okenvelope"
	"github.com/silkworks/filament/pkg/nostr/envelopes/reqenvelope"
	"github.com/silkworks/filament/pkg/nostr/interfaces/enveloper"
	"github.com/silkworks/filament/pkg/nostr/kind"
	"github.com/silkworks/filament/pkg/nostr/normalize"
	"github.com/silkworks/filament/pkg/nostr/relayws"
)

// IgnoreAfter is the number of malformed messages tolerated before the rest
// of a connection's traffic is ignored.
const IgnoreAfter = 16

func (rl *Relay) wsProcessMessages(msg []byte, c context.Context,
	ws *relayws.WebSocket) (err error) {

	if len(msg) == 0 {
		err = log.E.Err("empty message, probably dropped connection")
		return
	}
	if ws.OffenseCount.Load() > IgnoreAfter {
		strMsg := string(msg)
		if len(strMsg) > 256 {
			strMsg = strMsg[:256]
		}
		log.T.Ln("dropping message due to over", IgnoreAfter,
			"errors from this client on this connection",
			ws.RealRemote(), ws.AuthPubKey(), strMsg)
		return
	}
	if rl.Info.Limitation.MaxMessageLength > 0 &&
		len(msg) > rl.Info.Limitation.MaxMessageLength {
		log.D.F("rejecting message with size: %d from %s %s",
			len(msg), ws.RealRemote(), ws.AuthPubKey())
		chk.E(ws.WriteEnvelope(&okenvelope.T{
			OK: false,
			Reason: fmt.Sprintf(
				"invalid: relay limit disallows messages larger than %d bytes,"+
					" this message is %d bytes",
				rl.Info.Limitation.MaxMessageLength, len(msg)),
		}))
		return
	}
	var en enveloper.I
	if en, _, err = envelopes.ProcessEnvelope(msg); log.D.Chk(err) {
		// every input gets an answer; malformed input gets a notice
		ws.OffenseCount.Inc()
		chk.E(ws.WriteEnvelope(&noticeenvelope.T{
			Text: "invalid: " + err.Error(),
		}))
		return
	}
	switch env := en.(type) {
	case *eventenvelope.T:
		return rl.processEventEnvelope(c, ws, env)
	case *countenvelope.Request:
		if len(rl.CountEvents) == 0 {
			chk.E(ws.WriteEnvelope(&closedenvelope.T{
				ID:     env.ID,
				Reason: "unsupported: this relay does not support NIP-45",
			}))
			return
		}
		var total int
		for _, f := range env.Filters {
			total += rl.handleCountRequest(c, env.ID, ws, f)
		}
		chk.E(ws.WriteEnvelope(&countenvelope.Response{
			ID:    env.ID,
			Count: total,
		}))
	case *reqenvelope.T:
		return rl.processReqEnvelope(c, ws, env)
	case *closeenvelope.T:
		RemoveListenerId(ws, env.ID.String())
	case *authenvelope.Response:
		wsBaseUrl := normalize.URL(rl.ServiceURL.Load())
		var ok bool
		var pubkey string
		if pubkey, ok, err = auth.Validate(env.Event, ws.Challenge(),
			wsBaseUrl); ok {
			// re-auth with a different key replaces the session identity
			log.I.Ln("user authenticated", pubkey)
			ws.SetAuthPubKey(pubkey)
			chk.E(ws.WriteEnvelope(&okenvelope.T{
				ID: env.Event.ID,
				OK: true,
			}))
		} else {
			log.D.Ln("failed auth attempt from", ws.RealRemote(), err)
			err = nil
			chk.E(ws.WriteEnvelope(&okenvelope.T{
				ID:     env.Event.ID,
				OK:     false,
				Reason: "error: failed to authenticate",
			}))
		}
	}
	return
}

// processEventEnvelope validates and accepts a submitted event, always
// answering with an OK envelope carrying the machine readable reason on
// rejection. Duplicates are acknowledged as accepted.
func (rl *Relay) processEventEnvelope(c context.Context,
	ws *relayws.WebSocket, env *eventenvelope.T) (err error) {

	if env.Event == nil {
		ws.OffenseCount.Inc()
		err = log.E.Err("EVENT envelope has no event")
		return
	}
	if err = env.Event.Validate(); err != nil {
		chk.E(ws.WriteEnvelope(&okenvelope.T{
			ID:     env.Event.ID,
			OK:     false,
			Reason: "invalid: " + err.Error(),
		}))
		err = nil
		return
	}
	if rl.Info.Limitation.Oldest > 0 &&
		env.Event.CreatedAt < rl.Info.Limitation.Oldest {
		chk.E(ws.WriteEnvelope(&okenvelope.T{
			ID: env.Event.ID,
			OK: false,
			Reason: fmt.Sprintf(
				"invalid: relay limit disallows timestamps older than %d",
				rl.Info.Limitation.Oldest),
		}))
		return
	}
	if !env.Event.CheckID() {
		chk.E(ws.WriteEnvelope(&okenvelope.T{
			ID:     env.Event.ID,
			OK:     false,
			Reason: "invalid: id is computed incorrectly",
		}))
		return
	}
	var valid bool
	if valid, err = env.Event.CheckSignature(); chk.E(err) {
		chk.E(ws.WriteEnvelope(&okenvelope.T{
			ID:     env.Event.ID,
			OK:     false,
			Reason: "error: failed to verify signature: " + err.Error(),
		}))
		return
	} else if !valid {
		chk.E(ws.WriteEnvelope(&okenvelope.T{
			ID:     env.Event.ID,
			OK:     false,
			Reason: "invalid: signature is invalid",
		}))
		return
	}
	if env.Event.Kind == kind.Deletion {
		err = rl.handleDeleteRequest(c, env.Event)
	} else {
		err = rl.AddEvent(c, env.Event)
	}
	var ok bool
	var reason string
	if err != nil {
		reason = err.Error()
		if strings.HasPrefix(reason, auth.Required) {
			RequestAuth(c, "EVENT")
		}
		// a resubmitted event the relay already holds is a success
		if strings.HasPrefix(reason, okenvelope.Duplicate) {
			ok = true
		}
		err = nil
	} else {
		ok = true
	}
	chk.E(ws.WriteEnvelope(&okenvelope.T{
		ID:     env.Event.ID,
		OK:     ok,
		Reason: reason,
	}))
	return
}

// processReqEnvelope installs or replaces a subscription: each filter's
// backfill runs against the stores, EOSE goes out after every backfill has
// drained, and from registration on the subscription receives matching live
// events.
func (rl *Relay) processReqEnvelope(c context.Context,
	ws *relayws.WebSocket, env *reqenvelope.T) (err error) {

	wg := sync.WaitGroup{}
	wg.Add(len(env.Filters))
	// a context just for the stored event queries of this REQ
	reqCtx, cancelReqCtx := context.WithCancelCause(c)
	reqCtx = context.WithValue(reqCtx, subscriptionIdKey,
		env.SubscriptionID.String())
	for _, f := range env.Filters {
		if err = rl.handleFilter(handleFilterParams{
			reqCtx,
			env.SubscriptionID,
			&wg,
			ws,
			f,
		}); log.D.Chk(err) {
			// fail the whole REQ when any filter is rejected
			reason := err.Error()
			if strings.HasPrefix(reason, auth.Required) {
				RequestAuth(c, "REQ")
			}
			chk.E(ws.WriteEnvelope(&closedenvelope.T{
				ID:     env.SubscriptionID,
				Reason: reason,
			}))
			cancelReqCtx(errors.New("filter rejected"))
			err = nil
			return
		}
	}
	// register before EOSE so no event between backfill end and
	// registration is missed
	SetListener(env.SubscriptionID.String(), ws, env.Filters, cancelReqCtx)
	go func() {
		wg.Wait()
		chk.E(ws.WriteEnvelope(&eoseenvelope.T{Sub: env.SubscriptionID}))
	}()
	return
}
