package app

import (
	"context"
	"net/http"

	"github.com/fasthttp/websocket"
	"github.com/sebest/xff"
	"github.com/silkworks/filament/pkg/nostr/relayws"
)

// HandleWebsocket upgrades the request and starts the two goroutines of a
// session: the read loop and the write pump. All writes to the peer go
// through the pump; the read loop only ever queues envelopes.
func (rl *Relay) HandleWebsocket(w http.ResponseWriter, r *http.Request) {
	var err error
	var conn *websocket.Conn
	if conn, err = rl.upgrader.Upgrade(w, r, nil); chk.E(err) {
		return
	}
	rl.clients.Store(conn, struct{}{})
	ws := relayws.New(conn, r)
	rem := xff.GetRemoteAddr(r)
	if rem == "" {
		rem = r.RemoteAddr
	}
	ws.SetRealRemote(rem)
	ws.GenerateChallenge()
	if len(rl.Whitelist) > 0 && !hostInList(rem, rl.Whitelist) {
		log.I.Ln("rejecting connection from", rem, "not in whitelist")
		chk.E(conn.Close())
		rl.clients.Delete(conn)
		return
	}
	log.T.Ln("inbound connection from", rem)
	c, cancel := context.WithCancel(
		context.WithValue(rl.Ctx, wsKey, ws))
	kill := func() {
		log.T.Ln("disconnecting websocket", rem)
		for _, onDisconnect := range rl.OnDisconnect {
			onDisconnect(c)
		}
		cancel()
		ws.Close()
		if _, ok := rl.clients.LoadAndDelete(conn); ok {
			RemoveListener(ws)
		}
		chk.E(conn.Close())
	}
	rl.WG.Add(2)
	go rl.websocketReadMessages(readParams{c, kill, ws, conn, r})
	go rl.websocketWritePump(c, kill, ws, conn)
}
