package app

import (
	"context"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/silkworks/filament/pkg/nostr/relayws"
)

// websocketWritePump is the only writer of data frames on the connection. It
// drains the session's outbound queue, so dispatcher fan-out never blocks on
// a slow peer, and keeps the connection alive with periodic pings.
func (rl *Relay) websocketWritePump(c context.Context, kill func(),
	ws *relayws.WebSocket, conn *websocket.Conn) {

	defer rl.WG.Done()
	defer kill()
	ticker := time.NewTicker(rl.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-rl.Ctx.Done():
			return
		case <-c.Done():
			return
		case <-ws.Done():
			return
		case msg := <-ws.OutQueue():
			chk.E(conn.SetWriteDeadline(time.Now().Add(rl.WriteWait)))
			if err := conn.WriteMessage(websocket.TextMessage,
				msg); log.T.Chk(err) {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil,
				time.Now().Add(rl.WriteWait)); log.T.Chk(err) {
				return
			}
		}
	}
}
