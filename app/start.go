package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/rs/cors"
)

// Start binds the listen address and serves until Shutdown. The listener is
// bound before the started channels close so a caller that waits on them can
// immediately connect; the socket is fully released by the time Shutdown
// returns, so the same address can be bound again right away.
func (rl *Relay) Start(addr string, started ...chan bool) (err error) {
	var ln net.Listener
	if ln, err = net.Listen("tcp", addr); chk.E(err) {
		return
	}
	rl.Addr = ln.Addr().String()
	rl.httpServer = &http.Server{
		Handler:      cors.Default().Handler(rl),
		Addr:         addr,
		WriteTimeout: 7 * time.Second,
		ReadTimeout:  7 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	log.I.Ln("listening on", rl.Addr)
	// notify callers that we are accepting connections
	for _, s := range started {
		close(s)
	}
	if err = rl.httpServer.Serve(ln); errors.Is(err, http.ErrServerClosed) {
		return nil
	} else if chk.E(err) {
		return
	}
	return
}

// Shutdown stops accepting new connections and sends a websocket close to
// every connected client. In-flight deliveries already queued are dropped
// with the connections.
func (rl *Relay) Shutdown(c context.Context) {
	log.I.Ln("shutting down relay")
	rl.Cancel()
	chk.E(rl.httpServer.Shutdown(c))
	rl.clients.Range(func(conn *websocket.Conn, _ struct{}) bool {
		chk.E(conn.WriteControl(websocket.CloseMessage, nil,
			time.Now().Add(time.Second)))
		chk.E(conn.Close())
		rl.clients.Delete(conn)
		return true
	})
	rl.WG.Wait()
}
