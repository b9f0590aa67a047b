package app

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/silkworks/filament/pkg/nostr/relayws"
)

type readParams struct {
	c    context.Context
	kill func()
	ws   *relayws.WebSocket
	conn *websocket.Conn
	r    *http.Request
}

func hostInList(addr string, list []string) bool {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	for i := range list {
		if list[i] == host || list[i] == addr {
			return true
		}
	}
	return false
}

func (rl *Relay) websocketReadMessages(p readParams) {
	defer rl.WG.Done()
	defer p.kill()
	p.conn.SetReadLimit(rl.MaxMessageSize)
	log.E.Chk(p.conn.SetReadDeadline(time.Now().Add(rl.PongWait)))
	p.conn.SetPongHandler(func(string) (err error) {
		err = p.conn.SetReadDeadline(time.Now().Add(rl.PongWait))
		log.E.Chk(err)
		return
	})
	for _, onConnect := range rl.OnConnect {
		onConnect(p.c)
	}
	for {
		var err error
		var message []byte
		if _, message, err = p.conn.ReadMessage(); log.T.Chk(err) {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseNormalClosure,    // 1000
				websocket.CloseGoingAway,        // 1001
				websocket.CloseNoStatusReceived, // 1005
				websocket.CloseAbnormalClosure,  // 1006
			) {
				log.E.F("unexpected close error from %s: %v",
					p.ws.RealRemote(), err)
			}
			return
		}
		log.T.F("receiving message from %s %s: %s",
			p.ws.RealRemote(), p.ws.AuthPubKey(), string(message))
		log.D.Chk(rl.wsProcessMessages(message, p.c, p.ws))
		select {
		case <-p.ws.Done():
			return
		default:
		}
	}
}
