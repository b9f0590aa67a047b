// Package relayws wraps a websocket connection with the per-connection
// relay state: serialized writes through a bounded outbound queue, the
// authentication challenge nonce and the authenticated pubkey.
package relayws

import (
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/fasthttp/websocket"
	"github.com/silkworks/filament/pkg/hex"
	"github.com/silkworks/filament/pkg/nostr/interfaces/enveloper"
	"github.com/silkworks/filament/pkg/slog"
	"go.uber.org/atomic"
	"lukechampine.com/frand"
)

var log, chk = slog.New(os.Stderr)

// OutboundQueueSize bounds the per-connection delivery queue. A connection
// that cannot drain this many pending envelopes is terminated rather than
// allowed to block the dispatcher: the policy is disconnect, never silent
// per-message drops, so a surviving subscription never observes a gap.
const OutboundQueueSize = 128

// ChallengeLength is the number of random bytes in an auth challenge.
const ChallengeLength = 16

// ErrOverflow is returned when the outbound queue is full; the caller must
// treat the connection as dead.
var ErrOverflow = errors.New("outbound queue overflow, terminating connection")

// ErrClosed is returned on writes after Close.
var ErrClosed = errors.New("connection closed")

// WebSocket is a wrapper around a fasthttp/websocket connection with
// outbound queueing and auth state.
type WebSocket struct {
	Conn    *websocket.Conn
	Request *http.Request // original request

	// OffenseCount tallies protocol violations from this client.
	OffenseCount atomic.Uint32

	remote     atomic.String
	challenge  atomic.String
	authPubKey atomic.String

	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// New wraps an upgraded connection. The caller runs the write pump via
// OutQueue and Done from its own goroutine.
func New(conn *websocket.Conn, req *http.Request) (ws *WebSocket) {
	ws = &WebSocket{
		Conn:    conn,
		Request: req,
		out:     make(chan []byte, OutboundQueueSize),
		done:    make(chan struct{}),
	}
	return
}

// OutQueue is the channel the write pump drains.
func (ws *WebSocket) OutQueue() <-chan []byte { return ws.out }

// Done is closed when the connection is finished; the write pump and the
// dispatcher both stop queueing at that point.
func (ws *WebSocket) Done() <-chan struct{} { return ws.done }

// Close makes all future writes fail fast. Idempotent. The underlying
// network connection is closed by the owning session.
func (ws *WebSocket) Close() { ws.closeOnce.Do(func() { close(ws.done) }) }

// enqueue appends to the outbound queue, failing fast when the connection
// is closed or the queue is full.
func (ws *WebSocket) enqueue(b []byte) (err error) {
	select {
	case <-ws.done:
		return ErrClosed
	default:
	}
	select {
	case ws.out <- b:
		return nil
	case <-ws.done:
		return ErrClosed
	default:
		// queue full: the slow consumer loses the connection, not single
		// messages
		log.W.F("connection %s overflowed %d queued envelopes",
			ws.RealRemote(), OutboundQueueSize)
		ws.Close()
		return ErrOverflow
	}
}

// WriteEnvelope queues an envelope for delivery.
func (ws *WebSocket) WriteEnvelope(env enveloper.I) (err error) {
	return ws.enqueue(env.Bytes())
}

// GenerateChallenge gathers new entropy for a new challenge nonce.
func (ws *WebSocket) GenerateChallenge() (challenge string) {
	challenge = hex.Enc(frand.Bytes(ChallengeLength))
	ws.challenge.Store(challenge)
	return
}

// Challenge returns the current challenge nonce of the connection.
func (ws *WebSocket) Challenge() string { return ws.challenge.Load() }

// RealRemote returns the client address, honoring forwarding headers.
func (ws *WebSocket) RealRemote() string       { return ws.remote.Load() }
func (ws *WebSocket) SetRealRemote(rem string) { ws.remote.Store(rem) }

// AuthPubKey returns the authenticated pubkey of the connection, empty if
// the connection never completed a challenge-response. Authentication only
// accumulates: a later valid auth event replaces the key, nothing unsets
// it.
func (ws *WebSocket) AuthPubKey() string     { return ws.authPubKey.Load() }
func (ws *WebSocket) SetAuthPubKey(p string) { ws.authPubKey.Store(p) }

// IsAuthed reports whether a challenge-response completed on this
// connection.
func (ws *WebSocket) IsAuthed() bool { return ws.authPubKey.Load() != "" }
