package app

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/silkworks/filament/pkg/eventstore/badger"
	"github.com/silkworks/filament/pkg/nostr/auth"
	"github.com/silkworks/filament/pkg/nostr/event"
	"github.com/silkworks/filament/pkg/nostr/filter"
	"github.com/silkworks/filament/pkg/nostr/kind"
	"github.com/silkworks/filament/pkg/nostr/relayinfo"
	"github.com/silkworks/filament/pkg/nostr/tags"
	"github.com/silkworks/filament/pkg/nostr/timestamp"
	"github.com/stretchr/testify/require"
)

var testSec = "f16dca5c36931305a4ac30d31b77962af96ea6b7240736da11af318fb7e11317"

func startTestRelay(t *testing.T, conf *Config, addr string) *Relay {
	t.Helper()
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	db := &badger.Backend{InMemory: true}
	require.NoError(t, db.Init())
	t.Cleanup(db.Close)
	c, cancel := context.WithCancel(context.Background())
	inf := &relayinfo.T{
		Name: "test relay",
		Limitation: relayinfo.Limits{
			MaxMessageLength: MaxMessageSize,
			AuthRequired:     conf.AuthRequired,
		},
	}
	inf.AddNIPs(relayinfo.BasicProtocol, relayinfo.Authentication,
		relayinfo.ProtectedEvents)
	rl := NewRelay(c, cancel, inf, conf)
	rl.StoreEvent = append(rl.StoreEvent, db.SaveEvent)
	rl.QueryEvents = append(rl.QueryEvents, db.QueryEvents)
	rl.CountEvents = append(rl.CountEvents, db.CountEvents)
	rl.DeleteEvent = append(rl.DeleteEvent, db.DeleteEvent)
	started := make(chan bool)
	go func() { _ = rl.Start(addr, started) }()
	<-started
	t.Cleanup(func() {
		sc, scancel := context.WithTimeout(context.Background(),
			5*time.Second)
		defer scancel()
		rl.Shutdown(sc)
	})
	return rl
}

func dialRelay(t *testing.T, rl *Relay) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+rl.Addr, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readEnvelope reads raw frames until one with the wanted label arrives.
func readEnvelope(t *testing.T, conn *websocket.Conn,
	label string) []json.RawMessage {

	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var elems []json.RawMessage
		require.NoError(t, json.Unmarshal(msg, &elems))
		require.NotEmpty(t, elems)
		var got string
		require.NoError(t, json.Unmarshal(elems[0], &got))
		if got == label {
			return elems
		}
		require.True(t, time.Now().Before(deadline),
			"gave up waiting for %s, last got %s", label, got)
	}
}

func sendEvent(t *testing.T, conn *websocket.Conn,
	ev *event.T) (ok bool, reason string) {

	t.Helper()
	msg := append([]byte(`["EVENT",`), ev.Serialize()...)
	msg = append(msg, ']')
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, msg))
	elems := readEnvelope(t, conn, "OK")
	require.Len(t, elems, 4)
	require.NoError(t, json.Unmarshal(elems[2], &ok))
	require.NoError(t, json.Unmarshal(elems[3], &reason))
	return
}

func signedNote(t *testing.T, content string, tg tags.T) *event.T {
	t.Helper()
	ev := &event.T{
		CreatedAt: timestamp.Now(),
		Kind:      kind.TextNote,
		Tags:      tg,
		Content:   content,
	}
	require.NoError(t, ev.Sign(testSec))
	return ev
}

func TestStartAndStopReleasesPort(t *testing.T) {
	conf := GetDefaultConfig()
	rl := startTestRelay(t, conf, "")
	addr := rl.Addr
	conn := dialRelay(t, rl)
	_ = conn.Close()
	sc, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	rl.Shutdown(sc)
	scancel()
	// the port must be immediately bindable again
	rl2 := startTestRelay(t, GetDefaultConfig(), addr)
	require.Equal(t, addr, rl2.Addr)
	conn2 := dialRelay(t, rl2)
	require.NoError(t, conn2.WriteMessage(websocket.TextMessage,
		[]byte(`["REQ","ping",{}]`)))
	readEnvelope(t, conn2, "EOSE")
}

func TestPublishAndBackfill(t *testing.T) {
	rl := startTestRelay(t, GetDefaultConfig(), "")
	pub := dialRelay(t, rl)
	ev := signedNote(t, "stored note", nil)
	ok, reason := sendEvent(t, pub, ev)
	require.True(t, ok, reason)

	// resubmission of a held event is acknowledged as accepted
	ok, reason = sendEvent(t, pub, ev)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(reason, "duplicate"), reason)

	sub := dialRelay(t, rl)
	require.NoError(t, sub.WriteMessage(websocket.TextMessage,
		[]byte(`["REQ","s1",{"kinds":[1]}]`)))
	elems := readEnvelope(t, sub, "EVENT")
	require.Len(t, elems, 3)
	got := &event.T{}
	require.NoError(t, json.Unmarshal(elems[2], got))
	require.Equal(t, ev.ID, got.ID)
	readEnvelope(t, sub, "EOSE")

	// live events flow to the registered subscription after EOSE
	live := signedNote(t, "live note", nil)
	ok, _ = sendEvent(t, pub, live)
	require.True(t, ok)
	elems = readEnvelope(t, sub, "EVENT")
	got = &event.T{}
	require.NoError(t, json.Unmarshal(elems[2], got))
	require.Equal(t, live.ID, got.ID)
}

func TestInvalidEventsRejected(t *testing.T) {
	rl := startTestRelay(t, GetDefaultConfig(), "")
	conn := dialRelay(t, rl)

	ev := signedNote(t, "will be tampered", nil)
	ev.Content = "tampered"
	ok, reason := sendEvent(t, conn, ev)
	require.False(t, ok)
	require.Contains(t, reason, "id is computed incorrectly")

	ev2 := signedNote(t, "bad sig", nil)
	sig := []byte(ev2.Sig)
	if sig[0] == 'a' {
		sig[0] = 'b'
	} else {
		sig[0] = 'a'
	}
	ev2.Sig = string(sig)
	ok, reason = sendEvent(t, conn, ev2)
	require.False(t, ok)
	require.Contains(t, reason, "signature")
}

func TestProtectedTagRejectedByDefault(t *testing.T) {
	// enforcement on, no auth support: protected events are refused outright
	rl := startTestRelay(t, GetDefaultConfig(), "")
	conn := dialRelay(t, rl)
	ev := signedNote(t, "members only", tags.T{{"-"}})
	ok, reason := sendEvent(t, conn, ev)
	require.False(t, ok)
	require.Contains(t, reason,
		"Relay does not accept events with protected tags")
}

func TestProtectedTagRequiresAuthentication(t *testing.T) {
	conf := GetDefaultConfig()
	conf.AuthRequired = true
	rl := startTestRelay(t, conf, "")
	conn := dialRelay(t, rl)

	// the relay volunteers its challenge on connect
	elems := readEnvelope(t, conn, "AUTH")
	require.Len(t, elems, 2)
	var challenge string
	require.NoError(t, json.Unmarshal(elems[1], &challenge))
	require.NotEmpty(t, challenge)

	ev := signedNote(t, "members only", tags.T{{"-"}})
	ok, reason := sendEvent(t, conn, ev)
	require.False(t, ok)
	require.Contains(t, reason,
		"Protected tag events require NIP-42 authentication")

	// complete the challenge-response and retry
	authEv := auth.CreateUnsigned(challenge, "ws://"+rl.Addr)
	require.NoError(t, authEv.Sign(testSec))
	msg := append([]byte(`["AUTH",`), authEv.Serialize()...)
	msg = append(msg, ']')
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, msg))
	okElems := readEnvelope(t, conn, "OK")
	var authOK bool
	require.NoError(t, json.Unmarshal(okElems[2], &authOK))
	require.True(t, authOK)

	ok, reason = sendEvent(t, conn, ev)
	require.True(t, ok, reason)
}

func TestMalformedMessagesGetNotice(t *testing.T) {
	rl := startTestRelay(t, GetDefaultConfig(), "")
	conn := dialRelay(t, rl)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`this is not json`)))
	elems := readEnvelope(t, conn, "NOTICE")
	require.Len(t, elems, 2)
	var notice string
	require.NoError(t, json.Unmarshal(elems[1], &notice))
	require.True(t, strings.HasPrefix(notice, "invalid"), notice)

	// unrecognized labels are answered too
	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`["BOGUS","x"]`)))
	readEnvelope(t, conn, "NOTICE")

	// the connection keeps serving well formed requests afterwards
	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`["REQ","after",{}]`)))
	readEnvelope(t, conn, "EOSE")
}

func TestCountRequiresAuthForMessagingKinds(t *testing.T) {
	conf := GetDefaultConfig()
	conf.AuthRequired = true
	rl := startTestRelay(t, conf, "")
	conn := dialRelay(t, rl)

	elems := readEnvelope(t, conn, "AUTH")
	var challenge string
	require.NoError(t, json.Unmarshal(elems[1], &challenge))

	dm := &event.T{
		CreatedAt: timestamp.Now(),
		Kind:      kind.EncryptedDirectMessage,
		Content:   "ciphertext",
	}
	require.NoError(t, dm.Sign(testSec))
	ok, reason := sendEvent(t, conn, dm)
	require.True(t, ok, reason)

	// before authentication the count of messaging kinds is refused
	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`["COUNT","c1",{"kinds":[4]}]`)))
	readEnvelope(t, conn, "NOTICE")
	elems = readEnvelope(t, conn, "COUNT")
	require.Len(t, elems, 3)
	var res struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(elems[2], &res))
	require.Equal(t, 0, res.Count)

	authEv := auth.CreateUnsigned(challenge, "ws://"+rl.Addr)
	require.NoError(t, authEv.Sign(testSec))
	msg := append([]byte(`["AUTH",`), authEv.Serialize()...)
	msg = append(msg, ']')
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, msg))
	okElems := readEnvelope(t, conn, "OK")
	var authOK bool
	require.NoError(t, json.Unmarshal(okElems[2], &authOK))
	require.True(t, authOK)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`["COUNT","c2",{"kinds":[4]}]`)))
	elems = readEnvelope(t, conn, "COUNT")
	require.NoError(t, json.Unmarshal(elems[2], &res))
	require.Equal(t, 1, res.Count)
}

func TestQueryContextCarriesSubscriptionID(t *testing.T) {
	rl := startTestRelay(t, GetDefaultConfig(), "")
	ids := make(chan string, 1)
	rl.QueryEvents = append(rl.QueryEvents,
		func(c context.Context, f *filter.T) (event.C, error) {
			select {
			case ids <- GetSubscriptionID(c):
			default:
			}
			ch := make(event.C)
			close(ch)
			return ch, nil
		})
	conn := dialRelay(t, rl)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`["REQ","ctx-sub",{}]`)))
	readEnvelope(t, conn, "EOSE")
	require.Equal(t, "ctx-sub", <-ids)
}

func TestWrongChallengeFailsAuthentication(t *testing.T) {
	conf := GetDefaultConfig()
	conf.AuthRequired = true
	rl := startTestRelay(t, conf, "")
	conn := dialRelay(t, rl)
	readEnvelope(t, conn, "AUTH")

	authEv := auth.CreateUnsigned("not-the-issued-nonce", "ws://"+rl.Addr)
	require.NoError(t, authEv.Sign(testSec))
	msg := append([]byte(`["AUTH",`), authEv.Serialize()...)
	msg = append(msg, ']')
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, msg))
	elems := readEnvelope(t, conn, "OK")
	var ok bool
	require.NoError(t, json.Unmarshal(elems[2], &ok))
	require.False(t, ok)
}
