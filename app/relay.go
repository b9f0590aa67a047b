package app

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/puzpuzpuz/xsync/v2"
	"github.com/silkworks/filament/pkg/nostr/event"
	"github.com/silkworks/filament/pkg/nostr/filter"
	"github.com/silkworks/filament/pkg/nostr/relayinfo"
	"github.com/silkworks/filament/pkg/nostr/subscriptionid"
	"go.uber.org/atomic"
)

var Version = "v0.1.3"
var Software = "https://github.com/silkworks/filament"

const (
	WriteWait       = 10 * time.Second
	PongWait        = 60 * time.Second
	PingPeriod      = 30 * time.Second
	ReadBufferSize  = 4096
	WriteBufferSize = 4096
	MaxMessageSize  = 512000
)

// function types used in the relay state
type (
	RejectEvent func(c context.Context, ev *event.T) (rej bool, msg string)
	RejectFilter func(c context.Context, id subscriptionid.T,
		f *filter.T) (reject bool, msg string)
	OverwriteFilter func(c context.Context, f *filter.T)
	Events          func(c context.Context, ev *event.T) error
	Hook            func(c context.Context)
	QueryEvents     func(c context.Context, f *filter.T) (ch event.C, err error)
	CountEvents     func(c context.Context, f *filter.T) (cnt int, err error)
	OnEventSaved    func(c context.Context, ev *event.T)
)

// Relay is one running relay process: the shared dispatcher state plus the
// hook slices the storage and policy layers plug into.
type Relay struct {
	Ctx        context.Context
	Cancel     context.CancelFunc
	WG         *sync.WaitGroup
	ServiceURL atomic.String

	RejectEvent       []RejectEvent
	RejectFilter      []RejectFilter
	RejectCountFilter []RejectFilter
	OverwriteFilter   []OverwriteFilter
	StoreEvent        []Events
	DeleteEvent       []Events
	QueryEvents       []QueryEvents
	CountEvents       []CountEvents
	OnConnect         []Hook
	OnDisconnect      []Hook
	OnEventSaved      []OnEventSaved

	Config *Config
	Info   *relayinfo.T

	// for establishing websockets
	upgrader websocket.Upgrader

	// a reference to all connected clients, for Shutdown
	clients *xsync.MapOf[*websocket.Conn, struct{}]

	// serializes fan-out so deliveries of one accepted event are enqueued
	// on every subscription before the next accepted event's
	broadcastMx sync.Mutex

	Addr       string
	serveMux   *http.ServeMux
	httpServer *http.Server

	// websocket options
	WriteWait      time.Duration // time allowed to write a message to the peer
	PongWait       time.Duration // time allowed to read the next pong
	PingPeriod     time.Duration // send pings with this period, < PongWait
	MaxMessageSize int64         // maximum message size allowed from peer
	Whitelist      []string      // whitelist of allowed IPs for access
}

// NewRelay constructs a relay from configuration, wiring the built-in
// policies: protected tag enforcement, privileged kind read gating, and the
// on-connect auth challenge.
func NewRelay(c context.Context, cancel context.CancelFunc,
	inf *relayinfo.T, conf *Config) (rl *Relay) {

	maxMessageLength := MaxMessageSize
	if inf.Limitation.MaxMessageLength > 0 {
		maxMessageLength = inf.Limitation.MaxMessageLength
	}
	inf.Software = Software
	inf.Version = Version
	rl = &Relay{
		Ctx:    c,
		Cancel: cancel,
		WG:     &sync.WaitGroup{},
		Config: conf,
		Info:   inf,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  ReadBufferSize,
			WriteBufferSize: WriteBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: xsync.NewTypedMapOf[*websocket.Conn,
			struct{}](PointerHasher[websocket.Conn]),
		serveMux:       &http.ServeMux{},
		WriteWait:      WriteWait,
		PongWait:       PongWait,
		PingPeriod:     PingPeriod,
		MaxMessageSize: int64(maxMessageLength),
		Whitelist:      conf.Whitelist,
	}
	rl.RejectEvent = append(rl.RejectEvent, rl.protectedTagPolicy)
	rl.RejectFilter = append(rl.RejectFilter, rl.privilegedFilterPolicy)
	rl.RejectCountFilter = append(rl.RejectCountFilter, rl.privilegedFilterPolicy)
	rl.OnConnect = append(rl.OnConnect, rl.AuthCheck)
	return
}

// Router returns the http mux for callers that want to add pages.
func (rl *Relay) Router() *http.ServeMux { return rl.serveMux }
