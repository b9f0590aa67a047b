package app

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/cors"
)

// ServeHTTP implements http.Handler. Websocket upgrades go to the relay
// protocol loop, application/nostr+json requests get the information
// document, anything else falls through to the mux.
func (rl *Relay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-rl.Ctx.Done():
		log.W.Ln("shutting down, refusing new request")
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	default:
	}
	if r.Header.Get("Upgrade") == "websocket" {
		rl.ServiceURL.CompareAndSwap("", getServiceBaseURL(r))
		rl.HandleWebsocket(w, r)
	} else if r.Header.Get("Accept") == "application/nostr+json" {
		cors.AllowAll().Handler(http.HandlerFunc(rl.HandleNIP11)).
			ServeHTTP(w, r)
	} else {
		rl.serveMux.ServeHTTP(w, r)
	}
}

func getServiceBaseURL(r *http.Request) string {
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		if strings.HasPrefix(host, "localhost") {
			proto = "http"
		} else if strings.Contains(host, ":") {
			// has a port number
			proto = "http"
		} else if _, err := strconv.Atoi(strings.ReplaceAll(host, ".",
			"")); err == nil {
			// it's a naked IP
			proto = "http"
		} else {
			proto = "https"
		}
	}
	return proto + "://" + host
}
