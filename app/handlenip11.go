package app

import (
	"encoding/json"
	"net/http"
)

// HandleNIP11 serves the relay information document.
func (rl *Relay) HandleNIP11(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/nostr+json")
	chk.E(json.NewEncoder(w).Encode(rl.Info))
}
