// Package auth implements the verification half of challenge-response
// authentication (NIP-42): a relay hands the connection a random challenge
// nonce and the client proves control of a key by signing an event of the
// client authentication kind referencing that nonce and the relay's url.
package auth

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/silkworks/filament/pkg/nostr/event"
	"github.com/silkworks/filament/pkg/nostr/kind"
	"github.com/silkworks/filament/pkg/nostr/tags"
	"github.com/silkworks/filament/pkg/nostr/timestamp"
	"github.com/silkworks/filament/pkg/slog"
)

var log, chk = slog.New(os.Stderr)

// Required is the machine readable prefix used on OK and CLOSED reasons
// when authentication is needed before the request can proceed.
const Required = "auth-required"

// Window is the tolerance on the created_at of an authentication event
// around the relay's clock; anything older or further in the future is
// rejected.
const Window = 10 * time.Minute

// CreateUnsigned creates an event which should be signed and sent back via
// an "AUTH" message. If the authentication succeeds, the connection will be
// authenticated as the signing pubkey.
func CreateUnsigned(challenge, relayURL string) *event.T {
	return &event.T{
		CreatedAt: timestamp.Now(),
		Kind:      kind.ClientAuthentication,
		Tags:      tags.T{{"relay", relayURL}, {"challenge", challenge}},
		Content:   "",
	}
}

// helper function for Validate.
func parseURL(input string) (*url.URL, error) {
	return url.Parse(strings.ToLower(strings.TrimSuffix(input, "/")))
}

// Validate checks whether evt is a valid authentication event for the given
// challenge and relay url: correct kind, exact challenge tag, matching
// relay address, created_at within Window, and a valid signature. The
// caller has to have verified the event id separately (Validate rechecks
// the signature, which covers the id).
func Validate(evt *event.T, challenge string,
	relayURL string) (pubkey string, ok bool, err error) {

	if evt.Kind != kind.ClientAuthentication {
		err = log.E.Err("event incorrect kind for auth: %d %s",
			evt.Kind, kind.Map[evt.Kind])
		return
	}
	c := evt.Tags.GetFirst([]string{"challenge"})
	if c == nil || c.Value() != challenge {
		err = log.E.Err("exact challenge tag missing from auth response")
		return
	}
	var expected, found *url.URL
	if expected, err = parseURL(relayURL); chk.D(err) {
		return
	}
	var r string
	if rt := evt.Tags.GetFirst([]string{"relay"}); rt != nil {
		r = rt.Value()
	}
	if r == "" {
		err = log.E.Err("relay tag missing from auth response")
		return
	}
	if found, err = parseURL(r); chk.D(err) {
		err = log.E.Err("error parsing relay url: %v", err)
		return
	}
	if expected.Scheme != found.Scheme {
		err = log.E.Err("url scheme incorrect: expected '%s' got '%s'",
			expected.Scheme, found.Scheme)
		return
	}
	if expected.Host != found.Host {
		err = log.E.Err("url host incorrect: expected '%s' got '%s'",
			expected.Host, found.Host)
		return
	}
	if expected.Path != found.Path {
		err = log.E.Err("url path incorrect: expected '%s' got '%s'",
			expected.Path, found.Path)
		return
	}
	now := time.Now()
	if evt.CreatedAt.Time().After(now.Add(Window)) ||
		evt.CreatedAt.Time().Before(now.Add(-Window)) {
		err = log.E.Err(
			"auth event more than %s before or after current time", Window)
		return
	}
	// save for last, as it is the most expensive operation
	if ok, err = evt.CheckSignature(); !ok {
		return
	}
	pubkey = evt.PubKey
	ok = true
	return
}
