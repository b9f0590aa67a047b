package normalize

import (
	"fmt"
	"net/url"
	"strings"
)

// URL normalizes a relay url, replacing http://, https:// schemes with
// ws://, wss:// and trimming trailing path slashes.
func URL(u string) string {
	if u == "" {
		return ""
	}
	u = strings.TrimSpace(u)
	u = strings.ToLower(u)
	if !(strings.HasPrefix(u, "http://") ||
		strings.HasPrefix(u, "https://") ||
		strings.HasPrefix(u, "ws://") ||
		strings.HasPrefix(u, "wss://")) {
		u = "wss://" + u
	}
	p, err := url.Parse(u)
	if err != nil {
		return ""
	}
	switch p.Scheme {
	case "https":
		p.Scheme = "wss"
	case "http":
		p.Scheme = "ws"
	}
	p.Path = strings.TrimRight(p.Path, "/")
	return p.String()
}

// Reason prefixes a machine readable word to a message for OK and CLOSED
// envelopes, unless the message already carries a prefix.
func Reason(reason, prefix string) string {
	if reason == "" {
		return prefix
	}
	if idx := strings.Index(reason, ": "); idx > 0 &&
		!strings.Contains(reason[:idx], " ") {
		return reason
	}
	return fmt.Sprintf("%s: %s", prefix, reason)
}
