package normalize

import "testing"

func TestURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"example.com", "wss://example.com"},
		{"http://example.com", "ws://example.com"},
		{"https://example.com/", "wss://example.com"},
		{"WSS://Example.COM/path/", "wss://example.com/path"},
		{"ws://127.0.0.1:3334", "ws://127.0.0.1:3334"},
	}
	for _, c := range cases {
		if got := URL(c.in); got != c.want {
			t.Fatalf("URL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestReason(t *testing.T) {
	cases := []struct{ reason, prefix, want string }{
		{"", "blocked", "blocked"},
		{"no replies here", "blocked", "blocked: no replies here"},
		{"auth-required: sign in first", "blocked",
			"auth-required: sign in first"},
	}
	for _, c := range cases {
		if got := Reason(c.reason, c.prefix); got != c.want {
			t.Fatalf("Reason(%q, %q) = %q, want %q",
				c.reason, c.prefix, got, c.want)
		}
	}
}
