// Package relayinfo implements the relay information document served to
// clients that ask for application/nostr+json (NIP-11).
package relayinfo

import (
	"github.com/silkworks/filament/pkg/nostr/timestamp"
)

// NIP numbers advertised in the supported_nips field.
const (
	BasicProtocol            = 1
	EventDeletion            = 9
	RelayInformationDocument = 11
	CommandResults           = 20
	Authentication           = 42
	CountingResults          = 45
	ProtectedEvents          = 70
)

// Limits is the limitation object of the information document; the policy
// engine reads AuthRequired and Oldest from here.
type Limits struct {
	MaxMessageLength int  `json:"max_message_length,omitempty"`
	MaxSubscriptions int  `json:"max_subscriptions,omitempty"`
	MaxFilters       int  `json:"max_filters,omitempty"`
	MaxLimit         int  `json:"max_limit,omitempty"`
	MaxSubidLength   int  `json:"max_subid_length,omitempty"`
	AuthRequired     bool `json:"auth_required"`
	PaymentRequired  bool `json:"payment_required,omitempty"`
	RestrictedWrites bool `json:"restricted_writes,omitempty"`

	// Oldest is the lowest created_at the relay accepts; zero disables the
	// check. Not part of the published document.
	Oldest timestamp.T `json:"-"`
}

// T is the relay information document.
type T struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	PubKey        string `json:"pubkey,omitempty"`
	Contact       string `json:"contact,omitempty"`
	Nips          []int  `json:"supported_nips"`
	Software      string `json:"software"`
	Version       string `json:"version"`
	Icon          string `json:"icon,omitempty"`
	Limitation    Limits `json:"limitation"`
	PostingPolicy string `json:"posting_policy,omitempty"`
}

// AddNIPs appends NIP numbers to the supported list, skipping ones already
// present.
func (inf *T) AddNIPs(nips ...int) {
next:
	for _, n := range nips {
		for _, have := range inf.Nips {
			if have == n {
				continue next
			}
		}
		inf.Nips = append(inf.Nips, n)
	}
}

// HasNIP reports whether the document advertises the NIP.
func (inf *T) HasNIP(n int) bool {
	for _, have := range inf.Nips {
		if have == n {
			return true
		}
	}
	return false
}
