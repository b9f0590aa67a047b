package kinds

import (
	"github.com/silkworks/filament/pkg/nostr/kind"
)

// Privileged kinds are only delivered to parties of the event, being
// messaging related event types.
var Privileged = T{
	kind.EncryptedDirectMessage,
	kind.GiftWrap,
	kind.GiftWrapWithKind4,
}

// IsPrivileged returns true if the event kind must only be delivered to
// sessions authenticated as the author or a party tagged on the event.
func IsPrivileged(k kind.T) bool { return Privileged.Contains(k) }
