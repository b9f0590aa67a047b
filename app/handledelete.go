package app

import (
	"context"
	"fmt"

	"github.com/silkworks/filament/pkg/nostr/event"
	"github.com/silkworks/filament/pkg/nostr/filter"
	"github.com/silkworks/filament/pkg/nostr/tag"
)

// handleDeleteRequest processes a deletion (kind 5) event: each referenced
// "e" tag is looked up and removed when the deletion author matches the
// target author.
func (rl *Relay) handleDeleteRequest(c context.Context,
	evt *event.T) (err error) {

	for _, t := range evt.Tags {
		if len(t) < 2 || t[0] != "e" {
			continue
		}
		for _, query := range rl.QueryEvents {
			var ch event.C
			if ch, err = query(c, &filter.T{IDs: tag.T{t[1]}}); chk.E(err) {
				continue
			}
			target := <-ch
			if target == nil {
				continue
			}
			if target.PubKey != evt.PubKey {
				err = fmt.Errorf(
					"blocked: you are not the author of this event")
				log.E.Ln(err)
				return
			}
			for _, del := range rl.DeleteEvent {
				chk.E(del(c, target))
			}
			// don't try to query this same event again
			break
		}
	}
	return nil
}
