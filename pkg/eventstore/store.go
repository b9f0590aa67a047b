// Package eventstore defines the persistence interface consumed by the
// relay dispatch pipeline.
package eventstore

import (
	"context"
	"errors"
	"io"

	"github.com/silkworks/filament/pkg/nostr/event"
	"github.com/silkworks/filament/pkg/nostr/filter"
)

var (
	ErrDupEvent       = errors.New("duplicate: event already exists")
	ErrEventNotExists = errors.New("unknown: event not known by any source of this relay")
)

// Store is a persistence layer for events handled by a relay.
type Store interface {
	// Init is called once before the relay starts serving, allowing the
	// storage to initialize its internal resources.
	Init() (err error)
	// Close must be called after the store is no longer in use, to free up
	// resources.
	Close()
	// QueryEvents is invoked on a client's REQ. It returns a channel with
	// the events as they're recovered from the database; the channel is
	// closed after the events are all delivered.
	QueryEvents(c context.Context, f *filter.T) (ch event.C, err error)
	// CountEvents performs the same work as QueryEvents but just returns
	// the count of matching events.
	CountEvents(c context.Context, f *filter.T) (count int, err error)
	// DeleteEvent removes a stored event and its indexes.
	DeleteEvent(c context.Context, ev *event.T) (err error)
	// SaveEvent is called once an event passes validation and policy.
	SaveEvent(c context.Context, ev *event.T) (err error)
}

// Exporter is implemented by stores that can dump and reload their event
// set as line delimited JSON.
type Exporter interface {
	Export(c context.Context, w io.Writer) (err error)
	Import(c context.Context, r io.Reader) (count int, err error)
}
