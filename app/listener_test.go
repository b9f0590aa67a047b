package app

import (
	"context"
	"testing"

	"github.com/silkworks/filament/pkg/nostr/filter"
	"github.com/silkworks/filament/pkg/nostr/filters"
	"github.com/silkworks/filament/pkg/nostr/kind"
	"github.com/silkworks/filament/pkg/nostr/kinds"
	"github.com/silkworks/filament/pkg/nostr/relayws"
	"github.com/stretchr/testify/require"
)

func TestListenerRegistryIntrospection(t *testing.T) {
	wsA := relayws.New(nil, nil)
	wsB := relayws.New(nil, nil)
	defer RemoveListener(wsA)
	defer RemoveListener(wsB)
	noop := func(error) {}

	shared := &filter.T{Kinds: kinds.T{kind.TextNote}}
	direct := &filter.T{Kinds: kinds.T{kind.EncryptedDirectMessage}}
	SetListener("s1", wsA, filters.T{shared}, noop)
	SetListener("s2", wsB, filters.T{shared, direct}, noop)

	// the filter both sessions subscribed to is reported once
	require.Len(t, GetListeningFilters(), 2)

	cB := context.WithValue(context.Background(), wsKey, wsB)
	require.Len(t, GetOpenSubscriptions(cB), 2)
	cA := context.WithValue(context.Background(), wsKey, wsA)
	require.Len(t, GetOpenSubscriptions(cA), 1)

	RemoveListenerId(wsB, "s2")
	require.Len(t, GetListeningFilters(), 1)
	require.Nil(t, GetOpenSubscriptions(cB))
}
