// Package envelopes identifies and decodes inbound wire protocol messages.
package envelopes

import (
	"encoding/json"
	"fmt"

	"github.com/silkworks/filament/pkg/nostr/envelopes/authenvelope"
	"github.com/silkworks/filament/pkg/nostr/envelopes/closeenvelope"
	"github.com/silkworks/filament/pkg/nostr/envelopes/countenvelope"
	"github.com/silkworks/filament/pkg/nostr/envelopes/eventenvelope"
	"github.com/silkworks/filament/pkg/nostr/envelopes/labels"
	"github.com/silkworks/filament/pkg/nostr/envelopes/reqenvelope"
	"github.com/silkworks/filament/pkg/nostr/interfaces/enveloper"
)

// ProcessEnvelope scans a message and if it finds a correctly formed
// envelope it unmarshals it and returns it. The label is returned even when
// decoding the body fails, so callers can distinguish an unknown label from
// a malformed body.
func ProcessEnvelope(b []byte) (env enveloper.I, label string, err error) {
	var elems []json.RawMessage
	if err = json.Unmarshal(b, &elems); err != nil {
		return nil, "", fmt.Errorf("message is not a JSON array: %w", err)
	}
	if len(elems) < 1 {
		return nil, "", fmt.Errorf("empty envelope")
	}
	if err = json.Unmarshal(elems[0], &label); err != nil {
		return nil, "", fmt.Errorf("envelope label is not a string: %w", err)
	}
	body := elems[1:]
	switch label {
	case labels.EVENT:
		e := &eventenvelope.T{}
		if err = e.Unmarshal(body); err != nil {
			return nil, label, err
		}
		return e, label, nil
	case labels.REQ:
		e := &reqenvelope.T{}
		if err = e.Unmarshal(body); err != nil {
			return nil, label, err
		}
		return e, label, nil
	case labels.CLOSE:
		e := &closeenvelope.T{}
		if err = e.Unmarshal(body); err != nil {
			return nil, label, err
		}
		return e, label, nil
	case labels.AUTH:
		if env, err = authenvelope.Unmarshal(body); err != nil {
			return nil, label, err
		}
		return env, label, nil
	case labels.COUNT:
		e := &countenvelope.Request{}
		if err = e.Unmarshal(body); err != nil {
			return nil, label, err
		}
		return e, label, nil
	default:
		return nil, label, fmt.Errorf("unknown envelope label %q", label)
	}
}
