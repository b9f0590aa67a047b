package authenvelope

import (
	"encoding/json"
	"fmt"

	"github.com/silkworks/filament/pkg/nostr/envelopes/labels"
	"github.com/silkworks/filament/pkg/nostr/event"
	"github.com/silkworks/filament/pkg/nostr/interfaces/enveloper"
	"github.com/silkworks/filament/pkg/nostr/text"
)

var (
	_ enveloper.I = (*Challenge)(nil)
	_ enveloper.I = (*Response)(nil)
)

// Challenge is the relay to client request for authentication carrying the
// challenge nonce: ["AUTH", <challenge string>].
type Challenge struct {
	Challenge string
}

func (env *Challenge) Label() string { return labels.AUTH }

func (env *Challenge) Bytes() (b []byte) {
	b = append(b, `["AUTH",`...)
	b = append(b, text.EscapeJSONStringAndWrap(env.Challenge)...)
	b = append(b, ']')
	return
}

func (env *Challenge) String() string { return string(env.Bytes()) }

func (env *Challenge) MarshalJSON() ([]byte, error) { return env.Bytes(), nil }

// Response is the client to relay signed authentication event:
// ["AUTH", <event>].
type Response struct {
	Event *event.T
}

func (env *Response) Label() string { return labels.AUTH }

func (env *Response) Bytes() (b []byte) {
	b = append(b, `["AUTH",`...)
	b = append(b, env.Event.Serialize()...)
	b = append(b, ']')
	return
}

func (env *Response) String() string { return string(env.Bytes()) }

func (env *Response) MarshalJSON() ([]byte, error) { return env.Bytes(), nil }

// Unmarshal decodes an AUTH array body, returning either a Challenge or a
// Response depending on whether the payload is a string or an object.
func Unmarshal(elems []json.RawMessage) (env enveloper.I, err error) {
	if len(elems) != 1 {
		return nil, fmt.Errorf("AUTH envelope expects 1 field, got %d",
			len(elems))
	}
	body := elems[0]
	if len(body) > 0 && body[0] == '"' {
		c := &Challenge{}
		if err = json.Unmarshal(body, &c.Challenge); err != nil {
			return
		}
		return c, nil
	}
	r := &Response{Event: &event.T{}}
	if err = json.Unmarshal(body, r.Event); err != nil {
		return
	}
	return r, nil
}
