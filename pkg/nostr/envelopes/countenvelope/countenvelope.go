package countenvelope

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/silkworks/filament/pkg/nostr/envelopes/labels"
	"github.com/silkworks/filament/pkg/nostr/filter"
	"github.com/silkworks/filament/pkg/nostr/filters"
	"github.com/silkworks/filament/pkg/nostr/interfaces/enveloper"
	"github.com/silkworks/filament/pkg/nostr/subscriptionid"
)

var (
	_ enveloper.I = (*Request)(nil)
	_ enveloper.I = (*Response)(nil)
)

// Request is the client query for a count of matching events:
// ["COUNT", <subscription id>, <filter>...].
type Request struct {
	ID      subscriptionid.T
	Filters filters.T
}

func (env *Request) Label() string { return labels.COUNT }

func (env *Request) Bytes() (b []byte) {
	b = append(b, `["COUNT",`...)
	sid, _ := env.ID.MarshalJSON()
	b = append(b, sid...)
	for _, f := range env.Filters {
		b = append(b, ',')
		fb, _ := f.MarshalJSON()
		b = append(b, fb...)
	}
	b = append(b, ']')
	return
}

func (env *Request) String() string { return string(env.Bytes()) }

func (env *Request) MarshalJSON() ([]byte, error) { return env.Bytes(), nil }

func (env *Request) Unmarshal(elems []json.RawMessage) (err error) {
	if len(elems) < 2 {
		return fmt.Errorf("COUNT envelope expects at least 2 fields, got %d",
			len(elems))
	}
	if err = json.Unmarshal(elems[0], &env.ID); err != nil {
		return
	}
	env.Filters = make(filters.T, 0, len(elems)-1)
	for _, raw := range elems[1:] {
		f := &filter.T{}
		if err = json.Unmarshal(raw, f); err != nil {
			return
		}
		env.Filters = append(env.Filters, f)
	}
	return
}

// Response carries the count back: ["COUNT", <subscription id>,
// {"count": <n>}].
type Response struct {
	ID    subscriptionid.T
	Count int
}

func (env *Response) Label() string { return labels.COUNT }

func (env *Response) Bytes() (b []byte) {
	b = append(b, `["COUNT",`...)
	sid, _ := env.ID.MarshalJSON()
	b = append(b, sid...)
	b = append(b, `,{"count":`...)
	b = strconv.AppendInt(b, int64(env.Count), 10)
	b = append(b, "}]"...)
	return
}

func (env *Response) String() string { return string(env.Bytes()) }

func (env *Response) MarshalJSON() ([]byte, error) { return env.Bytes(), nil }
