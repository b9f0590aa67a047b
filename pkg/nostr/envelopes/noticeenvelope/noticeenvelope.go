package noticeenvelope

import (
	"encoding/json"
	"fmt"

	"github.com/silkworks/filament/pkg/nostr/envelopes/labels"
	"github.com/silkworks/filament/pkg/nostr/interfaces/enveloper"
	"github.com/silkworks/filament/pkg/nostr/text"
)

var _ enveloper.I = (*T)(nil)

// T is a free-text notice for protocol violations and rejections not tied
// to a specific event: ["NOTICE", <message>].
type T struct {
	Text string
}

func (env *T) Label() string { return labels.NOTICE }

func (env *T) Bytes() (b []byte) {
	b = append(b, `["NOTICE",`...)
	b = append(b, text.EscapeJSONStringAndWrap(env.Text)...)
	b = append(b, ']')
	return
}

func (env *T) String() string { return string(env.Bytes()) }

func (env *T) MarshalJSON() ([]byte, error) { return env.Bytes(), nil }

func (env *T) Unmarshal(elems []json.RawMessage) (err error) {
	if len(elems) != 1 {
		return fmt.Errorf("NOTICE envelope expects 1 field, got %d",
			len(elems))
	}
	return json.Unmarshal(elems[0], &env.Text)
}
