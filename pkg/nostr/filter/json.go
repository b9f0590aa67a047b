package filter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/silkworks/filament/pkg/nostr/tag"
)

// MarshalJSON flattens the tag constraints into "#<name>" keys at the top
// level of the filter object, as the protocol requires.
func (f *T) MarshalJSON() (b []byte, err error) {
	o := make(map[string]any)
	if f.IDs != nil {
		o["ids"] = f.IDs
	}
	if f.Kinds != nil {
		o["kinds"] = f.Kinds
	}
	if f.Authors != nil {
		o["authors"] = f.Authors
	}
	for name, values := range f.Tags {
		key := name
		if !strings.HasPrefix(key, "#") {
			key = "#" + key
		}
		o[key] = values
	}
	if f.Since != nil {
		o["since"] = f.Since.T().I64()
	}
	if f.Until != nil {
		o["until"] = f.Until.T().I64()
	}
	if f.Limit != nil {
		o["limit"] = *f.Limit
	}
	if f.Search != "" {
		o["search"] = f.Search
	}
	return json.Marshal(o)
}

// UnmarshalJSON unpacks a JSON encoded filter, rolling the "#<name>" keys up
// into the Tags map.
func (f *T) UnmarshalJSON(b []byte) (err error) {
	if f == nil {
		return fmt.Errorf("cannot unmarshal into nil filter")
	}
	var o map[string]json.RawMessage
	if err = json.Unmarshal(b, &o); chk.D(err) {
		return
	}
	*f = T{}
	for key, raw := range o {
		switch {
		case key == "ids":
			err = json.Unmarshal(raw, &f.IDs)
		case key == "kinds":
			err = json.Unmarshal(raw, &f.Kinds)
		case key == "authors":
			err = json.Unmarshal(raw, &f.Authors)
		case key == "since":
			err = json.Unmarshal(raw, &f.Since)
		case key == "until":
			err = json.Unmarshal(raw, &f.Until)
		case key == "limit":
			err = json.Unmarshal(raw, &f.Limit)
		case key == "search":
			err = json.Unmarshal(raw, &f.Search)
		case strings.HasPrefix(key, "#") && len(key) > 1:
			var values tag.T
			if err = json.Unmarshal(raw, &values); err == nil {
				if f.Tags == nil {
					f.Tags = make(TagMap)
				}
				f.Tags[key[1:]] = values
			}
		default:
			// unknown keys are ignored, not an error
		}
		if chk.D(err) {
			return fmt.Errorf("invalid filter key %q: %w", key, err)
		}
	}
	return
}

func (f *T) String() string {
	b, _ := f.MarshalJSON()
	return string(b)
}

// sortedTagKeys is used by tests for deterministic output.
func (f *T) sortedTagKeys() (keys []string) {
	for k := range f.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return
}
