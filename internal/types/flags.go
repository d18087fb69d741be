package types

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Flag is one enabled entry of a client submitted attribute set.
type Flag struct {
	Key      string
	Category string
	Distance *float64
}

// FlagSet is the decoded form of an attribute field. Clients send it as a
// map of name to flag, as a JSON string holding such a map, or as an array of
// {type, category, active} records. Only enabled entries are kept.
//
// A nil FlagSet means the field was absent or could not be parsed; a non-nil
// empty FlagSet means it was present with nothing enabled.
type FlagSet []Flag

// UnmarshalJSON never fails: malformed input decodes to an absent set.
func (s *FlagSet) UnmarshalJSON(data []byte) error {
	*s = decodeFlags(data, 0)
	return nil
}

// FlagsOf builds a set from a plain flag map, in key order.
func FlagsOf(m map[string]bool) FlagSet {
	set := FlagSet{}
	for _, k := range sortedKeys(m) {
		if m[k] {
			set = append(set, Flag{Key: k})
		}
	}
	return set
}

// Keys lists the flag keys in order.
func (s FlagSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for _, f := range s {
		keys = append(keys, f.Key)
	}
	return keys
}

type flagRecord struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Active   any    `json:"active"`
	Distance any    `json:"distance"`
}

func decodeFlags(data []byte, depth int) FlagSet {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	switch data[0] {
	case '"':
		// a JSON encoded string of a map or array, one level deep
		if depth > 0 {
			return nil
		}
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil
		}
		if strings.TrimSpace(inner) == "" {
			return FlagSet{}
		}
		return decodeFlags([]byte(inner), depth+1)

	case '{':
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return nil
		}
		set := FlagSet{}
		for _, k := range sortedKeys(m) {
			switch v := m[k].(type) {
			case map[string]any:
				// {"beach": {"active": true, "distance": 1.5}}
				active, ok := v["active"]
				if ok && !Truthy(active) {
					continue
				}
				set = append(set, Flag{Key: k, Distance: distanceOf(v["distance"])})
			default:
				if Truthy(v) {
					set = append(set, Flag{Key: k})
				}
			}
		}
		return set

	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil
		}
		set := FlagSet{}
		for _, item := range items {
			item = bytes.TrimSpace(item)
			if len(item) == 0 {
				continue
			}
			if item[0] == '"' {
				var key string
				if json.Unmarshal(item, &key) == nil && strings.TrimSpace(key) != "" {
					set = append(set, Flag{Key: strings.TrimSpace(key)})
				}
				continue
			}
			var rec flagRecord
			if err := json.Unmarshal(item, &rec); err != nil {
				continue
			}
			key := rec.Type
			if key == "" {
				key = rec.Name
			}
			if strings.TrimSpace(key) == "" {
				continue
			}
			if rec.Active != nil && !Truthy(rec.Active) {
				continue
			}
			set = append(set, Flag{
				Key:      strings.TrimSpace(key),
				Category: rec.Category,
				Distance: distanceOf(rec.Distance),
			})
		}
		return set
	}

	return nil
}

func distanceOf(v any) *float64 {
	var f FlexFloat
	b, err := json.Marshal(v)
	if err != nil || f.UnmarshalJSON(b) != nil {
		return nil
	}
	return f.Ptr()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
