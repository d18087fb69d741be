// normalizer.go
//
// DD Property listing API
// Copyright (c) 2026 DD Property Co., Ltd.
//
// This file is part of ddproperty-api.
// ddproperty-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ddproperty-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ddproperty-api.
// If not, see <https://www.gnu.org/licenses/>.

// Package taxonomy maps the loosely shaped attribute flags clients submit with
// a property onto canonical enumerated records.
package taxonomy

import (
	"sort"
	"strings"
	"unicode"

	"github.com/ddproperty/ddproperty-api/internal/metrics"
	"github.com/ddproperty/ddproperty-api/internal/types"
	"go.uber.org/zap"
)

// Kind names one attribute collection of a property.
type Kind string

const (
	KindFeatures   Kind = "features"
	KindAmenities  Kind = "amenities"
	KindFacilities Kind = "facilities"
	KindViews      Kind = "views"
	KindHighlights Kind = "highlights"
	KindLabels     Kind = "labels"
	KindNearby     Kind = "nearby"
)

// Kinds lists every attribute kind.
var Kinds = []Kind{KindFeatures, KindAmenities, KindFacilities, KindViews, KindHighlights, KindLabels, KindNearby}

// Raw is the client submitted form of all seven attribute collections.
type Raw struct {
	Features   types.FlagSet `json:"features"`
	Amenities  types.FlagSet `json:"amenities"`
	Facilities types.FlagSet `json:"facilities"`
	Views      types.FlagSet `json:"views"`
	Highlights types.FlagSet `json:"highlights"`
	Labels     types.FlagSet `json:"labels"`
	Nearby     types.FlagSet `json:"nearby"`
}

// For returns the flags submitted for kind; nil when the field was absent.
func (r Raw) For(kind Kind) types.FlagSet {
	switch kind {
	case KindFeatures:
		return r.Features
	case KindAmenities:
		return r.Amenities
	case KindFacilities:
		return r.Facilities
	case KindViews:
		return r.Views
	case KindHighlights:
		return r.Highlights
	case KindLabels:
		return r.Labels
	case KindNearby:
		return r.Nearby
	}
	return nil
}

// Entry is one canonical attribute record.
type Entry struct {
	Type     string
	Category string
	Distance *float64
}

// Set holds the canonical entries per kind. A kind is present only when the
// client submitted that field, so an update can tell "clear" from "untouched".
type Set map[Kind][]Entry

// Len counts entries across all kinds.
func (s Set) Len() int {
	n := 0
	for _, entries := range s {
		n += len(entries)
	}
	return n
}

// Types lists the canonical types for kind.
func (s Set) Types(kind Kind) []string {
	out := make([]string, 0, len(s[kind]))
	for _, e := range s[kind] {
		out = append(out, e.Type)
	}
	return out
}

type compiled struct {
	values     map[string]string // compact canonical -> canonical
	aliases    map[string]string
	heuristics []heuristic
}

// Normalizer resolves attribute keys. It is safe for concurrent use.
type Normalizer struct {
	logger *zap.Logger
	tables map[Kind]compiled
}

// NewNormalizer builds a Normalizer over the built-in tables.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Normalizer{logger: logger, tables: make(map[Kind]compiled, len(Kinds))}
	for kind, t := range map[Kind]table{
		KindFeatures:   featureTable,
		KindAmenities:  amenityTable,
		KindFacilities: facilityTable,
		KindViews:      viewTable,
		KindHighlights: highlightTable,
		KindLabels:     labelTable,
		KindNearby:     nearbyTable,
	} {
		c := compiled{values: make(map[string]string, len(t.values)), aliases: t.aliases, heuristics: t.heuristics}
		for _, v := range t.values {
			c.values[compact(v)] = v
		}
		n.tables[kind] = c
	}
	return n
}

// Normalize maps every submitted kind to canonical entries, sorted by type and
// without duplicates. Keys that cannot be mapped are dropped and counted.
func (n *Normalizer) Normalize(raw Raw) Set {
	set := make(Set)
	for _, kind := range Kinds {
		flags := raw.For(kind)
		if flags == nil {
			continue
		}
		seen := make(map[string]bool, len(flags))
		entries := make([]Entry, 0, len(flags))
		for _, flag := range flags {
			entry, ok := n.Resolve(kind, flag.Key)
			if !ok {
				n.logger.Debug("dropping unmapped attribute key",
					zap.String("kind", string(kind)), zap.String("key", flag.Key))
				metrics.TaxonomyDropped.WithLabelValues(string(kind)).Inc()
				continue
			}
			if seen[entry.Type] {
				continue
			}
			seen[entry.Type] = true
			if kind == KindFacilities {
				if c := strings.ToUpper(strings.TrimSpace(flag.Category)); validCategory(c) {
					entry.Category = c
				}
			}
			entry.Distance = flag.Distance
			entries = append(entries, entry)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Type < entries[j].Type })
		set[kind] = entries
	}
	return set
}

// Resolve maps a single key: canonical value, then synonym table, then the
// first matching substring fallback.
func (n *Normalizer) Resolve(kind Kind, key string) (Entry, bool) {
	t, ok := n.tables[kind]
	if !ok {
		return Entry{}, false
	}
	k := compact(key)
	if k == "" {
		return Entry{}, false
	}

	value, found := t.values[k]
	if !found {
		value, found = t.aliases[k]
	}
	if !found {
		for _, h := range t.heuristics {
			if strings.Contains(k, h.contains) {
				value, found = h.value, true
				break
			}
		}
	}
	if !found {
		return Entry{}, false
	}

	entry := Entry{Type: value}
	if kind == KindFacilities {
		entry.Category = facilityCategories[value]
	}
	return entry, true
}

func validCategory(c string) bool {
	switch c {
	case CategoryFitnessSports, CategoryWellness, CategoryCommonArea, CategorySecurity, CategoryConvenience:
		return true
	}
	return false
}

func compact(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
