package services

import (
	"encoding/json"
	"fmt"

	"github.com/ddproperty/ddproperty-api/internal/models"
)

// PropertyTypeInfo describes one property type for display.
type PropertyTypeInfo struct {
	Value        string            `json:"value"`
	Names        map[string]string `json:"names"`
	Descriptions map[string]string `json:"descriptions"`
}

// Catalog is the localized property type list, in display order.
type Catalog struct {
	types []PropertyTypeInfo
}

// LoadCatalog parses the embedded catalog. Every known property type is
// present in the result; types missing from data get their value as name.
func LoadCatalog(data []byte) (*Catalog, error) {
	var entries []PropertyTypeInfo
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse property type catalog: %w", err)
	}
	byValue := make(map[string]PropertyTypeInfo, len(entries))
	for _, e := range entries {
		byValue[e.Value] = e
	}

	c := &Catalog{types: make([]PropertyTypeInfo, 0, len(models.PropertyTypes))}
	for _, t := range models.PropertyTypes {
		info, ok := byValue[t]
		if !ok {
			info = PropertyTypeInfo{Value: t}
		}
		if info.Names == nil {
			info.Names = map[string]string{"en": t}
		}
		if info.Descriptions == nil {
			info.Descriptions = map[string]string{}
		}
		c.types = append(c.types, info)
	}
	return c, nil
}

// Types returns a copy of the catalog entries.
func (c *Catalog) Types() []PropertyTypeInfo {
	out := make([]PropertyTypeInfo, len(c.types))
	copy(out, c.types)
	return out
}
