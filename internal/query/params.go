// Package query turns listing query parameters into GORM scopes and
// pagination metadata. Listing, search, zone and backoffice views share it.
package query

import (
	"math"
	"strconv"
	"strings"

	"github.com/ddproperty/ddproperty-api/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListParams is the parsed form of a property list query string. Zero values
// mean the filter is not applied.
type ListParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string

	PropertyType string
	ListingType  string
	MinPrice     *float64
	MaxPrice     *float64
	Bedrooms     *int
	Bathrooms    *int
	City         string
	Province     string
	ZoneID       *uint
	Search       string
	UserID       *uint
	// Status defaults to ACTIVE; "ALL" disables the filter.
	Status string
}

// ParseListParams reads list parameters from a query map. Values that do not
// parse are ignored rather than rejected.
func ParseListParams(q map[string]string) ListParams {
	p := ListParams{
		Page:         positiveInt(q["page"], DefaultPage),
		Limit:        positiveInt(q["limit"], DefaultLimit),
		SortBy:       firstOf(q, "sortBy", "sort"),
		SortOrder:    strings.ToLower(firstOf(q, "sortOrder", "order")),
		PropertyType: strings.ToUpper(strings.TrimSpace(q["propertyType"])),
		ListingType:  strings.ToUpper(strings.TrimSpace(q["listingType"])),
		MinPrice:     optFloat(q["minPrice"]),
		MaxPrice:     optFloat(q["maxPrice"]),
		Bedrooms:     optInt(q["bedrooms"]),
		Bathrooms:    optInt(q["bathrooms"]),
		City:         strings.TrimSpace(q["city"]),
		Province:     strings.TrimSpace(q["province"]),
		ZoneID:       optUint(q["zoneId"]),
		Search:       strings.TrimSpace(firstOf(q, "search", "q")),
		UserID:       optUint(q["userId"]),
		Status:       strings.ToUpper(strings.TrimSpace(q["status"])),
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Status == "" {
		p.Status = models.StatusActive
	}
	return p
}

// Offset is the number of rows skipped before the current page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes one page of a result set.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewMeta computes page metadata for total matching rows.
func NewMeta(total int64, page, limit int) Meta {
	if limit < 1 {
		limit = DefaultLimit
	}
	if page < 1 {
		page = DefaultPage
	}
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return Meta{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Page is a page of rows plus its metadata.
type Page[T any] struct {
	Data []T `json:"data"`
	Meta Meta `json:"meta"`
}

func firstOf(q map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(q[k]); v != "" {
			return v
		}
	}
	return ""
}

func positiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func optInt(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

func optUint(s string) *uint {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return nil
	}
	u := uint(n)
	return &u
}

func optFloat(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
