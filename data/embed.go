// Package data holds the reference data compiled into the binaries.
package data

import (
	_ "embed"
)

// PropertyTypes is the localized property type catalog.
//
//go:embed property_types.json
var PropertyTypes []byte

// Zones seeds the zone table.
//
//go:embed zones.json
var Zones []byte
