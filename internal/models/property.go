package models

import (
	"slices"
	"time"
)

// Property types
const (
	TypeCondo      = "CONDO"
	TypeHouse      = "HOUSE"
	TypeTownhouse  = "TOWNHOUSE"
	TypeVilla      = "VILLA"
	TypeLand       = "LAND"
	TypeApartment  = "APARTMENT"
	TypeCommercial = "COMMERCIAL"
	TypeOffice     = "OFFICE"
	TypeRetail     = "RETAIL"
	TypeWarehouse  = "WAREHOUSE"
	TypeFactory    = "FACTORY"
	TypeHotel      = "HOTEL"
	TypeResort     = "RESORT"
)

// PropertyTypes lists every property type in display order.
var PropertyTypes = []string{
	TypeCondo, TypeHouse, TypeTownhouse, TypeVilla, TypeLand, TypeApartment, TypeCommercial,
	TypeOffice, TypeRetail, TypeWarehouse, TypeFactory, TypeHotel, TypeResort,
}

// Property and listing statuses
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
	StatusPending  = "PENDING"
	StatusSold     = "SOLD"
	StatusRented   = "RENTED"
)

var PropertyStatuses = []string{StatusActive, StatusInactive, StatusPending, StatusSold, StatusRented}

// Listing types
const (
	ListingSale = "SALE"
	ListingRent = "RENT"
)

func ValidPropertyType(t string) bool { return slices.Contains(PropertyTypes, t) }
func ValidPropertyStatus(s string) bool { return slices.Contains(PropertyStatuses, s) }
func ValidListingType(t string) bool { return t == ListingSale || t == ListingRent }

// Property is a real-estate unit and the root of the listing aggregate.
// Every child collection is owned by the property and removed with it.
type Property struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	PropertyCode string  `gorm:"size:16;uniqueIndex;not null" json:"propertyCode"`
	ReferenceID  *string `gorm:"size:64;index" json:"referenceId"`
	PropertyType string  `gorm:"size:32;index;not null" json:"propertyType"`

	Title                  string        `gorm:"size:255;not null" json:"title"`
	Description            string        `gorm:"type:text" json:"description"`
	PaymentPlan            string        `gorm:"type:text" json:"paymentPlan"`
	TranslatedTitles       LocalizedText `gorm:"not null" json:"translatedTitles"`
	TranslatedDescriptions LocalizedText `gorm:"not null" json:"translatedDescriptions"`
	TranslatedPaymentPlans LocalizedText `gorm:"not null" json:"translatedPaymentPlans"`

	Address       string   `gorm:"size:255" json:"address"`
	SearchAddress string   `gorm:"size:255" json:"searchAddress"`
	District      string   `gorm:"size:128" json:"district"`
	SubDistrict   string   `gorm:"size:128" json:"subDistrict"`
	City          string   `gorm:"size:128;index" json:"city"`
	Province      string   `gorm:"size:128;index" json:"province"`
	PostalCode    string   `gorm:"size:16" json:"postalCode"`
	Country       string   `gorm:"size:64" json:"country"`
	ZoneID        *uint    `gorm:"index" json:"zoneId"`
	Zone          *Zone    `gorm:"constraint:OnDelete:SET NULL" json:"zone,omitempty"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`

	Bedrooms   *int     `json:"bedrooms"`
	Bathrooms  *int     `json:"bathrooms"`
	Floors     *int     `json:"floors"`
	Area       *float64 `json:"area"`
	LandArea   *float64 `json:"landArea"`
	LandWidth  *float64 `json:"landWidth"`
	LandLength *float64 `json:"landLength"`

	Status    string `gorm:"size:16;index;not null;default:ACTIVE" json:"status"`
	ViewCount int    `gorm:"not null;default:0" json:"viewCount"`
	UserID    uint   `gorm:"index;not null" json:"userId"`
	User      *User  `json:"user,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Listings     []Listing     `gorm:"constraint:OnDelete:CASCADE" json:"listings"`
	Images       []Image       `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	FloorPlans   []FloorPlan   `gorm:"constraint:OnDelete:CASCADE" json:"floorPlans"`
	UnitPlans    []UnitPlan    `gorm:"constraint:OnDelete:CASCADE" json:"unitPlans"`
	Features     []Feature     `gorm:"constraint:OnDelete:CASCADE" json:"features"`
	Amenities    []Amenity     `gorm:"constraint:OnDelete:CASCADE" json:"amenities"`
	Facilities   []Facility    `gorm:"constraint:OnDelete:CASCADE" json:"facilities"`
	Views        []View        `gorm:"constraint:OnDelete:CASCADE" json:"views"`
	Highlights   []Highlight   `gorm:"constraint:OnDelete:CASCADE" json:"highlights"`
	Labels       []Label       `gorm:"constraint:OnDelete:CASCADE" json:"labels"`
	NearbyPlaces []NearbyPlace `gorm:"constraint:OnDelete:CASCADE" json:"nearbyPlaces"`
}

// FeaturedImage returns the featured image, or the first image when none is flagged.
func (p *Property) FeaturedImage() *Image {
	for i := range p.Images {
		if p.Images[i].IsFeatured {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}

// Listing is a priced sale or rental offer on a property.
type Listing struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	PropertyID       uint      `gorm:"index;not null" json:"propertyId"`
	ListingType      string    `gorm:"size:8;not null" json:"listingType"`
	Price            float64   `gorm:"not null;default:0;check:chk_listings_price,price >= 0" json:"price"`
	RentalPrice      *float64  `json:"rentalPrice"`
	ShortTerm3Months *float64  `json:"shortTerm3Months"`
	ShortTerm6Months *float64  `json:"shortTerm6Months"`
	ShortTerm1Year   *float64  `json:"shortTerm1Year"`
	Status           string    `gorm:"size:16;not null;default:ACTIVE" json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
