package models

import "time"

// Attribute rows are denormalized from the flag maps submitted with a
// property. Type holds the canonical UPPER_SNAKE name.

type Feature struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"index;not null" json:"propertyId"`
	Type       string    `gorm:"size:64;not null" json:"type"`
	Active     bool      `gorm:"not null" json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Amenity struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"index;not null" json:"propertyId"`
	Type       string    `gorm:"size:64;not null" json:"type"`
	Active     bool      `gorm:"not null" json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Facility struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"index;not null" json:"propertyId"`
	Type       string    `gorm:"size:64;not null" json:"type"`
	Category   string    `gorm:"size:64;not null" json:"category"`
	Active     bool      `gorm:"not null" json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
}

type View struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"index;not null" json:"propertyId"`
	Type       string    `gorm:"size:64;not null" json:"type"`
	Active     bool      `gorm:"not null" json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Highlight struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"index;not null" json:"propertyId"`
	Type       string    `gorm:"size:64;not null" json:"type"`
	Active     bool      `gorm:"not null" json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Label struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"index;not null" json:"propertyId"`
	Type       string    `gorm:"size:64;not null" json:"type"`
	Active     bool      `gorm:"not null" json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
}

type NearbyPlace struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"index;not null" json:"propertyId"`
	Type       string    `gorm:"size:64;not null" json:"type"`
	Distance   *float64  `json:"distance"`
	Active     bool      `gorm:"not null" json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
}
