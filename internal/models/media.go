package models

import "time"

// Image is a property photo. One image per property carries IsFeatured.
type Image struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"index;not null" json:"propertyId"`
	URL        string    `gorm:"size:512;not null" json:"url"`
	Caption    string    `gorm:"size:255" json:"caption"`
	IsFeatured bool      `gorm:"not null" json:"isFeatured"`
	SortOrder  int       `gorm:"not null;default:0" json:"sortOrder"`
	CreatedAt  time.Time `json:"createdAt"`
}

type FloorPlan struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"index;not null" json:"propertyId"`
	URL        string    `gorm:"size:512;not null" json:"url"`
	Title      string    `gorm:"size:255" json:"title"`
	SortOrder  int       `gorm:"not null;default:0" json:"sortOrder"`
	CreatedAt  time.Time `json:"createdAt"`
}

type UnitPlan struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"index;not null" json:"propertyId"`
	URL        string    `gorm:"size:512;not null" json:"url"`
	Title      string    `gorm:"size:255" json:"title"`
	SortOrder  int       `gorm:"not null;default:0" json:"sortOrder"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Media rows expose their URL so files can be relocated without knowing the row type.

func (m *Image) AssetURL() string { return m.URL }
func (m *Image) SetAssetURL(url string) { m.URL = url }
func (m *FloorPlan) AssetURL() string { return m.URL }
func (m *FloorPlan) SetAssetURL(url string) { m.URL = url }
func (m *UnitPlan) AssetURL() string { return m.URL }
func (m *UnitPlan) SetAssetURL(url string) { m.URL = url }
