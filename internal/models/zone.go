package models

import "time"

// Zone is a named area properties can be filed under for filtering.
type Zone struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"size:255;not null;uniqueIndex" json:"name"`
	NameEn      string        `gorm:"size:255" json:"nameEn"`
	NameTh      string        `gorm:"size:255" json:"nameTh"`
	Names       LocalizedText `gorm:"not null" json:"names"`
	Description string        `gorm:"type:text" json:"description"`
	City        string        `gorm:"size:128;index" json:"city"`
	Province    string        `gorm:"size:128;index" json:"province"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Icon is a UI glyph for an attribute type, grouped by Prefix and SubName.
type Icon struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Prefix   string `gorm:"size:64;index;not null" json:"prefix"`
	Name     string `gorm:"size:128;not null" json:"name"`
	Key      string `gorm:"size:128;index" json:"key"`
	IconPath string `gorm:"size:512" json:"iconPath"`
	SubName  string `gorm:"size:128" json:"subName"`
	Active   bool   `gorm:"not null;index" json:"active"`
}
