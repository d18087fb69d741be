package models

import (
	"encoding/json"
	"slices"
	"time"
)

// Roles
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
	RoleAgent = "AGENT"
)

var Roles = []string{RoleUser, RoleAdmin, RoleAgent}

func ValidRole(r string) bool { return slices.Contains(Roles, r) }

// User is an account. Social contact handles are stored flat and presented
// to clients as a nested socialMedia object.
type User struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:255;not null"`
	Email     string    `gorm:"size:255;uniqueIndex;not null"`
	Password  string    `gorm:"size:255;not null"`
	Phone     string    `gorm:"size:32"`
	Role      string    `gorm:"size:16;not null;default:USER"`
	Facebook  string    `gorm:"size:255"`
	LineID    string    `gorm:"size:64"`
	WeChatID  string    `gorm:"column:wechat_id;size:64"`
	WhatsApp  string    `gorm:"size:32"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SocialMedia is the nested presentation of the flattened contact fields.
type SocialMedia struct {
	Facebook string `json:"facebook"`
	Line     string `json:"line"`
	WeChat   string `json:"wechat"`
	WhatsApp string `json:"whatsapp"`
}

// Social returns the contact handles as a nested value.
func (u *User) Social() SocialMedia {
	return SocialMedia{Facebook: u.Facebook, Line: u.LineID, WeChat: u.WeChatID, WhatsApp: u.WhatsApp}
}

// SetSocial copies s onto the flat columns.
func (u *User) SetSocial(s SocialMedia) {
	u.Facebook, u.LineID, u.WeChatID, u.WhatsApp = s.Facebook, s.Line, s.WeChat, s.WhatsApp
}

type userJSON struct {
	ID          uint        `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Role        string      `json:"role"`
	SocialMedia SocialMedia `json:"socialMedia"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// MarshalJSON never emits the password hash.
func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(userJSON{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        u.Role,
		SocialMedia: u.Social(),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	})
}
