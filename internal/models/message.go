package models

import (
	"slices"
	"time"
)

// Inquiry pipeline states
const (
	MessageNew       = "NEW"
	MessageContacted = "CONTACTED"
	MessageVisit     = "VISIT"
	MessageProposal  = "PROPOSAL"
	MessageWon       = "WON"
	MessageLost      = "LOST"
)

var MessageStatuses = []string{MessageNew, MessageContacted, MessageVisit, MessageProposal, MessageWon, MessageLost}

func ValidMessageStatus(s string) bool { return slices.Contains(MessageStatuses, s) }

// Message is an inquiry sent by a prospective client about a property.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Email      string    `gorm:"size:255" json:"email"`
	Phone      string    `gorm:"size:16;not null" json:"phone"`
	LineID     string    `gorm:"size:64" json:"lineId"`
	Message    string    `gorm:"type:text" json:"message"`
	Status     string    `gorm:"size:16;index;not null;default:NEW" json:"status"`
	PropertyID uint      `gorm:"index;not null" json:"propertyId"`
	Property   *Property `gorm:"constraint:OnDelete:CASCADE" json:"property,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
