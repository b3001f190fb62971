package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationRoommateRequest = "roommate_request"
	NotificationExpense         = "expense"
	NotificationSettlement      = "settlement"
	NotificationChore           = "chore"

	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestDeclined = "declined"
)

type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID uuid.UUID  `gorm:"type:uuid;index" json:"recipient_id"`
	HouseholdID *uuid.UUID `gorm:"type:uuid" json:"household_id,omitempty"`
	SenderID    *uuid.UUID `gorm:"type:uuid" json:"sender_id,omitempty"`
	SenderName  string     `gorm:"size:100" json:"sender_name"`
	Type        string     `gorm:"not null;size:30" json:"type"`
	Title       string     `gorm:"size:255" json:"title"`
	Message     string     `json:"message"`
	ReferenceID *uuid.UUID `gorm:"type:uuid" json:"reference_id,omitempty"`
	Status      string     `gorm:"size:20" json:"status,omitempty"` // roommate_request only
	Read        bool       `gorm:"default:false" json:"read"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

type RespondRequest struct {
	Action string `json:"action" binding:"required,oneof=accept decline"`
}

type NotificationResponse struct {
	Notification
	TimeAgo string `json:"time_ago"`
}
