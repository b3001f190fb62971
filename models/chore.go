package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DueDateLayout = "2006-01-02"

type Chore struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	HouseholdID  uuid.UUID  `gorm:"type:uuid;index" json:"household_id"`
	Name         string     `gorm:"not null;size:100" json:"name"`
	AssigneeID   *uuid.UUID `gorm:"type:uuid;index" json:"assignee_id,omitempty"`
	AssigneeName string     `gorm:"size:100" json:"assignee_name"`
	Frequency    string     `gorm:"size:20" json:"frequency"` // once, daily, weekly, biweekly, monthly
	DueDate      string     `gorm:"size:10;index" json:"due_date"`
	Done         bool       `gorm:"default:false" json:"done"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CompletedBy  *uuid.UUID `gorm:"type:uuid" json:"completed_by,omitempty"`
	CreatedBy    uuid.UUID  `gorm:"type:uuid" json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (c *Chore) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Request structs
type CreateChoreRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	AssigneeID   string `json:"assignee_id"`
	AssigneeName string `json:"assignee_name"`
	Frequency    string `json:"frequency" binding:"omitempty,oneof=once daily weekly biweekly monthly"`
	DueDate      string `json:"due_date" binding:"required"`
}

type UpdateChoreRequest struct {
	Name         string `json:"name" binding:"max=100"`
	AssigneeID   string `json:"assignee_id"`
	AssigneeName string `json:"assignee_name"`
	Frequency    string `json:"frequency" binding:"omitempty,oneof=once daily weekly biweekly monthly"`
	DueDate      string `json:"due_date"`
}

type ToggleChoreRequest struct {
	Done *bool `json:"done" binding:"required"`
}
