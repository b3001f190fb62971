package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Household struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string            `gorm:"not null;size:100" json:"name"`
	InviteCode string            `gorm:"uniqueIndex;not null;size:6" json:"invite_code"`
	CreatedBy  uuid.UUID         `gorm:"type:uuid" json:"created_by"`
	Members    []HouseholdMember `gorm:"foreignKey:HouseholdID" json:"members,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (h *Household) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

type HouseholdMember struct {
	HouseholdID uuid.UUID `gorm:"type:uuid;primaryKey" json:"household_id"`
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// Request structs
type CreateHouseholdRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type UpdateHouseholdRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type JoinHouseholdRequest struct {
	InviteCode string `json:"invite_code" binding:"required"`
}

type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Response structs
type HouseholdResponse struct {
	ID         uuid.UUID        `json:"id"`
	Name       string           `json:"name"`
	InviteCode string           `json:"invite_code"`
	CreatedBy  uuid.UUID        `json:"created_by"`
	Members    []MemberResponse `json:"members"`
	CreatedAt  time.Time        `json:"created_at"`
}

type MemberResponse struct {
	UserID      uuid.UUID `json:"uid"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	IsCreator   bool      `json:"is_creator"`
	JoinedAt    time.Time `json:"joined_at"`
}
