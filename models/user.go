package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email             string     `gorm:"uniqueIndex;not null;size:255" json:"email"`
	DisplayName       string     `gorm:"size:100" json:"display_name"`
	AvatarURL         string     `json:"avatar_url,omitempty"`
	Habits            string     `json:"habits"` // comma separated tags
	NoisePreference   string     `gorm:"size:20;default:moderate" json:"noise_preference"`
	Availability      string     `gorm:"size:20;default:flexible;index" json:"availability"`
	FCMToken          string     `json:"-"`
	ActiveHouseholdID *uuid.UUID `gorm:"type:uuid" json:"household_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Name is what other roommates see: the display name, else the email's
// local part, else a placeholder.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if local, _, ok := strings.Cut(u.Email, "@"); ok && local != "" {
		return local
	}
	if u.Email != "" {
		return u.Email
	}
	return "Unknown User"
}

// Response struct (what we return to clients)
type UserResponse struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	DisplayName     string     `json:"display_name"`
	AvatarURL       string     `json:"avatar_url,omitempty"`
	Habits          string     `json:"habits"`
	NoisePreference string     `json:"noise_preference"`
	Availability    string     `json:"availability"`
	HouseholdID     *uuid.UUID `json:"household_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		DisplayName:     u.Name(),
		AvatarURL:       u.AvatarURL,
		Habits:          u.Habits,
		NoisePreference: u.NoisePreference,
		Availability:    u.Availability,
		HouseholdID:     u.ActiveHouseholdID,
		CreatedAt:       u.CreatedAt,
	}
}

type UpdateProfileRequest struct {
	DisplayName     string `json:"display_name" binding:"max=100"`
	AvatarURL       string `json:"avatar_url"`
	Habits          string `json:"habits"`
	NoisePreference string `json:"noise_preference" binding:"max=20"`
	Availability    string `json:"availability" binding:"max=20"`
}

type SearchUsersQuery struct {
	Query        string `form:"q"`
	Availability string `form:"availability"`
}

type RoommateRequest struct {
	HouseholdID string `json:"household_id"`
}

type UpdateFCMTokenRequest struct {
	Token string `json:"token" binding:"required"`
}
