package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cohabit-backend/database"
	"cohabit-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultNoisePreference = "moderate"
	defaultAvailability    = "flexible"
	directoryLimit         = 50
)

// GetUser loads a stored profile or returns models.ErrNotFound.
func GetUser(ctx context.Context, userID uuid.UUID) (models.User, error) {
	var user models.User
	err := database.DB.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return user, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// CurrentUser returns the caller's profile, or a minimal one built from the
// token claims when no profile has been saved yet.
func CurrentUser(ctx context.Context, userID uuid.UUID, email string) (models.User, error) {
	user, err := GetUser(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return models.User{ID: userID, Email: email}, nil
	}
	return user, err
}

// SaveProfile creates the caller's profile or updates its editable fields.
func SaveProfile(ctx context.Context, userID uuid.UUID, email string, req models.UpdateProfileRequest) (models.User, error) {
	user, err := GetUser(ctx, userID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		user = models.User{
			ID:              userID,
			Email:           email,
			DisplayName:     req.DisplayName,
			AvatarURL:       req.AvatarURL,
			Habits:          strings.TrimSpace(req.Habits),
			NoisePreference: orDefault(req.NoisePreference, defaultNoisePreference),
			Availability:    orDefault(req.Availability, defaultAvailability),
		}
		if err := database.DB.WithContext(ctx).Create(&user).Error; err != nil {
			return user, fmt.Errorf("create profile: %w", err)
		}
		return user, nil
	case err != nil:
		return user, err
	}

	updates := map[string]interface{}{"display_name": req.DisplayName}
	if req.AvatarURL != "" {
		updates["avatar_url"] = req.AvatarURL
	}
	updates["habits"] = strings.TrimSpace(req.Habits)
	if req.NoisePreference != "" {
		updates["noise_preference"] = req.NoisePreference
	}
	if req.Availability != "" {
		updates["availability"] = req.Availability
	}
	if email != "" && email != user.Email {
		updates["email"] = email
	}
	if err := database.DB.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return user, fmt.Errorf("update profile: %w", err)
	}
	return GetUser(ctx, userID)
}

// SaveFCMToken stores the device token push notifications are sent to.
func SaveFCMToken(ctx context.Context, userID uuid.UUID, email, token string) error {
	user, err := CurrentUser(ctx, userID, email)
	if err != nil {
		return err
	}
	user.FCMToken = token
	if err := database.DB.WithContext(ctx).Save(&user).Error; err != nil {
		return fmt.Errorf("save fcm token: %w", err)
	}
	return nil
}

// UserHouseholds lists the households userID belongs to, oldest first.
func UserHouseholds(ctx context.Context, userID uuid.UUID) ([]models.Household, error) {
	var households []models.Household
	err := database.DB.WithContext(ctx).
		Joins("JOIN household_members ON household_members.household_id = households.id").
		Where("household_members.user_id = ?", userID).
		Order("households.created_at ASC").
		Find(&households).Error
	if err != nil {
		return nil, fmt.Errorf("list households: %w", err)
	}
	return households, nil
}

// SetActiveHousehold records which household the user is currently viewing.
func SetActiveHousehold(ctx context.Context, userID, householdID uuid.UUID) error {
	err := database.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("active_household_id", householdID).Error
	if err != nil {
		return fmt.Errorf("set active household: %w", err)
	}
	return nil
}

// SearchUsers is the roommate directory: every profile except the caller's,
// matched by name or habits text and by availability. Matching is case
// insensitive; an empty query matches everyone.
func SearchUsers(ctx context.Context, callerID uuid.UUID, query, availability string) ([]models.User, error) {
	q := database.DB.WithContext(ctx).Where("id <> ?", callerID)
	if text := strings.ToLower(strings.TrimSpace(query)); text != "" {
		like := "%" + text + "%"
		q = q.Where("LOWER(display_name) LIKE ? OR LOWER(habits) LIKE ?", like, like)
	}
	if availability != "" {
		q = q.Where("availability = ?", availability)
	}

	var users []models.User
	if err := q.Order("display_name ASC").Limit(directoryLimit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
