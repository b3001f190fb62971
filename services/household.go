package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cohabit-backend/database"
	"cohabit-backend/finance"
	"cohabit-backend/models"
	"cohabit-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const inviteCodeAttempts = 5

// GetHousehold loads a household or returns models.ErrNotFound.
func GetHousehold(ctx context.Context, householdID uuid.UUID) (models.Household, error) {
	var household models.Household
	err := database.DB.WithContext(ctx).Where("id = ?", householdID).First(&household).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return household, fmt.Errorf("household %s: %w", householdID, models.ErrNotFound)
	}
	if err != nil {
		return household, fmt.Errorf("get household: %w", err)
	}
	return household, nil
}

func IsMember(ctx context.Context, householdID, userID uuid.UUID) (bool, error) {
	var count int64
	err := database.DB.WithContext(ctx).Model(&models.HouseholdMember{}).
		Where("household_id = ? AND user_id = ?", householdID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return count > 0, nil
}

// RequireMember loads the household and checks that userID belongs to it.
func RequireMember(ctx context.Context, householdID, userID uuid.UUID) (models.Household, error) {
	household, err := GetHousehold(ctx, householdID)
	if err != nil {
		return household, err
	}
	ok, err := IsMember(ctx, householdID, userID)
	if err != nil {
		return household, err
	}
	if !ok {
		return household, models.ErrNotMember
	}
	return household, nil
}

type membership struct {
	user     models.User
	joinedAt time.Time
}

func loadMemberships(ctx context.Context, householdID uuid.UUID) ([]membership, error) {
	var rows []models.HouseholdMember
	err := database.DB.WithContext(ctx).
		Where("household_id = ?", householdID).
		Order("joined_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, m := range rows {
		ids[i] = m.UserID
	}
	var users []models.User
	if err := database.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load member profiles: %w", err)
	}
	byID := make(map[uuid.UUID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]membership, 0, len(rows))
	for _, m := range rows {
		u, ok := byID[m.UserID]
		if !ok {
			u = models.User{ID: m.UserID}
		}
		out = append(out, membership{user: u, joinedAt: m.JoinedAt})
	}
	return out, nil
}

// HouseholdMembers returns member profiles in join order. Members without a
// stored profile are returned with only their ID set.
func HouseholdMembers(ctx context.Context, householdID uuid.UUID) ([]models.User, error) {
	ms, err := loadMemberships(ctx, householdID)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, len(ms))
	for i, m := range ms {
		users[i] = m.user
	}
	return users, nil
}

// MemberDirectory is the household's member list as shown to roommates.
func MemberDirectory(ctx context.Context, household models.Household) ([]models.MemberResponse, error) {
	ms, err := loadMemberships(ctx, household.ID)
	if err != nil {
		return nil, err
	}
	dir := make([]models.MemberResponse, len(ms))
	for i, m := range ms {
		dir[i] = models.MemberResponse{
			UserID:      m.user.ID,
			DisplayName: m.user.Name(),
			Email:       m.user.Email,
			AvatarURL:   m.user.AvatarURL,
			IsCreator:   m.user.ID == household.CreatedBy,
			JoinedAt:    m.joinedAt,
		}
	}
	return dir, nil
}

// CreateHousehold creates a household with a fresh invite code and makes the
// creator its first member.
func CreateHousehold(ctx context.Context, name string, creator uuid.UUID) (models.Household, error) {
	var household models.Household
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := utils.GenerateInviteCode()
		if err != nil {
			return household, fmt.Errorf("generate invite code: %w", err)
		}
		household = models.Household{Name: name, InviteCode: code, CreatedBy: creator}

		err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&household).Error; err != nil {
				return err
			}
			return addMember(tx, household.ID, creator)
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return household, fmt.Errorf("create household: %w", err)
		}
		return household, nil
	}
	return household, errors.New("create household: could not allocate a unique invite code")
}

// RegenerateInviteCode replaces the household's invite code.
func RegenerateInviteCode(ctx context.Context, household *models.Household) error {
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := utils.GenerateInviteCode()
		if err != nil {
			return fmt.Errorf("generate invite code: %w", err)
		}
		err = database.DB.WithContext(ctx).Model(household).Update("invite_code", code).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return fmt.Errorf("update invite code: %w", err)
		}
		household.InviteCode = code
		return nil
	}
	return errors.New("regenerate invite code: could not allocate a unique code")
}

// FindByInviteCode looks a household up by its code, ignoring case.
func FindByInviteCode(ctx context.Context, code string) (models.Household, error) {
	var household models.Household
	code = strings.ToUpper(strings.TrimSpace(code))
	err := database.DB.WithContext(ctx).Where("invite_code = ?", code).First(&household).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return household, models.ErrInvalidInviteCode
	}
	if err != nil {
		return household, fmt.Errorf("find household by code: %w", err)
	}
	return household, nil
}

// JoinHousehold adds userID to the household (no-op if already a member)
// and makes it their active household.
func JoinHousehold(ctx context.Context, householdID, userID uuid.UUID) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := addMember(tx, householdID, userID); err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			Update("active_household_id", householdID).Error
	})
}

// RemoveMember drops userID from the household and clears it as their
// active household.
func RemoveMember(ctx context.Context, householdID, userID uuid.UUID) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("household_id = ? AND user_id = ?", householdID, userID).Delete(&models.HouseholdMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrNotMember
		}
		return tx.Model(&models.User{}).
			Where("id = ? AND active_household_id = ?", userID, householdID).
			Update("active_household_id", nil).Error
	})
}

func addMember(tx *gorm.DB, householdID, userID uuid.UUID) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.HouseholdMember{HouseholdID: householdID, UserID: userID}).Error
}

// InviteToHousehold emails the invite code and, when the address belongs to
// a registered user outside the household, leaves them a roommate request.
func InviteToHousehold(ctx context.Context, household models.Household, inviter models.User, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var invitee models.User
	err := database.DB.WithContext(ctx).Where("email = ?", email).First(&invitee).Error
	switch {
	case err == nil:
		member, err := IsMember(ctx, household.ID, invitee.ID)
		if err != nil {
			return err
		}
		if !member {
			if err := GetNotificationService().NotifyRoommateRequest(ctx, household, inviter, invitee); err != nil {
				return err
			}
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("find invitee: %w", err)
	}

	GetNotificationService().SendInvitationEmail(household, inviter, email)
	return nil
}

// RenameHousehold stores household.Name.
func RenameHousehold(ctx context.Context, household *models.Household) error {
	err := database.DB.WithContext(ctx).Model(household).Update("name", household.Name).Error
	if err != nil {
		return fmt.Errorf("rename household: %w", err)
	}
	// cached summaries carry the household name
	GetBalanceCache().Invalidate(ctx, household.ID)
	return nil
}

// SendRoommateRequest asks another user, picked from the directory, to join
// one of the sender's households. A nil householdID means the sender's active
// household.
func SendRoommateRequest(ctx context.Context, sender models.User, recipientID uuid.UUID, householdID *uuid.UUID) (models.Household, error) {
	if recipientID == sender.ID {
		return models.Household{}, &finance.ValidationError{Field: "recipient", Reason: "must not be yourself"}
	}
	if householdID == nil {
		householdID = sender.ActiveHouseholdID
	}
	if householdID == nil {
		return models.Household{}, models.ErrNoHousehold
	}

	household, err := RequireMember(ctx, *householdID, sender.ID)
	if err != nil {
		return household, err
	}
	recipient, err := GetUser(ctx, recipientID)
	if err != nil {
		return household, err
	}
	member, err := IsMember(ctx, household.ID, recipient.ID)
	if err != nil {
		return household, err
	}
	if member {
		return household, models.ErrAlreadyMember
	}

	return household, GetNotificationService().NotifyRoommateRequest(ctx, household, sender, recipient)
}
