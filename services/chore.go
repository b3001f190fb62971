package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cohabit-backend/database"
	"cohabit-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ChoreFilterAll       = "all"
	ChoreFilterPending   = "pending"
	ChoreFilterCompleted = "completed"
	ChoreFilterDueSoon   = "due_soon"
	ChoreFilterOverdue   = "overdue"

	dueSoonDays = 3
)

var nowUTC = func() time.Time { return time.Now().UTC() }

// ValidChoreFilter reports whether f is a known list filter. Empty means all.
func ValidChoreFilter(f string) bool {
	switch f {
	case "", ChoreFilterAll, ChoreFilterPending, ChoreFilterCompleted, ChoreFilterDueSoon, ChoreFilterOverdue:
		return true
	}
	return false
}

// ListChores returns a household's chores for a filter relative to today.
// Due dates are stored as YYYY-MM-DD so they compare lexically.
func ListChores(ctx context.Context, householdID uuid.UUID, filter string, assignee *uuid.UUID, today time.Time) ([]models.Chore, error) {
	day := today.Format(models.DueDateLayout)
	soon := today.AddDate(0, 0, dueSoonDays).Format(models.DueDateLayout)

	q := database.DB.WithContext(ctx).Where("household_id = ?", householdID)
	if assignee != nil {
		q = q.Where("assignee_id = ?", *assignee)
	}

	switch filter {
	case ChoreFilterPending:
		q = q.Where("done = ?", false).Order("due_date ASC")
	case ChoreFilterCompleted:
		q = q.Where("done = ?", true).Order("completed_at DESC")
	case ChoreFilterDueSoon:
		q = q.Where("done = ? AND due_date >= ? AND due_date <= ?", false, day, soon).Order("due_date ASC")
	case ChoreFilterOverdue:
		q = q.Where("done = ? AND due_date < ?", false, day).Order("due_date ASC")
	default:
		q = q.Order("due_date ASC")
	}

	var chores []models.Chore
	if err := q.Order("created_at ASC").Find(&chores).Error; err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	return chores, nil
}

func GetChore(ctx context.Context, choreID uuid.UUID) (models.Chore, error) {
	var chore models.Chore
	err := database.DB.WithContext(ctx).Where("id = ?", choreID).First(&chore).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return chore, fmt.Errorf("chore %s: %w", choreID, models.ErrNotFound)
	}
	if err != nil {
		return chore, fmt.Errorf("get chore: %w", err)
	}
	return chore, nil
}

// SetChoreDone marks a chore done or not done, tracking who completed it.
func SetChoreDone(ctx context.Context, chore *models.Chore, done bool, by uuid.UUID) error {
	updates := map[string]interface{}{"done": done}
	if done {
		now := nowUTC()
		updates["completed_at"] = now
		updates["completed_by"] = by
	} else {
		updates["completed_at"] = nil
		updates["completed_by"] = nil
	}
	if err := database.DB.WithContext(ctx).Model(chore).Updates(updates).Error; err != nil {
		return fmt.Errorf("update chore: %w", err)
	}
	return nil
}

// ClearCompletedChores deletes every finished chore in the household.
func ClearCompletedChores(ctx context.Context, householdID uuid.UUID) (int64, error) {
	res := database.DB.WithContext(ctx).
		Where("household_id = ? AND done = ?", householdID, true).
		Delete(&models.Chore{})
	if res.Error != nil {
		return 0, fmt.Errorf("clear completed chores: %w", res.Error)
	}
	return res.RowsAffected, nil
}
