package services

import (
	"context"
	"errors"
	"fmt"

	"cohabit-backend/database"
	"cohabit-backend/finance"
	"cohabit-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func orderedParticipants(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// HouseholdExpenses loads stored expenses with their participant slots in
// submitted order. oldestFirst selects ledger order; otherwise newest first.
func HouseholdExpenses(ctx context.Context, householdID uuid.UUID, oldestFirst bool, page, limit int) ([]models.Expense, error) {
	order := "created_at DESC, id DESC"
	if oldestFirst {
		order = "created_at ASC, id ASC"
	}
	q := database.DB.WithContext(ctx).
		Preload("Participants", orderedParticipants).
		Where("household_id = ?", householdID).
		Order(order)
	if limit > 0 {
		q = q.Offset((page - 1) * limit).Limit(limit)
	}

	var expenses []models.Expense
	if err := q.Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	return expenses, nil
}

// LoadLedger rebuilds a household's ledger from storage in insertion order.
func LoadLedger(ctx context.Context, householdID uuid.UUID) (*finance.Ledger, error) {
	rows, err := HouseholdExpenses(ctx, householdID, true, 0, 0)
	if err != nil {
		return nil, err
	}
	entries := make([]finance.Expense, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToLedgerEntry()
	}
	return finance.NewLedger(entries...), nil
}

// GetExpense loads one expense with its participants.
func GetExpense(ctx context.Context, expenseID uuid.UUID) (models.Expense, error) {
	var expense models.Expense
	err := database.DB.WithContext(ctx).
		Preload("Participants", orderedParticipants).
		Where("id = ?", expenseID).
		First(&expense).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return expense, fmt.Errorf("expense %s: %w", expenseID, models.ErrNotFound)
	}
	if err != nil {
		return expense, fmt.Errorf("get expense: %w", err)
	}
	return expense, nil
}

// AddExpense validates entry, stores it for the household and drops the
// cached balance summary.
func AddExpense(ctx context.Context, householdID, createdBy uuid.UUID, entry finance.Expense) (models.Expense, error) {
	if err := entry.Validate(); err != nil {
		return models.Expense{}, err
	}
	expense := models.NewExpense(householdID, createdBy, entry)
	if err := database.DB.WithContext(ctx).Create(&expense).Error; err != nil {
		return expense, fmt.Errorf("store expense: %w", err)
	}
	GetBalanceCache().Invalidate(ctx, householdID)
	return expense, nil
}

// RecordSettlement appends a confirmed settlement to the household ledger as
// a synthetic expense.
func RecordSettlement(ctx context.Context, householdID, createdBy uuid.UUID, s finance.Settlement) (models.Expense, error) {
	entry, err := finance.SettlementEntry(s, uuid.NewString(), nowUTC())
	if err != nil {
		return models.Expense{}, err
	}
	return AddExpense(ctx, householdID, createdBy, entry)
}

// DeleteExpense removes an expense and its participant slots.
func DeleteExpense(ctx context.Context, expense models.Expense) error {
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expense_id = ?", expense.ID).Delete(&models.ExpenseParticipant{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", expense.ID).Delete(&models.Expense{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	GetBalanceCache().Invalidate(ctx, expense.HouseholdID)
	return nil
}

// BalanceSummary returns the household's balances, suggested settlements and
// totals, served from cache when possible.
func BalanceSummary(ctx context.Context, household models.Household) (models.HouseholdBalanceSummary, error) {
	cache := GetBalanceCache()
	if cached, ok := cache.Get(ctx, household.ID); ok {
		return cached, nil
	}

	ledger, err := LoadLedger(ctx, household.ID)
	if err != nil {
		return models.HouseholdBalanceSummary{}, err
	}
	summary := models.HouseholdBalanceSummary{
		HouseholdID:   household.ID,
		HouseholdName: household.Name,
		Summary:       ledger.Summary(),
	}
	cache.Set(ctx, household.ID, summary)
	return summary, nil
}
