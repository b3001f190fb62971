package models

import (
	"cohabit-backend/finance"

	"github.com/google/uuid"
)

// HouseholdBalanceSummary is returned for GET /api/households/:id/balances
type HouseholdBalanceSummary struct {
	HouseholdID   uuid.UUID `json:"household_id"`
	HouseholdName string    `json:"household_name"`
	finance.Summary
}
