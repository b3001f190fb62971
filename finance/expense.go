// Package finance holds the expense splitting and debt settlement logic.
// Everything here operates on in-memory values; persistence lives elsewhere.
package finance

import (
	"fmt"
	"math"
	"time"
)

// Expense is one entry in a household ledger.
type Expense struct {
	ID           string    `json:"id"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	PaidBy       string    `json:"paid_by"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
	IsSettlement bool      `json:"is_settlement"`
}

// ValidationError reports a malformed expense.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid expense: %s %s", e.Field, e.Reason)
}

// Validate checks the shape invariants: positive finite amount, a payer and
// at least one participant. Duplicate participants are allowed.
func (e Expense) Validate() error {
	if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
		return &ValidationError{Field: "amount", Reason: "must be a finite number"}
	}
	if e.Amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if e.PaidBy == "" {
		return &ValidationError{Field: "paid_by", Reason: "is required"}
	}
	if len(e.Participants) == 0 {
		return &ValidationError{Field: "participants", Reason: "must not be empty"}
	}
	for i, p := range e.Participants {
		if p == "" {
			return &ValidationError{Field: fmt.Sprintf("participants[%d]", i), Reason: "is empty"}
		}
	}
	return nil
}

// Share is the amount each participant slot owes for this expense.
func (e Expense) Share() float64 {
	return e.Amount / float64(len(e.Participants))
}
