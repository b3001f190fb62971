package models

import (
	"time"

	"cohabit-backend/finance"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Expense struct {
	ID           uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	HouseholdID  uuid.UUID            `gorm:"type:uuid;index" json:"household_id"`
	Description  string               `gorm:"not null;size:255" json:"description"`
	Amount       float64              `gorm:"type:double precision;not null" json:"amount"` // full precision, settlements must net out exactly
	PaidBy       string               `gorm:"not null;size:255" json:"paid_by"`
	Participants []ExpenseParticipant `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE" json:"-"`
	IsSettlement bool                 `gorm:"default:false" json:"is_settlement"`
	CreatedBy    uuid.UUID            `gorm:"type:uuid" json:"created_by"`
	CreatedAt    time.Time            `gorm:"index" json:"created_at"`
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// ExpenseParticipant is one slot in an expense's participant list. Position
// keeps the submitted order; the same member may hold several slots.
type ExpenseParticipant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	ExpenseID uuid.UUID `gorm:"type:uuid;index" json:"-"`
	MemberID  string    `gorm:"not null;size:255" json:"member_id"`
	Position  int       `gorm:"not null" json:"-"`
}

func (p *ExpenseParticipant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ParticipantIDs returns the participant slots in submitted order.
// Participants must be loaded ordered by position.
func (e *Expense) ParticipantIDs() []string {
	ids := make([]string, len(e.Participants))
	for i, p := range e.Participants {
		ids[i] = p.MemberID
	}
	return ids
}

// ToLedgerEntry normalizes a stored row into the ledger's record type.
func (e *Expense) ToLedgerEntry() finance.Expense {
	return finance.Expense{
		ID:           e.ID.String(),
		Description:  e.Description,
		Amount:       e.Amount,
		PaidBy:       e.PaidBy,
		Participants: e.ParticipantIDs(),
		CreatedAt:    e.CreatedAt,
		IsSettlement: e.IsSettlement,
	}
}

// NewExpense builds a row for householdID from a ledger entry.
func NewExpense(householdID, createdBy uuid.UUID, entry finance.Expense) Expense {
	exp := Expense{
		HouseholdID:  householdID,
		Description:  entry.Description,
		Amount:       entry.Amount,
		PaidBy:       entry.PaidBy,
		IsSettlement: entry.IsSettlement,
		CreatedBy:    createdBy,
		CreatedAt:    entry.CreatedAt,
	}
	if entry.ID != "" {
		if id, err := uuid.Parse(entry.ID); err == nil {
			exp.ID = id
		}
	}
	for i, m := range entry.Participants {
		exp.Participants = append(exp.Participants, ExpenseParticipant{MemberID: m, Position: i})
	}
	return exp
}

// Request structs
type CreateExpenseRequest struct {
	Description  string   `json:"description" binding:"required,max=255"`
	Amount       float64  `json:"amount" binding:"required"`
	PaidBy       string   `json:"paid_by" binding:"required"`
	Participants []string `json:"participants" binding:"required"`
}

// Response
type ExpenseResponse struct {
	ID           uuid.UUID `json:"id"`
	HouseholdID  uuid.UUID `json:"household_id"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	PaidBy       string    `json:"paid_by"`
	Participants []string  `json:"participants"`
	IsSettlement bool      `json:"is_settlement"`
	CreatedBy    uuid.UUID `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	TimeAgo      string    `json:"time_ago"`
}

func (e *Expense) ToResponse(timeAgo string) ExpenseResponse {
	return ExpenseResponse{
		ID:           e.ID,
		HouseholdID:  e.HouseholdID,
		Description:  e.Description,
		Amount:       e.Amount,
		PaidBy:       e.PaidBy,
		Participants: e.ParticipantIDs(),
		IsSettlement: e.IsSettlement,
		CreatedBy:    e.CreatedBy,
		CreatedAt:    e.CreatedAt,
		TimeAgo:      timeAgo,
	}
}
