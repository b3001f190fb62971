package models

import "cohabit-backend/finance"

// ConfirmSettlementRequest records that a suggested payment was made.
type ConfirmSettlementRequest struct {
	From   string  `json:"from" binding:"required"`
	To     string  `json:"to" binding:"required"`
	Amount float64 `json:"amount" binding:"required"`
}

func (r ConfirmSettlementRequest) ToSettlement() finance.Settlement {
	return finance.Settlement{From: r.From, To: r.To, Amount: r.Amount}
}
