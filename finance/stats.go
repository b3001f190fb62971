package finance

import "github.com/shopspring/decimal"

// Stats are simple reductions over one ledger snapshot.
type Stats struct {
	Total            float64 `json:"total"`
	Count            int     `json:"count"`
	ParticipantCount int     `json:"participant_count"`
}

// CalculateStats sums amounts and counts distinct payers and participants.
func CalculateStats(expenses []Expense) Stats {
	total := decimal.Zero
	seen := make(map[string]struct{})
	for _, exp := range expenses {
		total = total.Add(decimal.NewFromFloat(exp.Amount))
		seen[exp.PaidBy] = struct{}{}
		for _, p := range exp.Participants {
			seen[p] = struct{}{}
		}
	}
	return Stats{
		Total:            total.InexactFloat64(),
		Count:            len(expenses),
		ParticipantCount: len(seen),
	}
}
