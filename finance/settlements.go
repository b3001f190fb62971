package finance

import (
	"fmt"
	"time"
)

// SettledThreshold is the dust limit: balances and remainders within this
// distance of zero are considered settled.
const SettledThreshold = 0.01

// Settlement is an unpaid transfer: From owes To this Amount.
type Settlement struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

type party struct {
	name   string
	amount float64
}

// CalculateSettlements plans payments that clear every balance.
//
// Members above +SettledThreshold are creditors, members below
// -SettledThreshold are debtors, both kept in balance map order. Each debtor
// walks the creditors in order and pays min(remaining debt, remaining
// credit) to every creditor that still has something outstanding. Remainders
// below the threshold are left as dust. The input is not modified.
func CalculateSettlements(balances *Balances) []Settlement {
	var creditors, debtors []party
	for _, e := range balances.Entries() {
		if e.Amount > SettledThreshold {
			creditors = append(creditors, party{e.Member, e.Amount})
		} else if e.Amount < -SettledThreshold {
			debtors = append(debtors, party{e.Member, -e.Amount})
		}
	}

	settlements := []Settlement{}
	for _, debtor := range debtors {
		remaining := debtor.amount
		for j := range creditors {
			creditor := &creditors[j]
			if remaining <= SettledThreshold {
				break
			}
			if creditor.amount <= SettledThreshold {
				continue
			}
			payment := min(remaining, creditor.amount)
			settlements = append(settlements, Settlement{
				From:   debtor.name,
				To:     creditor.name,
				Amount: payment,
			})
			remaining -= payment
			creditor.amount -= payment
		}
	}
	return settlements
}

// ApplySettlements returns a copy of balances with each settlement paid:
// the payer's balance rises by the amount and the receiver's falls by it.
func ApplySettlements(balances *Balances, settlements []Settlement) *Balances {
	out := balances.Clone()
	for _, s := range settlements {
		out.Add(s.From, s.Amount)
		out.Add(s.To, -s.Amount)
	}
	return out
}

// IsSettled reports whether every balance is within the dust threshold.
func IsSettled(balances *Balances) bool {
	for _, e := range balances.Entries() {
		if e.Amount > SettledThreshold || e.Amount < -SettledThreshold {
			return false
		}
	}
	return true
}

// SettlementDescription is the label of the ledger entry recording a payment.
func SettlementDescription(from, to string) string {
	return fmt.Sprintf("Settlement: %s → %s", from, to)
}

// SettlementExpense converts a confirmed settlement into the ledger entry that
// records it. The debtor is the payer and the creditor the sole participant,
// which moves s.Amount of balance from the creditor back to the debtor.
func SettlementExpense(s Settlement) Expense {
	return Expense{
		Description:  SettlementDescription(s.From, s.To),
		Amount:       s.Amount,
		PaidBy:       s.From,
		Participants: []string{s.To},
		IsSettlement: true,
	}
}

// SettlementEntry builds and validates the ledger entry for a confirmed
// settlement. Paying yourself is rejected.
func SettlementEntry(s Settlement, id string, at time.Time) (Expense, error) {
	if s.From == s.To {
		return Expense{}, &ValidationError{Field: "to", Reason: "must differ from from"}
	}
	exp := SettlementExpense(s)
	exp.ID = id
	exp.CreatedAt = at
	if err := exp.Validate(); err != nil {
		return Expense{}, err
	}
	return exp, nil
}
