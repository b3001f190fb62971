package finance

import "time"

// Ledger is an append-only list of expenses, oldest first. It is owned by
// the caller and is not safe for concurrent writes; serialize Append and
// RecordSettlement the same way the backing store serializes inserts.
type Ledger struct {
	expenses []Expense
}

// NewLedger wraps an already persisted snapshot. Entries are not validated;
// CalculateBalances skips the ones it cannot split.
func NewLedger(expenses ...Expense) *Ledger {
	l := &Ledger{expenses: make([]Expense, 0, len(expenses))}
	for _, e := range expenses {
		l.expenses = append(l.expenses, cloneExpense(e))
	}
	return l
}

// Append validates and adds an expense.
func (l *Ledger) Append(e Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	l.expenses = append(l.expenses, cloneExpense(e))
	return nil
}

// RecordSettlement appends the ledger entry for a confirmed settlement and
// returns it.
func (l *Ledger) RecordSettlement(s Settlement, id string, at time.Time) (Expense, error) {
	exp, err := SettlementEntry(s, id, at)
	if err != nil {
		return Expense{}, err
	}
	l.expenses = append(l.expenses, cloneExpense(exp))
	return exp, nil
}

// Remove returns a new ledger without the expense with the given id. Nothing
// is retracted incrementally; balances are recomputed from what remains.
func (l *Ledger) Remove(id string) (*Ledger, bool) {
	out := &Ledger{expenses: make([]Expense, 0, len(l.expenses))}
	found := false
	for _, e := range l.expenses {
		if e.ID == id {
			found = true
			continue
		}
		out.expenses = append(out.expenses, e)
	}
	return out, found
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.expenses)
}

// Expenses returns a copy of the entries, oldest first.
func (l *Ledger) Expenses() []Expense {
	out := make([]Expense, len(l.expenses))
	for i, e := range l.expenses {
		out[i] = cloneExpense(e)
	}
	return out
}

func (l *Ledger) Balances() *Balances {
	return CalculateBalances(l.expenses)
}

func (l *Ledger) Settlements() []Settlement {
	return CalculateSettlements(l.Balances())
}

func (l *Ledger) Stats() Stats {
	return CalculateStats(l.expenses)
}

// Summary computes balances, settlements and stats from the same snapshot.
func (l *Ledger) Summary() Summary {
	balances := l.Balances()
	settlements := CalculateSettlements(balances)
	return Summary{
		Balances:    balances,
		Settlements: settlements,
		Stats:       l.Stats(),
		AllSettled:  len(settlements) == 0,
	}
}

// Summary is everything a balance screen needs, derived from one snapshot.
type Summary struct {
	Balances    *Balances    `json:"balances"`
	Settlements []Settlement `json:"settlements"`
	Stats       Stats        `json:"stats"`
	AllSettled  bool         `json:"all_settled"`
}

func cloneExpense(e Expense) Expense {
	e.Participants = append([]string(nil), e.Participants...)
	return e
}
