package finance

import "encoding/json"

// MemberBalance is one row of a balance map.
// Positive = owed money, negative = owes money.
type MemberBalance struct {
	Member string  `json:"member"`
	Amount float64 `json:"amount"`
}

// Balances maps member identifiers to signed amounts and remembers the order
// in which members were first seen. The settlement planner walks members in
// that order, so it decides which debtor pays which creditor first.
// The zero value is an empty map ready to use.
type Balances struct {
	order   []string
	amounts map[string]float64
}

// NewBalances builds a balance map from rows, keeping their order.
// Repeated members are summed into their first position.
func NewBalances(rows ...MemberBalance) *Balances {
	b := &Balances{}
	for _, r := range rows {
		b.Add(r.Member, r.Amount)
	}
	return b
}

// Add adjusts a member's balance by delta, creating a zero entry if new.
func (b *Balances) Add(member string, delta float64) {
	if b.amounts == nil {
		b.amounts = make(map[string]float64)
	}
	if _, ok := b.amounts[member]; !ok {
		b.order = append(b.order, member)
	}
	b.amounts[member] += delta
}

// Get returns the member's balance; absent members are zero.
func (b *Balances) Get(member string) float64 {
	if b == nil {
		return 0
	}
	return b.amounts[member]
}

// Has reports whether the member has an entry.
func (b *Balances) Has(member string) bool {
	if b == nil {
		return false
	}
	_, ok := b.amounts[member]
	return ok
}

// Len returns the number of members with an entry.
func (b *Balances) Len() int {
	if b == nil {
		return 0
	}
	return len(b.order)
}

// Members returns member identifiers in first-seen order.
func (b *Balances) Members() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Entries returns every row in first-seen order.
func (b *Balances) Entries() []MemberBalance {
	if b == nil {
		return nil
	}
	out := make([]MemberBalance, 0, len(b.order))
	for _, m := range b.order {
		out = append(out, MemberBalance{Member: m, Amount: b.amounts[m]})
	}
	return out
}

// Sum adds up every balance. For a map derived from expenses it is zero up
// to floating point noise.
func (b *Balances) Sum() float64 {
	var total float64
	for _, e := range b.Entries() {
		total += e.Amount
	}
	return total
}

// Clone returns an independent copy.
func (b *Balances) Clone() *Balances {
	return NewBalances(b.Entries()...)
}

func (b *Balances) MarshalJSON() ([]byte, error) {
	entries := b.Entries()
	if entries == nil {
		entries = []MemberBalance{}
	}
	return json.Marshal(entries)
}

func (b *Balances) UnmarshalJSON(data []byte) error {
	var rows []MemberBalance
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	*b = *NewBalances(rows...)
	return nil
}

// CalculateBalances folds expenses into net balances. The payer is credited
// the full amount and every participant slot is debited one share, the payer
// included when they also participate. Settlement records are treated like
// any other expense. Expenses without participants are skipped.
func CalculateBalances(expenses []Expense) *Balances {
	balances := &Balances{}
	for _, exp := range expenses {
		if len(exp.Participants) == 0 {
			continue
		}
		share := exp.Share()
		balances.Add(exp.PaidBy, exp.Amount)
		for _, p := range exp.Participants {
			balances.Add(p, -share)
		}
	}
	return balances
}
