package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertSettlements(t *testing.T, want, got []Settlement) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].From, got[i].From, "settlement %d from", i)
		assert.Equal(t, want[i].To, got[i].To, "settlement %d to", i)
		assert.InDelta(t, want[i].Amount, got[i].Amount, 1e-9, "settlement %d amount", i)
	}
}

func assertAllSettled(t *testing.T, b *Balances) {
	t.Helper()
	for _, e := range b.Entries() {
		assert.InDelta(t, 0, e.Amount, SettledThreshold, "member %s", e.Member)
	}
}

func TestCalculateSettlements(t *testing.T) {
	tests := []struct {
		name     string
		balances *Balances
		want     []Settlement
	}{
		{
			name:     "empty map",
			balances: NewBalances(),
			want:     []Settlement{},
		},
		{
			name:     "nil map",
			balances: nil,
			want:     []Settlement{},
		},
		{
			name:     "everything within dust",
			balances: NewBalances(MemberBalance{"A", 0.01}, MemberBalance{"B", -0.004}, MemberBalance{"C", -0.006}),
			want:     []Settlement{},
		},
		{
			name:     "single pair",
			balances: NewBalances(MemberBalance{"Alice", 50}, MemberBalance{"Bob", -50}),
			want:     []Settlement{{"Bob", "Alice", 50}},
		},
		{
			name:     "many debtors one creditor",
			balances: NewBalances(MemberBalance{"A", 20}, MemberBalance{"B", -10}, MemberBalance{"C", -10}),
			want:     []Settlement{{"B", "A", 10}, {"C", "A", 10}},
		},
		{
			name: "debtor spans creditors in map order",
			balances: NewBalances(
				MemberBalance{"D1", -30},
				MemberBalance{"C1", 20},
				MemberBalance{"D2", -10},
				MemberBalance{"C2", 20},
			),
			want: []Settlement{{"D1", "C1", 20}, {"D1", "C2", 10}, {"D2", "C2", 10}},
		},
		{
			name:     "no debtors",
			balances: NewBalances(MemberBalance{"A", 5}),
			want:     []Settlement{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateSettlements(tt.balances)
			assertSettlements(t, tt.want, got)
		})
	}
}

func TestCalculateSettlementsDoesNotMutateInput(t *testing.T) {
	b := NewBalances(MemberBalance{"A", 20}, MemberBalance{"B", -20})
	CalculateSettlements(b)
	assert.Equal(t, 20.0, b.Get("A"))
	assert.Equal(t, -20.0, b.Get("B"))
}

func TestSettlementsClearBalances(t *testing.T) {
	scenarios := map[string][]Expense{
		"rent and groceries": {
			exp("ana", 1200, "ana", "ben", "cleo"),
			exp("ben", 87.45, "ana", "ben", "cleo"),
			exp("cleo", 23.10, "ben", "cleo"),
		},
		"uneven thirds": {
			exp("A", 10, "A", "B", "C"),
			exp("B", 47.5, "A", "C"),
			exp("C", 12.99, "A", "B", "C", "D"),
		},
		"payer outside split": {
			exp("host", 300, "g1", "g2", "g3", "g4"),
			exp("g2", 33.33, "host", "g1"),
		},
	}

	for name, expenses := range scenarios {
		t.Run(name, func(t *testing.T) {
			balances := CalculateBalances(expenses)
			settlements := CalculateSettlements(balances)

			debtors, creditors := 0, 0
			for _, e := range balances.Entries() {
				if e.Amount > SettledThreshold {
					creditors++
				} else if e.Amount < -SettledThreshold {
					debtors++
				}
			}
			assert.LessOrEqual(t, len(settlements), debtors+creditors-1)
			for _, s := range settlements {
				assert.Greater(t, s.Amount, 0.0)
			}

			assertAllSettled(t, ApplySettlements(balances, settlements))
		})
	}
}

func TestShareRoundingLeavesOnlyDust(t *testing.T) {
	balances := CalculateBalances([]Expense{exp("A", 10, "A", "B", "C")})
	settlements := CalculateSettlements(balances)

	require.Len(t, settlements, 2)
	assert.Equal(t, "B", settlements[0].From)
	assert.Equal(t, "C", settlements[1].From)
	assertAllSettled(t, ApplySettlements(balances, settlements))
	assert.True(t, IsSettled(ApplySettlements(balances, settlements)))
}

func TestSettlementExpense(t *testing.T) {
	e := SettlementExpense(Settlement{From: "Bob", To: "Alice", Amount: 12.5})

	assert.Equal(t, "Settlement: Bob → Alice", e.Description)
	assert.Equal(t, "Bob", e.PaidBy)
	assert.Equal(t, []string{"Alice"}, e.Participants)
	assert.Equal(t, 12.5, e.Amount)
	assert.True(t, e.IsSettlement)
	assert.NoError(t, e.Validate())
}

func TestIsSettled(t *testing.T) {
	assert.True(t, IsSettled(NewBalances()))
	assert.True(t, IsSettled(NewBalances(MemberBalance{"A", 0.009}, MemberBalance{"B", -0.009})))
	assert.False(t, IsSettled(NewBalances(MemberBalance{"A", 0.02}, MemberBalance{"B", -0.02})))
}

func TestSettlementEntry(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exp, err := SettlementEntry(Settlement{From: "B", To: "A", Amount: 100.0 / 7}, "s1", at)
	require.NoError(t, err)
	assert.Equal(t, "s1", exp.ID)
	assert.Equal(t, at, exp.CreatedAt)
	assert.Equal(t, 100.0/7, exp.Amount)
	assert.True(t, exp.IsSettlement)

	_, err = SettlementEntry(Settlement{From: "A", To: "A", Amount: 5}, "s2", at)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "to", verr.Field)

	_, err = SettlementEntry(Settlement{From: "B", To: "A", Amount: 0}, "s3", at)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)
}
