package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

func TestGroupLedger(t *testing.T) {
	g := group("g1", "Trip", "Alice", "Bob", "Charlie", "Diana")

	tests := []struct {
		name          string
		expenses      []models.Expense
		settlements   []models.Settlement
		wantNet       map[string]string
		wantTransfers []DebtEdge
	}{
		{
			name: "one payer, equal split",
			expenses: []models.Expense{
				inGroup(expense("e1", "Alice", "90",
					split("Alice", "30", true), split("Bob", "30", false), split("Charlie", "30", false)), "g1"),
			},
			wantNet: map[string]string{"Alice": "60", "Bob": "-30", "Charlie": "-30", "Diana": "0"},
			wantTransfers: []DebtEdge{
				{From: "Bob", To: "Alice", Amount: d("30")},
				{From: "Charlie", To: "Alice", Amount: d("30")},
			},
		},
		{
			name: "chain of debts is simplified",
			expenses: []models.Expense{
				inGroup(expense("e1", "Alice", "40", split("Bob", "40", false)), "g1"),
				inGroup(expense("e2", "Bob", "40", split("Charlie", "40", false)), "g1"),
			},
			wantNet: map[string]string{"Alice": "40", "Bob": "0", "Charlie": "-40", "Diana": "0"},
			wantTransfers: []DebtEdge{
				{From: "Charlie", To: "Alice", Amount: d("40")},
			},
		},
		{
			name: "settlement clears a debt",
			expenses: []models.Expense{
				inGroup(expense("e1", "Alice", "50", split("Alice", "25", true), split("Bob", "25", false)), "g1"),
			},
			settlements: []models.Settlement{
				settlementInGroup(settlement("s1", "Bob", "Alice", "25"), "g1"),
			},
			wantNet:       map[string]string{"Alice": "0", "Bob": "0", "Charlie": "0", "Diana": "0"},
			wantTransfers: []DebtEdge{},
		},
		{
			name: "one debtor split across two creditors",
			expenses: []models.Expense{
				inGroup(expense("e1", "Alice", "30", split("Diana", "30", false)), "g1"),
				inGroup(expense("e2", "Bob", "20", split("Diana", "20", false)), "g1"),
			},
			wantNet: map[string]string{"Alice": "30", "Bob": "20", "Charlie": "0", "Diana": "-50"},
			wantTransfers: []DebtEdge{
				{From: "Diana", To: "Alice", Amount: d("30")},
				{From: "Diana", To: "Bob", Amount: d("20")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GroupLedger(g, tt.expenses, tt.settlements)

			sum := decimal.Zero
			for _, m := range got.Members {
				sum = sum.Add(m.NetBalance)
				want, ok := tt.wantNet[m.UserID]
				if !ok {
					t.Errorf("unexpected member %s", m.UserID)
					continue
				}
				assertDecimal(t, m.UserID+" net", m.NetBalance, want)
			}
			if len(got.Members) != len(tt.wantNet) {
				t.Errorf("got %d members, want %d", len(got.Members), len(tt.wantNet))
			}
			if !sum.IsZero() {
				t.Errorf("member nets sum to %s, want 0", sum)
			}

			if len(got.Transfers) != len(tt.wantTransfers) {
				t.Fatalf("transfers = %+v, want %+v", got.Transfers, tt.wantTransfers)
			}
			for i, want := range tt.wantTransfers {
				tr := got.Transfers[i]
				if tr.From != want.From || tr.To != want.To || !tr.Amount.Equal(want.Amount) {
					t.Errorf("transfer[%d] = %s->%s %s, want %s->%s %s", i,
						tr.From, tr.To, tr.Amount, want.From, want.To, want.Amount)
				}
			}
		})
	}
}

func TestGroupLedger_MatchesGroupNet(t *testing.T) {
	g := group("g1", "Flat", "A", "B", "C")
	expenses := []models.Expense{
		inGroup(expense("e1", "A", "90", split("A", "30", true), split("B", "30", false), split("C", "30", false)), "g1"),
		inGroup(expense("e2", "B", "45", split("A", "15", false), split("B", "15", true), split("C", "15", false)), "g1"),
	}
	settlements := []models.Settlement{
		settlementInGroup(settlement("s1", "C", "A", "12.50"), "g1"),
	}

	got := GroupLedger(g, expenses, settlements)
	for _, m := range got.Members {
		want := GroupNet(m.UserID, "g1", expenses, settlements)
		if !m.NetBalance.Equal(want) {
			t.Errorf("%s: ledger net %s, GroupNet %s", m.UserID, m.NetBalance, want)
		}
	}
}
