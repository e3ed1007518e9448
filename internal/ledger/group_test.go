package ledger

import (
	"testing"

	"github.com/mmynk/splitledger/internal/models"
)

func TestGroupNet(t *testing.T) {
	tests := []struct {
		name        string
		subject     string
		expenses    []models.Expense
		settlements []models.Settlement
		want        string
	}{
		{
			name:    "payer is owed the other unpaid splits",
			subject: "A",
			expenses: []models.Expense{
				inGroup(expense("e1", "A", "60", split("A", "0", false), split("B", "60", false)), "g1"),
			},
			want: "60",
		},
		{
			name:    "non-payer owes own unpaid split",
			subject: "B",
			expenses: []models.Expense{
				inGroup(expense("e1", "A", "60", split("A", "30", true), split("B", "30", false)), "g1"),
			},
			want: "-30",
		},
		{
			name:    "settlement paid by subject reduces debt",
			subject: "B",
			expenses: []models.Expense{
				inGroup(expense("e1", "A", "60", split("A", "30", true), split("B", "30", false)), "g1"),
			},
			settlements: []models.Settlement{
				settlementInGroup(settlement("s1", "B", "A", "20"), "g1"),
			},
			want: "-10",
		},
		{
			name:    "settlement received by subject reduces credit",
			subject: "A",
			expenses: []models.Expense{
				inGroup(expense("e1", "A", "60", split("A", "30", true), split("B", "30", false)), "g1"),
			},
			settlements: []models.Settlement{
				settlementInGroup(settlement("s1", "B", "A", "30"), "g1"),
			},
			want: "0",
		},
		{
			name:    "other groups and personal records are ignored",
			subject: "A",
			expenses: []models.Expense{
				inGroup(expense("e1", "A", "60", split("B", "60", false)), "g2"),
				expense("e2", "A", "10", split("B", "10", false)),
			},
			settlements: []models.Settlement{
				settlement("s1", "B", "A", "10"),
				settlementInGroup(settlement("s2", "B", "A", "10"), "g2"),
			},
			want: "0",
		},
		{
			name:    "settlements between other members are ignored",
			subject: "A",
			settlements: []models.Settlement{
				settlementInGroup(settlement("s1", "B", "C", "10"), "g1"),
			},
			want: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GroupNet(tt.subject, "g1", tt.expenses, tt.settlements)
			assertDecimal(t, "GroupNet", got, tt.want)
		})
	}
}

func TestGroupBalances(t *testing.T) {
	trip := group("g1", "Trip", "A", "B")
	flat := group("g2", "Flat", "A", "C")
	other := group("g3", "Other", "B", "C")

	got := GroupBalances("A", []GroupRecords{
		{
			Group: trip,
			Expenses: []models.Expense{
				inGroup(expense("e1", "A", "60", split("A", "0", false), split("B", "60", false)), "g1"),
			},
		},
		{
			Group: flat,
			Expenses: []models.Expense{
				inGroup(expense("e2", "C", "40", split("C", "20", true), split("A", "20", false)), "g2"),
			},
		},
		{Group: other},
	})

	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}
	// Sorted by name: Flat, Trip.
	if got[0].Group.ID != "g2" || got[1].Group.ID != "g1" {
		t.Errorf("unexpected order: %s, %s", got[0].Group.Name, got[1].Group.Name)
	}
	assertDecimal(t, "Flat balance", got[0].Balance, "-20")
	assertDecimal(t, "Trip balance", got[1].Balance, "60")
}
