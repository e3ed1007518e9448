package ledger

import (
	"testing"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

func TestHistory(t *testing.T) {
	expenses := []models.Expense{
		dated(expense("old", "A", "40", split("A", "20", true), split("B", "20", false)), day(2026, time.January, 1)),
		dated(expense("new", "B", "10", split("A", "10", false)), day(2026, time.February, 1)),
		dated(expense("with-c", "A", "10", split("C", "10", false)), day(2026, time.February, 2)),
		dated(inGroup(expense("group", "A", "10", split("B", "10", false)), "g1"), day(2026, time.February, 3)),
	}
	settlements := []models.Settlement{
		settlement("s1", "B", "A", "5"),
		settlement("s2", "C", "A", "5"),
		settlementInGroup(settlement("s3", "B", "A", "5"), "g1"),
	}

	h := History("A", "B", expenses, settlements)

	if len(h.Expenses) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(h.Expenses))
	}
	if h.Expenses[0].ID != "new" || h.Expenses[1].ID != "old" {
		t.Errorf("expenses not newest first: %s, %s", h.Expenses[0].ID, h.Expenses[1].ID)
	}
	if len(h.Settlements) != 1 || h.Settlements[0].ID != "s1" {
		t.Errorf("unexpected settlements: %+v", h.Settlements)
	}
	// 20 owed by B, 10 owed to B, 5 repaid by B.
	assertDecimal(t, "Balance", h.Balance, "5")

	pairwise := Pairwise("A", expenses, settlements)
	for _, debt := range pairwise.OweDetails.YouAreOwedBy {
		if debt.UserID == "B" && !debt.Amount.Equal(h.Balance) {
			t.Errorf("history balance %s differs from pairwise %s", h.Balance, debt.Amount)
		}
	}
}
