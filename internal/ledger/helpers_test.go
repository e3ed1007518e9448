package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 12, 0, 0, 0, time.UTC)
}

// expense builds a personal expense paid by payer. Splits are given as
// userID, amount, paid triples via split().
func expense(id, payer string, amount string, splits ...models.Split) models.Expense {
	return models.Expense{
		ID:           id,
		Description:  id,
		Amount:       d(amount),
		Date:         day(2026, time.March, 1),
		PaidByUserID: payer,
		Splits:       splits,
	}
}

func split(userID, amount string, paid bool) models.Split {
	return models.Split{UserID: userID, Amount: d(amount), Paid: paid}
}

func settlement(id, from, to, amount string) models.Settlement {
	return models.Settlement{
		ID:               id,
		Amount:           d(amount),
		Date:             day(2026, time.March, 2),
		PaidByUserID:     from,
		ReceivedByUserID: to,
	}
}

func inGroup(e models.Expense, groupID string) models.Expense {
	e.GroupID = groupID
	return e
}

func settlementInGroup(s models.Settlement, groupID string) models.Settlement {
	s.GroupID = groupID
	return s
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func group(id, name string, members ...string) *models.Group {
	g := &models.Group{ID: id, Name: name}
	for i, m := range members {
		role := models.RoleMember
		if i == 0 {
			role = models.RoleAdmin
		}
		g.Members = append(g.Members, models.GroupMember{UserID: m, Role: role})
	}
	return g
}
