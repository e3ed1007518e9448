package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// GroupBalance is a group annotated with the subject's net position in it.
type GroupBalance struct {
	Group   *models.Group
	Balance decimal.Decimal
}

// GroupNet computes the subject's net position within one group.
// Records belonging to other groups, or to no group, are ignored.
func GroupNet(subjectID, groupID string, expenses []models.Expense, settlements []models.Settlement) decimal.Decimal {
	balance := decimal.Zero

	for i := range expenses {
		e := &expenses[i]
		if e.GroupID != groupID {
			continue
		}

		if e.PaidByUserID == subjectID {
			for _, split := range e.Splits {
				if split.UserID != subjectID && !split.Paid {
					balance = balance.Add(split.Amount)
				}
			}
			continue
		}

		if split, ok := e.SplitFor(subjectID); ok && isOutstanding(subjectID, split) {
			balance = balance.Sub(split.Amount)
		}
	}

	for i := range settlements {
		s := &settlements[i]
		if s.GroupID != groupID {
			continue
		}
		switch subjectID {
		case s.PaidByUserID:
			balance = balance.Add(s.Amount)
		case s.ReceivedByUserID:
			balance = balance.Sub(s.Amount)
		}
	}

	return balance
}

// GroupRecords holds one group's expenses and settlements.
type GroupRecords struct {
	Group       *models.Group
	Expenses    []models.Expense
	Settlements []models.Settlement
}

// GroupBalances computes GroupNet for every group the subject belongs to.
// Groups are independent of each other; the result is sorted by group name, then ID.
func GroupBalances(subjectID string, groups []GroupRecords) []GroupBalance {
	out := make([]GroupBalance, 0, len(groups))
	for _, g := range groups {
		if g.Group == nil || !g.Group.HasMember(subjectID) {
			continue
		}
		out = append(out, GroupBalance{
			Group:   g.Group,
			Balance: GroupNet(subjectID, g.Group.ID, g.Expenses, g.Settlements),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Group.Name != out[j].Group.Name {
			return out[i].Group.Name < out[j].Group.Name
		}
		return out[i].Group.ID < out[j].Group.ID
	})
	return out
}
