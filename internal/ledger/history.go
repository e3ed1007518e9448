package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// CounterpartHistory is the 1-to-1 activity between the subject and one other user.
type CounterpartHistory struct {
	Expenses    []models.Expense
	Settlements []models.Settlement

	// Balance is positive when the other user owes the subject.
	// It equals that user's net in Pairwise.
	Balance decimal.Decimal
}

// sharedExpense reports whether e is a personal expense between exactly these two users:
// one paid it and the other has a split in it.
func sharedExpense(e *models.Expense, a, b string) bool {
	if !e.IsPersonal() {
		return false
	}
	switch e.PaidByUserID {
	case a:
		_, ok := e.SplitFor(b)
		return ok
	case b:
		_, ok := e.SplitFor(a)
		return ok
	}
	return false
}

// History collects the personal expenses and settlements between subjectID and otherID,
// newest first, together with the net balance between them.
func History(subjectID, otherID string, expenses []models.Expense, settlements []models.Settlement) CounterpartHistory {
	h := CounterpartHistory{
		Expenses:    []models.Expense{},
		Settlements: []models.Settlement{},
		Balance:     decimal.Zero,
	}

	for i := range expenses {
		e := &expenses[i]
		if !sharedExpense(e, subjectID, otherID) {
			continue
		}
		h.Expenses = append(h.Expenses, *e)

		if e.PaidByUserID == subjectID {
			for _, split := range e.Splits {
				if isOutstanding(otherID, split) {
					h.Balance = h.Balance.Add(split.Amount)
				}
			}
		} else if split, ok := e.SplitFor(subjectID); ok && !split.Paid {
			h.Balance = h.Balance.Sub(split.Amount)
		}
	}

	for i := range settlements {
		s := &settlements[i]
		if s.GroupID != "" {
			continue
		}
		switch {
		case s.PaidByUserID == subjectID && s.ReceivedByUserID == otherID:
			h.Balance = h.Balance.Add(s.Amount)
		case s.PaidByUserID == otherID && s.ReceivedByUserID == subjectID:
			h.Balance = h.Balance.Sub(s.Amount)
		default:
			continue
		}
		h.Settlements = append(h.Settlements, *s)
	}

	sort.SliceStable(h.Expenses, func(i, j int) bool {
		return h.Expenses[i].Date.After(h.Expenses[j].Date)
	})
	sort.SliceStable(h.Settlements, func(i, j int) bool {
		return h.Settlements[i].Date.After(h.Settlements[j].Date)
	})

	return h
}
