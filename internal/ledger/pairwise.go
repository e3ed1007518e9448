package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// PairwiseBalances is the subject's 1-to-1 position across all counterparties.
type PairwiseBalances struct {
	// YouOwe is the total the subject still owes others.
	YouOwe decimal.Decimal
	// YouAreOwed is the total others still owe the subject.
	YouAreOwed decimal.Decimal
	// TotalBalance is YouAreOwed - YouOwe.
	TotalBalance decimal.Decimal
	OweDetails   OweDetails
}

// OweDetails breaks the totals down per counterparty.
// Both lists are sorted by amount, largest first.
type OweDetails struct {
	YouOwe       []Debt
	YouAreOwedBy []Debt
}

// tally accumulates what one counterparty owes the subject and what the subject owes them.
type tally struct {
	owed  decimal.Decimal
	owing decimal.Decimal
}

type tallies map[string]*tally

func (t tallies) get(userID string) *tally {
	c, ok := t[userID]
	if !ok {
		c = &tally{}
		t[userID] = c
	}
	return c
}

// Pairwise computes the subject's net 1-to-1 balances from personal (non-group) expenses
// and settlements. Group records in the input are ignored.
//
// Algorithm:
//   - subject paid: every other unpaid split is owed to the subject by that split's user
//   - subject did not pay: the subject's own unpaid split is owed to the payer
//   - settlements reduce the matching side, per counterparty and in the totals
//   - net = owed - owing per counterparty; zero nets are dropped
func Pairwise(subjectID string, expenses []models.Expense, settlements []models.Settlement) PairwiseBalances {
	youOwe := decimal.Zero
	youAreOwed := decimal.Zero
	counterparts := make(tallies)

	for i := range expenses {
		e := &expenses[i]
		if !e.IsPersonal() || !e.Involves(subjectID) {
			continue
		}

		if e.PaidByUserID == subjectID {
			for _, split := range e.Splits {
				if split.UserID == subjectID || split.Paid {
					continue
				}
				youAreOwed = youAreOwed.Add(split.Amount)
				c := counterparts.get(split.UserID)
				c.owed = c.owed.Add(split.Amount)
			}
			continue
		}

		split, ok := e.SplitFor(subjectID)
		if !ok || !isOutstanding(subjectID, split) {
			continue
		}
		youOwe = youOwe.Add(split.Amount)
		c := counterparts.get(e.PaidByUserID)
		c.owing = c.owing.Add(split.Amount)
	}

	for i := range settlements {
		s := &settlements[i]
		if s.GroupID != "" || !s.Involves(subjectID) {
			continue
		}

		if s.PaidByUserID == subjectID {
			youOwe = youOwe.Sub(s.Amount)
			c := counterparts.get(s.ReceivedByUserID)
			c.owing = c.owing.Sub(s.Amount)
		} else {
			youAreOwed = youAreOwed.Sub(s.Amount)
			c := counterparts.get(s.PaidByUserID)
			c.owed = c.owed.Sub(s.Amount)
		}
	}

	details := OweDetails{
		YouOwe:       []Debt{},
		YouAreOwedBy: []Debt{},
	}
	for userID, c := range counterparts {
		net := c.owed.Sub(c.owing)
		switch net.Sign() {
		case 1:
			details.YouAreOwedBy = append(details.YouAreOwedBy, Debt{UserID: userID, Amount: net})
		case -1:
			details.YouOwe = append(details.YouOwe, Debt{UserID: userID, Amount: net.Neg()})
		}
	}
	sortDebts(details.YouOwe)
	sortDebts(details.YouAreOwedBy)

	return PairwiseBalances{
		YouOwe:       youOwe,
		YouAreOwed:   youAreOwed,
		TotalBalance: youAreOwed.Sub(youOwe),
		OweDetails:   details,
	}
}

// Counterparties returns the user IDs appearing in either owe list.
func (b PairwiseBalances) Counterparties() []string {
	ids := make([]string, 0, len(b.OweDetails.YouOwe)+len(b.OweDetails.YouAreOwedBy))
	for _, d := range b.OweDetails.YouOwe {
		ids = append(ids, d.UserID)
	}
	for _, d := range b.OweDetails.YouAreOwedBy {
		ids = append(ids, d.UserID)
	}
	return ids
}

// ResolveNames fills the Name of every debt from users.
// IDs missing from users are labelled UnknownUserName.
func (b *PairwiseBalances) ResolveNames(users map[string]*models.User) {
	resolveDebtNames(b.OweDetails.YouOwe, users)
	resolveDebtNames(b.OweDetails.YouAreOwedBy, users)
}

func resolveDebtNames(debts []Debt, users map[string]*models.User) {
	for i := range debts {
		debts[i].Name = DisplayName(users, debts[i].UserID)
	}
}

// DisplayName returns the user's name, or UnknownUserName when the record is gone.
func DisplayName(users map[string]*models.User, userID string) string {
	if u, ok := users[userID]; ok && u != nil {
		return u.Name
	}
	return UnknownUserName
}
