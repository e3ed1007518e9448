package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	UserID string
	Name   string

	// NetBalance is positive when the member is owed money, negative when they owe.
	NetBalance decimal.Decimal
	// TotalPaid is what the member fronted for others plus settlements they paid.
	TotalPaid decimal.Decimal
	// TotalOwed is the member's unpaid shares plus settlements they received.
	TotalOwed decimal.Decimal
}

// DebtEdge represents a suggested transfer from one member to another.
type DebtEdge struct {
	From   string // Member who owes
	To     string // Member who is owed
	Amount decimal.Decimal
}

// GroupLedgerResult is the whole-group view: every member's net position and the
// transfers that would settle the group.
type GroupLedgerResult struct {
	Members   []MemberBalance
	Transfers []DebtEdge
}

// GroupLedger computes balances for every member of group across its expenses and
// settlements. Member nets always sum to zero.
//
// Algorithm:
//   - For each expense: every unpaid split of someone other than the payer moves that
//     amount from the split user's balance to the payer's
//   - For each settlement: payer's balance improves, receiver's balance decreases
//   - Aggregate: net_balance = total_paid - total_owed
//   - Transfers: simplified using greedy matching of largest debtor to largest creditor
func GroupLedger(group *models.Group, expenses []models.Expense, settlements []models.Settlement) GroupLedgerResult {
	balances := make(map[string]*MemberBalance)
	member := func(userID string) *MemberBalance {
		b, ok := balances[userID]
		if !ok {
			b = &MemberBalance{UserID: userID}
			balances[userID] = b
		}
		return b
	}

	// Members with no activity still show up at zero.
	for _, m := range group.Members {
		member(m.UserID)
	}

	for i := range expenses {
		e := &expenses[i]
		if e.GroupID != group.ID {
			continue
		}
		for _, split := range e.Splits {
			if split.Paid || split.UserID == e.PaidByUserID {
				continue
			}
			payer := member(e.PaidByUserID)
			payer.TotalPaid = payer.TotalPaid.Add(split.Amount)
			debtor := member(split.UserID)
			debtor.TotalOwed = debtor.TotalOwed.Add(split.Amount)
		}
	}

	for i := range settlements {
		s := &settlements[i]
		if s.GroupID != group.ID {
			continue
		}
		from := member(s.PaidByUserID)
		from.TotalPaid = from.TotalPaid.Add(s.Amount)
		to := member(s.ReceivedByUserID)
		to.TotalOwed = to.TotalOwed.Add(s.Amount)
	}

	members := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		b.NetBalance = b.TotalPaid.Sub(b.TotalOwed)
		members = append(members, *b)
	}
	sort.SliceStable(members, func(i, j int) bool {
		if c := members[i].NetBalance.Cmp(members[j].NetBalance); c != 0 {
			return c > 0
		}
		return members[i].UserID < members[j].UserID
	})

	return GroupLedgerResult{
		Members:   members,
		Transfers: simplifyDebts(members),
	}
}

// simplifyDebts matches debtors with creditors to minimize the number of transfers.
// members must be sorted by net balance, largest first.
func simplifyDebts(members []MemberBalance) []DebtEdge {
	var creditors, debtors []MemberBalance
	for _, m := range members {
		switch m.NetBalance.Sign() {
		case 1:
			creditors = append(creditors, m)
		case -1:
			debtors = append(debtors, m)
		}
	}
	// Largest debt first.
	sort.SliceStable(debtors, func(i, j int) bool {
		if c := debtors[i].NetBalance.Cmp(debtors[j].NetBalance); c != 0 {
			return c < 0
		}
		return debtors[i].UserID < debtors[j].UserID
	})

	debtorBalance := make([]decimal.Decimal, len(debtors))
	for i, d := range debtors {
		debtorBalance[i] = d.NetBalance.Neg()
	}
	creditorBalance := make([]decimal.Decimal, len(creditors))
	for j, c := range creditors {
		creditorBalance[j] = c.NetBalance
	}

	transfers := []DebtEdge{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtorBalance[i], creditorBalance[j])
		if amount.IsPositive() {
			transfers = append(transfers, DebtEdge{
				From:   debtors[i].UserID,
				To:     creditors[j].UserID,
				Amount: amount,
			})
		}

		debtorBalance[i] = debtorBalance[i].Sub(amount)
		creditorBalance[j] = creditorBalance[j].Sub(amount)

		// Move to next debtor/creditor if fully settled
		if !debtorBalance[i].IsPositive() {
			i++
		}
		if !creditorBalance[j].IsPositive() {
			j++
		}
	}
	return transfers
}

// ResolveNames fills member names from users, labelling missing users UnknownUserName.
func (r *GroupLedgerResult) ResolveNames(users map[string]*models.User) {
	for i := range r.Members {
		r.Members[i].Name = DisplayName(users, r.Members[i].UserID)
	}
}

// UserIDs returns every member ID appearing in the result.
func (r *GroupLedgerResult) UserIDs() []string {
	ids := make([]string, len(r.Members))
	for i, m := range r.Members {
		ids[i] = m.UserID
	}
	return ids
}
