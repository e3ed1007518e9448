// Package ledger derives balances and totals from stored expense and settlement records.
//
// Every function in this package is a pure reduction over the records it is given: no
// storage access, no clock reads beyond explicit parameters, no shared state. The caller
// resolves the subject and fetches a snapshot of records; the same snapshot always yields
// the same result.
//
// Sign convention: a positive balance means the subject is owed money, a negative balance
// means the subject owes money.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// UnknownUserName labels a counterparty whose user record no longer exists.
const UnknownUserName = "Unknown"

// Debt is an outstanding amount between the subject and one counterparty.
type Debt struct {
	UserID string
	// Name is filled in by ResolveNames.
	Name   string
	Amount decimal.Decimal
}

// sortDebts orders debts by amount, largest first. Ties fall back to user ID so the
// output does not depend on map iteration order.
func sortDebts(debts []Debt) {
	sort.SliceStable(debts, func(i, j int) bool {
		if c := debts[i].Amount.Cmp(debts[j].Amount); c != 0 {
			return c > 0
		}
		return debts[i].UserID < debts[j].UserID
	})
}

// isOutstanding reports whether split is an unpaid share owed by userID.
func isOutstanding(userID string, split models.Split) bool {
	return split.UserID == userID && !split.Paid
}
