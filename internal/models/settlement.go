package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement represents a direct repayment between two users.
// Settlements only reduce an outstanding balance.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// Amount is the payment amount.
	Amount decimal.Decimal

	// Note is an optional description for the settlement.
	Note string

	// Date is when the money changed hands.
	Date time.Time

	// PaidByUserID is the user who paid (debtor settling up).
	PaidByUserID string

	// ReceivedByUserID is the user who received payment (creditor being paid).
	ReceivedByUserID string

	// GroupID scopes the settlement to a group's balance.
	// Empty for a 1-to-1 settlement.
	GroupID string

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}

// Involves reports whether userID is one of the two parties.
func (s *Settlement) Involves(userID string) bool {
	return s.PaidByUserID == userID || s.ReceivedByUserID == userID
}

// Counterparty returns the other party relative to userID.
func (s *Settlement) Counterparty(userID string) string {
	if s.PaidByUserID == userID {
		return s.ReceivedByUserID
	}
	return s.PaidByUserID
}
