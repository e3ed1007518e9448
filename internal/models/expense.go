package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense represents a monetary event paid by one user and split among participants.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	Description string

	// Amount is the total paid. The split amounts sum to it.
	Amount decimal.Decimal

	// Category is a free-form label (e.g., "food"). Optional.
	Category string

	// Date orders and buckets the expense.
	Date time.Time

	// PaidByUserID is the user who paid the full amount.
	PaidByUserID string

	// GroupID is the group the expense belongs to.
	// Empty for a personal (1-to-1) expense.
	GroupID string

	// Splits allocate the amount among participants, in entry order.
	Splits []Split

	// CreatedBy is the user ID who recorded this expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Split is one participant's share of an expense.
type Split struct {
	UserID string
	Amount decimal.Decimal

	// Paid marks a share already settled when the expense was created,
	// typically the payer's own share.
	Paid bool
}

// IsPersonal reports whether the expense is outside any group.
func (e *Expense) IsPersonal() bool {
	return e.GroupID == ""
}

// SplitFor returns the first split entry for userID.
func (e *Expense) SplitFor(userID string) (Split, bool) {
	for _, s := range e.Splits {
		if s.UserID == userID {
			return s, true
		}
	}
	return Split{}, false
}

// Involves reports whether userID paid the expense or has a split entry in it.
func (e *Expense) Involves(userID string) bool {
	if e.PaidByUserID == userID {
		return true
	}
	_, ok := e.SplitFor(userID)
	return ok
}
