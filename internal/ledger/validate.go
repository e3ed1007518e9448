package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrNegativeSplit     = errors.New("split amount must not be negative")
	ErrSplitSumMismatch  = errors.New("split amounts must sum to the expense amount")
	ErrNoSplits          = errors.New("expense must have at least one split")
	ErrMissingPayer      = errors.New("payer is required")
	ErrMissingSplitUser  = errors.New("every split needs a user")
	ErrMissingParty      = errors.New("settlement requires both a payer and a receiver")
	ErrSameParty         = errors.New("settlement payer and receiver must differ")
)

// ValidateExpense checks the structural invariants of an expense.
func ValidateExpense(e *models.Expense) error {
	if e.PaidByUserID == "" {
		return ErrMissingPayer
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrNonPositiveAmount, e.Amount)
	}
	if len(e.Splits) == 0 {
		return ErrNoSplits
	}

	sum := decimal.Zero
	for _, split := range e.Splits {
		if split.UserID == "" {
			return ErrMissingSplitUser
		}
		if split.Amount.IsNegative() {
			return fmt.Errorf("%w: %s has %s", ErrNegativeSplit, split.UserID, split.Amount)
		}
		sum = sum.Add(split.Amount)
	}
	if !sum.Equal(e.Amount) {
		return fmt.Errorf("%w: splits sum to %s, amount is %s", ErrSplitSumMismatch, sum, e.Amount)
	}
	return nil
}

// ValidateSettlement checks the structural invariants of a settlement.
func ValidateSettlement(s *models.Settlement) error {
	if s.PaidByUserID == "" || s.ReceivedByUserID == "" {
		return ErrMissingParty
	}
	if s.PaidByUserID == s.ReceivedByUserID {
		return ErrSameParty
	}
	if !s.Amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrNonPositiveAmount, s.Amount)
	}
	return nil
}

// Rejection records a stored record excluded from aggregation.
type Rejection struct {
	Kind string // "expense" or "settlement"
	ID   string
	Err  error
}

// Sanitize drops records that fail validation so that one corrupt row cannot skew a
// balance. The returned slices are new; the inputs are not modified.
func Sanitize(expenses []models.Expense, settlements []models.Settlement) ([]models.Expense, []models.Settlement, []Rejection) {
	var rejected []Rejection

	validExpenses := make([]models.Expense, 0, len(expenses))
	for i := range expenses {
		if err := ValidateExpense(&expenses[i]); err != nil {
			rejected = append(rejected, Rejection{Kind: "expense", ID: expenses[i].ID, Err: err})
			continue
		}
		validExpenses = append(validExpenses, expenses[i])
	}

	validSettlements := make([]models.Settlement, 0, len(settlements))
	for i := range settlements {
		if err := ValidateSettlement(&settlements[i]); err != nil {
			rejected = append(rejected, Rejection{Kind: "settlement", ID: settlements[i].ID, Err: err})
			continue
		}
		validSettlements = append(validSettlements, settlements[i])
	}

	return validExpenses, validSettlements, rejected
}
