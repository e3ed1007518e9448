package ledger

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	ErrZeroSubtotal          = errors.New("subtotal cannot be zero")
	ErrNoParticipants        = errors.New("must have at least one participant")
	ErrUnknownAssignee       = errors.New("item assigned to someone who is not a participant")
	ErrUnassignedItem        = errors.New("item must be assigned to at least one participant")
	ErrDuplicateParticipant  = errors.New("participant listed more than once")
	ErrItemsSubtotalMismatch = errors.New("item amounts do not sum to the subtotal")
	ErrRemainderTooLarge     = errors.New("shares differ from the total by more than rounding")
)

// centPlaces is the rounding precision of computed shares.
const centPlaces = 2

// Item represents a single line item on a receipt.
type Item struct {
	Description string
	Amount      decimal.Decimal
	AssignedTo  []string
}

// PersonShare represents the calculated share for one person.
type PersonShare struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Itemize computes how much each participant owes including proportional tax:
// person_total = person_subtotal × (1 + (total_tax / bill_subtotal)).
// With no items the total is divided equally.
//
// Shares are exact; use Splits to turn them into cent-rounded split entries.
func Itemize(items []Item, total, subtotal decimal.Decimal, participants []string) (map[string]*PersonShare, error) {
	if subtotal.IsZero() {
		return nil, ErrZeroSubtotal
	}
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if err := uniqueParticipants(participants); err != nil {
		return nil, err
	}

	tax := total.Sub(subtotal)
	shares := make(map[string]*PersonShare, len(participants))
	for _, p := range participants {
		shares[p] = &PersonShare{}
	}

	if len(items) == 0 {
		n := decimal.NewFromInt(int64(len(participants)))
		for _, share := range shares {
			share.Subtotal = subtotal.Div(n)
			share.Tax = tax.Div(n)
			share.Total = total.Div(n)
		}
		return shares, nil
	}

	itemSum := decimal.Zero
	for _, item := range items {
		if len(item.AssignedTo) == 0 {
			return nil, ErrUnassignedItem
		}
		itemSum = itemSum.Add(item.Amount)
		perPerson := item.Amount.Div(decimal.NewFromInt(int64(len(item.AssignedTo))))
		for _, person := range item.AssignedTo {
			share, ok := shares[person]
			if !ok {
				return nil, ErrUnknownAssignee
			}
			share.Subtotal = share.Subtotal.Add(perPerson)
		}
	}
	if !itemSum.Equal(subtotal) {
		return nil, ErrItemsSubtotalMismatch
	}

	ratio := tax.Div(subtotal)
	for _, share := range shares {
		share.Tax = share.Subtotal.Mul(ratio)
		share.Total = share.Subtotal.Add(share.Tax)
	}
	return shares, nil
}

// Splits rounds shares to cents, in participant order, so that they sum exactly to total.
// The rounding remainder goes to the first participant and may be at most one cent per
// participant. The payer's own split is marked paid.
func Splits(shares map[string]*PersonShare, participants []string, total decimal.Decimal, payerID string) ([]models.Split, error) {
	if err := uniqueParticipants(participants); err != nil {
		return nil, err
	}

	splits := make([]models.Split, 0, len(participants))
	sum := decimal.Zero
	for _, p := range participants {
		amount := decimal.Zero
		if share, ok := shares[p]; ok {
			amount = share.Total.Round(centPlaces)
		}
		sum = sum.Add(amount)
		splits = append(splits, models.Split{
			UserID: p,
			Amount: amount,
			Paid:   p == payerID,
		})
	}
	if len(splits) == 0 {
		return splits, nil
	}

	remainder := total.Sub(sum)
	limit := decimal.New(1, -centPlaces).Mul(decimal.NewFromInt(int64(len(splits))))
	if remainder.Abs().GreaterThan(limit) {
		return nil, ErrRemainderTooLarge
	}
	splits[0].Amount = splits[0].Amount.Add(remainder)
	return splits, nil
}

func uniqueParticipants(participants []string) error {
	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if _, ok := seen[p]; ok {
			return ErrDuplicateParticipant
		}
		seen[p] = struct{}{}
	}
	return nil
}
