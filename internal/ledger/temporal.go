package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// MonthTotal is the subject's personal share for one calendar month.
type MonthTotal struct {
	// Month is the first instant of the month.
	Month time.Time
	Total decimal.Decimal
}

// YearStart returns Jan 1 00:00 of year in loc.
func YearStart(year int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
}

// personalShare returns the subject's split amount for e, if any.
// The paid flag and the payer do not matter: a personal share is spending either way.
func personalShare(subjectID string, e *models.Expense) (decimal.Decimal, bool) {
	split, ok := e.SplitFor(subjectID)
	if !ok {
		return decimal.Zero, false
	}
	return split.Amount, true
}

// YearTotal sums the subject's personal share over expenses dated within year.
// An expense without a split for the subject contributes nothing, even if the subject paid it.
func YearTotal(subjectID string, year int, loc *time.Location, expenses []models.Expense) decimal.Decimal {
	start := YearStart(year, loc)
	end := start.AddDate(1, 0, 0)

	total := decimal.Zero
	for i := range expenses {
		e := &expenses[i]
		if e.Date.Before(start) || !e.Date.Before(end) {
			continue
		}
		if share, ok := personalShare(subjectID, e); ok {
			total = total.Add(share)
		}
	}
	return total
}

// MonthlyTotals buckets the subject's personal share by calendar month of year.
// It always returns 12 entries, January first, with empty months at zero.
func MonthlyTotals(subjectID string, year int, loc *time.Location, expenses []models.Expense) []MonthTotal {
	start := YearStart(year, loc)

	months := make([]MonthTotal, 12)
	for m := range months {
		months[m] = MonthTotal{Month: start.AddDate(0, m, 0), Total: decimal.Zero}
	}

	for i := range expenses {
		e := &expenses[i]
		d := e.Date.In(start.Location())
		if d.Year() != year {
			continue
		}
		if share, ok := personalShare(subjectID, e); ok {
			idx := int(d.Month()) - 1
			months[idx].Total = months[idx].Total.Add(share)
		}
	}
	return months
}
