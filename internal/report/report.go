// Package report renders ledger views as markdown for terminals.
//
// Amounts are formatted with the configured currency; the markdown can be
// printed raw or styled for a terminal with Render.
package report

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/api"
)

// Writer builds markdown for one currency.
type Writer struct {
	cur money.Currency
}

// New returns a Writer formatting amounts in the ISO 4217 currency code.
func New(currency string) *Writer {
	// money.New always yields a non-nil currency, even for unknown codes.
	return &Writer{cur: *money.New(0, currency).Currency()}
}

// Money formats d in the writer's currency, rounded to its minor unit.
func (w *Writer) Money(d decimal.Decimal) string {
	minor := d.Round(int32(w.cur.Fraction)).Shift(int32(w.cur.Fraction))
	return w.cur.Formatter().Format(minor.IntPart())
}

// signed prefixes positive amounts with "+" and renders zero as "-".
func (w *Writer) signed(d decimal.Decimal) string {
	switch {
	case d.IsZero():
		return "-"
	case d.IsPositive():
		return "+" + w.Money(d)
	}
	return w.Money(d)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Balances renders the pairwise summary and its breakdown.
func (w *Writer) Balances(r *api.GetPairwiseBalancesResponse) string {
	var b strings.Builder
	b.WriteString("# Balances\n\n")
	b.WriteString("| | Amount |\n|---|---:|\n")
	fmt.Fprintf(&b, "| You owe | %s |\n", w.Money(r.YouOwe))
	fmt.Fprintf(&b, "| You are owed | %s |\n", w.Money(r.YouAreOwed))
	fmt.Fprintf(&b, "| **Net** | **%s** |\n", w.signed(r.TotalBalance))

	debts := func(title string, list []api.Debt) {
		if len(list) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n## %s\n\n| Person | Amount |\n|---|---:|\n", title)
		for _, d := range list {
			fmt.Fprintf(&b, "| %s | %s |\n", escape(d.Name), w.Money(d.Amount))
		}
	}
	debts("You owe", r.OweDetails.YouOwe)
	debts("You are owed by", r.OweDetails.YouAreOwedBy)
	return b.String()
}

// Groups renders the caller's net position in each group.
func (w *Writer) Groups(r *api.GetGroupBalancesResponse) string {
	var b strings.Builder
	b.WriteString("# Groups\n\n")
	if len(r.Groups) == 0 {
		b.WriteString("No groups.\n")
		return b.String()
	}
	b.WriteString("| Group | Members | Balance |\n|---|---:|---:|\n")
	for _, g := range r.Groups {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", escape(g.Name), len(g.Members), w.signed(g.Balance))
	}
	return b.String()
}

// Totals renders a year's spending by month with the year total.
func (w *Writer) Totals(year *api.GetYearTotalResponse, months *api.GetMonthlyTotalsResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Spending %d\n\n", year.Year)
	b.WriteString("| Month | Total |\n|---|---:|\n")
	for _, m := range months.Months {
		fmt.Fprintf(&b, "| %s | %s |\n", m.Month.Format("January"), w.Money(m.Total))
	}
	fmt.Fprintf(&b, "| **Year** | **%s** |\n", w.Money(year.Total))
	return b.String()
}

// Contacts lists the people and groups the caller shares records with.
func (w *Writer) Contacts(r *api.GetContactsResponse) string {
	var b strings.Builder
	b.WriteString("# Contacts\n\n")
	if len(r.Users) == 0 {
		b.WriteString("No contacts.\n")
	}
	for _, u := range r.Users {
		fmt.Fprintf(&b, "- %s (`%s`)\n", u.Name, u.ID)
	}
	if len(r.Groups) > 0 {
		b.WriteString("\n## Groups\n\n")
		for _, g := range r.Groups {
			fmt.Fprintf(&b, "- %s, %d members (`%s`)\n", g.Name, g.MemberCount, g.ID)
		}
	}
	return b.String()
}

// GroupLedger renders member balances and the transfers that settle a group.
func (w *Writer) GroupLedger(r *api.GetGroupLedgerResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Group.Name)
	b.WriteString("| Member | Paid | Owed | Net |\n|---|---:|---:|---:|\n")
	for _, m := range r.Members {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			escape(m.Name), w.Money(m.TotalPaid), w.Money(m.TotalOwed), w.signed(m.NetBalance))
	}
	b.WriteString("\n## Settle up\n\n")
	if len(r.Transfers) == 0 {
		b.WriteString("All settled.\n")
	}
	for _, t := range r.Transfers {
		fmt.Fprintf(&b, "- %s pays %s %s\n", t.FromName, t.ToName, w.Money(t.Amount))
	}
	return b.String()
}

// History renders the records that make up the balance with one counterpart.
func (w *Writer) History(r *api.GetCounterpartHistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Counterpart.Name)
	fmt.Fprintf(&b, "Balance: **%s**\n", w.signed(r.Balance))

	if len(r.Expenses) > 0 {
		b.WriteString("\n## Expenses\n\n| Date | Description | Amount |\n|---|---|---:|\n")
		for _, e := range r.Expenses {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", e.Date.Format("2006-01-02"), escape(e.Description), w.Money(e.Amount))
		}
	}
	if len(r.Settlements) > 0 {
		b.WriteString("\n## Settlements\n\n| Date | Note | Amount |\n|---|---|---:|\n")
		for _, s := range r.Settlements {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", s.Date.Format("2006-01-02"), escape(s.Note), w.Money(s.Amount))
		}
	}
	return b.String()
}

// Render styles markdown for the terminal, wrapping at width columns.
func Render(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	return r.Render(md)
}
