package main

import (
	"context"
	"flag"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/subcommands"

	"github.com/mmynk/splitledger/internal/api"
)

var commands = []subcommands.Command{
	&balancesCmd{},
	&groupsCmd{},
	&totalsCmd{},
	&contactsCmd{},
	&groupCmd{},
	&historyCmd{},
	&reportCmd{},
}

type balancesCmd struct{ userFlag }

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "show what you owe and are owed outside groups" }
func (*balancesCmd) Usage() string {
	return `ledgerctl balances -user <id>

  Displays the net balance with every counterpart of personal expenses.
`
}

func (c *balancesCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *balancesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, balances)
}

func balances(s *session) (string, error) {
	resp, err := s.ledger.GetPairwiseBalances(s.ctx, connect.NewRequest(&api.GetPairwiseBalancesRequest{}))
	if err != nil {
		return "", err
	}
	return s.writer.Balances(resp.Msg), nil
}

type groupsCmd struct{ userFlag }

func (*groupsCmd) Name() string     { return "groups" }
func (*groupsCmd) Synopsis() string { return "show your balance in each group" }
func (*groupsCmd) Usage() string {
	return `ledgerctl groups -user <id>
`
}

func (c *groupsCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *groupsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, groups)
}

func groups(s *session) (string, error) {
	resp, err := s.ledger.GetGroupBalances(s.ctx, connect.NewRequest(&api.GetGroupBalancesRequest{}))
	if err != nil {
		return "", err
	}
	return s.writer.Groups(resp.Msg), nil
}

type totalsCmd struct {
	userFlag
	year int
}

func (*totalsCmd) Name() string     { return "totals" }
func (*totalsCmd) Synopsis() string { return "show your spending per month" }
func (*totalsCmd) Usage() string {
	return `ledgerctl totals -user <id> [-year <yyyy>]

  Displays your share of the year's expenses by month. Defaults to the current year.
`
}

func (c *totalsCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
	f.IntVar(&c.year, "year", 0, "calendar year (defaults to the current year)")
}

func (c *totalsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(s *session) (string, error) { return totals(s, c.year) })
}

func totals(s *session, year int) (string, error) {
	y, err := s.ledger.GetYearTotal(s.ctx, connect.NewRequest(&api.GetYearTotalRequest{Year: year}))
	if err != nil {
		return "", err
	}
	m, err := s.ledger.GetMonthlyTotals(s.ctx, connect.NewRequest(&api.GetMonthlyTotalsRequest{Year: y.Msg.Year}))
	if err != nil {
		return "", err
	}
	return s.writer.Totals(y.Msg, m.Msg), nil
}

type contactsCmd struct{ userFlag }

func (*contactsCmd) Name() string     { return "contacts" }
func (*contactsCmd) Synopsis() string { return "list people and groups you share expenses with" }
func (*contactsCmd) Usage() string {
	return `ledgerctl contacts -user <id>
`
}

func (c *contactsCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *contactsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, contacts)
}

func contacts(s *session) (string, error) {
	resp, err := s.ledger.GetContacts(s.ctx, connect.NewRequest(&api.GetContactsRequest{}))
	if err != nil {
		return "", err
	}
	return s.writer.Contacts(resp.Msg), nil
}

type groupCmd struct {
	userFlag
	groupID string
}

func (*groupCmd) Name() string     { return "group" }
func (*groupCmd) Synopsis() string { return "show member balances and transfers of a group" }
func (*groupCmd) Usage() string {
	return `ledgerctl group -user <id> -id <group id>
`
}

func (c *groupCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
	f.StringVar(&c.groupID, "id", "", "group ID")
}

func (c *groupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(s *session) (string, error) {
		resp, err := s.ledger.GetGroupLedger(s.ctx, connect.NewRequest(&api.GetGroupLedgerRequest{GroupID: c.groupID}))
		if err != nil {
			return "", err
		}
		return s.writer.GroupLedger(resp.Msg), nil
	})
}

type historyCmd struct {
	userFlag
	with string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show the records behind a balance with one person" }
func (*historyCmd) Usage() string {
	return `ledgerctl history -user <id> -with <user id>
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
	f.StringVar(&c.with, "with", "", "counterpart user ID")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(s *session) (string, error) {
		resp, err := s.ledger.GetCounterpartHistory(s.ctx, connect.NewRequest(&api.GetCounterpartHistoryRequest{UserID: c.with}))
		if err != nil {
			return "", err
		}
		return s.writer.History(resp.Msg), nil
	})
}

type reportCmd struct {
	userFlag
	year int
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print balances, groups and totals together" }
func (*reportCmd) Usage() string {
	return `ledgerctl report -user <id> [-year <yyyy>]
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
	f.IntVar(&c.year, "year", 0, "calendar year for totals (defaults to the current year)")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(s *session) (string, error) {
		var parts []string
		sections := []func(*session) (string, error){
			balances,
			groups,
			func(s *session) (string, error) { return totals(s, c.year) },
		}
		for _, section := range sections {
			md, err := section(s)
			if err != nil {
				return "", err
			}
			parts = append(parts, md)
		}
		return strings.Join(parts, "\n"), nil
	})
}
