package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// LedgerStore is everything the ledger reads. It never writes.
type LedgerStore interface {
	storage.RecordReader
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// LedgerConfig tunes the ledger service.
type LedgerConfig struct {
	// Location defines calendar year and month boundaries. Defaults to UTC.
	Location *time.Location
	// GroupConcurrency bounds how many groups are read at once. Defaults to 4.
	GroupConcurrency int
}

// LedgerService implements the LedgerService RPC interface: read-only views derived
// from the caller's expenses and settlements.
type LedgerService struct {
	store    LedgerStore
	identity IdentityResolver
	loc      *time.Location
	limit    int
	now      func() time.Time
	logger   *slog.Logger
}

var _ api.LedgerServiceHandler = (*LedgerService)(nil)

// NewLedgerService creates a ledger service reading from store.
func NewLedgerService(store LedgerStore, identity IdentityResolver, cfg LedgerConfig, logger *slog.Logger) *LedgerService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.GroupConcurrency <= 0 {
		cfg.GroupConcurrency = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{
		store:    store,
		identity: identity,
		loc:      cfg.Location,
		limit:    cfg.GroupConcurrency,
		now:      time.Now,
		logger:   logger,
	}
}

// sanitize drops invalid stored records, logging and counting each one.
func (s *LedgerService) sanitize(expenses []models.Expense, settlements []models.Settlement) ([]models.Expense, []models.Settlement) {
	expenses, settlements, rejected := ledger.Sanitize(expenses, settlements)
	for _, r := range rejected {
		s.logger.Warn("Skipping invalid record", "kind", r.Kind, "id", r.ID, "error", r.Err)
		metrics.InvalidRecord(r.Kind)
	}
	return expenses, settlements
}

// users resolves ids to stored users. Missing users are logged at debug and left out.
func (s *LedgerService) users(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			s.logger.Debug("Referenced user not found", "user_id", id)
		}
	}
	return users, nil
}

// personalRecords reads the subject's 1-to-1 expenses and settlements concurrently.
func (s *LedgerService) personalRecords(ctx context.Context, userID string) ([]models.Expense, []models.Settlement, error) {
	var (
		expenses    []models.Expense
		settlements []models.Settlement
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListPersonalExpenses(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		settlements, err = s.store.ListPersonalSettlements(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	expenses, settlements = s.sanitize(expenses, settlements)
	return expenses, settlements, nil
}

// groupRecords reads one group's expenses and settlements concurrently.
func (s *LedgerService) groupRecords(ctx context.Context, group *models.Group) (ledger.GroupRecords, error) {
	rec := ledger.GroupRecords{Group: group}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rec.Expenses, err = s.store.ListGroupExpenses(gctx, group.ID)
		return err
	})
	g.Go(func() error {
		var err error
		rec.Settlements, err = s.store.ListGroupSettlements(gctx, group.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return rec, err
	}
	rec.Expenses, rec.Settlements = s.sanitize(rec.Expenses, rec.Settlements)
	return rec, nil
}

// GetPairwiseBalances returns the caller's 1-to-1 balances with every counterparty.
func (s *LedgerService) GetPairwiseBalances(ctx context.Context, req *connect.Request[api.GetPairwiseBalancesRequest]) (*connect.Response[api.GetPairwiseBalancesResponse], error) {
	subject, err := resolveSubject(ctx, s.identity, s.logger)
	if err != nil {
		return nil, err
	}
	s.logger.Info("GetPairwiseBalances request received", "user_id", subject.ID)

	expenses, settlements, err := s.personalRecords(ctx, subject.ID)
	if err != nil {
		return nil, storeError(s.logger, "GetPairwiseBalances", err)
	}

	start := time.Now()
	balances := ledger.Pairwise(subject.ID, expenses, settlements)
	metrics.ObserveAggregation("pairwise", start)

	users, err := s.users(ctx, balances.Counterparties())
	if err != nil {
		return nil, storeError(s.logger, "GetPairwiseBalances", err)
	}
	balances.ResolveNames(users)

	s.logger.Info("GetPairwiseBalances successful",
		"user_id", subject.ID,
		"expenses_count", len(expenses),
		"settlements_count", len(settlements),
		"counterparties", len(balances.OweDetails.YouOwe)+len(balances.OweDetails.YouAreOwedBy),
	)

	return connect.NewResponse(&api.GetPairwiseBalancesResponse{
		YouOwe:       balances.YouOwe,
		YouAreOwed:   balances.YouAreOwed,
		TotalBalance: balances.TotalBalance,
		OweDetails: api.OweDetails{
			YouOwe:       toAPIDebts(balances.OweDetails.YouOwe),
			YouAreOwedBy: toAPIDebts(balances.OweDetails.YouAreOwedBy),
		},
	}), nil
}

// GetGroupBalances returns the caller's net position in each of their groups.
func (s *LedgerService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	subject, err := resolveSubject(ctx, s.identity, s.logger)
	if err != nil {
		return nil, err
	}
	s.logger.Info("GetGroupBalances request received", "user_id", subject.ID)

	groups, err := s.store.ListGroupsForUser(ctx, subject.ID)
	if err != nil {
		return nil, storeError(s.logger, "GetGroupBalances", err)
	}

	records := make([]ledger.GroupRecords, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			rec, err := s.groupRecords(gctx, group)
			records[i] = rec
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeError(s.logger, "GetGroupBalances", err)
	}

	start := time.Now()
	balances := ledger.GroupBalances(subject.ID, records)
	metrics.ObserveAggregation("group_balances", start)

	users, err := s.users(ctx, memberIDs(groups))
	if err != nil {
		return nil, storeError(s.logger, "GetGroupBalances", err)
	}

	out := make([]api.GroupBalance, len(balances))
	for i, b := range balances {
		out[i] = api.GroupBalance{
			Group:   toAPIGroup(b.Group, users),
			Balance: b.Balance,
		}
	}

	s.logger.Info("GetGroupBalances successful", "user_id", subject.ID, "groups_count", len(out))
	return connect.NewResponse(&api.GetGroupBalancesResponse{Groups: out}), nil
}

// year returns the requested year, defaulting to the current one in the ledger's location.
func (s *LedgerService) year(requested int) (int, error) {
	if requested == 0 {
		return s.now().In(s.loc).Year(), nil
	}
	if requested < 1 || requested > 9999 {
		return 0, malformed("year %d out of range", requested)
	}
	return requested, nil
}

func (s *LedgerService) yearExpenses(ctx context.Context, userID string, year int) ([]models.Expense, error) {
	expenses, err := s.store.ListExpensesSince(ctx, userID, ledger.YearStart(year, s.loc))
	if err != nil {
		return nil, err
	}
	expenses, _ = s.sanitize(expenses, nil)
	return expenses, nil
}

// GetYearTotal returns the caller's personal share of spending over a calendar year.
func (s *LedgerService) GetYearTotal(ctx context.Context, req *connect.Request[api.GetYearTotalRequest]) (*connect.Response[api.GetYearTotalResponse], error) {
	subject, err := resolveSubject(ctx, s.identity, s.logger)
	if err != nil {
		return nil, err
	}
	year, err := s.year(req.Msg.Year)
	if err != nil {
		return nil, err
	}
	s.logger.Info("GetYearTotal request received", "user_id", subject.ID, "year", year)

	expenses, err := s.yearExpenses(ctx, subject.ID, year)
	if err != nil {
		return nil, storeError(s.logger, "GetYearTotal", err)
	}

	start := time.Now()
	total := ledger.YearTotal(subject.ID, year, s.loc, expenses)
	metrics.ObserveAggregation("year_total", start)

	return connect.NewResponse(&api.GetYearTotalResponse{Year: year, Total: total}), nil
}

// GetMonthlyTotals returns the caller's personal share for each month of a year.
func (s *LedgerService) GetMonthlyTotals(ctx context.Context, req *connect.Request[api.GetMonthlyTotalsRequest]) (*connect.Response[api.GetMonthlyTotalsResponse], error) {
	subject, err := resolveSubject(ctx, s.identity, s.logger)
	if err != nil {
		return nil, err
	}
	year, err := s.year(req.Msg.Year)
	if err != nil {
		return nil, err
	}
	s.logger.Info("GetMonthlyTotals request received", "user_id", subject.ID, "year", year)

	expenses, err := s.yearExpenses(ctx, subject.ID, year)
	if err != nil {
		return nil, storeError(s.logger, "GetMonthlyTotals", err)
	}

	start := time.Now()
	months := ledger.MonthlyTotals(subject.ID, year, s.loc, expenses)
	metrics.ObserveAggregation("monthly_totals", start)

	out := make([]api.MonthTotal, len(months))
	for i, m := range months {
		out[i] = api.MonthTotal{Month: m.Month, Total: m.Total}
	}
	return connect.NewResponse(&api.GetMonthlyTotalsResponse{Year: year, Months: out}), nil
}

// GetContacts lists the users the caller shares 1-to-1 expenses with and the caller's groups.
func (s *LedgerService) GetContacts(ctx context.Context, req *connect.Request[api.GetContactsRequest]) (*connect.Response[api.GetContactsResponse], error) {
	subject, err := resolveSubject(ctx, s.identity, s.logger)
	if err != nil {
		return nil, err
	}
	s.logger.Info("GetContacts request received", "user_id", subject.ID)

	var (
		expenses []models.Expense
		groups   []*models.Group
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListPersonalExpenses(gctx, subject.ID)
		return err
	})
	g.Go(func() error {
		var err error
		groups, err = s.store.ListGroupsForUser(gctx, subject.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError(s.logger, "GetContacts", err)
	}
	expenses, _ = s.sanitize(expenses, nil)

	users, err := s.users(ctx, ledger.SortedIDs(ledger.CounterpartIDs(subject.ID, expenses)))
	if err != nil {
		return nil, storeError(s.logger, "GetContacts", err)
	}

	start := time.Now()
	book := ledger.Contacts(subject.ID, expenses, users, groups)
	metrics.ObserveAggregation("contacts", start)

	out := &api.GetContactsResponse{
		Users:  make([]api.User, len(book.Users)),
		Groups: make([]api.ContactGroup, len(book.Groups)),
	}
	for i, u := range book.Users {
		out.Users[i] = toAPICounterpart(u)
	}
	for i, cg := range book.Groups {
		out.Groups[i] = api.ContactGroup{
			ID:          cg.ID,
			Name:        cg.Name,
			Description: cg.Description,
			MemberCount: cg.MemberCount,
		}
	}

	s.logger.Info("GetContacts successful",
		"user_id", subject.ID,
		"users_count", len(out.Users),
		"groups_count", len(out.Groups),
	)
	return connect.NewResponse(out), nil
}

// GetGroupLedger returns every member's position in one of the caller's groups and the
// transfers that would settle it.
func (s *LedgerService) GetGroupLedger(ctx context.Context, req *connect.Request[api.GetGroupLedgerRequest]) (*connect.Response[api.GetGroupLedgerResponse], error) {
	subject, err := resolveSubject(ctx, s.identity, s.logger)
	if err != nil {
		return nil, err
	}
	groupID := strings.TrimSpace(req.Msg.GroupID)
	if groupID == "" {
		return nil, malformed("group_id required")
	}
	s.logger.Info("GetGroupLedger request received", "user_id", subject.ID, "group_id", groupID)

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeError(s.logger, "GetGroupLedger", err)
	}
	if !group.HasMember(subject.ID) {
		return nil, connect.NewError(connect.CodePermissionDenied, ErrNotMember)
	}

	rec, err := s.groupRecords(ctx, group)
	if err != nil {
		return nil, storeError(s.logger, "GetGroupLedger", err)
	}

	start := time.Now()
	result := ledger.GroupLedger(group, rec.Expenses, rec.Settlements)
	metrics.ObserveAggregation("group_ledger", start)

	users, err := s.users(ctx, result.UserIDs())
	if err != nil {
		return nil, storeError(s.logger, "GetGroupLedger", err)
	}
	result.ResolveNames(users)

	members := make([]api.MemberBalance, len(result.Members))
	for i, m := range result.Members {
		members[i] = api.MemberBalance{
			UserID:     m.UserID,
			Name:       m.Name,
			NetBalance: m.NetBalance,
			TotalPaid:  m.TotalPaid,
			TotalOwed:  m.TotalOwed,
		}
	}
	transfers := make([]api.Transfer, len(result.Transfers))
	for i, t := range result.Transfers {
		transfers[i] = api.Transfer{
			FromUserID: t.From,
			FromName:   ledger.DisplayName(users, t.From),
			ToUserID:   t.To,
			ToName:     ledger.DisplayName(users, t.To),
			Amount:     t.Amount,
		}
	}

	s.logger.Info("GetGroupLedger successful",
		"group_id", groupID,
		"expenses_count", len(rec.Expenses),
		"members_count", len(members),
		"transfers_count", len(transfers),
	)
	return connect.NewResponse(&api.GetGroupLedgerResponse{
		Group:     toAPIGroup(group, users),
		Members:   members,
		Transfers: transfers,
	}), nil
}

// GetCounterpartHistory returns the 1-to-1 activity between the caller and another user.
func (s *LedgerService) GetCounterpartHistory(ctx context.Context, req *connect.Request[api.GetCounterpartHistoryRequest]) (*connect.Response[api.GetCounterpartHistoryResponse], error) {
	subject, err := resolveSubject(ctx, s.identity, s.logger)
	if err != nil {
		return nil, err
	}
	otherID := strings.TrimSpace(req.Msg.UserID)
	if otherID == "" {
		return nil, malformed("user_id required")
	}
	if otherID == subject.ID {
		return nil, malformed("user_id must differ from the caller")
	}
	s.logger.Info("GetCounterpartHistory request received", "user_id", subject.ID, "counterpart_id", otherID)

	expenses, settlements, err := s.personalRecords(ctx, subject.ID)
	if err != nil {
		return nil, storeError(s.logger, "GetCounterpartHistory", err)
	}

	start := time.Now()
	history := ledger.History(subject.ID, otherID, expenses, settlements)
	metrics.ObserveAggregation("counterpart_history", start)

	users, err := s.users(ctx, []string{otherID})
	if err != nil {
		return nil, storeError(s.logger, "GetCounterpartHistory", err)
	}
	counterpart := api.User{ID: otherID, Name: ledger.DisplayName(users, otherID)}
	if u, ok := users[otherID]; ok {
		counterpart = toAPICounterpart(u)
	}

	out := &api.GetCounterpartHistoryResponse{
		Counterpart: counterpart,
		Balance:     history.Balance,
		Expenses:    make([]api.Expense, len(history.Expenses)),
		Settlements: make([]api.Settlement, len(history.Settlements)),
	}
	for i := range history.Expenses {
		out.Expenses[i] = toAPIExpense(&history.Expenses[i])
	}
	for i := range history.Settlements {
		out.Settlements[i] = toAPISettlement(&history.Settlements[i])
	}
	return connect.NewResponse(out), nil
}
