package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// RecordStore is what the record service reads and writes.
type RecordStore interface {
	storage.RecordWriter
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// RecordService implements the RecordService RPC interface. It validates and stores
// the records the ledger later folds.
type RecordService struct {
	store    RecordStore
	identity IdentityResolver
	now      func() time.Time
	logger   *slog.Logger
}

var _ api.RecordServiceHandler = (*RecordService)(nil)

// NewRecordService creates a record service writing to store.
func NewRecordService(store RecordStore, identity IdentityResolver, logger *slog.Logger) *RecordService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordService{store: store, identity: identity, now: time.Now, logger: logger}
}

// requireUsers fails with InvalidArgument if any of ids has no stored user.
func (s *RecordService) requireUsers(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, storeError(s.logger, "user lookup", err)
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return nil, malformed("unknown user %s", id)
		}
	}
	return users, nil
}

// memberGroup loads groupID and checks that callerID belongs to it.
func (s *RecordService) memberGroup(ctx context.Context, groupID, callerID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, connect.NewError(connect.CodeNotFound, err)
	}
	if err != nil {
		return nil, storeError(s.logger, "group lookup", err)
	}
	if !group.HasMember(callerID) {
		return nil, connect.NewError(connect.CodePermissionDenied, ErrNotMember)
	}
	return group, nil
}

// CreateGroup creates a group with the caller as admin.
func (s *RecordService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	caller, err := resolveSubject(ctx, s.identity, s.logger)
	if err != nil {
		return nil, err
	}
	s.logger.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, malformed("group name required")
	}

	joined := s.now().Unix()
	ids := []string{caller.ID}
	members := []models.GroupMember{{UserID: caller.ID, Role: models.RoleAdmin, JoinedAt: joined}}
	seen := map[string]bool{caller.ID: true}
	for _, id := range req.Msg.MemberIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		members = append(members, models.GroupMember{UserID: id, Role: models.RoleMember, JoinedAt: joined})
	}

	users, err := s.requireUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(req.Msg.Description),
		CreatedBy:   caller.ID,
		Members:     members,
		CreatedAt:   joined,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, storeError(s.logger, "CreateGroup", err)
	}

	s.logger.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group, users)}), nil
}

// expenseSplits returns the splits of req, computing them from the itemized receipt
// when one is given.
func expenseSplits(msg *api.CreateExpenseRequest, payerID string) ([]models.Split, error) {
	if msg.Itemized != nil && len(msg.Splits) > 0 {
		return nil, malformed("give either splits or itemized, not both")
	}

	if msg.Itemized == nil {
		splits := make([]models.Split, len(msg.Splits))
		for i, sp := range msg.Splits {
			splits[i] = models.Split{UserID: strings.TrimSpace(sp.UserID), Amount: sp.Amount, Paid: sp.Paid}
		}
		return splits, nil
	}

	items := make([]ledger.Item, len(msg.Itemized.Items))
	for i, it := range msg.Itemized.Items {
		items[i] = ledger.Item{Description: it.Description, Amount: it.Amount, AssignedTo: it.AssignedTo}
	}
	shares, err := ledger.Itemize(items, msg.Amount, msg.Itemized.Subtotal, msg.Itemized.Participants)
	if err != nil {
		return nil, malformed("%v", err)
	}
	splits, err := ledger.Splits(shares, msg.Itemized.Participants, msg.Amount, payerID)
	if err != nil {
		return nil, malformed("%v", err)
	}
	return splits, nil
}

// CreateExpense records an expense paid by the caller or, in a group, by any member.
func (s *RecordService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	caller, err := resolveSubject(ctx, s.identity, s.logger)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	s.logger.Info("CreateExpense request received",
		"description", msg.Description,
		"group_id", msg.GroupID,
		"splits_count", len(msg.Splits),
	)

	if strings.TrimSpace(msg.Description) == "" {
		return nil, malformed("description required")
	}

	payerID := strings.TrimSpace(msg.PaidByUserID)
	if payerID == "" {
		payerID = caller.ID
	}

	splits, err := expenseSplits(msg, payerID)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		Description:  strings.TrimSpace(msg.Description),
		Amount:       msg.Amount,
		Category:     strings.TrimSpace(msg.Category),
		Date:         msg.Date,
		PaidByUserID: payerID,
		GroupID:      strings.TrimSpace(msg.GroupID),
		Splits:       splits,
		CreatedBy:    caller.ID,
	}
	if expense.Date.IsZero() {
		expense.Date = s.now()
	}
	if err := ledger.ValidateExpense(expense); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	involved := []string{payerID}
	for _, sp := range splits {
		involved = append(involved, sp.UserID)
	}

	if expense.GroupID != "" {
		group, err := s.memberGroup(ctx, expense.GroupID, caller.ID)
		if err != nil {
			return nil, err
		}
		for _, id := range involved {
			if !group.HasMember(id) {
				return nil, malformed("user %s is not a member of the group", id)
			}
		}
	} else {
		if !expense.Involves(caller.ID) {
			return nil, connect.NewError(connect.CodePermissionDenied,
				errors.New("personal expenses must involve the caller"))
		}
		if _, err := s.requireUsers(ctx, distinct(involved)); err != nil {
			return nil, err
		}
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, storeError(s.logger, "CreateExpense", err)
	}

	s.logger.Info("Expense created", "expense_id", expense.ID, "amount", expense.Amount.String())
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// CreateSettlement records a repayment the caller made or received.
func (s *RecordService) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	caller, err := resolveSubject(ctx, s.identity, s.logger)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	s.logger.Info("CreateSettlement request received",
		"received_by", msg.ReceivedByUserID,
		"group_id", msg.GroupID,
	)

	settlement := &models.Settlement{
		Amount:           msg.Amount,
		Note:             strings.TrimSpace(msg.Note),
		Date:             msg.Date,
		PaidByUserID:     strings.TrimSpace(msg.PaidByUserID),
		ReceivedByUserID: strings.TrimSpace(msg.ReceivedByUserID),
		GroupID:          strings.TrimSpace(msg.GroupID),
		CreatedBy:        caller.ID,
	}
	if settlement.PaidByUserID == "" {
		settlement.PaidByUserID = caller.ID
	}
	if settlement.Date.IsZero() {
		settlement.Date = s.now()
	}
	if err := ledger.ValidateSettlement(settlement); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if !settlement.Involves(caller.ID) {
		return nil, connect.NewError(connect.CodePermissionDenied,
			errors.New("settlements must involve the caller"))
	}

	if settlement.GroupID != "" {
		group, err := s.memberGroup(ctx, settlement.GroupID, caller.ID)
		if err != nil {
			return nil, err
		}
		if other := settlement.Counterparty(caller.ID); !group.HasMember(other) {
			return nil, malformed("user %s is not a member of the group", other)
		}
	} else if _, err := s.requireUsers(ctx, []string{settlement.Counterparty(caller.ID)}); err != nil {
		return nil, err
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, storeError(s.logger, "CreateSettlement", err)
	}

	s.logger.Info("Settlement created", "settlement_id", settlement.ID, "amount", settlement.Amount.String())
	return connect.NewResponse(&api.CreateSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return ledger.SortedIDs(seen)
}
