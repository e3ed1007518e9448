package api

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
)

const RecordServiceName = "records.v1.RecordService"

const (
	RecordServiceCreateGroupProcedure      = "/records.v1.RecordService/CreateGroup"
	RecordServiceCreateExpenseProcedure    = "/records.v1.RecordService/CreateExpense"
	RecordServiceCreateSettlementProcedure = "/records.v1.RecordService/CreateSettlement"
)

// CreateGroupRequest creates a group administered by the caller. The caller is
// always a member; MemberIDs lists everyone else.
type CreateGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	MemberIDs   []string `json:"member_ids"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
}

// CreateExpenseRequest records an expense. Either Splits or Itemized must be set.
// A zero Date means now; an empty PaidByUserID means the caller.
type CreateExpenseRequest struct {
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category,omitempty"`
	Date         time.Time       `json:"date"`
	PaidByUserID string          `json:"paid_by_user_id,omitempty"`
	GroupID      string          `json:"group_id,omitempty"`
	Splits       []Split         `json:"splits,omitempty"`
	Itemized     *Itemized       `json:"itemized,omitempty"`
}

type CreateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

// CreateSettlementRequest records a repayment. An empty PaidByUserID means the caller.
type CreateSettlementRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	Note             string          `json:"note,omitempty"`
	Date             time.Time       `json:"date"`
	PaidByUserID     string          `json:"paid_by_user_id,omitempty"`
	ReceivedByUserID string          `json:"received_by_user_id"`
	GroupID          string          `json:"group_id,omitempty"`
}

type CreateSettlementResponse struct {
	Settlement Settlement `json:"settlement"`
}

// RecordServiceHandler writes the records the ledger reads.
type RecordServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error)
	CreateSettlement(context.Context, *connect.Request[CreateSettlementRequest]) (*connect.Response[CreateSettlementResponse], error)
}

// NewRecordServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewRecordServiceHandler(svc RecordServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return serviceHandler(RecordServiceName, map[string]http.Handler{
		RecordServiceCreateGroupProcedure:      connect.NewUnaryHandler(RecordServiceCreateGroupProcedure, svc.CreateGroup, opts...),
		RecordServiceCreateExpenseProcedure:    connect.NewUnaryHandler(RecordServiceCreateExpenseProcedure, svc.CreateExpense, opts...),
		RecordServiceCreateSettlementProcedure: connect.NewUnaryHandler(RecordServiceCreateSettlementProcedure, svc.CreateSettlement, opts...),
	})
}

// RecordServiceClient calls a remote RecordService.
type RecordServiceClient interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error)
	CreateSettlement(context.Context, *connect.Request[CreateSettlementRequest]) (*connect.Response[CreateSettlementResponse], error)
}

// NewRecordServiceClient returns a client for the RecordService at baseURL.
func NewRecordServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) RecordServiceClient {
	opts = clientOptions(opts)
	return &recordServiceClient{
		createGroup:      connect.NewClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL+RecordServiceCreateGroupProcedure, opts...),
		createExpense:    connect.NewClient[CreateExpenseRequest, CreateExpenseResponse](httpClient, baseURL+RecordServiceCreateExpenseProcedure, opts...),
		createSettlement: connect.NewClient[CreateSettlementRequest, CreateSettlementResponse](httpClient, baseURL+RecordServiceCreateSettlementProcedure, opts...),
	}
}

type recordServiceClient struct {
	createGroup      *connect.Client[CreateGroupRequest, CreateGroupResponse]
	createExpense    *connect.Client[CreateExpenseRequest, CreateExpenseResponse]
	createSettlement *connect.Client[CreateSettlementRequest, CreateSettlementResponse]
}

func (c *recordServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *recordServiceClient) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *recordServiceClient) CreateSettlement(ctx context.Context, req *connect.Request[CreateSettlementRequest]) (*connect.Response[CreateSettlementResponse], error) {
	return c.createSettlement.CallUnary(ctx, req)
}
