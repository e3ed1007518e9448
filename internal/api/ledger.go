package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
)

const LedgerServiceName = "ledger.v1.LedgerService"

const (
	LedgerServiceGetPairwiseBalancesProcedure   = "/ledger.v1.LedgerService/GetPairwiseBalances"
	LedgerServiceGetGroupBalancesProcedure      = "/ledger.v1.LedgerService/GetGroupBalances"
	LedgerServiceGetYearTotalProcedure          = "/ledger.v1.LedgerService/GetYearTotal"
	LedgerServiceGetMonthlyTotalsProcedure      = "/ledger.v1.LedgerService/GetMonthlyTotals"
	LedgerServiceGetContactsProcedure           = "/ledger.v1.LedgerService/GetContacts"
	LedgerServiceGetGroupLedgerProcedure        = "/ledger.v1.LedgerService/GetGroupLedger"
	LedgerServiceGetCounterpartHistoryProcedure = "/ledger.v1.LedgerService/GetCounterpartHistory"
)

type GetPairwiseBalancesRequest struct{}

type GetPairwiseBalancesResponse struct {
	YouOwe       decimal.Decimal `json:"you_owe"`
	YouAreOwed   decimal.Decimal `json:"you_are_owed"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	OweDetails   OweDetails      `json:"owe_details"`
}

type GetGroupBalancesRequest struct{}

type GetGroupBalancesResponse struct {
	Groups []GroupBalance `json:"groups"`
}

// GetYearTotalRequest asks for a calendar year; zero means the current year.
type GetYearTotalRequest struct {
	Year int `json:"year,omitempty"`
}

type GetYearTotalResponse struct {
	Year  int             `json:"year"`
	Total decimal.Decimal `json:"total"`
}

type GetMonthlyTotalsRequest struct {
	Year int `json:"year,omitempty"`
}

type GetMonthlyTotalsResponse struct {
	Year   int          `json:"year"`
	Months []MonthTotal `json:"months"`
}

type GetContactsRequest struct{}

type GetContactsResponse struct {
	Users  []User         `json:"users"`
	Groups []ContactGroup `json:"groups"`
}

type GetGroupLedgerRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupLedgerResponse struct {
	Group     Group           `json:"group"`
	Members   []MemberBalance `json:"members"`
	Transfers []Transfer      `json:"transfers"`
}

type GetCounterpartHistoryRequest struct {
	UserID string `json:"user_id"`
}

type GetCounterpartHistoryResponse struct {
	Counterpart User            `json:"counterpart"`
	Balance     decimal.Decimal `json:"balance"`
	Expenses    []Expense       `json:"expenses"`
	Settlements []Settlement    `json:"settlements"`
}

// LedgerServiceHandler serves the derived balance views of the calling user.
type LedgerServiceHandler interface {
	GetPairwiseBalances(context.Context, *connect.Request[GetPairwiseBalancesRequest]) (*connect.Response[GetPairwiseBalancesResponse], error)
	GetGroupBalances(context.Context, *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error)
	GetYearTotal(context.Context, *connect.Request[GetYearTotalRequest]) (*connect.Response[GetYearTotalResponse], error)
	GetMonthlyTotals(context.Context, *connect.Request[GetMonthlyTotalsRequest]) (*connect.Response[GetMonthlyTotalsResponse], error)
	GetContacts(context.Context, *connect.Request[GetContactsRequest]) (*connect.Response[GetContactsResponse], error)
	GetGroupLedger(context.Context, *connect.Request[GetGroupLedgerRequest]) (*connect.Response[GetGroupLedgerResponse], error)
	GetCounterpartHistory(context.Context, *connect.Request[GetCounterpartHistoryRequest]) (*connect.Response[GetCounterpartHistoryResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return serviceHandler(LedgerServiceName, map[string]http.Handler{
		LedgerServiceGetPairwiseBalancesProcedure:   connect.NewUnaryHandler(LedgerServiceGetPairwiseBalancesProcedure, svc.GetPairwiseBalances, opts...),
		LedgerServiceGetGroupBalancesProcedure:      connect.NewUnaryHandler(LedgerServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...),
		LedgerServiceGetYearTotalProcedure:          connect.NewUnaryHandler(LedgerServiceGetYearTotalProcedure, svc.GetYearTotal, opts...),
		LedgerServiceGetMonthlyTotalsProcedure:      connect.NewUnaryHandler(LedgerServiceGetMonthlyTotalsProcedure, svc.GetMonthlyTotals, opts...),
		LedgerServiceGetContactsProcedure:           connect.NewUnaryHandler(LedgerServiceGetContactsProcedure, svc.GetContacts, opts...),
		LedgerServiceGetGroupLedgerProcedure:        connect.NewUnaryHandler(LedgerServiceGetGroupLedgerProcedure, svc.GetGroupLedger, opts...),
		LedgerServiceGetCounterpartHistoryProcedure: connect.NewUnaryHandler(LedgerServiceGetCounterpartHistoryProcedure, svc.GetCounterpartHistory, opts...),
	})
}

// LedgerServiceClient calls a remote LedgerService.
type LedgerServiceClient interface {
	GetPairwiseBalances(context.Context, *connect.Request[GetPairwiseBalancesRequest]) (*connect.Response[GetPairwiseBalancesResponse], error)
	GetGroupBalances(context.Context, *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error)
	GetYearTotal(context.Context, *connect.Request[GetYearTotalRequest]) (*connect.Response[GetYearTotalResponse], error)
	GetMonthlyTotals(context.Context, *connect.Request[GetMonthlyTotalsRequest]) (*connect.Response[GetMonthlyTotalsResponse], error)
	GetContacts(context.Context, *connect.Request[GetContactsRequest]) (*connect.Response[GetContactsResponse], error)
	GetGroupLedger(context.Context, *connect.Request[GetGroupLedgerRequest]) (*connect.Response[GetGroupLedgerResponse], error)
	GetCounterpartHistory(context.Context, *connect.Request[GetCounterpartHistoryRequest]) (*connect.Response[GetCounterpartHistoryResponse], error)
}

// NewLedgerServiceClient returns a client for the LedgerService at baseURL.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	opts = clientOptions(opts)
	return &ledgerServiceClient{
		getPairwiseBalances:   connect.NewClient[GetPairwiseBalancesRequest, GetPairwiseBalancesResponse](httpClient, baseURL+LedgerServiceGetPairwiseBalancesProcedure, opts...),
		getGroupBalances:      connect.NewClient[GetGroupBalancesRequest, GetGroupBalancesResponse](httpClient, baseURL+LedgerServiceGetGroupBalancesProcedure, opts...),
		getYearTotal:          connect.NewClient[GetYearTotalRequest, GetYearTotalResponse](httpClient, baseURL+LedgerServiceGetYearTotalProcedure, opts...),
		getMonthlyTotals:      connect.NewClient[GetMonthlyTotalsRequest, GetMonthlyTotalsResponse](httpClient, baseURL+LedgerServiceGetMonthlyTotalsProcedure, opts...),
		getContacts:           connect.NewClient[GetContactsRequest, GetContactsResponse](httpClient, baseURL+LedgerServiceGetContactsProcedure, opts...),
		getGroupLedger:        connect.NewClient[GetGroupLedgerRequest, GetGroupLedgerResponse](httpClient, baseURL+LedgerServiceGetGroupLedgerProcedure, opts...),
		getCounterpartHistory: connect.NewClient[GetCounterpartHistoryRequest, GetCounterpartHistoryResponse](httpClient, baseURL+LedgerServiceGetCounterpartHistoryProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	getPairwiseBalances   *connect.Client[GetPairwiseBalancesRequest, GetPairwiseBalancesResponse]
	getGroupBalances      *connect.Client[GetGroupBalancesRequest, GetGroupBalancesResponse]
	getYearTotal          *connect.Client[GetYearTotalRequest, GetYearTotalResponse]
	getMonthlyTotals      *connect.Client[GetMonthlyTotalsRequest, GetMonthlyTotalsResponse]
	getContacts           *connect.Client[GetContactsRequest, GetContactsResponse]
	getGroupLedger        *connect.Client[GetGroupLedgerRequest, GetGroupLedgerResponse]
	getCounterpartHistory *connect.Client[GetCounterpartHistoryRequest, GetCounterpartHistoryResponse]
}

func (c *ledgerServiceClient) GetPairwiseBalances(ctx context.Context, req *connect.Request[GetPairwiseBalancesRequest]) (*connect.Response[GetPairwiseBalancesResponse], error) {
	return c.getPairwiseBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetYearTotal(ctx context.Context, req *connect.Request[GetYearTotalRequest]) (*connect.Response[GetYearTotalResponse], error) {
	return c.getYearTotal.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetMonthlyTotals(ctx context.Context, req *connect.Request[GetMonthlyTotalsRequest]) (*connect.Response[GetMonthlyTotalsResponse], error) {
	return c.getMonthlyTotals.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetContacts(ctx context.Context, req *connect.Request[GetContactsRequest]) (*connect.Response[GetContactsResponse], error) {
	return c.getContacts.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetGroupLedger(ctx context.Context, req *connect.Request[GetGroupLedgerRequest]) (*connect.Response[GetGroupLedgerResponse], error) {
	return c.getGroupLedger.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetCounterpartHistory(ctx context.Context, req *connect.Request[GetCounterpartHistoryRequest]) (*connect.Response[GetCounterpartHistoryResponse], error) {
	return c.getCounterpartHistory.CallUnary(ctx, req)
}
