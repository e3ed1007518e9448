package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amounts travel as decimal strings ("12.50") and dates as RFC 3339.

type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type Member struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joined_at"`
}

type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	CreatedBy   string   `json:"created_by"`
	CreatedAt   int64    `json:"created_at"`
	Members     []Member `json:"members"`
}

type Split struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
	Paid   bool            `json:"paid"`
}

type Expense struct {
	ID           string          `json:"id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category,omitempty"`
	Date         time.Time       `json:"date"`
	PaidByUserID string          `json:"paid_by_user_id"`
	GroupID      string          `json:"group_id,omitempty"`
	Splits       []Split         `json:"splits"`
}

type Settlement struct {
	ID               string          `json:"id"`
	Amount           decimal.Decimal `json:"amount"`
	Note             string          `json:"note,omitempty"`
	Date             time.Time       `json:"date"`
	PaidByUserID     string          `json:"paid_by_user_id"`
	ReceivedByUserID string          `json:"received_by_user_id"`
	GroupID          string          `json:"group_id,omitempty"`
}

// Debt is one counterparty line of a pairwise breakdown. Amount is always positive.
type Debt struct {
	UserID string          `json:"user_id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type OweDetails struct {
	YouOwe       []Debt `json:"you_owe"`
	YouAreOwedBy []Debt `json:"you_are_owed_by"`
}

type GroupBalance struct {
	Group
	Balance decimal.Decimal `json:"balance"`
}

type MonthTotal struct {
	Month time.Time       `json:"month"`
	Total decimal.Decimal `json:"total"`
}

type ContactGroup struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MemberCount int    `json:"member_count"`
}

type MemberBalance struct {
	UserID     string          `json:"user_id"`
	Name       string          `json:"name"`
	NetBalance decimal.Decimal `json:"net_balance"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	TotalOwed  decimal.Decimal `json:"total_owed"`
}

type Transfer struct {
	FromUserID string          `json:"from_user_id"`
	FromName   string          `json:"from_name"`
	ToUserID   string          `json:"to_user_id"`
	ToName     string          `json:"to_name"`
	Amount     decimal.Decimal `json:"amount"`
}

type Item struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	AssignedTo  []string        `json:"assigned_to"`
}

// Itemized describes a receipt whose tax and tip are shared in proportion to each
// participant's subtotal.
type Itemized struct {
	Items        []Item          `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Participants []string        `json:"participants"`
}
