package service

import (
	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
)

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}

// toAPICounterpart omits the email of someone other than the caller.
func toAPICounterpart(u *models.User) api.User {
	return api.User{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}

func toAPIGroup(g *models.Group, users map[string]*models.User) api.Group {
	members := make([]api.Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = api.Member{
			UserID:   m.UserID,
			Name:     ledger.DisplayName(users, m.UserID),
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt,
		}
	}
	return api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
		Members:     members,
	}
}

func toAPIExpense(e *models.Expense) api.Expense {
	splits := make([]api.Split, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = api.Split{UserID: s.UserID, Amount: s.Amount, Paid: s.Paid}
	}
	return api.Expense{
		ID:           e.ID,
		Description:  e.Description,
		Amount:       e.Amount,
		Category:     e.Category,
		Date:         e.Date,
		PaidByUserID: e.PaidByUserID,
		GroupID:      e.GroupID,
		Splits:       splits,
	}
}

func toAPISettlement(s *models.Settlement) api.Settlement {
	return api.Settlement{
		ID:               s.ID,
		Amount:           s.Amount,
		Note:             s.Note,
		Date:             s.Date,
		PaidByUserID:     s.PaidByUserID,
		ReceivedByUserID: s.ReceivedByUserID,
		GroupID:          s.GroupID,
	}
}

func toAPIDebts(debts []ledger.Debt) []api.Debt {
	out := make([]api.Debt, len(debts))
	for i, d := range debts {
		out[i] = api.Debt{UserID: d.UserID, Name: d.Name, Amount: d.Amount}
	}
	return out
}

// memberIDs collects the distinct member IDs of groups.
func memberIDs(groups []*models.Group) []string {
	seen := make(map[string]struct{})
	for _, g := range groups {
		for _, id := range g.MemberIDs() {
			seen[id] = struct{}{}
		}
	}
	return ledger.SortedIDs(seen)
}
