package ledger

import (
	"sort"

	"github.com/mmynk/splitledger/internal/models"
)

// ContactGroup is the listing projection of a group.
type ContactGroup struct {
	ID          string
	Name        string
	Description string
	MemberCount int
}

// ContactBook lists everyone and every group the subject has a financial relationship with.
type ContactBook struct {
	Users  []*models.User
	Groups []ContactGroup
}

// CounterpartIDs returns the set of users the subject shares personal expenses with:
// the payer and every split participant of each personal expense the subject paid or has
// a split in. The subject itself is never included.
func CounterpartIDs(subjectID string, expenses []models.Expense) map[string]struct{} {
	ids := make(map[string]struct{})
	for i := range expenses {
		e := &expenses[i]
		if !e.IsPersonal() {
			continue
		}
		if _, ok := e.SplitFor(subjectID); !ok && e.PaidByUserID != subjectID {
			continue
		}
		if e.PaidByUserID != subjectID {
			ids[e.PaidByUserID] = struct{}{}
		}
		for _, split := range e.Splits {
			if split.UserID != subjectID {
				ids[split.UserID] = struct{}{}
			}
		}
	}
	return ids
}

// SortedIDs returns the members of set in ascending order.
func SortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Contacts builds the subject's contact book.
//
// users maps counterpart IDs to their records; counterparts missing from it are dropped
// without error. groups may contain groups the subject is not in; those are skipped.
// Both lists are sorted by name, then ID.
func Contacts(subjectID string, expenses []models.Expense, users map[string]*models.User, groups []*models.Group) ContactBook {
	book := ContactBook{
		Users:  []*models.User{},
		Groups: []ContactGroup{},
	}

	for id := range CounterpartIDs(subjectID, expenses) {
		if u, ok := users[id]; ok && u != nil {
			book.Users = append(book.Users, u)
		}
	}

	for _, g := range groups {
		if g == nil || !g.HasMember(subjectID) {
			continue
		}
		book.Groups = append(book.Groups, ContactGroup{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			MemberCount: len(g.Members),
		})
	}

	sort.SliceStable(book.Users, func(i, j int) bool {
		if book.Users[i].Name != book.Users[j].Name {
			return book.Users[i].Name < book.Users[j].Name
		}
		return book.Users[i].ID < book.Users[j].ID
	})
	sort.SliceStable(book.Groups, func(i, j int) bool {
		if book.Groups[i].Name != book.Groups[j].Name {
			return book.Groups[i].Name < book.Groups[j].Name
		}
		return book.Groups[i].ID < book.Groups[j].ID
	})

	return book
}
