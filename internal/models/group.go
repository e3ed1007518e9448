package models

// Role is a member's role within a group.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// GroupMember is one membership entry of a group.
type GroupMember struct {
	UserID string
	Role   Role

	// JoinedAt is the Unix timestamp when the user joined.
	JoinedAt int64
}

// Group represents a fixed set of users sharing expenses.
// Membership is read as a snapshot; there is no invite workflow.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Work Lunch").
	Name string

	Description string

	// CreatedBy is the user ID of the group creator.
	CreatedBy string

	// Members lists every member with their role.
	Members []GroupMember

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether userID is a member of the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberIDs returns the user IDs of all members in membership order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}
