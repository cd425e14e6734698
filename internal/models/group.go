package models

// Group is a household whose members share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Flat 3B").
	Name string

	// Members lists the group's members in the order they joined.
	Members []Member

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member is one participant in a group.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// GroupID is the group this member belongs to.
	GroupID string

	// DisplayName is how the member is shown within the group.
	DisplayName string

	// UserID links the member to an account. Empty for members without one.
	UserID string

	// CreatedAt is the Unix timestamp when the member joined.
	CreatedAt int64
}

// HasMember reports whether memberID belongs to the group.
func (g *Group) HasMember(memberID string) bool {
	for _, m := range g.Members {
		if m.ID == memberID {
			return true
		}
	}
	return false
}

// MemberForUser returns the member linked to userID, or nil.
func (g *Group) MemberForUser(userID string) *Member {
	for i := range g.Members {
		if g.Members[i].UserID != "" && g.Members[i].UserID == userID {
			return &g.Members[i]
		}
	}
	return nil
}
