package models

import (
	"time"
)

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

// MemberRole reports whether r can be stored on an AccountMember.
// OWNER is never stored, it is derived from Account.OwnerID.
func (r Role) MemberRole() bool {
	return r == RoleEditor || r == RoleViewer
}

type AccountMember struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

type Account struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	OwnerID   string          `json:"ownerId"`
	Members   []AccountMember `json:"members"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Member returns the membership entry for userID, if any.
func (a *Account) Member(userID string) (AccountMember, bool) {
	for _, m := range a.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return AccountMember{}, false
}
