package ledger

import (
	"fmt"
	"strings"

	"expense-share-go/internal/models"
)

// CreateAccount opens a new account owned by actor.
func CreateAccount(s *State, actorID, name string) (*models.Account, error) {
	if _, err := s.user(actorID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: account name is required", ErrInvalidInput)
	}
	s.Accounts = append(s.Accounts, models.Account{
		ID:        newID(),
		Name:      name,
		OwnerID:   actorID,
		Members:   []models.AccountMember{},
		CreatedAt: now().UTC(),
	})
	return cloneAccount(&s.Accounts[len(s.Accounts)-1]), nil
}

// GetAccount returns the account together with actor's effective role on it.
func GetAccount(s *State, actorID, accountID string) (*models.Account, models.Role, error) {
	_, acc, role, err := accessAccount(s, actorID, accountID)
	if err != nil {
		return nil, "", err
	}
	return cloneAccount(acc), role, nil
}

// AddMember grants email access to the account. Unknown emails become
// password-less directory entries that can be claimed at registration.
func AddMember(s *State, actorID, accountID, email string, role models.Role) (*models.Account, *models.User, error) {
	_, acc, actorRole, err := accessAccount(s, actorID, accountID)
	if err != nil {
		return nil, nil, err
	}
	if !CanManageMembers(actorRole) {
		return nil, nil, ErrForbidden
	}
	if !role.MemberRole() {
		return nil, nil, ErrInvalidRole
	}
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return nil, nil, fmt.Errorf("%w: email is invalid", ErrInvalidInput)
	}

	invitee := s.userByEmail(email)
	if invitee != nil {
		if invitee.ID == acc.OwnerID {
			return nil, nil, ErrOwnerIsMember
		}
		if _, ok := acc.Member(invitee.ID); ok {
			return nil, nil, ErrAlreadyMember
		}
	} else {
		s.Users = append(s.Users, models.User{
			ID:    newID(),
			Name:  strings.SplitN(email, "@", 2)[0],
			Email: email,
		})
		invitee = &s.Users[len(s.Users)-1]
	}

	acc.Members = append(acc.Members, models.AccountMember{UserID: invitee.ID, Role: role})
	out, user := cloneAccount(acc), *invitee
	return out, &user, nil
}

// RemoveMember drops userID from the account's members.
func RemoveMember(s *State, actorID, accountID, userID string) (*models.Account, error) {
	_, acc, actorRole, err := accessAccount(s, actorID, accountID)
	if err != nil {
		return nil, err
	}
	if !CanManageMembers(actorRole) {
		return nil, ErrForbidden
	}
	for i, m := range acc.Members {
		if m.UserID == userID {
			acc.Members = append(acc.Members[:i], acc.Members[i+1:]...)
			return cloneAccount(acc), nil
		}
	}
	return nil, ErrMemberNotFound
}

// UpdateMemberRole changes the stored role of an existing member.
func UpdateMemberRole(s *State, actorID, accountID, userID string, role models.Role) (*models.Account, error) {
	_, acc, actorRole, err := accessAccount(s, actorID, accountID)
	if err != nil {
		return nil, err
	}
	if !CanManageMembers(actorRole) {
		return nil, ErrForbidden
	}
	if !role.MemberRole() {
		return nil, ErrInvalidRole
	}
	for i := range acc.Members {
		if acc.Members[i].UserID == userID {
			acc.Members[i].Role = role
			return cloneAccount(acc), nil
		}
	}
	return nil, ErrMemberNotFound
}

// cloneAccount copies acc so callers never alias the member slice in State.
func cloneAccount(acc *models.Account) *models.Account {
	out := *acc
	out.Members = append([]models.AccountMember{}, acc.Members...)
	return &out
}
