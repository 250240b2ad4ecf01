package ledger

import (
	"sort"

	"expense-share-go/internal/models"
)

// EffectiveRole resolves what user may do on account. Non-members fall back to
// VIEWER; callers that must hide the account use IsVisible first.
func EffectiveRole(user *models.User, account *models.Account) models.Role {
	if user == nil || account == nil {
		return models.RoleViewer
	}
	if account.OwnerID == user.ID {
		return models.RoleOwner
	}
	if m, ok := account.Member(user.ID); ok {
		return m.Role
	}
	return models.RoleViewer
}

// CanWrite reports whether role may create and edit transactions and set their status.
func CanWrite(role models.Role) bool {
	return role == models.RoleOwner || role == models.RoleEditor
}

// CanManageMembers reports whether role may add, remove or re-role members.
func CanManageMembers(role models.Role) bool {
	return role == models.RoleOwner
}

// IsVisible reports whether user can see account at all.
func IsVisible(user *models.User, account *models.Account) bool {
	if user == nil || account == nil {
		return false
	}
	if user.IsAdmin || account.OwnerID == user.ID {
		return true
	}
	_, ok := account.Member(user.ID)
	return ok
}

// VisibleAccounts returns copies of the accounts user can see, oldest first.
func VisibleAccounts(s *State, user *models.User) []models.Account {
	out := []models.Account{}
	for i := range s.Accounts {
		if IsVisible(user, &s.Accounts[i]) {
			out = append(out, *cloneAccount(&s.Accounts[i]))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// accessAccount loads an account for actor, hiding accounts the actor cannot see.
func accessAccount(s *State, actorID, accountID string) (*models.User, *models.Account, models.Role, error) {
	actor, err := s.user(actorID)
	if err != nil {
		return nil, nil, "", err
	}
	acc := s.account(accountID)
	if acc == nil || !IsVisible(actor, acc) {
		return nil, nil, "", ErrAccountNotFound
	}
	return actor, acc, EffectiveRole(actor, acc), nil
}
