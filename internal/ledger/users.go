package ledger

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"expense-share-go/internal/models"
)

var bcryptCost = bcrypt.DefaultCost

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Admin           bool
}

// Register adds a user to the directory and makes it the current user. A
// placeholder left behind by an invitation is claimed in place so its
// memberships carry over.
func Register(s *State, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is invalid", ErrInvalidInput)
	}
	if in.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	existing := s.userByEmail(email)
	if existing != nil && existing.Password != "" {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var user *models.User
	if existing != nil {
		existing.Name = name
		existing.Password = string(hash)
		existing.IsAdmin = existing.IsAdmin || in.Admin
		user = existing
	} else {
		s.Users = append(s.Users, models.User{
			ID:       newID(),
			Name:     name,
			Email:    email,
			Password: string(hash),
			IsAdmin:  in.Admin,
		})
		user = &s.Users[len(s.Users)-1]
	}

	current := *user
	s.CurrentUser = &current
	return &current, nil
}

// Login checks credentials and records the current user.
func Login(s *State, email, password string) (*models.User, error) {
	user := s.userByEmail(email)
	if user == nil || user.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}
	current := *user
	s.CurrentUser = &current
	return &current, nil
}

func Logout(s *State) {
	s.CurrentUser = nil
}

// Directory lists the users actor may see: everyone for admins, otherwise the
// actor plus owners and members of accounts visible to the actor.
func Directory(s *State, actorID string) ([]models.PublicUser, error) {
	actor, err := s.user(actorID)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{actor.ID: true}
	if !actor.IsAdmin {
		for _, acc := range VisibleAccounts(s, actor) {
			seen[acc.OwnerID] = true
			for _, m := range acc.Members {
				seen[m.UserID] = true
			}
		}
	}
	out := []models.PublicUser{}
	for _, u := range s.Users {
		if actor.IsAdmin || seen[u.ID] {
			out = append(out, u.Public())
		}
	}
	return out, nil
}
