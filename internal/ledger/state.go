// Package ledger holds the shared-account state tree and the handlers that
// mutate it. Handlers are plain functions over *State and do no I/O; callers
// serialize access and persist the result.
package ledger

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"expense-share-go/internal/models"
)

// State is the whole application state, mirrored to storage after every change.
type State struct {
	CurrentUser  *models.User
	Accounts     []models.Account
	Transactions []models.Transaction
	Users        []models.User
	Currency     string
}

var (
	now   = time.Now
	newID = func() string { return uuid.Must(uuid.NewV7()).String() }
)

func (s *State) user(id string) (*models.User, error) {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

// User returns a copy of the directory entry for id.
func (s *State) User(id string) (models.User, error) {
	u, err := s.user(id)
	if err != nil {
		return models.User{}, err
	}
	return *u, nil
}

func (s *State) userByEmail(email string) *models.User {
	email = normalizeEmail(email)
	for i := range s.Users {
		if normalizeEmail(s.Users[i].Email) == email {
			return &s.Users[i]
		}
	}
	return nil
}

func (s *State) account(id string) *models.Account {
	for i := range s.Accounts {
		if s.Accounts[i].ID == id {
			return &s.Accounts[i]
		}
	}
	return nil
}

func (s *State) transaction(id string) *models.Transaction {
	for i := range s.Transactions {
		if s.Transactions[i].ID == id {
			return &s.Transactions[i]
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// SetCurrency stores the display currency preference.
func SetCurrency(s *State, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !currencyRe.MatchString(code) {
		return ErrInvalidCurrency
	}
	s.Currency = code
	return nil
}
