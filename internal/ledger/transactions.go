package ledger

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"expense-share-go/internal/models"
)

// TransactionInput carries the content fields of a transaction. Status,
// ownership and comments are never taken from callers.
type TransactionInput struct {
	Amount      float64
	Type        models.TransactionType
	PaymentMode models.PaymentMode
	Comment     string
	Date        string
}

func (in *TransactionInput) normalize() error {
	in.Type = models.TransactionType(strings.ToUpper(strings.TrimSpace(string(in.Type))))
	in.PaymentMode = models.PaymentMode(strings.ToUpper(strings.TrimSpace(string(in.PaymentMode))))
	in.Comment = strings.TrimSpace(in.Comment)
	in.Date = strings.TrimSpace(in.Date)

	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: type must be CREDIT or DEBIT", ErrInvalidInput)
	}
	if !in.PaymentMode.Valid() {
		return fmt.Errorf("%w: payment mode must be ONLINE or CASH", ErrInvalidInput)
	}
	if _, err := time.Parse(models.DateLayout, in.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return nil
}

// CreateTransaction records a new PENDING entry on the account.
func CreateTransaction(s *State, actorID, accountID string, in TransactionInput) (*models.Transaction, error) {
	_, _, role, err := accessAccount(s, actorID, accountID)
	if err != nil {
		return nil, err
	}
	if !CanWrite(role) {
		return nil, ErrForbidden
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	s.Transactions = append(s.Transactions, models.Transaction{
		ID:          newID(),
		AccountID:   accountID,
		Amount:      in.Amount,
		Type:        in.Type,
		PaymentMode: in.PaymentMode,
		Comment:     in.Comment,
		Date:        in.Date,
		Status:      models.StatusPending,
		CreatedBy:   actorID,
		Comments:    []models.Comment{},
	})
	return cloneTransaction(&s.Transactions[len(s.Transactions)-1]), nil
}

// EditTransaction replaces the content fields and sends the entry back to PENDING.
func EditTransaction(s *State, actorID, txID string, in TransactionInput) (*models.Transaction, error) {
	tx, role, err := accessTransaction(s, actorID, txID)
	if err != nil {
		return nil, err
	}
	if !CanWrite(role) {
		return nil, ErrForbidden
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	tx.Amount = in.Amount
	tx.Type = in.Type
	tx.PaymentMode = in.PaymentMode
	tx.Comment = in.Comment
	tx.Date = in.Date
	tx.Status = models.StatusPending
	return cloneTransaction(tx), nil
}

// SetStatus approves or rejects a PENDING entry.
func SetStatus(s *State, actorID, txID string, status models.Status) (*models.Transaction, error) {
	tx, role, err := accessTransaction(s, actorID, txID)
	if err != nil {
		return nil, err
	}
	if !CanWrite(role) {
		return nil, ErrForbidden
	}
	if status != models.StatusApproved && status != models.StatusRejected {
		return nil, ErrInvalidStatus
	}
	if tx.Status != models.StatusPending {
		return nil, ErrNotPending
	}
	tx.Status = status
	return cloneTransaction(tx), nil
}

// AddComment appends to the entry's thread. Any user who can see the account may comment.
func AddComment(s *State, actorID, txID, text string) (*models.Transaction, error) {
	tx, _, err := accessTransaction(s, actorID, txID)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrInvalidInput)
	}
	actor, err := s.user(actorID)
	if err != nil {
		return nil, err
	}
	tx.Comments = append(tx.Comments, models.Comment{
		ID:        newID(),
		UserID:    actor.ID,
		UserName:  actor.Name,
		Text:      text,
		CreatedAt: now().UTC(),
	})
	return cloneTransaction(tx), nil
}

// GetTransaction returns the entry if actor can see its account.
func GetTransaction(s *State, actorID, txID string) (*models.Transaction, models.Role, error) {
	tx, role, err := accessTransaction(s, actorID, txID)
	if err != nil {
		return nil, "", err
	}
	return cloneTransaction(tx), role, nil
}

func accessTransaction(s *State, actorID, txID string) (*models.Transaction, models.Role, error) {
	tx := s.transaction(txID)
	if tx == nil {
		return nil, "", ErrTransactionNotFound
	}
	_, _, role, err := accessAccount(s, actorID, tx.AccountID)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, "", ErrTransactionNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return tx, role, nil
}

func cloneTransaction(tx *models.Transaction) *models.Transaction {
	out := *tx
	out.Comments = append([]models.Comment{}, tx.Comments...)
	return &out
}
