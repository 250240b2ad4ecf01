package models

import (
	"time"
)

type TransactionType string

const (
	Credit TransactionType = "CREDIT"
	Debit  TransactionType = "DEBIT"
)

func (t TransactionType) Valid() bool { return t == Credit || t == Debit }

type PaymentMode string

const (
	Online PaymentMode = "ONLINE"
	Cash   PaymentMode = "CASH"
)

func (m PaymentMode) Valid() bool { return m == Online || m == Cash }

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// DateLayout is the layout of Transaction.Date. Charts bucket on exact string match.
const DateLayout = "2006-01-02"

type Transaction struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"accountId"`
	Amount      float64         `json:"amount"`
	Type        TransactionType `json:"type"`
	PaymentMode PaymentMode     `json:"paymentMode"`
	Comment     string          `json:"comment"`
	Date        string          `json:"date"`
	Status      Status          `json:"status"`
	CreatedBy   string          `json:"createdBy"`
	Comments    []Comment       `json:"comments"`
}

type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
