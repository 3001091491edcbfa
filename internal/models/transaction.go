package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionRevenue TransactionType = "revenue"
	TransactionExpense TransactionType = "expense"
)

// Transaction is a ledger entry against an order (revenue) or expense. Write-only.
type Transaction struct {
	ID              string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	Type            TransactionType `json:"type" gorm:"type:varchar(16);not null"`
	ReferenceID     string          `json:"reference_id" gorm:"type:varchar(36);not null;index"`
	Amount          float64         `json:"amount" gorm:"not null"`
	PaymentMethod   string          `json:"payment_method"`
	TransactionDate time.Time       `json:"transaction_date"`
	Notes           string          `json:"notes" gorm:"type:text"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.TransactionDate.IsZero() {
		t.TransactionDate = time.Now()
	}
	return nil
}
