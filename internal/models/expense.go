package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Expense struct {
	ID            string       `json:"id" gorm:"type:varchar(36);primaryKey"`
	VendorID      *string      `json:"vendor_id" gorm:"type:varchar(36);index"`
	ExpenseNumber string       `json:"expense_number" gorm:"uniqueIndex;not null"`
	Stage         ExpenseStage `json:"stage" gorm:"type:varchar(32);not null;default:'PO Sent'"`
	BillAmount    float64      `json:"bill_amount" gorm:"not null;default:0"`
	PaidAmount    float64      `json:"paid_amount" gorm:"not null;default:0"`
	ForOrderID    *string      `json:"for_order_id" gorm:"type:varchar(36);index"`
	OrderedAt     time.Time    `json:"ordered_at"`
	DueAt         *time.Time   `json:"due_at"`
	PaidAt        *time.Time   `json:"paid_at"`
	Notes         string       `json:"notes" gorm:"type:text"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	Vendor       *Vendor        `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	ForOrder     *CustomerOrder `json:"for_order,omitempty" gorm:"foreignKey:ForOrderID"`
	ExpenseItems []ExpenseItem  `json:"expense_items" gorm:"foreignKey:ExpenseID"`
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// ForOrderLabel is the order number an expense serves, or "General".
func (e *Expense) ForOrderLabel() string {
	if e.ForOrder == nil || e.ForOrder.OrderNumber == "" {
		return "General"
	}
	return e.ForOrder.OrderNumber
}

type ExpenseItem struct {
	ID         string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	ExpenseID  string    `json:"expense_id" gorm:"type:varchar(36);not null;index"`
	ItemName   string    `json:"item_name" gorm:"not null"`
	Quantity   *float64  `json:"quantity"`
	UnitPrice  *float64  `json:"unit_price"`
	TotalPrice *float64  `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}

func (i *ExpenseItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	if i.TotalPrice == nil && i.Quantity != nil && i.UnitPrice != nil {
		total := *i.Quantity * *i.UnitPrice
		i.TotalPrice = &total
	}
	return nil
}

var ExpenseEditableFields = FieldSet{
	"vendor_id":    {},
	"bill_amount":  {},
	"paid_amount":  {},
	"for_order_id": {},
	"stage":        {},
	"ordered_at":   {},
	"due_at":       {},
	"paid_at":      {},
	"notes":        {},
}

var ExpenseFinancialFields = FieldSet{
	"bill_amount": {},
	"stage":       {},
}
