package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerOrder struct {
	ID              string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	CustomerID      *string    `json:"customer_id" gorm:"type:varchar(36);index"`
	OrderNumber     string     `json:"order_number" gorm:"uniqueIndex;not null"`
	Stage           OrderStage `json:"stage" gorm:"type:varchar(32);not null;default:'Quotations'"`
	QuoteAmount     float64    `json:"quote_amount" gorm:"not null;default:0"`
	FinalPrice      *float64   `json:"final_price"`
	Advance         float64    `json:"advance" gorm:"not null;default:0"`
	Outstanding     float64    `json:"outstanding" gorm:"not null;default:0"`
	PrimaryVendorID *string    `json:"primary_vendor_id" gorm:"type:varchar(36)"`
	StartedAt       time.Time  `json:"started_at"`
	DueAt           *time.Time `json:"due_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	DeliveredAt     *time.Time `json:"delivered_at"`
	PaidAt          *time.Time `json:"paid_at"`
	Notes           string     `json:"notes" gorm:"type:text"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Customer      *Customer  `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	PrimaryVendor *Vendor    `json:"primary_vendor,omitempty" gorm:"foreignKey:PrimaryVendorID"`
	Materials     []Material `json:"materials" gorm:"foreignKey:OrderID"`
}

func (CustomerOrder) TableName() string {
	return "customer_orders"
}

func (o *CustomerOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

// OrderEditableFields are the columns an order edit may touch.
var OrderEditableFields = FieldSet{
	"customer_id":       {},
	"quote_amount":      {},
	"final_price":       {},
	"advance":           {},
	"primary_vendor_id": {},
	"stage":             {},
	"started_at":        {},
	"due_at":            {},
	"completed_at":      {},
	"delivered_at":      {},
	"paid_at":           {},
	"notes":             {},
}

// OrderFinancialFields trigger a metrics refresh when edited.
var OrderFinancialFields = FieldSet{
	"advance":     {},
	"final_price": {},
	"stage":       {},
}
