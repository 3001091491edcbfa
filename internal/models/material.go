package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Material is a line of an order's bill of materials. Owned by exactly one order.
type Material struct {
	ID            string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	OrderID       string    `json:"order_id" gorm:"type:varchar(36);not null;index"`
	ItemName      string    `json:"item_name" gorm:"not null"`
	Quantity      float64   `json:"quantity" gorm:"not null"`
	Unit          string    `json:"unit"`
	VendorID      *string   `json:"vendor_id" gorm:"type:varchar(36)"`
	EstimatedCost float64   `json:"estimated_cost" gorm:"not null;default:0"`
	ActualCost    *float64  `json:"actual_cost"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Vendor *Vendor `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
}

func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
