package repository

import (
	"context"
	"furniture_board/internal/models"

	"gorm.io/gorm"
)

type MaterialRepository interface {
	GetByOrderID(ctx context.Context, orderID string) ([]models.Material, error)
	ReplaceForOrder(ctx context.Context, orderID string, materials []models.Material) ([]models.Material, error)
}

type materialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) GetByOrderID(ctx context.Context, orderID string) ([]models.Material, error) {
	var materials []models.Material
	err := r.db.WithContext(ctx).Preload("Vendor").Where("order_id = ?", orderID).Order("created_at").Find(&materials).Error
	return materials, err
}

// ReplaceForOrder discards the order's material list and inserts the new one
// in a single batch.
func (r *materialRepository) ReplaceForOrder(ctx context.Context, orderID string, materials []models.Material) ([]models.Material, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.Material{}).Error; err != nil {
			return err
		}
		if len(materials) == 0 {
			return nil
		}
		rows := make([]models.Material, len(materials))
		for i, m := range materials {
			m.ID = ""
			m.OrderID = orderID
			m.Vendor = nil
			rows[i] = m
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByOrderID(ctx, orderID)
}
