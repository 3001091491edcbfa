package repository

import (
	"context"
	"furniture_board/internal/models"

	"gorm.io/gorm"
)

type VendorRepository interface {
	Create(ctx context.Context, vendor *models.Vendor) error
	GetAll(ctx context.Context) ([]models.Vendor, error)
}

type vendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) VendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) Create(ctx context.Context, vendor *models.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

func (r *vendorRepository) GetAll(ctx context.Context) ([]models.Vendor, error) {
	var vendors []models.Vendor
	err := r.db.WithContext(ctx).Order("name").Find(&vendors).Error
	return vendors, err
}
