package repository

import (
	"context"
	"furniture_board/internal/models"

	"gorm.io/gorm"
)

// FinancialRepository reads the narrow projections the metrics need.
type FinancialRepository interface {
	OrderFigures(ctx context.Context) ([]models.CustomerOrder, error)
	ExpenseFigures(ctx context.Context) ([]models.Expense, error)
}

type financialRepository struct {
	db *gorm.DB
}

func NewFinancialRepository(db *gorm.DB) FinancialRepository {
	return &financialRepository{db: db}
}

func (r *financialRepository) OrderFigures(ctx context.Context) ([]models.CustomerOrder, error) {
	var orders []models.CustomerOrder
	err := r.db.WithContext(ctx).Model(&models.CustomerOrder{}).
		Select("stage", "advance", "final_price").
		Find(&orders).Error
	return orders, err
}

func (r *financialRepository) ExpenseFigures(ctx context.Context) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.WithContext(ctx).Model(&models.Expense{}).
		Select("stage", "bill_amount").
		Find(&expenses).Error
	return expenses, err
}
