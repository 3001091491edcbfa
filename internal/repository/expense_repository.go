package repository

import (
	"context"
	"furniture_board/internal/models"
	"time"

	"gorm.io/gorm"
)

type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, id string) (*models.Expense, error)
	GetAll(ctx context.Context) ([]models.Expense, error)
	Update(ctx context.Context, id string, fields models.Fields) (*models.Expense, error)
	ReplaceItems(ctx context.Context, expenseID string, items []models.ExpenseItem) ([]models.ExpenseItem, error)
}

type expenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

// withExpenseRelations joins the vendor, a summary of the order served
// (number and customer) and the line items.
func withExpenseRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Vendor").
		Preload("ForOrder", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "order_number", "customer_id")
		}).
		Preload("ForOrder.Customer", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
		Preload("ExpenseItems", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") })
}

func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Omit("Vendor", "ForOrder", "ExpenseItems").Create(expense).Error
}

func (r *expenseRepository) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	var expense models.Expense
	err := withExpenseRelations(r.db.WithContext(ctx)).First(&expense, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &expense, nil
}

func (r *expenseRepository) GetAll(ctx context.Context) ([]models.Expense, error) {
	var expenses []models.Expense
	err := withExpenseRelations(r.db.WithContext(ctx)).Order("created_at DESC").Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepository) Update(ctx context.Context, id string, fields models.Fields) (*models.Expense, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Expense
		if err := tx.First(&current, "id = ?", id).Error; err != nil {
			return notFound(err)
		}

		updates := make(map[string]interface{}, len(fields)+1)
		for k, v := range fields {
			updates[k] = v
		}
		if stage, ok := fields["stage"]; ok && models.ExpenseStage(stageName(stage)) == models.StageExpensePaid {
			if _, explicit := updates["paid_at"]; !explicit && current.PaidAt == nil {
				updates["paid_at"] = time.Now()
			}
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&current).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// ReplaceItems discards the expense's line items and inserts the new set.
func (r *expenseRepository) ReplaceItems(ctx context.Context, expenseID string, items []models.ExpenseItem) ([]models.ExpenseItem, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expense_id = ?", expenseID).Delete(&models.ExpenseItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		rows := make([]models.ExpenseItem, len(items))
		for i, item := range items {
			item.ID = ""
			item.ExpenseID = expenseID
			rows[i] = item
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	var saved []models.ExpenseItem
	err = r.db.WithContext(ctx).Where("expense_id = ?", expenseID).Order("created_at").Find(&saved).Error
	return saved, err
}
