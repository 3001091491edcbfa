package repository

import (
	"context"
	"furniture_board/internal/metrics"
	"furniture_board/internal/models"
	"time"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.CustomerOrder) error
	GetByID(ctx context.Context, id string) (*models.CustomerOrder, error)
	GetAll(ctx context.Context) ([]models.CustomerOrder, error)
	Update(ctx context.Context, id string, fields models.Fields) (*models.CustomerOrder, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// withOrderRelations eagerly joins customer, primary vendor and materials
// (each with its vendor).
func withOrderRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Customer").
		Preload("PrimaryVendor").
		Preload("Materials", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		Preload("Materials.Vendor")
}

func (r *orderRepository) Create(ctx context.Context, order *models.CustomerOrder) error {
	return r.db.WithContext(ctx).Omit("Customer", "PrimaryVendor", "Materials").Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*models.CustomerOrder, error) {
	var order models.CustomerOrder
	err := withOrderRelations(r.db.WithContext(ctx)).First(&order, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (r *orderRepository) GetAll(ctx context.Context) ([]models.CustomerOrder, error) {
	var orders []models.CustomerOrder
	err := withOrderRelations(r.db.WithContext(ctx)).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// Update applies a partial edit, stamps lifecycle timestamps the edit reached
// and rewrites the stored outstanding amount, all in one transaction.
func (r *orderRepository) Update(ctx context.Context, id string, fields models.Fields) (*models.CustomerOrder, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.CustomerOrder
		if err := tx.First(&current, "id = ?", id).Error; err != nil {
			return notFound(err)
		}

		updates := make(map[string]interface{}, len(fields)+2)
		for k, v := range fields {
			updates[k] = v
		}
		if stage, ok := fields["stage"]; ok {
			stampOrderLifecycle(&current, stageName(stage), updates, time.Now())
		}

		if len(updates) > 0 {
			if err := tx.Model(&current).Updates(updates).Error; err != nil {
				return err
			}
		}

		// Reload so the outstanding figure is computed from stored values.
		var saved models.CustomerOrder
		if err := tx.First(&saved, "id = ?", id).Error; err != nil {
			return err
		}
		outstanding := metrics.Outstanding(saved.FinalPrice, saved.Advance, saved.Stage)
		return tx.Model(&saved).UpdateColumn("outstanding", outstanding).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func stampOrderLifecycle(current *models.CustomerOrder, stage string, updates map[string]interface{}, now time.Time) {
	var column string
	var reached *time.Time
	switch models.OrderStage(stage) {
	case models.StageCompleted:
		column, reached = "completed_at", current.CompletedAt
	case models.StageDelivered:
		column, reached = "delivered_at", current.DeliveredAt
	case models.StageOrderPaid:
		column, reached = "paid_at", current.PaidAt
	default:
		return
	}
	if _, explicit := updates[column]; explicit || reached != nil {
		return
	}
	updates[column] = now
}

func stageName(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case models.OrderStage:
		return string(s)
	case models.ExpenseStage:
		return string(s)
	}
	return ""
}
