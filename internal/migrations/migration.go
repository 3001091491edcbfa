package migrations

import (
	"context"
	"furniture_board/internal/models"
	"furniture_board/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Customer{},
		&models.Vendor{},
		&models.CustomerOrder{},
		&models.Material{},
		&models.Expense{},
		&models.ExpenseItem{},
		&models.Transaction{},
	}
}

// RunMigrations brings the schema up to date. Existing rows are kept.
func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Info("Running database migrations")
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	log.Info("Database migrations completed")
	return nil
}

// SeedDirectory inserts a few customers and vendors into an empty database
// so a fresh board has names to reuse in the quick-add dialogs.
func SeedDirectory(ctx context.Context, db *gorm.DB, log *zap.Logger, paymentTerms int) error {
	repos := repository.NewRepositories(db)

	customers, err := repos.Customers.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(customers) == 0 {
		for _, name := range []string{"Walk-in Customer", "Sharma Interiors"} {
			if err := repos.Customers.Create(ctx, &models.Customer{Name: name}); err != nil {
				return err
			}
		}
		log.Info("Seeded default customers")
	}

	vendors, err := repos.Vendors.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(vendors) == 0 {
		for _, name := range []string{"Local Timber Depot", "Hardware Mart"} {
			v := &models.Vendor{Name: name, PaymentTerms: paymentTerms}
			if err := repos.Vendors.Create(ctx, v); err != nil {
				return err
			}
		}
		log.Info("Seeded default vendors")
	}

	return nil
}
