package repository

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// Repositories groups every table accessor behind one handle.
type Repositories struct {
	Customers    CustomerRepository
	Vendors      VendorRepository
	Orders       OrderRepository
	Materials    MaterialRepository
	Expenses     ExpenseRepository
	Transactions TransactionRepository
	Financial    FinancialRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Customers:    NewCustomerRepository(db),
		Vendors:      NewVendorRepository(db),
		Orders:       NewOrderRepository(db),
		Materials:    NewMaterialRepository(db),
		Expenses:     NewExpenseRepository(db),
		Transactions: NewTransactionRepository(db),
		Financial:    NewFinancialRepository(db),
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
