package board

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"furniture_board/internal/models"

	"github.com/go-playground/validator/v10"
)

// OrderForm is the quick-add order dialog.
type OrderForm struct {
	CustomerName string  `json:"customer_name" validate:"required"`
	QuoteAmount  float64 `json:"quote_amount" validate:"gt=0"`
	Notes        string  `json:"notes"`
}

// ExpenseForm is the quick-add expense dialog.
type ExpenseForm struct {
	VendorName string  `json:"vendor_name" validate:"required"`
	BillAmount float64 `json:"bill_amount" validate:"gt=0"`
	ForOrderID *string `json:"for_order_id"`
	Notes      string  `json:"notes"`
}

var formMessages = map[string]string{
	"CustomerName": "Please enter a customer name",
	"QuoteAmount":  "Please enter a valid quote amount",
	"VendorName":   "Please enter a vendor name",
	"BillAmount":   "Please enter a valid bill amount",
}

// Intake runs the two creation dialogs: validate, reuse or create the
// customer/vendor by name, then create the card.
type Intake struct {
	store        *Store
	validate     *validator.Validate
	paymentTerms int
}

func NewIntake(store *Store, paymentTerms int) *Intake {
	return &Intake{
		store:        store,
		validate:     validator.New(),
		paymentTerms: paymentTerms,
	}
}

func (in *Intake) CreateOrder(ctx context.Context, form OrderForm) (*models.CustomerOrder, error) {
	check := form
	check.CustomerName = strings.TrimSpace(form.CustomerName)
	if err := in.check(check); err != nil {
		return nil, err
	}

	customer, err := in.FindOrCreateCustomer(ctx, form.CustomerName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependentCreate, err)
	}

	return in.store.CreateOrder(ctx, NewOrder{
		CustomerID:  customer.ID,
		QuoteAmount: form.QuoteAmount,
		Notes:       strings.TrimSpace(form.Notes),
	})
}

func (in *Intake) CreateExpense(ctx context.Context, form ExpenseForm) (*models.Expense, error) {
	check := form
	check.VendorName = strings.TrimSpace(form.VendorName)
	if err := in.check(check); err != nil {
		return nil, err
	}

	vendor, err := in.FindOrCreateVendor(ctx, form.VendorName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependentCreate, err)
	}

	return in.store.CreateExpense(ctx, NewExpense{
		VendorID:   vendor.ID,
		BillAmount: form.BillAmount,
		ForOrderID: form.ForOrderID,
		Notes:      strings.TrimSpace(form.Notes),
	})
}

// FindOrCreateCustomer reuses a customer whose name matches exactly, ignoring
// case, and creates one otherwise. "Acme " and "Acme" are different names.
func (in *Intake) FindOrCreateCustomer(ctx context.Context, name string) (*models.Customer, error) {
	customer, _, err := in.RegisterCustomer(ctx, models.Customer{Name: name})
	return customer, err
}

// RegisterCustomer is FindOrCreateCustomer for a full record. The contact
// fields of an existing match are left as they are. Reports whether a new
// customer was created.
func (in *Intake) RegisterCustomer(ctx context.Context, customer models.Customer) (*models.Customer, bool, error) {
	if c, ok := in.store.FindCustomer(customer.Name); ok {
		return c, false, nil
	}
	customer.Name = strings.TrimSpace(customer.Name)
	created, err := in.store.CreateCustomer(ctx, customer)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// FindOrCreateVendor is FindOrCreateCustomer for vendors. New vendors get the
// default payment terms.
func (in *Intake) FindOrCreateVendor(ctx context.Context, name string) (*models.Vendor, error) {
	vendor, _, err := in.RegisterVendor(ctx, models.Vendor{Name: name}, nil)
	return vendor, err
}

// RegisterVendor is RegisterCustomer for vendors. A nil paymentTerms means
// the default.
func (in *Intake) RegisterVendor(ctx context.Context, vendor models.Vendor, paymentTerms *int) (*models.Vendor, bool, error) {
	if v, ok := in.store.FindVendor(vendor.Name); ok {
		return v, false, nil
	}
	vendor.Name = strings.TrimSpace(vendor.Name)
	vendor.PaymentTerms = in.paymentTerms
	if paymentTerms != nil {
		vendor.PaymentTerms = *paymentTerms
	}
	created, err := in.store.CreateVendor(ctx, vendor)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func (in *Intake) check(form interface{}) error {
	err := in.validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := formMessages[verrs[0].StructField()]; ok {
			return fmt.Errorf("%w: %s", ErrValidation, msg)
		}
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}
