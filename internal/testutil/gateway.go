package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"furniture_board/internal/metrics"
	"furniture_board/internal/models"
)

var ErrInjected = errors.New("injected failure")

// FakeGateway is an in-memory board gateway with error injection and call
// counters. Metrics are computed from what it stores.
type FakeGateway struct {
	mu sync.Mutex

	Customers []models.Customer
	Vendors   []models.Vendor
	Orders    []models.CustomerOrder
	Expenses  []models.Expense

	nextID int

	// Error injection
	ListOrdersErr     error
	ListExpensesErr   error
	ListCustomersErr  error
	ListVendorsErr    error
	MetricsErr        error
	CreateOrderErr    error
	CreateExpenseErr  error
	CreateCustomerErr error
	CreateVendorErr   error
	UpdateOrderErr    error
	UpdateExpenseErr  error
	MaterialsErr      error

	// Call counters
	MetricsCalls        int
	UpdateOrderCalls    int
	UpdateExpenseCalls  int
	CreateCustomerCalls int
	CreateVendorCalls   int
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

func (f *FakeGateway) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

// SeedOrder stores an order as if it had been created earlier.
func (f *FakeGateway) SeedOrder(order models.CustomerOrder) models.CustomerOrder {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order.ID == "" {
		order.ID = f.id("ord")
	}
	f.Orders = append(f.Orders, order)
	return order
}

func (f *FakeGateway) SeedExpense(expense models.Expense) models.Expense {
	f.mu.Lock()
	defer f.mu.Unlock()
	if expense.ID == "" {
		expense.ID = f.id("exp")
	}
	f.Expenses = append(f.Expenses, expense)
	return expense
}

func (f *FakeGateway) SeedCustomer(name string) models.Customer {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := models.Customer{ID: f.id("cust"), Name: name}
	f.Customers = append(f.Customers, c)
	return c
}

func (f *FakeGateway) SeedVendor(name string) models.Vendor {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := models.Vendor{ID: f.id("vend"), Name: name, PaymentTerms: 30}
	f.Vendors = append(f.Vendors, v)
	return v
}

func (f *FakeGateway) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListCustomersErr != nil {
		return nil, f.ListCustomersErr
	}
	return append([]models.Customer(nil), f.Customers...), nil
}

func (f *FakeGateway) CreateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCustomerCalls++
	if f.CreateCustomerErr != nil {
		return nil, f.CreateCustomerErr
	}
	c := *customer
	c.ID = f.id("cust")
	f.Customers = append(f.Customers, c)
	return &c, nil
}

func (f *FakeGateway) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListVendorsErr != nil {
		return nil, f.ListVendorsErr
	}
	return append([]models.Vendor(nil), f.Vendors...), nil
}

func (f *FakeGateway) CreateVendor(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateVendorCalls++
	if f.CreateVendorErr != nil {
		return nil, f.CreateVendorErr
	}
	v := *vendor
	v.ID = f.id("vend")
	f.Vendors = append(f.Vendors, v)
	return &v, nil
}

func (f *FakeGateway) ListOrders(ctx context.Context) ([]models.CustomerOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListOrdersErr != nil {
		return nil, f.ListOrdersErr
	}
	return append([]models.CustomerOrder(nil), f.Orders...), nil
}

func (f *FakeGateway) CreateOrder(ctx context.Context, order *models.CustomerOrder) (*models.CustomerOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateOrderErr != nil {
		return nil, f.CreateOrderErr
	}
	o := *order
	o.ID = f.id("ord")
	o.OrderNumber = fmt.Sprintf("ORD-%d", time.Now().UnixMilli())
	o.Outstanding = metrics.Outstanding(o.FinalPrice, o.Advance, o.Stage)
	o.Materials = []models.Material{}
	f.Orders = append([]models.CustomerOrder{o}, f.Orders...)
	return &o, nil
}

func (f *FakeGateway) UpdateOrder(ctx context.Context, id string, fields models.Fields) (*models.CustomerOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateOrderCalls++
	if f.UpdateOrderErr != nil {
		return nil, f.UpdateOrderErr
	}
	for i := range f.Orders {
		if f.Orders[i].ID != id {
			continue
		}
		o := &f.Orders[i]
		for k, v := range fields {
			switch k {
			case "stage":
				o.Stage = models.OrderStage(fmt.Sprint(v))
			case "advance":
				o.Advance = v.(float64)
			case "final_price":
				if v == nil {
					o.FinalPrice = nil
				} else {
					p := v.(float64)
					o.FinalPrice = &p
				}
			case "quote_amount":
				o.QuoteAmount = v.(float64)
			case "notes":
				o.Notes = fmt.Sprint(v)
			}
		}
		o.Outstanding = metrics.Outstanding(o.FinalPrice, o.Advance, o.Stage)
		out := *o
		return &out, nil
	}
	return nil, fmt.Errorf("order %s: record not found", id)
}

func (f *FakeGateway) ReplaceMaterials(ctx context.Context, orderID string, materials []models.Material) ([]models.Material, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MaterialsErr != nil {
		return nil, f.MaterialsErr
	}
	for i := range f.Orders {
		if f.Orders[i].ID != orderID {
			continue
		}
		saved := make([]models.Material, 0, len(materials))
		for _, m := range materials {
			m.ID = f.id("mat")
			m.OrderID = orderID
			saved = append(saved, m)
		}
		f.Orders[i].Materials = saved
		return append([]models.Material(nil), saved...), nil
	}
	return nil, fmt.Errorf("order %s: record not found", orderID)
}

func (f *FakeGateway) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListExpensesErr != nil {
		return nil, f.ListExpensesErr
	}
	return append([]models.Expense(nil), f.Expenses...), nil
}

func (f *FakeGateway) CreateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateExpenseErr != nil {
		return nil, f.CreateExpenseErr
	}
	e := *expense
	e.ID = f.id("exp")
	e.ExpenseNumber = fmt.Sprintf("PO-%d", time.Now().UnixMilli())
	e.ExpenseItems = []models.ExpenseItem{}
	f.Expenses = append([]models.Expense{e}, f.Expenses...)
	return &e, nil
}

func (f *FakeGateway) UpdateExpense(ctx context.Context, id string, fields models.Fields) (*models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateExpenseCalls++
	if f.UpdateExpenseErr != nil {
		return nil, f.UpdateExpenseErr
	}
	for i := range f.Expenses {
		if f.Expenses[i].ID != id {
			continue
		}
		e := &f.Expenses[i]
		for k, v := range fields {
			switch k {
			case "stage":
				e.Stage = models.ExpenseStage(fmt.Sprint(v))
			case "bill_amount":
				e.BillAmount = v.(float64)
			case "paid_amount":
				e.PaidAmount = v.(float64)
			case "notes":
				e.Notes = fmt.Sprint(v)
			}
		}
		out := *e
		return &out, nil
	}
	return nil, fmt.Errorf("expense %s: record not found", id)
}

func (f *FakeGateway) ReplaceExpenseItems(ctx context.Context, expenseID string, items []models.ExpenseItem) ([]models.ExpenseItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Expenses {
		if f.Expenses[i].ID != expenseID {
			continue
		}
		saved := make([]models.ExpenseItem, 0, len(items))
		for _, item := range items {
			item.ID = f.id("item")
			item.ExpenseID = expenseID
			saved = append(saved, item)
		}
		f.Expenses[i].ExpenseItems = saved
		return append([]models.ExpenseItem(nil), saved...), nil
	}
	return nil, fmt.Errorf("expense %s: record not found", expenseID)
}

func (f *FakeGateway) CreateTransaction(ctx context.Context, transaction *models.Transaction) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := *transaction
	t.ID = f.id("txn")
	return &t, nil
}

func (f *FakeGateway) FinancialMetrics(ctx context.Context) (models.FinancialMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MetricsCalls++
	if f.MetricsErr != nil {
		return models.FinancialMetrics{}, f.MetricsErr
	}
	return metrics.Calculate(f.Orders, f.Expenses), nil
}

// Calls returns a consistent read of the counters.
func (f *FakeGateway) Calls() (metricsCalls, updateOrders, updateExpenses int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.MetricsCalls, f.UpdateOrderCalls, f.UpdateExpenseCalls
}
