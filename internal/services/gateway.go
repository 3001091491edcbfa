package services

import (
	"context"
	"errors"
	"fmt"
	"furniture_board/internal/metrics"
	"furniture_board/internal/models"
	"furniture_board/internal/pipeline"
	"furniture_board/internal/repository"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	ErrUnknownField = errors.New("field is not editable")
	ErrInvalidStage = errors.New("stage does not belong to this workflow")
)

// Gateway is the board's single door to the database. Every call returns the
// requested rows with their relations attached, or the data-access error.
type Gateway struct {
	repos *repository.Repositories
	now   func() time.Time

	seqMu   sync.Mutex
	lastSeq int64
}

func NewGateway(repos *repository.Repositories) *Gateway {
	return &Gateway{repos: repos, now: time.Now}
}

// nextStamp issues the millisecond stamp for a new number. Stamps never
// repeat or go backwards within a process, even when two creations share a
// millisecond or the clock steps back.
func (g *Gateway) nextStamp() time.Time {
	g.seqMu.Lock()
	defer g.seqMu.Unlock()
	ms := g.now().UnixMilli()
	if ms <= g.lastSeq {
		ms = g.lastSeq + 1
	}
	g.lastSeq = ms
	return time.UnixMilli(ms)
}

// OrderNumber formats the human-readable order number for a creation instant.
func OrderNumber(t time.Time) string {
	return fmt.Sprintf("ORD-%d", t.UnixMilli())
}

// ExpenseNumber formats the purchase-order number for a creation instant.
func ExpenseNumber(t time.Time) string {
	return fmt.Sprintf("PO-%d", t.UnixMilli())
}

func (g *Gateway) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return g.repos.Customers.GetAll(ctx)
}

func (g *Gateway) CreateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := g.repos.Customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (g *Gateway) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	return g.repos.Vendors.GetAll(ctx)
}

func (g *Gateway) CreateVendor(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error) {
	if err := g.repos.Vendors.Create(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

func (g *Gateway) ListOrders(ctx context.Context) ([]models.CustomerOrder, error) {
	return g.repos.Orders.GetAll(ctx)
}

func (g *Gateway) CreateOrder(ctx context.Context, order *models.CustomerOrder) (*models.CustomerOrder, error) {
	now := g.now()
	order.OrderNumber = OrderNumber(g.nextStamp())
	if order.Stage == "" {
		order.Stage = models.StageQuotations
	}
	if order.StartedAt.IsZero() {
		order.StartedAt = now
	}
	order.Outstanding = metrics.Outstanding(order.FinalPrice, order.Advance, order.Stage)

	if err := g.repos.Orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return g.repos.Orders.GetByID(ctx, order.ID)
}

// ValidateOrderEdit rejects edits naming a column outside the order
// allow-list or a stage of the other workflow. Nothing is written.
func ValidateOrderEdit(fields models.Fields) error {
	if name, ok := models.OrderEditableFields.Unknown(fields); ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return checkStage(models.WorkflowOrder, fields)
}

func ValidateExpenseEdit(fields models.Fields) error {
	if name, ok := models.ExpenseEditableFields.Unknown(fields); ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return checkStage(models.WorkflowExpense, fields)
}

func (g *Gateway) UpdateOrder(ctx context.Context, id string, fields models.Fields) (*models.CustomerOrder, error) {
	if err := ValidateOrderEdit(fields); err != nil {
		return nil, err
	}
	return g.repos.Orders.Update(ctx, id, fields)
}

// ReplaceMaterials swaps an order's whole material list: the old set is
// deleted, then the new set inserted. An empty list leaves none.
func (g *Gateway) ReplaceMaterials(ctx context.Context, orderID string, materials []models.Material) ([]models.Material, error) {
	return g.repos.Materials.ReplaceForOrder(ctx, orderID, materials)
}

func (g *Gateway) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	return g.repos.Expenses.GetAll(ctx)
}

func (g *Gateway) CreateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	now := g.now()
	expense.ExpenseNumber = ExpenseNumber(g.nextStamp())
	if expense.Stage == "" {
		expense.Stage = models.StagePOSent
	}
	if expense.OrderedAt.IsZero() {
		expense.OrderedAt = now
	}

	if err := g.repos.Expenses.Create(ctx, expense); err != nil {
		return nil, err
	}
	return g.repos.Expenses.GetByID(ctx, expense.ID)
}

func (g *Gateway) UpdateExpense(ctx context.Context, id string, fields models.Fields) (*models.Expense, error) {
	if err := ValidateExpenseEdit(fields); err != nil {
		return nil, err
	}
	return g.repos.Expenses.Update(ctx, id, fields)
}

func (g *Gateway) ReplaceExpenseItems(ctx context.Context, expenseID string, items []models.ExpenseItem) ([]models.ExpenseItem, error) {
	return g.repos.Expenses.ReplaceItems(ctx, expenseID, items)
}

func (g *Gateway) CreateTransaction(ctx context.Context, transaction *models.Transaction) (*models.Transaction, error) {
	if err := g.repos.Transactions.Create(ctx, transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

// FinancialMetrics reads the order and expense figures side by side and
// derives the summary from them.
func (g *Gateway) FinancialMetrics(ctx context.Context) (models.FinancialMetrics, error) {
	var (
		orders   []models.CustomerOrder
		expenses []models.Expense
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		orders, err = g.repos.Financial.OrderFigures(ctx)
		return err
	})
	eg.Go(func() error {
		var err error
		expenses, err = g.repos.Financial.ExpenseFigures(ctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return models.FinancialMetrics{}, err
	}

	return metrics.Calculate(orders, expenses), nil
}

func checkStage(kind models.WorkflowType, fields models.Fields) error {
	v, ok := fields["stage"]
	if !ok {
		return nil
	}
	stage := fmt.Sprint(v)
	if !pipeline.IsStage(kind, stage) {
		return fmt.Errorf("%w: %q", ErrInvalidStage, stage)
	}
	return nil
}
