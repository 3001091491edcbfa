package services

import (
	"context"
	"testing"
	"time"

	"furniture_board/internal/models"
	"furniture_board/internal/repository"
	"furniture_board/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceNumbers(t *testing.T) {
	at := time.UnixMilli(1718000000123)
	assert.Equal(t, "ORD-1718000000123", OrderNumber(at))
	assert.Equal(t, "PO-1718000000123", ExpenseNumber(at))
}

func TestNextStampIsMonotonic(t *testing.T) {
	fixed := time.UnixMilli(5000)
	g := &Gateway{now: func() time.Time { return fixed }}

	assert.Equal(t, int64(5000), g.nextStamp().UnixMilli())
	assert.Equal(t, int64(5001), g.nextStamp().UnixMilli())

	fixed = time.UnixMilli(4000)
	assert.Equal(t, int64(5002), g.nextStamp().UnixMilli())

	fixed = time.UnixMilli(9000)
	assert.Equal(t, int64(9000), g.nextStamp().UnixMilli())
}

func TestValidateEdits(t *testing.T) {
	assert.NoError(t, ValidateOrderEdit(models.Fields{"advance": 100.0, "stage": "WIP"}))
	assert.ErrorIs(t, ValidateOrderEdit(models.Fields{"order_number": "x"}), ErrUnknownField)
	assert.ErrorIs(t, ValidateOrderEdit(models.Fields{"stage": "PO Sent"}), ErrInvalidStage)

	assert.NoError(t, ValidateExpenseEdit(models.Fields{"bill_amount": 10.0, "stage": "Paid"}))
	assert.ErrorIs(t, ValidateExpenseEdit(models.Fields{"outstanding": 1.0}), ErrUnknownField)
	assert.ErrorIs(t, ValidateExpenseEdit(models.Fields{"stage": "WIP"}), ErrInvalidStage)
}

func newTestGateway(t *testing.T) *Gateway {
	db := testutil.SetupTestDB(t)
	return NewGateway(repository.NewRepositories(db))
}

func TestGateway_OrderLifecycle(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()

	customer, err := gw.CreateCustomer(ctx, &models.Customer{Name: "Acme"})
	require.NoError(t, err)

	order, err := gw.CreateOrder(ctx, &models.CustomerOrder{CustomerID: &customer.ID, QuoteAmount: 12000})
	require.NoError(t, err)
	assert.Equal(t, models.StageQuotations, order.Stage)
	assert.Regexp(t, `^ORD-\d+$`, order.OrderNumber)
	require.NotNil(t, order.Customer)
	assert.Equal(t, "Acme", order.Customer.Name)
	assert.NotNil(t, order.Materials)

	order, err = gw.UpdateOrder(ctx, order.ID, models.Fields{"final_price": 10000.0, "advance": 4000.0})
	require.NoError(t, err)
	assert.Equal(t, 6000.0, order.Outstanding)

	order, err = gw.UpdateOrder(ctx, order.ID, models.Fields{"stage": "Delivered"})
	require.NoError(t, err)
	assert.NotNil(t, order.DeliveredAt)
	assert.Nil(t, order.CompletedAt)

	order, err = gw.UpdateOrder(ctx, order.ID, models.Fields{"stage": "Paid"})
	require.NoError(t, err)
	assert.NotNil(t, order.PaidAt)
	assert.Zero(t, order.Outstanding)

	m, err := gw.FinancialMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 14000.0, m.TotalRevenue)
	assert.Zero(t, m.OutstandingPayments)
}

func TestGateway_UpdateMissingOrder(t *testing.T) {
	gw := newTestGateway(t)

	_, err := gw.UpdateOrder(context.Background(), "no-such-order", models.Fields{"notes": "x"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGateway_ReplaceMaterials(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()

	order, err := gw.CreateOrder(ctx, &models.CustomerOrder{QuoteAmount: 500})
	require.NoError(t, err)

	saved, err := gw.ReplaceMaterials(ctx, order.ID, []models.Material{
		{ItemName: "Teak", Quantity: 2, EstimatedCost: 900},
		{ItemName: "Varnish", Quantity: 1, EstimatedCost: 300},
	})
	require.NoError(t, err)
	assert.Len(t, saved, 2)

	saved, err = gw.ReplaceMaterials(ctx, order.ID, []models.Material{{ItemName: "Oak", Quantity: 1}})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Oak", saved[0].ItemName)

	saved, err = gw.ReplaceMaterials(ctx, order.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestGateway_Expenses(t *testing.T) {
	gw := newTestGateway(t)
	ctx := context.Background()

	vendor, err := gw.CreateVendor(ctx, &models.Vendor{Name: "Timber Co", PaymentTerms: 30})
	require.NoError(t, err)
	order, err := gw.CreateOrder(ctx, &models.CustomerOrder{QuoteAmount: 500})
	require.NoError(t, err)

	expense, err := gw.CreateExpense(ctx, &models.Expense{VendorID: &vendor.ID, BillAmount: 3000, ForOrderID: &order.ID})
	require.NoError(t, err)
	assert.Equal(t, models.StagePOSent, expense.Stage)
	assert.Regexp(t, `^PO-\d+$`, expense.ExpenseNumber)
	assert.Equal(t, order.OrderNumber, expense.ForOrderLabel())

	qty, unit := 4.0, 250.0
	items, err := gw.ReplaceExpenseItems(ctx, expense.ID, []models.ExpenseItem{{ItemName: "Screws", Quantity: &qty, UnitPrice: &unit}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].TotalPrice)
	assert.Equal(t, 1000.0, *items[0].TotalPrice)

	expense, err = gw.UpdateExpense(ctx, expense.ID, models.Fields{"stage": "Bill Received"})
	require.NoError(t, err)
	m, err := gw.FinancialMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, m.BillsToPay)

	expense, err = gw.UpdateExpense(ctx, expense.ID, models.Fields{"stage": "Paid"})
	require.NoError(t, err)
	assert.NotNil(t, expense.PaidAt)
	m, err = gw.FinancialMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, m.ExpensePaid)
	assert.Zero(t, m.BillsToPay)
}

func TestGateway_CreateTransaction(t *testing.T) {
	gw := newTestGateway(t)

	txn, err := gw.CreateTransaction(context.Background(), &models.Transaction{
		Type:        models.TransactionRevenue,
		ReferenceID: "ord-1",
		Amount:      2500,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, txn.ID)
	assert.False(t, txn.TransactionDate.IsZero())
}
