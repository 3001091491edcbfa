package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"furniture_board/internal/board"
	"furniture_board/internal/middleware"
	"furniture_board/internal/models"
	"furniture_board/internal/redis"
	"furniture_board/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	router *gin.Engine
	store  *board.Store
	gw     *testutil.FakeGateway
	cache  *redis.Client
}

func newTestServer(t *testing.T, seed func(gw *testutil.FakeGateway)) *testServer {
	t.Helper()
	gw := testutil.NewFakeGateway()
	if seed != nil {
		seed(gw)
	}

	mr := miniredis.RunT(t)
	cache, err := redis.Initialize("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	log := zap.NewNop()
	store := board.NewStore(gw, log, 16)
	store.LoadData(context.Background())
	drag := board.NewDragController(store)
	intake := board.NewIntake(store, 30)
	drafts := NewDrafts(cache, time.Hour, log)

	r := testutil.SetupRouter()
	r.Use(middleware.Session())
	api := r.Group("/api")
	NewBoardHandler(store, drag, cache, time.Hour, log).RegisterRoutes(api)
	NewOrderHandler(store, intake, drafts).RegisterRoutes(api)
	NewExpenseHandler(store, intake, drafts).RegisterRoutes(api)
	NewDirectoryHandler(store, intake).RegisterRoutes(api)
	NewTransactionHandler(gw).RegisterRoutes(api)

	return &testServer{router: r, store: store, gw: gw, cache: cache}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestGetBoard(t *testing.T) {
	srv := newTestServer(t, func(gw *testutil.FakeGateway) {
		gw.SeedOrder(models.CustomerOrder{Stage: models.StageWIP, Advance: 1500})
	})

	w := testutil.DoRequest(srv.router, http.MethodGet, "/api/board", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var st board.State
	decode(t, w, &st)
	assert.Len(t, st.Orders, 1)
	assert.Equal(t, 1500.0, st.Metrics.TotalRevenue)
	assert.Equal(t, board.TabBoth, st.WorkflowTab)
	assert.Nil(t, st.ActiveModal)
}

func TestReloadReportsFailureInErrorSlot(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.gw.ListOrdersErr = testutil.ErrInjected

	w := testutil.DoRequest(srv.router, http.MethodPost, "/api/board/reload", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := testutil.ParseResponse(w)
	assert.Equal(t, "Failed to load data: injected failure", resp["error"])
	assert.Equal(t, false, resp["loading"])

	w = testutil.DoRequest(srv.router, http.MethodDelete, "/api/board/error", nil)
	assert.NotContains(t, testutil.ParseResponse(w), "error")
}

func TestQuickCreateOrder(t *testing.T) {
	srv := newTestServer(t, func(gw *testutil.FakeGateway) {
		gw.SeedCustomer("Acme Corp")
	})

	w := testutil.DoRequest(srv.router, http.MethodPost, "/api/orders/quick", board.OrderForm{
		CustomerName: "ACME CORP",
		QuoteAmount:  12000,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var order models.CustomerOrder
	decode(t, w, &order)
	assert.Equal(t, models.StageQuotations, order.Stage)
	assert.Zero(t, srv.gw.CreateCustomerCalls)
	assert.Len(t, srv.store.Snapshot().Orders, 1)
}

func TestQuickCreateOrderKeepsDraftOnFailure(t *testing.T) {
	srv := newTestServer(t, nil)

	w := testutil.DoRequest(srv.router, http.MethodPost, "/api/orders/quick", map[string]interface{}{
		"customer_name": "Mehta",
		"quote_amount":  0,
		"notes":         "three-seater",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, testutil.ParseResponse(w)["error"], "Please enter a valid quote amount")

	w = testutil.DoRequest(srv.router, http.MethodGet, "/api/drafts/order", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var draft redis.Draft
	decode(t, w, &draft)
	assert.Equal(t, "order", draft.Kind)
	assert.Contains(t, string(draft.Data), "three-seater")

	w = testutil.DoRequest(srv.router, http.MethodPost, "/api/orders/quick", board.OrderForm{
		CustomerName: "Mehta",
		QuoteAmount:  4000,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = testutil.DoRequest(srv.router, http.MethodGet, "/api/drafts/order", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuickCreateExpenseVendorFailure(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.gw.CreateVendorErr = testutil.ErrInjected

	w := testutil.DoRequest(srv.router, http.MethodPost, "/api/expenses/quick", board.ExpenseForm{
		VendorName: "Glass House",
		BillAmount: 900,
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Empty(t, srv.store.Snapshot().Expenses)
}

func TestUpdateOrderRejectsUnknownField(t *testing.T) {
	srv := newTestServer(t, func(gw *testutil.FakeGateway) {
		gw.SeedOrder(models.CustomerOrder{ID: "ord-1", Stage: models.StageWIP})
	})

	w := testutil.DoRequest(srv.router, http.MethodPatch, "/api/orders/ord-1", map[string]interface{}{
		"order_number": "ORD-9",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoRequest(srv.router, http.MethodPatch, "/api/orders/ord-1", map[string]interface{}{
		"stage": "Approved",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, updates, _ := srv.gw.Calls()
	assert.Zero(t, updates)
}

func TestUpdateOrderFailureAnswersBoard(t *testing.T) {
	srv := newTestServer(t, func(gw *testutil.FakeGateway) {
		gw.SeedOrder(models.CustomerOrder{ID: "ord-1", Stage: models.StageWIP})
	})
	srv.gw.UpdateOrderErr = testutil.ErrInjected

	w := testutil.DoRequest(srv.router, http.MethodPatch, "/api/orders/ord-1", map[string]interface{}{
		"advance": 500,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Failed to update order: injected failure", testutil.ParseResponse(w)["error"])
}

func TestUpdateExpense(t *testing.T) {
	srv := newTestServer(t, func(gw *testutil.FakeGateway) {
		gw.SeedExpense(models.Expense{ID: "exp-1", Stage: models.StageApproved, BillAmount: 200})
	})

	w := testutil.DoRequest(srv.router, http.MethodPatch, "/api/expenses/exp-1", map[string]interface{}{
		"bill_amount": 650,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var st board.State
	decode(t, w, &st)
	assert.Equal(t, 650.0, st.Expenses[0].BillAmount)
	assert.Equal(t, 650.0, st.Metrics.BillsToPay)
}

func TestReplaceMaterials(t *testing.T) {
	srv := newTestServer(t, func(gw *testutil.FakeGateway) {
		gw.SeedOrder(models.CustomerOrder{ID: "ord-1", Stage: models.StageWIP})
	})

	w := testutil.DoRequest(srv.router, http.MethodPut, "/api/orders/ord-1/materials", map[string]interface{}{
		"materials": []map[string]interface{}{
			{"item_name": "Plywood", "quantity": 3, "estimated_cost": 2400},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var st board.State
	decode(t, w, &st)
	require.Len(t, st.Orders[0].Materials, 1)
	assert.Equal(t, "Plywood", st.Orders[0].Materials[0].ItemName)
}

func TestModalEndpoints(t *testing.T) {
	srv := newTestServer(t, func(gw *testutil.FakeGateway) {
		gw.SeedExpense(models.Expense{ID: "exp-1", ExpenseNumber: "PO-1", Stage: models.StageApproved, BillAmount: 1200})
	})

	w := testutil.DoRequest(srv.router, http.MethodPut, "/api/board/modal", map[string]string{"type": "expense", "id": "exp-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoRequest(srv.router, http.MethodPut, "/api/board/modal", map[string]string{
		"type": "expense", "id": "exp-1", "stage": "Approved",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoRequest(srv.router, http.MethodGet, "/api/board/modal", nil)
	resp := testutil.ParseResponse(w)
	assert.Equal(t, "Expense · Approved", resp["title"])
	summary := resp["summary"].(map[string]interface{})
	assert.Equal(t, "PO-1", summary["number"])
	assert.Equal(t, "General", summary["for_order"])
	assert.Equal(t, "—", summary["due"])
	assert.Equal(t, "₹1,200.00", summary["bill"])

	w = testutil.DoRequest(srv.router, http.MethodDelete, "/api/board/modal", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, testutil.ParseResponse(w)["activeModal"])
}

func TestDragFlow(t *testing.T) {
	srv := newTestServer(t, func(gw *testutil.FakeGateway) {
		gw.SeedOrder(models.CustomerOrder{ID: "ord-1", Stage: models.StageQuotations})
	})

	w := testutil.DoRequest(srv.router, http.MethodPost, "/api/board/drag/start", map[string]string{"type": "order", "id": "ord-1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, testutil.ParseResponse(w)["isDragging"])

	w = testutil.DoRequest(srv.router, http.MethodGet, "/api/board/drag/overlay", nil)
	assert.NotNil(t, testutil.ParseResponse(w)["card"])

	w = testutil.DoRequest(srv.router, http.MethodPost, "/api/board/drag/drop", map[string]string{"type": "expense", "stage": "Paid"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, testutil.ParseResponse(w)["moved"])

	testutil.DoRequest(srv.router, http.MethodPost, "/api/board/drag/start", map[string]string{"type": "order", "id": "ord-1"})
	w = testutil.DoRequest(srv.router, http.MethodPost, "/api/board/drag/drop", map[string]string{"type": "order", "stage": "WIP"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Moved bool        `json:"moved"`
		Board board.State `json:"board"`
	}
	decode(t, w, &resp)
	assert.True(t, resp.Moved)
	assert.Equal(t, models.StageWIP, resp.Board.Orders[0].Stage)
	require.NotNil(t, resp.Board.ActiveModal)
	assert.Equal(t, "WIP", resp.Board.ActiveModal.Stage)

	_, updates, _ := srv.gw.Calls()
	assert.Equal(t, 1, updates)
}

func TestDragStartValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	w := testutil.DoRequest(srv.router, http.MethodPost, "/api/board/drag/start", map[string]string{"type": "invoice", "id": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkflowTabPreferences(t *testing.T) {
	srv := newTestServer(t, nil)

	w := testutil.DoRequest(srv.router, http.MethodGet, "/api/board/preferences", nil)
	assert.Equal(t, "both", testutil.ParseResponse(w)["workflow_tab"])

	w = testutil.DoRequest(srv.router, http.MethodPut, "/api/board/tab", map[string]string{"tab": "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoRequest(srv.router, http.MethodPut, "/api/board/tab", map[string]string{"tab": "expenses"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, board.TabExpenses, srv.store.Snapshot().WorkflowTab)

	w = testutil.DoRequest(srv.router, http.MethodGet, "/api/board/preferences", nil)
	assert.Equal(t, "expenses", testutil.ParseResponse(w)["workflow_tab"])

	w = testutil.DoRequest(srv.router, http.MethodGet, "/api/board/columns", nil)
	resp := testutil.ParseResponse(w)
	assert.NotContains(t, resp, "orders")
	assert.Len(t, resp["expenses"], 6)
}

func TestDirectory(t *testing.T) {
	srv := newTestServer(t, func(gw *testutil.FakeGateway) {
		gw.SeedVendor("Timber Co")
	})

	w := testutil.DoRequest(srv.router, http.MethodPost, "/api/vendors", map[string]string{"name": "Alpha Glass"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(30), testutil.ParseResponse(w)["payment_terms"])

	w = testutil.DoRequest(srv.router, http.MethodGet, "/api/vendors", nil)
	var vendors []models.Vendor
	decode(t, w, &vendors)
	require.Len(t, vendors, 2)
	assert.Equal(t, "Alpha Glass", vendors[0].Name)

	w = testutil.DoRequest(srv.router, http.MethodPost, "/api/customers", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDirectoryReusesNameIgnoringCase(t *testing.T) {
	srv := newTestServer(t, func(gw *testutil.FakeGateway) {
		gw.SeedCustomer("Acme")
		gw.SeedVendor("Timber Co")
	})
	acme := srv.store.Snapshot().Customers[0]

	w := testutil.DoRequest(srv.router, http.MethodPost, "/api/customers", map[string]string{"name": "ACME"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, acme.ID, testutil.ParseResponse(w)["id"])
	assert.Equal(t, "Acme", testutil.ParseResponse(w)["name"])
	assert.Zero(t, srv.gw.CreateCustomerCalls)
	assert.Len(t, srv.store.Snapshot().Customers, 1)

	w = testutil.DoRequest(srv.router, http.MethodPost, "/api/vendors", map[string]string{"name": "timber co"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, srv.gw.CreateVendorCalls)
	assert.Len(t, srv.store.Snapshot().Vendors, 1)

	w = testutil.DoRequest(srv.router, http.MethodPost, "/api/customers", map[string]string{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateVendorKeepsZeroPaymentTerms(t *testing.T) {
	srv := newTestServer(t, nil)

	w := testutil.DoRequest(srv.router, http.MethodPost, "/api/vendors", map[string]interface{}{
		"name": "Cash Hardware", "payment_terms": 0,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(0), testutil.ParseResponse(w)["payment_terms"])
	assert.Equal(t, 0, srv.store.Snapshot().Vendors[0].PaymentTerms)
}

func TestCreateTransaction(t *testing.T) {
	srv := newTestServer(t, nil)

	w := testutil.DoRequest(srv.router, http.MethodPost, "/api/transactions", map[string]interface{}{
		"type": "revenue", "reference_id": "ord-1", "amount": 2500, "payment_method": "upi",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "revenue", testutil.ParseResponse(w)["type"])

	w = testutil.DoRequest(srv.router, http.MethodPost, "/api/transactions", map[string]interface{}{
		"type": "refund", "reference_id": "ord-1", "amount": 2500,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventsStream(t *testing.T) {
	srv := newTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "/api/board/events", nil)
	w := httptest.NewRecorder()

	go func() {
		time.Sleep(100 * time.Millisecond)
		srv.store.SetError("printer on fire")
	}()
	srv.router.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "event: connected"))
	assert.Contains(t, body, "event: error\ndata: {\"event\":\"error\"}")
}
