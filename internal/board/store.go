// Package board holds the in-memory board: every loaded order, expense,
// customer and vendor, the financial summary, and the UI selection state.
// All mutations go through Store so subscribers see every change.
package board

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"furniture_board/internal/models"
	"furniture_board/internal/pipeline"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	ErrValidation      = errors.New("invalid input")
	ErrDependentCreate = errors.New("could not create related record")
	ErrIncompleteModal = errors.New("modal needs type, id and stage")
)

// Gateway is the persistence the store drives.
type Gateway interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	ListVendors(ctx context.Context) ([]models.Vendor, error)
	CreateVendor(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error)
	ListOrders(ctx context.Context) ([]models.CustomerOrder, error)
	CreateOrder(ctx context.Context, order *models.CustomerOrder) (*models.CustomerOrder, error)
	UpdateOrder(ctx context.Context, id string, fields models.Fields) (*models.CustomerOrder, error)
	ReplaceMaterials(ctx context.Context, orderID string, materials []models.Material) ([]models.Material, error)
	ListExpenses(ctx context.Context) ([]models.Expense, error)
	CreateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	UpdateExpense(ctx context.Context, id string, fields models.Fields) (*models.Expense, error)
	ReplaceExpenseItems(ctx context.Context, expenseID string, items []models.ExpenseItem) ([]models.ExpenseItem, error)
	FinancialMetrics(ctx context.Context) (models.FinancialMetrics, error)
}

// NewOrder is the input of CreateOrder. New orders always start in Quotations.
type NewOrder struct {
	CustomerID  string  `json:"customer_id"`
	QuoteAmount float64 `json:"quote_amount"`
	Advance     float64 `json:"advance"`
	Notes       string  `json:"notes"`
}

// NewExpense is the input of CreateExpense. New expenses always start in PO Sent.
type NewExpense struct {
	VendorID   string  `json:"vendor_id"`
	BillAmount float64 `json:"bill_amount"`
	ForOrderID *string `json:"for_order_id"`
	Notes      string  `json:"notes"`
}

// Store is the single authoritative board state. Persistence calls run
// outside the lock, so two mutations may be in flight at once and the later
// server response wins.
type Store struct {
	gateway Gateway
	log     *zap.Logger
	hub     *Hub

	mu       sync.RWMutex
	state    State
	collator *collate.Collator
}

func NewStore(gateway Gateway, log *zap.Logger, eventBuffer int) *Store {
	return &Store{
		gateway:  gateway,
		log:      log,
		hub:      NewHub(eventBuffer, log),
		state:    initialState(),
		collator: collate.New(language.English),
	}
}

// Subscribe returns a channel of change events and its cancel func.
func (s *Store) Subscribe() (<-chan Event, func()) {
	return s.hub.Subscribe()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Store) mutate(event Event, fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	s.mu.Unlock()
	s.hub.Publish(event)
}

// fail records a data-access failure in the error slot.
func (s *Store) fail(op string, err error) {
	msg := fmt.Sprintf("Failed to %s: %v", op, err)
	s.log.Error("Board operation failed", zap.String("operation", op), zap.Error(err))
	s.mutate(Event{Type: EventError}, func(st *State) {
		st.Error = msg
	})
}

// LoadData replaces the whole board with a fresh fetch of orders, expenses,
// customers, vendors and metrics. The five reads run concurrently; if any
// fails nothing is applied and the error slot is set.
func (s *Store) LoadData(ctx context.Context) {
	s.mutate(Event{Type: EventLoading}, func(st *State) {
		st.Loading = true
		st.Error = ""
	})

	var (
		orders    []models.CustomerOrder
		expenses  []models.Expense
		customers []models.Customer
		vendors   []models.Vendor
		metrics   models.FinancialMetrics
	)

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		orders, err = s.gateway.ListOrders(gctx)
		return err
	})
	eg.Go(func() (err error) {
		expenses, err = s.gateway.ListExpenses(gctx)
		return err
	})
	eg.Go(func() (err error) {
		customers, err = s.gateway.ListCustomers(gctx)
		return err
	})
	eg.Go(func() (err error) {
		vendors, err = s.gateway.ListVendors(gctx)
		return err
	})
	eg.Go(func() (err error) {
		metrics, err = s.gateway.FinancialMetrics(gctx)
		return err
	})

	if err := eg.Wait(); err != nil {
		s.log.Error("Board operation failed", zap.String("operation", "load data"), zap.Error(err))
		s.mutate(Event{Type: EventError}, func(st *State) {
			st.Error = fmt.Sprintf("Failed to load data: %v", err)
			st.Loading = false
		})
		return
	}

	s.mutate(Event{Type: EventLoaded}, func(st *State) {
		st.Orders = nonNil(orders)
		st.Expenses = nonNil(expenses)
		st.Customers = nonNil(customers)
		st.Vendors = nonNil(vendors)
		s.sortByName(st)
		st.Metrics = metrics
		st.Loading = false
	})
}

// MoveCard sets a card's stage, swaps in the server's copy, refreshes the
// metrics and opens the detail view on the new stage. A stage outside the
// card's own workflow is ignored. Failures only set the error slot.
func (s *Store) MoveCard(ctx context.Context, kind models.WorkflowType, id, stage string) {
	if !pipeline.IsStage(kind, stage) {
		s.log.Debug("Ignoring move to foreign stage",
			zap.String("type", string(kind)), zap.String("id", id), zap.String("stage", stage))
		return
	}

	switch kind {
	case models.WorkflowOrder:
		updated, err := s.gateway.UpdateOrder(ctx, id, models.Fields{"stage": stage})
		if err != nil {
			s.fail("move card", err)
			return
		}
		s.mutate(Event{Type: EventOrderChanged, ID: id}, func(st *State) {
			replaceOrder(st, *updated)
		})
	case models.WorkflowExpense:
		updated, err := s.gateway.UpdateExpense(ctx, id, models.Fields{"stage": stage})
		if err != nil {
			s.fail("move card", err)
			return
		}
		s.mutate(Event{Type: EventExpenseChanged, ID: id}, func(st *State) {
			replaceExpense(st, *updated)
		})
	}

	if err := s.refreshMetrics(ctx); err != nil {
		s.fail("move card", err)
		return
	}

	s.mutate(Event{Type: EventModal, ID: id}, func(st *State) {
		st.ActiveModal = &ModalState{Kind: kind, ID: id, Stage: stage}
	})
}

// UpdateOrder persists an edit and swaps in the server's copy. Metrics are
// refreshed only when advance, final price or stage were edited.
func (s *Store) UpdateOrder(ctx context.Context, id string, fields models.Fields) {
	updated, err := s.gateway.UpdateOrder(ctx, id, fields)
	if err != nil {
		s.fail("update order", err)
		return
	}
	s.mutate(Event{Type: EventOrderChanged, ID: id}, func(st *State) {
		replaceOrder(st, *updated)
	})

	if models.OrderFinancialFields.Touches(fields) {
		if err := s.refreshMetrics(ctx); err != nil {
			s.fail("update order", err)
		}
	}
}

// UpdateExpense persists an edit. Metrics are refreshed only when the bill
// amount or stage were edited.
func (s *Store) UpdateExpense(ctx context.Context, id string, fields models.Fields) {
	updated, err := s.gateway.UpdateExpense(ctx, id, fields)
	if err != nil {
		s.fail("update expense", err)
		return
	}
	s.mutate(Event{Type: EventExpenseChanged, ID: id}, func(st *State) {
		replaceExpense(st, *updated)
	})

	if models.ExpenseFinancialFields.Touches(fields) {
		if err := s.refreshMetrics(ctx); err != nil {
			s.fail("update expense", err)
		}
	}
}

// ReplaceMaterials swaps an order's material list for a new one.
func (s *Store) ReplaceMaterials(ctx context.Context, orderID string, materials []models.Material) {
	saved, err := s.gateway.ReplaceMaterials(ctx, orderID, materials)
	if err != nil {
		s.fail("update materials", err)
		return
	}
	s.mutate(Event{Type: EventOrderChanged, ID: orderID}, func(st *State) {
		for i := range st.Orders {
			if st.Orders[i].ID == orderID {
				st.Orders[i].Materials = nonNil(saved)
			}
		}
	})
}

// ReplaceExpenseItems swaps an expense's line items for a new set.
func (s *Store) ReplaceExpenseItems(ctx context.Context, expenseID string, items []models.ExpenseItem) {
	saved, err := s.gateway.ReplaceExpenseItems(ctx, expenseID, items)
	if err != nil {
		s.fail("update expense items", err)
		return
	}
	s.mutate(Event{Type: EventExpenseChanged, ID: expenseID}, func(st *State) {
		for i := range st.Expenses {
			if st.Expenses[i].ID == expenseID {
				st.Expenses[i].ExpenseItems = nonNil(saved)
			}
		}
	})
}

// CreateOrder persists a new Quotations order and puts it first on the board.
// Errors are recorded and returned so a dialog can stay open.
func (s *Store) CreateOrder(ctx context.Context, data NewOrder) (*models.CustomerOrder, error) {
	order := &models.CustomerOrder{
		Stage:       models.StageQuotations,
		QuoteAmount: data.QuoteAmount,
		Advance:     data.Advance,
		Notes:       data.Notes,
	}
	if data.CustomerID != "" {
		id := data.CustomerID
		order.CustomerID = &id
	}

	created, err := s.gateway.CreateOrder(ctx, order)
	if err != nil {
		s.fail("create order", err)
		return nil, err
	}
	s.mutate(Event{Type: EventOrderChanged, ID: created.ID}, func(st *State) {
		st.Orders = append([]models.CustomerOrder{*created}, st.Orders...)
	})

	if err := s.refreshMetrics(ctx); err != nil {
		s.fail("create order", err)
		return nil, err
	}
	return created, nil
}

// CreateExpense persists a new PO Sent expense and puts it first on the board.
func (s *Store) CreateExpense(ctx context.Context, data NewExpense) (*models.Expense, error) {
	expense := &models.Expense{
		Stage:      models.StagePOSent,
		BillAmount: data.BillAmount,
		ForOrderID: data.ForOrderID,
		Notes:      data.Notes,
	}
	if data.VendorID != "" {
		id := data.VendorID
		expense.VendorID = &id
	}

	created, err := s.gateway.CreateExpense(ctx, expense)
	if err != nil {
		s.fail("create expense", err)
		return nil, err
	}
	s.mutate(Event{Type: EventExpenseChanged, ID: created.ID}, func(st *State) {
		st.Expenses = append([]models.Expense{*created}, st.Expenses...)
	})

	if err := s.refreshMetrics(ctx); err != nil {
		s.fail("create expense", err)
		return nil, err
	}
	return created, nil
}

// CreateCustomer persists a customer and inserts it in name order.
func (s *Store) CreateCustomer(ctx context.Context, customer models.Customer) (*models.Customer, error) {
	created, err := s.gateway.CreateCustomer(ctx, &customer)
	if err != nil {
		s.fail("create customer", err)
		return nil, err
	}
	s.mutate(Event{Type: EventCustomerAdded, ID: created.ID}, func(st *State) {
		i := sort.Search(len(st.Customers), func(i int) bool {
			return s.collator.CompareString(st.Customers[i].Name, created.Name) > 0
		})
		st.Customers = append(st.Customers, models.Customer{})
		copy(st.Customers[i+1:], st.Customers[i:])
		st.Customers[i] = *created
	})
	return created, nil
}

// CreateVendor persists a vendor and inserts it in name order.
func (s *Store) CreateVendor(ctx context.Context, vendor models.Vendor) (*models.Vendor, error) {
	created, err := s.gateway.CreateVendor(ctx, &vendor)
	if err != nil {
		s.fail("create vendor", err)
		return nil, err
	}
	s.mutate(Event{Type: EventVendorAdded, ID: created.ID}, func(st *State) {
		i := sort.Search(len(st.Vendors), func(i int) bool {
			return s.collator.CompareString(st.Vendors[i].Name, created.Name) > 0
		})
		st.Vendors = append(st.Vendors, models.Vendor{})
		copy(st.Vendors[i+1:], st.Vendors[i:])
		st.Vendors[i] = *created
	})
	return created, nil
}

// FindCustomer looks a customer up by case-insensitive exact name.
// Names that differ only in whitespace or punctuation do not match.
func (s *Store) FindCustomer(name string) (*models.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.state.Customers {
		if strings.EqualFold(c.Name, name) {
			c := c
			return &c, true
		}
	}
	return nil, false
}

// FindVendor looks a vendor up by case-insensitive exact name.
func (s *Store) FindVendor(name string) (*models.Vendor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.state.Vendors {
		if strings.EqualFold(v.Name, name) {
			v := v
			return &v, true
		}
	}
	return nil, false
}

// Lookup resolves a card identity to its live record.
func (s *Store) Lookup(kind models.WorkflowType, id string) (Card, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch kind {
	case models.WorkflowOrder:
		for _, o := range s.state.Orders {
			if o.ID == id {
				o := o
				return Card{Kind: kind, Order: &o}, true
			}
		}
	case models.WorkflowExpense:
		for _, e := range s.state.Expenses {
			if e.ID == id {
				e := e
				return Card{Kind: kind, Expense: &e}, true
			}
		}
	}
	return Card{}, false
}

// OpenModal shows the stage-detail view for one card, replacing any open one.
func (s *Store) OpenModal(kind models.WorkflowType, id, stage string) error {
	if kind == "" || id == "" || stage == "" {
		return ErrIncompleteModal
	}
	if kind != models.WorkflowOrder && kind != models.WorkflowExpense {
		return ErrIncompleteModal
	}
	s.mutate(Event{Type: EventModal, ID: id}, func(st *State) {
		st.ActiveModal = &ModalState{Kind: kind, ID: id, Stage: stage}
	})
	return nil
}

func (s *Store) CloseModal() {
	s.mutate(Event{Type: EventModal}, func(st *State) {
		st.ActiveModal = nil
	})
}

// ActiveRecord resolves the open modal to its card. Closed modals and
// records no longer on the board resolve to nothing.
func (s *Store) ActiveRecord() (*ModalState, Card, bool) {
	s.mu.RLock()
	modal := s.state.ActiveModal
	s.mu.RUnlock()
	if modal == nil {
		return nil, Card{}, false
	}
	m := *modal
	card, ok := s.Lookup(m.Kind, m.ID)
	if !ok {
		return nil, Card{}, false
	}
	return &m, card, true
}

func (s *Store) SetDragState(state DragState) {
	s.mutate(Event{Type: EventDrag}, func(st *State) {
		st.DragState = state
	})
}

func (s *Store) DragState() DragState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone().DragState
}

// EndDrag clears the drag state and returns the item that was being dragged.
func (s *Store) EndDrag() *DragItem {
	var item *DragItem
	s.mutate(Event{Type: EventDrag}, func(st *State) {
		item = st.DragState.DraggedItem
		st.DragState = DragState{}
	})
	return item
}

func (s *Store) SetWorkflowTab(tab WorkflowTab) {
	s.mutate(Event{Type: EventWorkflowTab}, func(st *State) {
		st.WorkflowTab = tab
	})
}

// SetError fills the error slot; an empty message clears it.
func (s *Store) SetError(msg string) {
	s.mutate(Event{Type: EventError}, func(st *State) {
		st.Error = msg
	})
}

func (s *Store) ClearError() {
	s.SetError("")
}

// ColumnView is one stage column with its cards.
type ColumnView struct {
	pipeline.Column
	Progress int                    `json:"progress,omitempty"`
	Orders   []models.CustomerOrder `json:"orders,omitempty"`
	Expenses []models.Expense       `json:"expenses,omitempty"`
}

// BoardView groups the cards by stage for the workflows the tab shows.
type BoardView struct {
	Orders   []ColumnView `json:"orders,omitempty"`
	Expenses []ColumnView `json:"expenses,omitempty"`
}

func (s *Store) Columns() BoardView {
	st := s.Snapshot()
	var view BoardView

	if st.WorkflowTab.Shows(models.WorkflowOrder) {
		for _, col := range pipeline.Columns(models.WorkflowOrder) {
			cv := ColumnView{Column: col, Progress: pipeline.ProgressPercentage(col.Stage), Orders: []models.CustomerOrder{}}
			for _, o := range st.Orders {
				if string(o.Stage) == col.Stage {
					cv.Orders = append(cv.Orders, o)
				}
			}
			view.Orders = append(view.Orders, cv)
		}
	}
	if st.WorkflowTab.Shows(models.WorkflowExpense) {
		for _, col := range pipeline.Columns(models.WorkflowExpense) {
			cv := ColumnView{Column: col, Expenses: []models.Expense{}}
			for _, e := range st.Expenses {
				if string(e.Stage) == col.Stage {
					cv.Expenses = append(cv.Expenses, e)
				}
			}
			view.Expenses = append(view.Expenses, cv)
		}
	}
	return view
}

func (s *Store) refreshMetrics(ctx context.Context) error {
	metrics, err := s.gateway.FinancialMetrics(ctx)
	if err != nil {
		return err
	}
	s.mutate(Event{Type: EventMetrics}, func(st *State) {
		st.Metrics = metrics
	})
	return nil
}

// sortByName orders the directory collections with the store's collator.
// Callers hold s.mu.
func (s *Store) sortByName(st *State) {
	sort.SliceStable(st.Customers, func(i, j int) bool {
		return s.collator.CompareString(st.Customers[i].Name, st.Customers[j].Name) < 0
	})
	sort.SliceStable(st.Vendors, func(i, j int) bool {
		return s.collator.CompareString(st.Vendors[i].Name, st.Vendors[j].Name) < 0
	})
}

func replaceOrder(st *State, order models.CustomerOrder) {
	for i := range st.Orders {
		if st.Orders[i].ID == order.ID {
			st.Orders[i] = order
			return
		}
	}
}

func replaceExpense(st *State, expense models.Expense) {
	for i := range st.Expenses {
		if st.Expenses[i].ID == expense.ID {
			st.Expenses[i] = expense
			return
		}
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
