package board

import (
	"furniture_board/internal/models"
)

// WorkflowTab selects which workflows the board shows.
type WorkflowTab string

const (
	TabBoth     WorkflowTab = "both"
	TabOrders   WorkflowTab = "orders"
	TabExpenses WorkflowTab = "expenses"
)

func ParseWorkflowTab(s string) (WorkflowTab, bool) {
	switch tab := WorkflowTab(s); tab {
	case TabBoth, TabOrders, TabExpenses:
		return tab, true
	}
	return "", false
}

// Shows reports whether the tab includes the workflow.
func (t WorkflowTab) Shows(kind models.WorkflowType) bool {
	switch t {
	case TabOrders:
		return kind == models.WorkflowOrder
	case TabExpenses:
		return kind == models.WorkflowExpense
	}
	return true
}

// ModalState is an open stage-detail view. A nil *ModalState means closed.
type ModalState struct {
	Kind  models.WorkflowType `json:"type"`
	ID    string              `json:"id"`
	Stage string              `json:"stage"`
}

// Title is the heading of the stage-detail dialog.
func (m ModalState) Title() string {
	if m.Kind == models.WorkflowOrder {
		return "Order · " + m.Stage
	}
	return "Expense · " + m.Stage
}

// DragItem identifies the card being dragged.
type DragItem struct {
	Kind models.WorkflowType `json:"type"`
	ID   string              `json:"id"`
}

type DragState struct {
	IsDragging  bool      `json:"isDragging"`
	DraggedItem *DragItem `json:"draggedItem,omitempty"`
}

// State is everything the board renders from.
type State struct {
	Orders    []models.CustomerOrder  `json:"orders"`
	Expenses  []models.Expense        `json:"expenses"`
	Customers []models.Customer       `json:"customers"`
	Vendors   []models.Vendor         `json:"vendors"`
	Metrics   models.FinancialMetrics `json:"metrics"`

	ActiveModal *ModalState `json:"activeModal"`
	DragState   DragState   `json:"dragState"`
	WorkflowTab WorkflowTab `json:"workflowTab"`
	Loading     bool        `json:"loading"`
	Error       string      `json:"error,omitempty"`
}

func initialState() State {
	return State{
		Orders:      []models.CustomerOrder{},
		Expenses:    []models.Expense{},
		Customers:   []models.Customer{},
		Vendors:     []models.Vendor{},
		WorkflowTab: TabBoth,
	}
}

// clone copies the collections so callers can hold a snapshot while the
// store keeps mutating.
func (s State) clone() State {
	out := s
	out.Orders = cloneSlice(s.Orders)
	out.Expenses = cloneSlice(s.Expenses)
	out.Customers = cloneSlice(s.Customers)
	out.Vendors = cloneSlice(s.Vendors)
	if s.ActiveModal != nil {
		m := *s.ActiveModal
		out.ActiveModal = &m
	}
	if s.DragState.DraggedItem != nil {
		item := *s.DragState.DraggedItem
		out.DragState.DraggedItem = &item
	}
	return out
}

func cloneSlice[T any](items []T) []T {
	return append(make([]T, 0, len(items)), items...)
}

// Card is a resolved board record of either workflow.
type Card struct {
	Kind    models.WorkflowType   `json:"type"`
	Order   *models.CustomerOrder `json:"order,omitempty"`
	Expense *models.Expense       `json:"expense,omitempty"`
}
