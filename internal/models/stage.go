package models

// WorkflowType distinguishes the two boards a card can live on.
type WorkflowType string

const (
	WorkflowOrder   WorkflowType = "order"
	WorkflowExpense WorkflowType = "expense"
)

type OrderStage string

const (
	StageQuotations OrderStage = "Quotations"
	StageOrders     OrderStage = "Orders"
	StageWIP        OrderStage = "WIP"
	StageCompleted  OrderStage = "Completed"
	StageDelivered  OrderStage = "Delivered"
	StageOrderPaid  OrderStage = "Paid"
)

type ExpenseStage string

const (
	StagePOSent        ExpenseStage = "PO Sent"
	StageGoodsReceived ExpenseStage = "Goods Received"
	StageBillReceived  ExpenseStage = "Bill Received"
	StageApproved      ExpenseStage = "Approved"
	StageExpensePaid   ExpenseStage = "Paid"
	StageArchived      ExpenseStage = "Archived"
)
