// Package pipeline holds the fixed stage sequences of the two workflows.
// The sequences are both the board's column layout and the only valid
// drop targets.
package pipeline

import "furniture_board/internal/models"

var OrderStages = []models.OrderStage{
	models.StageQuotations,
	models.StageOrders,
	models.StageWIP,
	models.StageCompleted,
	models.StageDelivered,
	models.StageOrderPaid,
}

var ExpenseStages = []models.ExpenseStage{
	models.StagePOSent,
	models.StageGoodsReceived,
	models.StageBillReceived,
	models.StageApproved,
	models.StageExpensePaid,
	models.StageArchived,
}

var progressByStage = map[string]int{
	string(models.StageQuotations): 10,
	string(models.StageOrders):     25,
	string(models.StageWIP):        50,
	string(models.StageCompleted):  75,
	string(models.StageDelivered):  90,
	string(models.StageOrderPaid):  100,
}

// ProgressPercentage maps an order stage to its completion percentage.
// Anything that is not an order stage yields 0.
func ProgressPercentage(stage string) int {
	return progressByStage[stage]
}

// Column is one stage column of a workflow board.
type Column struct {
	Kind  models.WorkflowType `json:"type"`
	Stage string              `json:"stage"`
}

// Columns returns the board columns of a workflow in pipeline order.
func Columns(kind models.WorkflowType) []Column {
	stages := Stages(kind)
	columns := make([]Column, 0, len(stages))
	for _, stage := range stages {
		columns = append(columns, Column{Kind: kind, Stage: stage})
	}
	return columns
}

// Stages returns the stage names of a workflow in pipeline order.
func Stages(kind models.WorkflowType) []string {
	switch kind {
	case models.WorkflowOrder:
		stages := make([]string, len(OrderStages))
		for i, s := range OrderStages {
			stages[i] = string(s)
		}
		return stages
	case models.WorkflowExpense:
		stages := make([]string, len(ExpenseStages))
		for i, s := range ExpenseStages {
			stages[i] = string(s)
		}
		return stages
	}
	return nil
}

// IsStage reports whether stage belongs to the workflow's pipeline.
func IsStage(kind models.WorkflowType, stage string) bool {
	for _, s := range Stages(kind) {
		if s == stage {
			return true
		}
	}
	return false
}

// Accepts reports whether a card of kind may be dropped on column.
func Accepts(column Column, kind models.WorkflowType) bool {
	return column.Kind == kind && IsStage(column.Kind, column.Stage)
}
