package metrics

import (
	"math"

	"furniture_board/internal/models"
)

// revenueStages are the order stages whose advance counts as received.
// Paid is included, so a paid order contributes its advance and its final
// price to TotalRevenue.
var revenueStages = map[models.OrderStage]bool{
	models.StageOrders:    true,
	models.StageWIP:       true,
	models.StageCompleted: true,
	models.StageDelivered: true,
	models.StageOrderPaid: true,
}

var billsToPayStages = map[models.ExpenseStage]bool{
	models.StageGoodsReceived: true,
	models.StageBillReceived:  true,
	models.StageApproved:      true,
}

// Outstanding is what is still owed on an order: max(0, final - paid) where
// paid is the final price once the order is Paid and the advance before that.
// An order without a final price owes nothing yet.
func Outstanding(finalPrice *float64, advance float64, stage models.OrderStage) float64 {
	if finalPrice == nil {
		return 0
	}
	paid := advance
	if stage == models.StageOrderPaid {
		paid = *finalPrice
	}
	return math.Max(0, *finalPrice-paid)
}

// Calculate derives the board's financial summary from the full set of
// orders and expenses. Only stage, advance, final_price and bill_amount are read.
func Calculate(orders []models.CustomerOrder, expenses []models.Expense) models.FinancialMetrics {
	var m models.FinancialMetrics

	for _, o := range orders {
		if revenueStages[o.Stage] {
			m.TotalRevenue += o.Advance
		}
		if o.Stage == models.StageOrderPaid && o.FinalPrice != nil {
			m.TotalRevenue += *o.FinalPrice
		}
		m.OutstandingPayments += Outstanding(o.FinalPrice, o.Advance, o.Stage)
	}

	for _, e := range expenses {
		if e.Stage == models.StageExpensePaid {
			m.ExpensePaid += e.BillAmount
		}
		if billsToPayStages[e.Stage] {
			m.BillsToPay += e.BillAmount
		}
	}

	return m
}
