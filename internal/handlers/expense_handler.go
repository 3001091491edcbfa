package handlers

import (
	"net/http"

	"furniture_board/internal/board"
	"furniture_board/internal/models"
	"furniture_board/internal/services"

	"github.com/gin-gonic/gin"
)

type ExpenseHandler struct {
	store  *board.Store
	intake *board.Intake
	drafts Drafts
}

func NewExpenseHandler(store *board.Store, intake *board.Intake, d Drafts) *ExpenseHandler {
	return &ExpenseHandler{store: store, intake: intake, drafts: d}
}

func (h *ExpenseHandler) RegisterRoutes(api *gin.RouterGroup) {
	expenses := api.Group("/expenses")
	{
		expenses.POST("", h.CreateExpense)
		expenses.POST("/quick", h.QuickCreateExpense)
		expenses.PATCH("/:id", h.UpdateExpense)
		expenses.PUT("/:id/items", h.ReplaceItems)
	}
}

func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req board.NewExpense
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	expense, err := h.store.CreateExpense(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func (h *ExpenseHandler) QuickCreateExpense(c *gin.Context) {
	var form board.ExpenseForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	expense, err := h.intake.CreateExpense(c.Request.Context(), form)
	if err != nil {
		h.drafts.save(c, models.WorkflowExpense, form)
		respondError(c, err)
		return
	}
	h.drafts.discard(c, models.WorkflowExpense)
	c.JSON(http.StatusCreated, expense)
}

func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	var fields models.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := services.ValidateExpenseEdit(fields); err != nil {
		respondError(c, err)
		return
	}

	h.store.UpdateExpense(c.Request.Context(), c.Param("id"), fields)
	c.JSON(http.StatusOK, h.store.Snapshot())
}

func (h *ExpenseHandler) ReplaceItems(c *gin.Context) {
	var req struct {
		Items []models.ExpenseItem `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	h.store.ReplaceExpenseItems(c.Request.Context(), c.Param("id"), req.Items)
	c.JSON(http.StatusOK, h.store.Snapshot())
}
