package handlers

import (
	"net/http"

	"furniture_board/internal/board"
	"furniture_board/internal/models"
	"furniture_board/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	store  *board.Store
	intake *board.Intake
	drafts Drafts
}

func NewOrderHandler(store *board.Store, intake *board.Intake, d Drafts) *OrderHandler {
	return &OrderHandler{store: store, intake: intake, drafts: d}
}

func (h *OrderHandler) RegisterRoutes(api *gin.RouterGroup) {
	orders := api.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.POST("/quick", h.QuickCreateOrder)
		orders.PATCH("/:id", h.UpdateOrder)
		orders.PUT("/:id/materials", h.ReplaceMaterials)
	}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req board.NewOrder
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	order, err := h.store.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// QuickCreateOrder runs the new-order dialog. On failure the input is kept as
// a draft so the dialog can reopen with it.
func (h *OrderHandler) QuickCreateOrder(c *gin.Context) {
	var form board.OrderForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	order, err := h.intake.CreateOrder(c.Request.Context(), form)
	if err != nil {
		h.drafts.save(c, models.WorkflowOrder, form)
		respondError(c, err)
		return
	}
	h.drafts.discard(c, models.WorkflowOrder)
	c.JSON(http.StatusCreated, order)
}

// UpdateOrder applies a partial edit. Persistence failures land in the
// board's error slot, so the answer is the board either way.
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var fields models.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := services.ValidateOrderEdit(fields); err != nil {
		respondError(c, err)
		return
	}

	h.store.UpdateOrder(c.Request.Context(), c.Param("id"), fields)
	c.JSON(http.StatusOK, h.store.Snapshot())
}

func (h *OrderHandler) ReplaceMaterials(c *gin.Context) {
	var req struct {
		Materials []models.Material `json:"materials"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	h.store.ReplaceMaterials(c.Request.Context(), c.Param("id"), req.Materials)
	c.JSON(http.StatusOK, h.store.Snapshot())
}
