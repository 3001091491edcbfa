package handlers

import (
	"context"
	"net/http"
	"time"

	"furniture_board/internal/models"

	"github.com/gin-gonic/gin"
)

// TransactionRecorder writes ledger entries.
type TransactionRecorder interface {
	CreateTransaction(ctx context.Context, transaction *models.Transaction) (*models.Transaction, error)
}

type TransactionHandler struct {
	recorder TransactionRecorder
}

func NewTransactionHandler(recorder TransactionRecorder) *TransactionHandler {
	return &TransactionHandler{recorder: recorder}
}

func (h *TransactionHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/transactions", h.CreateTransaction)
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req struct {
		Type            string     `json:"type" binding:"required,oneof=revenue expense"`
		ReferenceID     string     `json:"reference_id" binding:"required"`
		Amount          float64    `json:"amount" binding:"required,gt=0"`
		PaymentMethod   string     `json:"payment_method"`
		TransactionDate *time.Time `json:"transaction_date"`
		Notes           string     `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn := &models.Transaction{
		Type:          models.TransactionType(req.Type),
		ReferenceID:   req.ReferenceID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}
	if req.TransactionDate != nil {
		txn.TransactionDate = *req.TransactionDate
	}

	created, err := h.recorder.CreateTransaction(c.Request.Context(), txn)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
