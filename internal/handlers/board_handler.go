package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"furniture_board/internal/board"
	"furniture_board/internal/pipeline"
	"furniture_board/internal/redis"
	"furniture_board/pkg/format"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BoardHandler struct {
	store    *board.Store
	drag     *board.DragController
	cache    SessionCache
	prefsTTL time.Duration
	log      *zap.Logger
}

func NewBoardHandler(store *board.Store, drag *board.DragController, cache SessionCache, prefsTTL time.Duration, log *zap.Logger) *BoardHandler {
	return &BoardHandler{
		store:    store,
		drag:     drag,
		cache:    cache,
		prefsTTL: prefsTTL,
		log:      log,
	}
}

func (h *BoardHandler) RegisterRoutes(api *gin.RouterGroup) {
	b := api.Group("/board")
	{
		b.GET("", h.GetBoard)
		b.POST("/reload", h.Reload)
		b.GET("/columns", h.GetColumns)
		b.GET("/events", h.Events)
		b.POST("/move", h.MoveCard)

		b.PUT("/tab", h.SetWorkflowTab)
		b.GET("/preferences", h.GetPreferences)

		b.GET("/modal", h.GetModal)
		b.PUT("/modal", h.OpenModal)
		b.DELETE("/modal", h.CloseModal)

		b.DELETE("/error", h.ClearError)

		b.POST("/drag/start", h.DragStart)
		b.POST("/drag/drop", h.DragDrop)
		b.GET("/drag/overlay", h.DragOverlay)
	}
	api.GET("/drafts/:kind", h.GetDraft)
}

func (h *BoardHandler) GetBoard(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// Reload refetches everything. A failed load is reported in the error slot.
func (h *BoardHandler) Reload(c *gin.Context) {
	h.store.LoadData(c.Request.Context())
	c.JSON(http.StatusOK, h.store.Snapshot())
}

func (h *BoardHandler) GetColumns(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Columns())
}

func (h *BoardHandler) MoveCard(c *gin.Context) {
	var req struct {
		Type  string `json:"type" binding:"required"`
		ID    string `json:"id" binding:"required"`
		Stage string `json:"stage" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	kind, ok := parseKind(req.Type)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown card type"})
		return
	}

	h.store.MoveCard(c.Request.Context(), kind, req.ID, req.Stage)
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// Events streams store changes as server-sent events until the client leaves.
func (h *BoardHandler) Events(c *gin.Context) {
	events, cancel := h.store.Subscribe()
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.Writer.WriteString("event: connected\ndata: {}\n\n")
	c.Writer.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			data, _ := json.Marshal(event)
			c.Writer.WriteString(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, data))
			c.Writer.Flush()
		case <-heartbeat.C:
			c.Writer.WriteString(": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}

func (h *BoardHandler) SetWorkflowTab(c *gin.Context) {
	var req struct {
		Tab string `json:"tab" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	tab, ok := board.ParseWorkflowTab(req.Tab)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tab must be one of both, orders, expenses"})
		return
	}

	h.store.SetWorkflowTab(tab)
	if h.cache != nil {
		prefs := &redis.Preferences{WorkflowTab: string(tab)}
		if err := h.cache.SetPreferences(c.Request.Context(), sessionID(c), prefs, h.prefsTTL); err != nil {
			h.log.Warn("Failed to save preferences", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"workflow_tab": tab})
}

// GetPreferences returns the browser's saved tab, or the default.
func (h *BoardHandler) GetPreferences(c *gin.Context) {
	tab := board.TabBoth
	if h.cache != nil {
		prefs, err := h.cache.GetPreferences(c.Request.Context(), sessionID(c))
		switch {
		case err == nil:
			if saved, ok := board.ParseWorkflowTab(prefs.WorkflowTab); ok {
				tab = saved
			}
		case !errors.Is(err, redis.ErrCacheMiss):
			h.log.Warn("Failed to read preferences", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"workflow_tab": tab})
}

func (h *BoardHandler) GetModal(c *gin.Context) {
	modal, card, ok := h.store.ActiveRecord()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"modal": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"modal":   modal,
		"title":   modal.Title(),
		"record":  card,
		"summary": summarize(card),
	})
}

// summarize renders the figures the detail dialog shows.
func summarize(card board.Card) gin.H {
	switch {
	case card.Order != nil:
		o := card.Order
		customer := "—"
		if o.Customer != nil {
			customer = o.Customer.Name
		}
		return gin.H{
			"number":      o.OrderNumber,
			"customer":    customer,
			"quote":       format.Amount(o.QuoteAmount),
			"final_price": format.INR(o.FinalPrice),
			"advance":     format.Amount(o.Advance),
			"outstanding": format.Amount(o.Outstanding),
			"due":         format.ShortDate(o.DueAt),
			"progress":    pipeline.ProgressPercentage(string(o.Stage)),
		}
	case card.Expense != nil:
		e := card.Expense
		vendor := "—"
		if e.Vendor != nil {
			vendor = e.Vendor.Name
		}
		return gin.H{
			"number":    e.ExpenseNumber,
			"vendor":    vendor,
			"bill":      format.Amount(e.BillAmount),
			"paid":      format.Amount(e.PaidAmount),
			"for_order": e.ForOrderLabel(),
			"due":       format.ShortDate(e.DueAt),
		}
	}
	return gin.H{}
}

func (h *BoardHandler) OpenModal(c *gin.Context) {
	var req board.ModalState
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.store.OpenModal(req.Kind, req.ID, req.Stage); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.Snapshot())
}

func (h *BoardHandler) CloseModal(c *gin.Context) {
	h.store.CloseModal()
	c.JSON(http.StatusOK, h.store.Snapshot())
}

func (h *BoardHandler) ClearError(c *gin.Context) {
	h.store.ClearError()
	c.JSON(http.StatusOK, h.store.Snapshot())
}

func (h *BoardHandler) DragStart(c *gin.Context) {
	var item board.DragItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if err := h.drag.PickUp(item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.DragState())
}

// DragDrop ends the drag. An empty body, or no stage, drops outside any column.
func (h *BoardHandler) DragDrop(c *gin.Context) {
	var target pipeline.Column
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&target); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
	}

	var moved bool
	if target.Stage == "" {
		moved = h.drag.Drop(c.Request.Context(), nil)
	} else {
		moved = h.drag.Drop(c.Request.Context(), &target)
	}
	c.JSON(http.StatusOK, gin.H{
		"moved": moved,
		"board": h.store.Snapshot(),
	})
}

func (h *BoardHandler) DragOverlay(c *gin.Context) {
	card, ok := h.drag.Overlay()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"card": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"card": card})
}

// GetDraft returns the half-filled creation dialog saved for this browser.
func (h *BoardHandler) GetDraft(c *gin.Context) {
	kind, ok := parseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown draft kind"})
		return
	}
	if h.cache == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Draft not found"})
		return
	}

	draft, err := h.cache.GetDraft(c.Request.Context(), string(kind), sessionID(c))
	if err != nil {
		if errors.Is(err, redis.ErrCacheMiss) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Draft not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read draft"})
		return
	}
	c.JSON(http.StatusOK, draft)
}
