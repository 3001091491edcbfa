package handlers

import (
	"net/http"
	"strings"

	"furniture_board/internal/board"
	"furniture_board/internal/models"

	"github.com/gin-gonic/gin"
)

// DirectoryHandler serves the customer and vendor lists the dialogs pick from.
// Creating a name that already exists, ignoring case, answers the existing
// record with 200 instead of adding a duplicate.
type DirectoryHandler struct {
	store  *board.Store
	intake *board.Intake
}

func NewDirectoryHandler(store *board.Store, intake *board.Intake) *DirectoryHandler {
	return &DirectoryHandler{store: store, intake: intake}
}

func createdStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}

func (h *DirectoryHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/customers", h.ListCustomers)
	api.POST("/customers", h.CreateCustomer)
	api.GET("/vendors", h.ListVendors)
	api.POST("/vendors", h.CreateVendor)
}

func (h *DirectoryHandler) ListCustomers(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot().Customers)
}

func (h *DirectoryHandler) CreateCustomer(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	customer, created, err := h.intake.RegisterCustomer(c.Request.Context(), models.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(createdStatus(created), customer)
}

func (h *DirectoryHandler) ListVendors(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot().Vendors)
}

func (h *DirectoryHandler) CreateVendor(c *gin.Context) {
	var req struct {
		Name         string `json:"name" binding:"required"`
		Contact      string `json:"contact"`
		Email        string `json:"email"`
		Phone        string `json:"phone"`
		Address      string `json:"address"`
		PaymentTerms *int   `json:"payment_terms" binding:"omitempty,gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	vendor, created, err := h.intake.RegisterVendor(c.Request.Context(), models.Vendor{
		Name:    req.Name,
		Contact: req.Contact,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}, req.PaymentTerms)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(createdStatus(created), vendor)
}
