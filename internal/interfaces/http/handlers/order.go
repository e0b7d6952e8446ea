// internal/interfaces/http/handlers/order.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/cloudeats-backend/internal/domain/order"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	service *order.Service
	mirror  *order.Mirror
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(service *order.Service, mirror *order.Mirror) *OrderHandler {
	return &OrderHandler{
		service: service,
		mirror:  mirror,
	}
}

// placeOrderRequest represents the order placement payload
type placeOrderRequest struct {
	UserID          int64  `json:"user_id" binding:"required"`
	DeliveryAddress string `json:"delivery_address" binding:"required"`
	Notes           string `json:"notes"`
	PaymentMethod   string `json:"payment_method"`
}

// updateStatusRequest represents a status transition payload
type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PlaceOrder handles POST /orders
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	placed, err := h.service.PlaceOrder(c.Request.Context(), req.UserID, &order.PlaceOrderRequest{
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    placed,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	found, err := h.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    found,
	})
}

// ListOrders handles GET /orders. Admin view across all users, with an
// optional status filter and a limit on the result size.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	status := order.Status(c.Query("status"))

	var limit int64
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.ParseInt(limitParam, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit",
			})
			return
		}
		limit = parsed
	}

	orders, err := h.service.ListAllOrders(c.Request.Context(), status, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
		"count":   len(orders),
	})
}

// ListUserOrders handles GET /orders/user/:userId
func (h *OrderHandler) ListUserOrders(c *gin.Context) {
	ownerID, ok := parseOwnerID(c)
	if !ok {
		return
	}

	orders, err := h.service.ListOrders(c.Request.Context(), ownerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
		"count":   len(orders),
	})
}

// ListUserOrderHistory handles GET /orders/user/:userId/history. Serves
// the relational projection instead of the ledger, so listings stay up
// even when the document store is degraded.
func (h *OrderHandler) ListUserOrderHistory(c *gin.Context) {
	ownerID, ok := parseOwnerID(c)
	if !ok {
		return
	}

	records, err := h.mirror.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order history retrieved successfully",
		"data":    records,
		"count":   len(records),
	})
}

// UpdateStatus handles PUT /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), order.Status(req.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"data":    updated,
	})
}

// CancelOrder handles DELETE /orders/:id
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	cancelled, err := h.service.CancelOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
		"data":    cancelled,
	})
}

func (h *OrderHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrAddressRequired),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, order.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, order.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, order.ErrPlacementFailed),
		errors.Is(err, order.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
