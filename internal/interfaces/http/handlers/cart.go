// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/cloudeats-backend/internal/domain/cart"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	store *cart.Store
}

// NewCartHandler creates a new cart handler
func NewCartHandler(store *cart.Store) *CartHandler {
	return &CartHandler{
		store: store,
	}
}

// AddItemRequest represents an item to add to the cart. UnitPrice is a
// pointer so an explicit zero (a free item) passes required validation.
type AddItemRequest struct {
	ItemID    int64  `json:"item_id" binding:"required"`
	ItemName  string `json:"item_name" binding:"required"`
	UnitPrice *int64 `json:"unit_price" binding:"required,min=0"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest represents a quantity change for a cart line
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GetCart handles GET /cart/:userId
func (h *CartHandler) GetCart(c *gin.Context) {
	ownerID, ok := parseOwnerID(c)
	if !ok {
		return
	}

	current, err := h.store.Get(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    current,
	})
}

// AddItem handles POST /cart/:userId/items
func (h *CartHandler) AddItem(c *gin.Context) {
	ownerID, ok := parseOwnerID(c)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	updated, err := h.store.AddItem(c.Request.Context(), ownerID, req.ItemID, req.ItemName, *req.UnitPrice, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    updated,
	})
}

// UpdateItem handles PUT /cart/:userId/items/:itemId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	ownerID, ok := parseOwnerID(c)
	if !ok {
		return
	}

	itemID, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid item ID",
		})
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	updated, err := h.store.SetItemQuantity(c.Request.Context(), ownerID, itemID, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    updated,
	})
}

// RemoveItem handles DELETE /cart/:userId/items/:itemId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	ownerID, ok := parseOwnerID(c)
	if !ok {
		return
	}

	itemID, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid item ID",
		})
		return
	}

	updated, err := h.store.RemoveItem(c.Request.Context(), ownerID, itemID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    updated,
	})
}

// ClearCart handles DELETE /cart/:userId
func (h *CartHandler) ClearCart(c *gin.Context) {
	ownerID, ok := parseOwnerID(c)
	if !ok {
		return
	}

	if err := h.store.Clear(c.Request.Context(), ownerID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

func (h *CartHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrCartNotFound), errors.Is(err, cart.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Cart storage unavailable",
		})
	}
}

// parseOwnerID reads the user id path parameter, writing a 400 response
// on malformed input
func parseOwnerID(c *gin.Context) (int64, bool) {
	ownerID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || ownerID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return 0, false
	}
	return ownerID, true
}
