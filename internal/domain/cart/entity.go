// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"time"
)

var (
	// ErrCartNotFound is returned when an operation requires an existing cart
	ErrCartNotFound = errors.New("cart not found")
	// ErrItemNotFound is returned when the referenced line item is not in the cart
	ErrItemNotFound = errors.New("item not found in cart")
)

// LineItem represents a single menu item in a cart.
// UnitPrice is stored in cents to keep totals exact.
type LineItem struct {
	ItemID    int64  `json:"item_id"`
	ItemName  string `json:"item_name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Cart represents a user's shopping cart stored in Redis.
// Version increases on every mutation so writers can detect
// that the cart changed since they read it.
type Cart struct {
	OwnerID   int64      `json:"owner_id"`
	Items     []LineItem `json:"items"`
	Total     int64      `json:"total"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart returns an empty cart for the given owner
func NewCart(ownerID int64) *Cart {
	now := time.Now().UTC()
	return &Cart{
		OwnerID:   ownerID,
		Items:     []LineItem{},
		Total:     0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsEmpty reports whether the cart has no line items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// AddItem adds a line item, incrementing the quantity if the item
// is already present. The total is recomputed afterwards.
func (c *Cart) AddItem(itemID int64, itemName string, unitPrice int64, quantity int) {
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			c.Items[i].Quantity += quantity
			c.touch()
			return
		}
	}

	c.Items = append(c.Items, LineItem{
		ItemID:    itemID,
		ItemName:  itemName,
		UnitPrice: unitPrice,
		Quantity:  quantity,
	})
	c.touch()
}

// SetItemQuantity overwrites the quantity of an existing line item.
// A quantity of zero or less removes the item entirely; a cart never
// stores a line at quantity zero.
func (c *Cart) SetItemQuantity(itemID int64, quantity int) error {
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			if quantity <= 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			} else {
				c.Items[i].Quantity = quantity
			}
			c.touch()
			return nil
		}
	}
	return ErrItemNotFound
}

// RemoveItem removes a line item. Removing an absent item is a no-op.
func (c *Cart) RemoveItem(itemID int64) {
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			break
		}
	}
	c.touch()
}

// touch recomputes the total and bumps the version and timestamp.
// Every mutation goes through here so the total is never stale.
func (c *Cart) touch() {
	var total int64
	for _, item := range c.Items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	c.Total = total
	c.Version++
	c.UpdatedAt = time.Now().UTC()
}
