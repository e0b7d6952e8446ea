// internal/domain/order/entity.go
package order

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"github.com/your-org/cloudeats-backend/internal/domain/cart"
)

// Status represents the order status
type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// validTransitions is the forward-only lifecycle of an order. Cancellation
// is only reachable from pending; delivered and cancelled are terminal.
var validTransitions = map[Status][]Status{
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusPreparing},
	StatusPreparing:      {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
}

// IsValid reports whether s is one of the enumerated statuses
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing,
		StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed from s
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// predecessorsOf returns every status from which next is reachable.
// The ledger uses it as an update precondition so that concurrent
// transitions on the same order serialize at the store.
func predecessorsOf(next Status) []Status {
	var from []Status
	for s, allowed := range validTransitions {
		for _, a := range allowed {
			if a == next {
				from = append(from, s)
			}
		}
	}
	return from
}

// Item is a line item frozen into an order at placement time
type Item struct {
	ItemID    int64  `bson:"item_id" json:"item_id"`
	ItemName  string `bson:"item_name" json:"item_name"`
	UnitPrice int64  `bson:"unit_price" json:"unit_price"`
	Quantity  int    `bson:"quantity" json:"quantity"`
}

// Order is the authoritative order document held in the ledger.
// Items and TotalAmount are copied from the cart at placement and
// never change afterwards; only Status and UpdatedAt move.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID         int64              `bson:"owner_id" json:"owner_id"`
	Items           []Item             `bson:"items" json:"items"`
	TotalAmount     int64              `bson:"total_amount" json:"total_amount"`
	DeliveryAddress string             `bson:"delivery_address" json:"delivery_address"`
	Notes           string             `bson:"notes" json:"notes"`
	PaymentMethod   string             `bson:"payment_method" json:"payment_method"`
	Status          Status             `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// itemsFromCart copies cart line items into order items. The copy keeps
// the placed order immutable under later cart mutations.
func itemsFromCart(lines []cart.LineItem) []Item {
	items := make([]Item, len(lines))
	for i, line := range lines {
		items[i] = Item{
			ItemID:    line.ItemID,
			ItemName:  line.ItemName,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		}
	}
	return items
}
