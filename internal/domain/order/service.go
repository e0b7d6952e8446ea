// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"github.com/your-org/cloudeats-backend/internal/domain/cart"
)

// defaultListLimit caps admin order listings when no limit is given
const defaultListLimit = 50

// CartStore is the slice of the cart store the orchestrator needs
type CartStore interface {
	Get(ctx context.Context, ownerID int64) (*cart.Cart, error)
	ClearIfUnchanged(ctx context.Context, ownerID, version int64) (bool, error)
}

// LedgerStore is the authoritative order store
type LedgerStore interface {
	Insert(ctx context.Context, o *Order) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByOwner(ctx context.Context, ownerID int64) ([]Order, error)
	FindAll(ctx context.Context, status Status, limit int64) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, next Status) (*Order, error)
	Cancel(ctx context.Context, id string) (*Order, error)
}

// MirrorStore receives derived order projections
type MirrorStore interface {
	Upsert(ctx context.Context, o *Order) error
}

// Service drives the cart-to-order pipeline. The ledger write is the
// commit point: everything after it is best effort and must never fail
// an already-placed order.
type Service struct {
	carts  CartStore
	ledger LedgerStore
	mirror MirrorStore
	logger *logrus.Logger
}

// NewService creates an order service. All store handles are passed in
// explicitly so instances are independent and testable with doubles.
func NewService(carts CartStore, ledger LedgerStore, mirror MirrorStore, logger *logrus.Logger) *Service {
	return &Service{
		carts:  carts,
		ledger: ledger,
		mirror: mirror,
		logger: logger,
	}
}

// PlaceOrderRequest represents order placement data
type PlaceOrderRequest struct {
	DeliveryAddress string `json:"delivery_address" binding:"required"`
	Notes           string `json:"notes"`
	PaymentMethod   string `json:"payment_method"`
}

// PlaceOrder converts the owner's cart into a durable order.
//
// The pipeline is: snapshot the cart, insert the order into the ledger,
// then clear the cart and project into the mirror. Only the ledger
// insert can abort the operation; on its failure the cart is untouched
// so the client may simply retry. Cart-clear and mirror failures after
// the insert are logged and swallowed.
func (s *Service) PlaceOrder(ctx context.Context, ownerID int64, req *PlaceOrderRequest) (*Order, error) {
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return nil, ErrAddressRequired
	}

	snapshot, err := s.carts.Get(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: reading cart: %v", ErrStorageUnavailable, err)
	}
	if snapshot.IsEmpty() {
		return nil, ErrEmptyCart
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "cash"
	}

	now := time.Now().UTC()
	o := &Order{
		OwnerID:         ownerID,
		Items:           itemsFromCart(snapshot.Items),
		TotalAmount:     snapshot.Total,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		PaymentMethod:   paymentMethod,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// Commit point. Once this write succeeds the order exists no
	// matter what happens to the cart or the mirror below.
	id, err := s.ledger.Insert(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlacementFailed, err)
	}
	o.ID = id

	// The clear is conditional on the snapshot version: a cart mutated
	// between the snapshot and here is kept rather than dropped.
	cleared, err := s.carts.ClearIfUnchanged(ctx, ownerID, snapshot.Version)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"owner_id": ownerID,
			"order_id": o.ID.Hex(),
		}).Warn("order placed but cart clear failed")
	} else if !cleared {
		s.logger.WithFields(logrus.Fields{
			"owner_id": ownerID,
			"order_id": o.ID.Hex(),
		}).Info("cart changed during order placement, leaving it in place")
	}

	s.projectToMirror(ctx, o)

	return o, nil
}

// GetOrder retrieves a single order from the ledger
func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.ledger.FindByID(ctx, id)
}

// ListOrders returns a user's orders, newest first
func (s *Service) ListOrders(ctx context.Context, ownerID int64) ([]Order, error) {
	return s.ledger.FindByOwner(ctx, ownerID)
}

// ListAllOrders returns recent orders across all users, optionally
// filtered by status
func (s *Service) ListAllOrders(ctx context.Context, status Status, limit int64) ([]Order, error) {
	if status != "" && !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.ledger.FindAll(ctx, status, limit)
}

// UpdateStatus moves an order along the lifecycle. Off-graph jumps are
// rejected; the precondition check is atomic at the ledger.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status) (*Order, error) {
	if !next.IsValid() {
		return nil, ErrInvalidStatus
	}

	o, err := s.ledger.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}

	s.projectToMirror(ctx, o)
	return o, nil
}

// CancelOrder cancels a pending order. Any other status fails the
// precondition.
func (s *Service) CancelOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.ledger.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}

	s.projectToMirror(ctx, o)
	return o, nil
}

// projectToMirror pushes the derived projection. The mirror is allowed
// to be down or stale; divergence is repaired by the reconciler, so a
// failure here is logged and never surfaced to the caller.
func (s *Service) projectToMirror(ctx context.Context, o *Order) {
	if err := s.mirror.Upsert(ctx, o); err != nil {
		s.logger.WithError(err).WithField("order_id", o.ID.Hex()).
			Warn("mirror write failed, reconciler will repair")
	}
}
