package order

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/your-org/cloudeats-backend/internal/domain/cart"
)

type fakeCartStore struct {
	cart *cart.Cart
	err  error

	clearErr       error
	clearedVersion int64
	clearCalls     int
}

func (f *fakeCartStore) Get(ctx context.Context, ownerID int64) (*cart.Cart, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cart, nil
}

func (f *fakeCartStore) ClearIfUnchanged(ctx context.Context, ownerID, version int64) (bool, error) {
	f.clearCalls++
	f.clearedVersion = version
	if f.clearErr != nil {
		return false, f.clearErr
	}
	return true, nil
}

type fakeLedger struct {
	insertErr error
	inserted  []*Order

	orders map[string]*Order

	updateErr error
	cancelErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{orders: map[string]*Order{}}
}

func (f *fakeLedger) Insert(ctx context.Context, o *Order) (primitive.ObjectID, error) {
	if f.insertErr != nil {
		return primitive.NilObjectID, f.insertErr
	}
	id := primitive.NewObjectID()
	stored := *o
	stored.ID = id
	f.orders[id.Hex()] = &stored
	f.inserted = append(f.inserted, &stored)
	return id, nil
}

func (f *fakeLedger) FindByID(ctx context.Context, id string) (*Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeLedger) FindByOwner(ctx context.Context, ownerID int64) ([]Order, error) {
	var out []Order
	for _, o := range f.orders {
		if o.OwnerID == ownerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeLedger) FindAll(ctx context.Context, status Status, limit int64) ([]Order, error) {
	var out []Order
	for _, o := range f.orders {
		if status != "" && o.Status != status {
			continue
		}
		if int64(len(out)) >= limit {
			break
		}
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeLedger) UpdateStatus(ctx context.Context, id string, next Status) (*Order, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, ErrInvalidState
	}
	o.Status = next
	o.UpdatedAt = time.Now().UTC()
	return o, nil
}

func (f *fakeLedger) Cancel(ctx context.Context, id string) (*Order, error) {
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	if o.Status != StatusPending {
		return nil, ErrInvalidState
	}
	o.Status = StatusCancelled
	o.UpdatedAt = time.Now().UTC()
	return o, nil
}

type fakeMirror struct {
	err      error
	upserted []*Order
}

func (f *fakeMirror) Upsert(ctx context.Context, o *Order) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, o)
	return nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testCart() *cart.Cart {
	c := cart.NewCart(42)
	c.AddItem(10, "Margherita Pizza", 1250, 2)
	c.AddItem(11, "Garlic Bread", 450, 1)
	return c
}

func TestPlaceOrder(t *testing.T) {
	carts := &fakeCartStore{cart: testCart()}
	ledger := newFakeLedger()
	mirror := &fakeMirror{}
	svc := NewService(carts, ledger, mirror, testLogger())

	placed, err := svc.PlaceOrder(context.Background(), 42, &PlaceOrderRequest{
		DeliveryAddress: "1 Main St",
	})

	require.NoError(t, err)
	assert.False(t, placed.ID.IsZero())
	assert.Equal(t, int64(42), placed.OwnerID)
	assert.Equal(t, StatusPending, placed.Status)
	assert.Equal(t, "cash", placed.PaymentMethod)
	assert.Equal(t, int64(2950), placed.TotalAmount)
	require.Len(t, placed.Items, 2)

	// Cart cleared against the snapshot version, mirror written.
	assert.Equal(t, 1, carts.clearCalls)
	assert.Equal(t, carts.cart.Version, carts.clearedVersion)
	require.Len(t, mirror.upserted, 1)
	assert.Equal(t, placed.ID, mirror.upserted[0].ID)
}

func TestPlaceOrderKeepsExplicitPaymentMethod(t *testing.T) {
	carts := &fakeCartStore{cart: testCart()}
	svc := NewService(carts, newFakeLedger(), &fakeMirror{}, testLogger())

	placed, err := svc.PlaceOrder(context.Background(), 42, &PlaceOrderRequest{
		DeliveryAddress: "1 Main St",
		PaymentMethod:   "card",
	})

	require.NoError(t, err)
	assert.Equal(t, "card", placed.PaymentMethod)
}

func TestPlaceOrderRequiresAddress(t *testing.T) {
	carts := &fakeCartStore{cart: testCart()}
	ledger := newFakeLedger()
	svc := NewService(carts, ledger, &fakeMirror{}, testLogger())

	_, err := svc.PlaceOrder(context.Background(), 42, &PlaceOrderRequest{
		DeliveryAddress: "   ",
	})

	assert.ErrorIs(t, err, ErrAddressRequired)
	assert.Empty(t, ledger.inserted)
	assert.Zero(t, carts.clearCalls)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	carts := &fakeCartStore{cart: cart.NewCart(42)}
	ledger := newFakeLedger()
	svc := NewService(carts, ledger, &fakeMirror{}, testLogger())

	_, err := svc.PlaceOrder(context.Background(), 42, &PlaceOrderRequest{
		DeliveryAddress: "1 Main St",
	})

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, ledger.inserted)
}

func TestPlaceOrderCartStoreDown(t *testing.T) {
	carts := &fakeCartStore{err: errors.New("connection refused")}
	ledger := newFakeLedger()
	svc := NewService(carts, ledger, &fakeMirror{}, testLogger())

	_, err := svc.PlaceOrder(context.Background(), 42, &PlaceOrderRequest{
		DeliveryAddress: "1 Main St",
	})

	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Empty(t, ledger.inserted)
}

func TestPlaceOrderLedgerFailureLeavesCart(t *testing.T) {
	carts := &fakeCartStore{cart: testCart()}
	ledger := newFakeLedger()
	ledger.insertErr = errors.New("write concern timeout")
	svc := NewService(carts, ledger, &fakeMirror{}, testLogger())

	_, err := svc.PlaceOrder(context.Background(), 42, &PlaceOrderRequest{
		DeliveryAddress: "1 Main St",
	})

	assert.ErrorIs(t, err, ErrPlacementFailed)
	assert.Zero(t, carts.clearCalls, "cart must be untouched so the client can retry")
}

func TestPlaceOrderSucceedsWhenCartClearFails(t *testing.T) {
	carts := &fakeCartStore{cart: testCart(), clearErr: errors.New("connection reset")}
	ledger := newFakeLedger()
	svc := NewService(carts, ledger, &fakeMirror{}, testLogger())

	placed, err := svc.PlaceOrder(context.Background(), 42, &PlaceOrderRequest{
		DeliveryAddress: "1 Main St",
	})

	require.NoError(t, err)
	assert.False(t, placed.ID.IsZero())
	assert.Len(t, ledger.inserted, 1)
}

func TestPlaceOrderSucceedsWhenMirrorFails(t *testing.T) {
	carts := &fakeCartStore{cart: testCart()}
	ledger := newFakeLedger()
	mirror := &fakeMirror{err: errors.New("postgres down")}
	svc := NewService(carts, ledger, mirror, testLogger())

	placed, err := svc.PlaceOrder(context.Background(), 42, &PlaceOrderRequest{
		DeliveryAddress: "1 Main St",
	})

	require.NoError(t, err)

	// The order is durable and retrievable despite the mirror outage.
	got, err := svc.GetOrder(context.Background(), placed.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, placed.ID, got.ID)
}

func TestUpdateStatus(t *testing.T) {
	carts := &fakeCartStore{cart: testCart()}
	ledger := newFakeLedger()
	mirror := &fakeMirror{}
	svc := NewService(carts, ledger, mirror, testLogger())

	placed, err := svc.PlaceOrder(context.Background(), 42, &PlaceOrderRequest{
		DeliveryAddress: "1 Main St",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), placed.ID.Hex(), StatusConfirmed)

	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.Status)

	// Placement plus transition both hit the mirror.
	assert.Len(t, mirror.upserted, 2)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := NewService(&fakeCartStore{}, newFakeLedger(), &fakeMirror{}, testLogger())

	_, err := svc.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), Status("shipped"))

	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatusRejectsOffGraphTransition(t *testing.T) {
	carts := &fakeCartStore{cart: testCart()}
	ledger := newFakeLedger()
	svc := NewService(carts, ledger, &fakeMirror{}, testLogger())

	placed, err := svc.PlaceOrder(context.Background(), 42, &PlaceOrderRequest{
		DeliveryAddress: "1 Main St",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), placed.ID.Hex(), StatusDelivered)

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	svc := NewService(&fakeCartStore{}, newFakeLedger(), &fakeMirror{}, testLogger())

	_, err := svc.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), StatusConfirmed)

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancelPendingOrder(t *testing.T) {
	carts := &fakeCartStore{cart: testCart()}
	ledger := newFakeLedger()
	svc := NewService(carts, ledger, &fakeMirror{}, testLogger())

	placed, err := svc.PlaceOrder(context.Background(), 42, &PlaceOrderRequest{
		DeliveryAddress: "1 Main St",
	})
	require.NoError(t, err)

	cancelled, err := svc.CancelOrder(context.Background(), placed.ID.Hex())

	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
}

func TestCancelConfirmedOrderFails(t *testing.T) {
	carts := &fakeCartStore{cart: testCart()}
	ledger := newFakeLedger()
	svc := NewService(carts, ledger, &fakeMirror{}, testLogger())

	placed, err := svc.PlaceOrder(context.Background(), 42, &PlaceOrderRequest{
		DeliveryAddress: "1 Main St",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), placed.ID.Hex(), StatusConfirmed)
	require.NoError(t, err)

	_, err = svc.CancelOrder(context.Background(), placed.ID.Hex())

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestListAllOrdersValidatesStatus(t *testing.T) {
	svc := NewService(&fakeCartStore{}, newFakeLedger(), &fakeMirror{}, testLogger())

	_, err := svc.ListAllOrders(context.Background(), Status("shipped"), 10)

	assert.ErrorIs(t, err, ErrInvalidStatus)
}
