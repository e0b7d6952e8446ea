// internal/domain/order/ledger.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Ledger is the authoritative store of placed orders, backed by MongoDB.
// An order exists once its insert succeeds here, regardless of what
// happens to the cart or the relational mirror afterwards.
type Ledger struct {
	collection *mongo.Collection
}

// NewLedger creates a ledger over the orders collection
func NewLedger(db *mongo.Database) *Ledger {
	return &Ledger{
		collection: db.Collection("orders"),
	}
}

// CreateIndexes creates the query indexes the ledger relies on
func (l *Ledger) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := l.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}

// Insert writes a new order document and returns its assigned id
func (l *Ledger) Insert(ctx context.Context, o *Order) (primitive.ObjectID, error) {
	result, err := l.collection.InsertOne(ctx, o)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert order: %w", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return id, nil
}

// FindByID retrieves a single order. A malformed id is reported the
// same way as an unknown one.
func (l *Ledger) FindByID(ctx context.Context, id string) (*Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	var o Order
	err = l.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

// FindByOwner returns a user's orders, newest first
func (l *Ledger) FindByOwner(ctx context.Context, ownerID int64) ([]Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := l.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := []Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// FindAll returns recent orders across all users, optionally filtered
// by status, newest first
func (l *Ledger) FindAll(ctx context.Context, status Status, limit int64) ([]Order, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := l.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := []Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// FindUpdatedSince returns orders whose last change is at or after the
// given time. The reconciler uses it to re-derive mirror rows.
func (l *Ledger) FindUpdatedSince(ctx context.Context, since time.Time) ([]Order, error) {
	filter := bson.M{"updated_at": bson.M{"$gte": since}}

	cursor, err := l.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list updated orders: %w", err)
	}

	orders := []Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves an order to the given status. The current status
// is part of the update filter, so the lifecycle check and the write
// are a single atomic operation: a concurrent transition on the same
// order cannot slip in between.
func (l *Ledger) UpdateStatus(ctx context.Context, id string, next Status) (*Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	// A status no other status leads to (pending) yields an empty
	// predecessor list, which cannot be expressed as an $in filter.
	// Resolve it the same way a failed precondition is resolved.
	preds := predecessorsOf(next)
	if len(preds) == 0 {
		if _, err := l.FindByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrInvalidState
	}

	filter := bson.M{
		"_id":    oid,
		"status": bson.M{"$in": preds},
	}
	update := bson.M{
		"$set": bson.M{
			"status":     next,
			"updated_at": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o Order
	err = l.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&o)
	if err == nil {
		return &o, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	// No document matched: either the order does not exist, or its
	// current status does not allow this transition.
	if _, err := l.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrInvalidState
}

// Cancel marks a pending order as cancelled. Like UpdateStatus, the
// pending precondition rides in the filter so a concurrent confirm
// cannot race the cancel into an inconsistent terminal state.
func (l *Ledger) Cancel(ctx context.Context, id string) (*Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	filter := bson.M{
		"_id":    oid,
		"status": StatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     StatusCancelled,
			"updated_at": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o Order
	err = l.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&o)
	if err == nil {
		return &o, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	if _, err := l.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrInvalidState
}
