// internal/domain/cart/store.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// maxRetries bounds the optimistic-locking retry loop. Each lost race
// costs one round trip, so the bound is generous; sustained contention
// on a single user's cart would take a stampede of clients.
const maxRetries = 100

// Store persists carts in Redis, one JSON document per owner.
// All mutations run under WATCH/MULTI/EXEC so that two concurrent
// writers for the same owner cannot lose an update.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a cart store. The TTL is re-armed on every write,
// so a cart expires only after a full window of inactivity.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

func cartKey(ownerID int64) string {
	return fmt.Sprintf("cart:user:%d", ownerID)
}

// Get retrieves the cart for the given owner. An absent or expired
// cart is returned as an empty cart, never as an error.
func (s *Store) Get(ctx context.Context, ownerID int64) (*Cart, error) {
	data, err := s.client.Get(ctx, cartKey(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewCart(ownerID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return &c, nil
}

// errNoop signals that a mutation has nothing to write. The current
// cart is returned unchanged and no key is created.
var errNoop = errors.New("cart unchanged")

// AddItem adds quantity of an item to the owner's cart, creating the
// cart if it does not exist yet.
func (s *Store) AddItem(ctx context.Context, ownerID, itemID int64, itemName string, unitPrice int64, quantity int) (*Cart, error) {
	return s.update(ctx, ownerID, func(c *Cart, exists bool) error {
		c.AddItem(itemID, itemName, unitPrice, quantity)
		return nil
	})
}

// SetItemQuantity overwrites an item's quantity. A quantity of zero or
// less removes the line. Fails if the cart or the item does not exist.
func (s *Store) SetItemQuantity(ctx context.Context, ownerID, itemID int64, quantity int) (*Cart, error) {
	return s.update(ctx, ownerID, func(c *Cart, exists bool) error {
		if !exists {
			return ErrCartNotFound
		}
		return c.SetItemQuantity(itemID, quantity)
	})
}

// RemoveItem removes an item from the cart. Removing an absent item,
// or removing from an absent cart, is a no-op.
func (s *Store) RemoveItem(ctx context.Context, ownerID, itemID int64) (*Cart, error) {
	return s.update(ctx, ownerID, func(c *Cart, exists bool) error {
		if !exists {
			return errNoop
		}
		c.RemoveItem(itemID)
		return nil
	})
}

// Clear deletes the owner's cart entirely. Idempotent.
func (s *Store) Clear(ctx context.Context, ownerID int64) error {
	if err := s.client.Del(ctx, cartKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// ClearIfUnchanged deletes the cart only if its version still matches
// the given snapshot version. A cart that was mutated after the snapshot
// was taken is left in place so the mutation is not silently dropped.
// Returns true when the cart is gone (deleted now or already absent).
func (s *Store) ClearIfUnchanged(ctx context.Context, ownerID, version int64) (bool, error) {
	key := cartKey(ownerID)
	cleared := false

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			cleared = true
			return nil
		}
		if err != nil {
			return err
		}

		var c Cart
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		if c.Version != version {
			// Concurrent mutation since the snapshot; keep the cart.
			cleared = false
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		if err == nil {
			cleared = true
		}
		return err
	}

	for i := 0; i < maxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("failed to clear cart: %w", err)
		}
		return cleared, nil
	}
	return false, fmt.Errorf("failed to clear cart: %w", redis.TxFailedErr)
}

// update runs a mutation as an atomic read-modify-write on the owner's
// key. The key is watched while the mutation runs; if another writer
// lands first the transaction fails and the whole cycle is retried
// against the fresh cart.
func (s *Store) update(ctx context.Context, ownerID int64, mutate func(c *Cart, exists bool) error) (*Cart, error) {
	key := cartKey(ownerID)
	var updated *Cart

	txf := func(tx *redis.Tx) error {
		c := NewCart(ownerID)
		exists := false
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			if err := json.Unmarshal(data, c); err != nil {
				return fmt.Errorf("failed to decode cart: %w", err)
			}
			exists = true
		}

		if err := mutate(c, exists); err != nil {
			if errors.Is(err, errNoop) {
				updated = c
				return nil
			}
			return err
		}

		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to encode cart: %w", err)
		}

		// Every write re-arms the expiration window.
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		if err == nil {
			updated = c
		}
		return err
	}

	for i := 0; i < maxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			if errors.Is(err, ErrCartNotFound) || errors.Is(err, ErrItemNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to update cart: %w", err)
		}
		return updated, nil
	}
	return nil, fmt.Errorf("failed to update cart: %w", redis.TxFailedErr)
}
