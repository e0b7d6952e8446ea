package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// Moving an order to pending can never satisfy the transition graph:
// no status leads back to it. The ledger must report that as a
// lifecycle violation, not trip over an unbuildable $in precondition.
func TestUpdateStatusToPendingIsInvalidState(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("existing order", func(mt *mtest.T) {
		ledger := NewLedger(mt.DB)
		id := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateCursorResponse(1, mt.DB.Name()+".orders", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "owner_id", Value: int64(42)},
			{Key: "status", Value: StatusConfirmed},
		}))

		_, err := ledger.UpdateStatus(context.Background(), id.Hex(), StatusPending)

		assert.ErrorIs(mt, err, ErrInvalidState)
	})

	mt.Run("unknown order", func(mt *mtest.T) {
		ledger := NewLedger(mt.DB)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".orders", mtest.FirstBatch))

		_, err := ledger.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), StatusPending)

		assert.ErrorIs(mt, err, ErrOrderNotFound)
	})
}
