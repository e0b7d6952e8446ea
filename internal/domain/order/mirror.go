// internal/domain/order/mirror.go
package order

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRecord is the relational projection of a ledger order. It exists
// for queries the ledger's document model does not serve well (user to
// orders joins, reporting). It is derived, never authoritative.
type OrderRecord struct {
	OrderID         string    `gorm:"primaryKey;size:24" json:"order_id"`
	OwnerID         int64     `gorm:"not null;index" json:"owner_id"`
	TotalAmount     int64     `gorm:"not null" json:"total_amount"`
	Status          string    `gorm:"not null;index;size:32" json:"status"`
	DeliveryAddress string    `gorm:"type:text" json:"delivery_address"`
	Notes           string    `gorm:"type:text" json:"notes"`
	PaymentMethod   string    `gorm:"size:32" json:"payment_method"`
	CreatedAt       time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// TableName overrides the table name
func (OrderRecord) TableName() string {
	return "order_records"
}

// Mirror maintains the relational order index in Postgres
type Mirror struct {
	db *gorm.DB
}

// NewMirror creates a mirror over the given database handle
func NewMirror(db *gorm.DB) *Mirror {
	return &Mirror{db: db}
}

// Upsert writes the projection of a ledger order, keyed by the ledger
// id. Repeating the write for the same order is safe, which lets both
// the placement pipeline and the reconciler call it blindly.
func (m *Mirror) Upsert(ctx context.Context, o *Order) error {
	record := recordFromOrder(o)

	err := m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "updated_at",
		}),
	}).Create(&record).Error

	if err != nil {
		return fmt.Errorf("failed to upsert order record: %w", err)
	}
	return nil
}

// ListByOwner returns a user's order projections, newest first
func (m *Mirror) ListByOwner(ctx context.Context, ownerID int64) ([]OrderRecord, error) {
	records := []OrderRecord{}
	err := m.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&records).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list order records: %w", err)
	}
	return records, nil
}

// FindByOrderID returns a single projection by ledger id
func (m *Mirror) FindByOrderID(ctx context.Context, orderID string) (*OrderRecord, error) {
	var record OrderRecord
	err := m.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&record).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order record: %w", err)
	}
	return &record, nil
}

func recordFromOrder(o *Order) OrderRecord {
	return OrderRecord{
		OrderID:         o.ID.Hex(),
		OwnerID:         o.OwnerID,
		TotalAmount:     o.TotalAmount,
		Status:          string(o.Status),
		DeliveryAddress: o.DeliveryAddress,
		Notes:           o.Notes,
		PaymentMethod:   o.PaymentMethod,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
