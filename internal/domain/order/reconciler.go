// internal/domain/order/reconciler.go
package order

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// reconcileOverlap is subtracted from each scan's watermark so that
// writes racing the previous scan are picked up again. Upserts are
// idempotent, so re-projecting an order twice is harmless.
const reconcileOverlap = time.Minute

// LedgerScanner is the slice of the ledger the reconciler reads
type LedgerScanner interface {
	FindUpdatedSince(ctx context.Context, since time.Time) ([]Order, error)
}

// Reconciler periodically re-projects recently changed ledger orders
// into the mirror. It repairs rows the placement pipeline failed to
// write, so the mirror converges even across Postgres outages.
type Reconciler struct {
	ledger   LedgerScanner
	mirror   MirrorStore
	interval time.Duration
	logger   *logrus.Logger
}

// NewReconciler creates a reconciler scanning at the given interval
func NewReconciler(ledger LedgerScanner, mirror MirrorStore, interval time.Duration, logger *logrus.Logger) *Reconciler {
	return &Reconciler{
		ledger:   ledger,
		mirror:   mirror,
		interval: interval,
		logger:   logger,
	}
}

// Run scans until the context is cancelled. Meant to be started as a
// goroutine next to the HTTP server.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Cold start re-projects one full interval back.
	since := time.Now().UTC().Add(-r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			next := time.Now().UTC()
			r.ReconcileSince(ctx, since.Add(-reconcileOverlap))
			since = next
		}
	}
}

// ReconcileSince re-projects every order changed at or after since.
// A single failed upsert is logged and skipped; the next scan retries it.
func (r *Reconciler) ReconcileSince(ctx context.Context, since time.Time) {
	orders, err := r.ledger.FindUpdatedSince(ctx, since)
	if err != nil {
		r.logger.WithError(err).Error("reconciler scan failed")
		return
	}
	if len(orders) == 0 {
		return
	}

	repaired := 0
	for i := range orders {
		if err := r.mirror.Upsert(ctx, &orders[i]); err != nil {
			r.logger.WithError(err).WithField("order_id", orders[i].ID.Hex()).
				Warn("reconciler upsert failed")
			continue
		}
		repaired++
	}

	r.logger.WithFields(logrus.Fields{
		"scanned":  len(orders),
		"repaired": repaired,
	}).Debug("reconcile pass complete")
}
