package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stayhook/internal/domain"
)

// ClaimDelivery serializes claims for one (property, email) pair on a lock
// row, so the check and the insert are atomic across processes.
func (r *Repo) ClaimDelivery(ctx context.Context, d domain.GuidebookDelivery, window, inflight time.Duration) (claimed bool, err error) {
	// Created outside the transaction: duplicate-key checks inside it take
	// shared locks that deadlock against the FOR UPDATE below.
	if _, err = r.db.ExecContext(ctx, ensureDeliveryLockSQL, d.PropertyID, d.GuestEmail); err != nil {
		return false, fmt.Errorf("ensure lock row: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil || !claimed {
			_ = tx.Rollback()
		}
	}()

	var pid string
	if err = tx.QueryRowContext(ctx, lockDeliveryPairSQL, d.PropertyID, d.GuestEmail).Scan(&pid); err != nil {
		return false, fmt.Errorf("lock pair: %w", err)
	}

	now := d.CreatedAt.UTC()
	if now.IsZero() {
		now = time.Now().UTC()
	}
	var n int
	if err = tx.QueryRowContext(ctx, countBlockingDeliveriesSQL,
		d.PropertyID, d.GuestEmail, now.Add(-window), now.Add(-inflight)).Scan(&n); err != nil {
		return false, fmt.Errorf("count deliveries: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	status := d.Status
	if status == "" {
		status = domain.DeliveryPending
	}
	if _, err = tx.ExecContext(ctx, insertDeliverySQL,
		d.ID, d.PropertyID, valStr(d.ReservationID), d.GuestEmail, d.GuestName,
		d.Language, d.GuideURL, string(status), d.Source, now,
	); err != nil {
		return false, fmt.Errorf("insert delivery: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repo) CompleteDelivery(ctx context.Context, id string, status domain.DeliveryStatus, sentAt *time.Time, providerID *string) error {
	_, err := r.db.ExecContext(ctx, completeDeliverySQL, string(status), valTime(sentAt), valStr(providerID), id)
	return err
}
