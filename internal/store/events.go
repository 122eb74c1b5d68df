package store

import (
	"context"
	"fmt"
)

// MarkEventProcessed claims an external event id. A second claim for the
// same id fails with ErrConflict, which is how duplicate webhook
// deliveries are detected inside the checkout transaction.
func (q *Queries) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := q.exec(ctx, `INSERT INTO processed_events (event_id, event_type) VALUES (?, ?)`, eventID, eventType)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("%w: event %s already processed", ErrConflict, eventID)
	}
	return err
}

func (q *Queries) AttachEventSale(ctx context.Context, eventID string, saleID int64) error {
	_, err := q.exec(ctx, `UPDATE processed_events SET sale_id = ? WHERE event_id = ?`, saleID, eventID)
	return err
}

func (q *Queries) EventProcessed(ctx context.Context, eventID string) (bool, error) {
	var n int
	if err := q.get(ctx, &n, `SELECT COUNT(*) FROM processed_events WHERE event_id = ?`, eventID); err != nil {
		return false, err
	}
	return n > 0, nil
}
