package store

import (
	"context"
	"fmt"

	"farmacia/m/domain"
)

// ReceiveStock adds qty units of a product to a branch, creating the
// inventory record when it does not exist yet, and logs an entrada movement.
func (q *Queries) ReceiveStock(ctx context.Context, productID, branchID, qty int64, reference string) (domain.InventoryRecord, error) {
	if qty <= 0 {
		return domain.InventoryRecord{}, fmt.Errorf("receive stock: quantity must be positive, got %d", qty)
	}
	_, err := q.exec(ctx, `INSERT INTO inventory (product_id, branch_id, quantity) VALUES (?, ?, ?)
            ON CONFLICT (product_id, branch_id)
            DO UPDATE SET quantity = inventory.quantity + excluded.quantity, updated_at = CURRENT_TIMESTAMP`,
		productID, branchID, qty)
	if err != nil {
		return domain.InventoryRecord{}, err
	}
	if err := q.RecordMovement(ctx, domain.InventoryMovement{
		ProductID: productID,
		BranchID:  branchID,
		Kind:      domain.MovementReceipt,
		Quantity:  qty,
		Reference: reference,
	}); err != nil {
		return domain.InventoryRecord{}, err
	}
	return q.GetInventory(ctx, productID, branchID)
}

// DecrementStock removes qty units in a single conditional UPDATE so two
// concurrent sales can never both pass the check. The returned bool is
// false when there is no inventory record for the pair at all.
func (q *Queries) DecrementStock(ctx context.Context, productID, branchID, qty int64) (bool, error) {
	n, err := q.exec(ctx, `UPDATE inventory SET quantity = quantity - ?, updated_at = CURRENT_TIMESTAMP
            WHERE product_id = ? AND branch_id = ? AND quantity >= ?`,
		qty, productID, branchID, qty)
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}

	var count int
	if err := q.get(ctx, &count, `SELECT COUNT(*) FROM inventory WHERE product_id = ? AND branch_id = ?`, productID, branchID); err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}
	return false, fmt.Errorf("%w: product %d at branch %d", ErrInsufficientStock, productID, branchID)
}

func (q *Queries) GetInventory(ctx context.Context, productID, branchID int64) (domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	err := q.get(ctx, &rec, `SELECT i.id, i.product_id, i.branch_id, i.quantity, p.name AS product_name, i.updated_at
            FROM inventory i JOIN products p ON p.id = i.product_id
            WHERE i.product_id = ? AND i.branch_id = ?`, productID, branchID)
	return rec, err
}

// ListInventory returns every record, or only one branch when branchID > 0.
func (q *Queries) ListInventory(ctx context.Context, branchID int64) ([]domain.InventoryRecord, error) {
	records := []domain.InventoryRecord{}
	query := `SELECT i.id, i.product_id, i.branch_id, i.quantity, p.name AS product_name, i.updated_at
            FROM inventory i JOIN products p ON p.id = i.product_id`
	var args []interface{}
	if branchID > 0 {
		query += ` WHERE i.branch_id = ?`
		args = append(args, branchID)
	}
	query += ` ORDER BY i.branch_id, p.name`
	err := q.sel(ctx, &records, query, args...)
	return records, err
}

func (q *Queries) RecordMovement(ctx context.Context, m domain.InventoryMovement) error {
	_, err := q.exec(ctx, `INSERT INTO inventory_movements (product_id, branch_id, kind, quantity, reference) VALUES (?, ?, ?, ?, ?)`,
		m.ProductID, m.BranchID, m.Kind, m.Quantity, m.Reference)
	return err
}

func (q *Queries) ListMovements(ctx context.Context, productID, branchID int64) ([]domain.InventoryMovement, error) {
	movements := []domain.InventoryMovement{}
	err := q.sel(ctx, &movements, `SELECT id, product_id, branch_id, kind, quantity, reference, created_at
            FROM inventory_movements WHERE product_id = ? AND branch_id = ? ORDER BY id`, productID, branchID)
	return movements, err
}
