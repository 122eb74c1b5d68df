package store

import (
	"context"

	"farmacia/m/domain"
)

// CreateSale inserts the sale header. Items are added with AddSaleItem.
func (q *Queries) CreateSale(ctx context.Context, s domain.Sale) (domain.Sale, error) {
	id, err := q.insert(ctx, `INSERT INTO sales (client_id, agent_id, branch_id, total) VALUES (?, ?, ?, ?) RETURNING id`,
		s.ClientID, s.AgentID, s.BranchID, s.Total)
	if err != nil {
		return domain.Sale{}, err
	}
	return q.getSaleHeader(ctx, id)
}

func (q *Queries) AddSaleItem(ctx context.Context, item domain.SaleLineItem) (domain.SaleLineItem, error) {
	id, err := q.insert(ctx, `INSERT INTO sale_items (sale_id, product_id, quantity, unit_price) VALUES (?, ?, ?, ?) RETURNING id`,
		item.SaleID, item.ProductID, item.Quantity, item.UnitPrice)
	if err != nil {
		return domain.SaleLineItem{}, err
	}
	item.ID = id
	return item, nil
}

func (q *Queries) getSaleHeader(ctx context.Context, id int64) (domain.Sale, error) {
	var s domain.Sale
	err := q.get(ctx, &s, `SELECT id, client_id, agent_id, branch_id, total, created_at FROM sales WHERE id = ?`, id)
	return s, err
}

func (q *Queries) saleItems(ctx context.Context, saleID int64) ([]domain.SaleLineItem, error) {
	items := []domain.SaleLineItem{}
	err := q.sel(ctx, &items, `SELECT si.id, si.sale_id, si.product_id, COALESCE(p.name, '') AS product_name, si.quantity, si.unit_price
            FROM sale_items si LEFT JOIN products p ON p.id = si.product_id
            WHERE si.sale_id = ? ORDER BY si.id`, saleID)
	return items, err
}

// GetSale returns the sale with its line items.
func (q *Queries) GetSale(ctx context.Context, id int64) (domain.Sale, error) {
	s, err := q.getSaleHeader(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	s.Items, err = q.saleItems(ctx, id)
	return s, err
}

// ListSales returns every sale, newest first, with items attached.
func (q *Queries) ListSales(ctx context.Context) ([]domain.Sale, error) {
	sales := []domain.Sale{}
	if err := q.sel(ctx, &sales, `SELECT id, client_id, agent_id, branch_id, total, created_at FROM sales ORDER BY id DESC`); err != nil {
		return nil, err
	}
	for i := range sales {
		items, err := q.saleItems(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}
	return sales, nil
}

func (q *Queries) LatestSaleForClient(ctx context.Context, clientID int64) (domain.Sale, error) {
	var id int64
	if err := q.get(ctx, &id, `SELECT id FROM sales WHERE client_id = ? ORDER BY id DESC LIMIT 1`, clientID); err != nil {
		return domain.Sale{}, err
	}
	return q.GetSale(ctx, id)
}

// DeleteSale removes a sale together with its items, invoice and payment
// records. Children go first because none of the foreign keys cascade.
func (s *Store) DeleteSale(ctx context.Context, id int64) error {
	return s.InTx(ctx, func(q *Queries) error {
		if _, err := q.getSaleHeader(ctx, id); err != nil {
			return err
		}
		steps := []string{
			`DELETE FROM sale_items WHERE sale_id = ?`,
			`DELETE FROM payment_transactions WHERE invoice_id IN (SELECT id FROM invoices WHERE sale_id = ?)`,
			`DELETE FROM invoices WHERE sale_id = ?`,
			`UPDATE processed_events SET sale_id = NULL WHERE sale_id = ?`,
			`DELETE FROM sales WHERE id = ?`,
		}
		for _, stmt := range steps {
			if _, err := q.exec(ctx, stmt, id); err != nil {
				return err
			}
		}
		return nil
	})
}
