package store

import (
	"context"

	"farmacia/m/domain"
)

// AddCartLine inserts a line or, when the client already has the product
// in the cart, increases the existing quantity.
func (q *Queries) AddCartLine(ctx context.Context, clientID, productID, qty int64) (domain.CartLine, error) {
	var line domain.CartLine
	err := q.get(ctx, &line, `INSERT INTO cart_lines (client_id, product_id, quantity) VALUES (?, ?, ?)
            ON CONFLICT (client_id, product_id)
            DO UPDATE SET quantity = cart_lines.quantity + excluded.quantity
            RETURNING id, client_id, product_id, quantity, added_at`,
		clientID, productID, qty)
	return line, err
}

// SetCartQuantity returns ErrNotFound when the client has no line for the product.
func (q *Queries) SetCartQuantity(ctx context.Context, clientID, productID, qty int64) (domain.CartLine, error) {
	var line domain.CartLine
	err := q.get(ctx, &line, `UPDATE cart_lines SET quantity = ? WHERE client_id = ? AND product_id = ?
            RETURNING id, client_id, product_id, quantity, added_at`,
		qty, clientID, productID)
	return line, err
}

func (q *Queries) DeleteCartLine(ctx context.Context, clientID, productID int64) error {
	_, err := q.exec(ctx, `DELETE FROM cart_lines WHERE client_id = ? AND product_id = ?`, clientID, productID)
	return err
}

// ClearCart deletes every line of the client and reports how many went.
func (q *Queries) ClearCart(ctx context.Context, clientID int64) (int64, error) {
	return q.exec(ctx, `DELETE FROM cart_lines WHERE client_id = ?`, clientID)
}

// CartItems joins the client's lines with live product data.
func (q *Queries) CartItems(ctx context.Context, clientID int64) ([]domain.CartItem, error) {
	items := []domain.CartItem{}
	err := q.sel(ctx, &items, `SELECT c.id, c.client_id, c.product_id, c.quantity, c.added_at,
                p.name AS product_name, p.unit_price,
                COALESCE(cl.first_name, '') AS client_name, COALESCE(cl.email, '') AS client_email
            FROM cart_lines c
            JOIN products p ON p.id = c.product_id
            LEFT JOIN clients cl ON cl.id = c.client_id
            WHERE c.client_id = ?
            ORDER BY c.id`, clientID)
	return items, err
}
