package domain

import "github.com/shopspring/decimal"

type CartLine struct {
	ID        int64  `db:"id" json:"id"`
	ClientID  int64  `db:"client_id" json:"id_cliente"`
	ProductID int64  `db:"product_id" json:"id_producto"`
	Quantity  int64  `db:"quantity" json:"cantidad"`
	AddedAt   string `db:"added_at" json:"fecha_agregado"`
}

// CartItem is a cart line joined with the product and client it refers to.
type CartItem struct {
	CartLine
	ProductName string          `db:"product_name" json:"producto"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"precio_unitario"`
	ClientName  string          `db:"client_name" json:"cliente"`
	ClientEmail string          `db:"client_email" json:"correo_cliente"`
}

// Subtotal is quantity times the live unit price.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}
