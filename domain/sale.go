package domain

import "github.com/shopspring/decimal"

type Sale struct {
	ID        int64           `db:"id" json:"id"`
	ClientID  int64           `db:"client_id" json:"id_cliente"`
	AgentID   *int64          `db:"agent_id" json:"id_usuario,omitempty"`
	BranchID  int64           `db:"branch_id" json:"id_sucursal"`
	Total     decimal.Decimal `db:"total" json:"total"`
	CreatedAt string          `db:"created_at" json:"fecha"`
	Items     []SaleLineItem  `db:"-" json:"detalle_ventas,omitempty"`
}

// SaleLineItem snapshots the unit price used when the sale committed.
type SaleLineItem struct {
	ID          int64           `db:"id" json:"id"`
	SaleID      int64           `db:"sale_id" json:"id_venta"`
	ProductID   int64           `db:"product_id" json:"id_producto"`
	ProductName string          `db:"product_name" json:"producto,omitempty"`
	Quantity    int64           `db:"quantity" json:"cantidad"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"precio_unitario"`
}

func (i SaleLineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}
