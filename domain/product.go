package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"nombre"`
	Description string          `db:"description" json:"descripcion"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"precio_unitario"`
	ImageURL    *string         `db:"image_url" json:"imagen_url,omitempty"`
	CreatedAt   string          `db:"created_at" json:"created_at,omitempty"`
}
