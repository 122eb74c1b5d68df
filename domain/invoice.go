package domain

import "github.com/shopspring/decimal"

type Invoice struct {
	ID       int64  `db:"id" json:"id"`
	SaleID   int64  `db:"sale_id" json:"id_venta"`
	Number   string `db:"number" json:"numero_factura"`
	IssuedAt string `db:"issued_at" json:"fecha_emision"`
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pendiente"
	PaymentCompleted PaymentStatus = "completado"
	PaymentFailed    PaymentStatus = "fallido"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

type PaymentTransaction struct {
	ID        int64           `db:"id" json:"id"`
	InvoiceID int64           `db:"invoice_id" json:"id_factura"`
	Method    string          `db:"method" json:"metodo_pago"`
	Amount    decimal.Decimal `db:"amount" json:"monto"`
	Status    PaymentStatus   `db:"status" json:"estado"`
	CreatedAt string          `db:"created_at" json:"fecha"`
}

// InvoiceDocument is everything needed to render or mail one invoice.
type InvoiceDocument struct {
	Invoice     Invoice
	Sale        Sale
	ClientName  string
	ClientEmail string
	BranchName  string
	AgentName   string
}
