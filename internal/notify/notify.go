// Package notify fans committed sales out to live dashboards and, when
// configured, a message queue.
package notify

import (
	"context"
	"time"

	"farmacia/m/domain"

	"github.com/shopspring/decimal"
)

// SaleCommitted is the payload published for every committed sale.
type SaleCommitted struct {
	Type       string          `json:"type"`
	SaleID     int64           `json:"id_venta"`
	ClientID   int64           `json:"id_cliente"`
	BranchID   int64           `json:"id_sucursal"`
	Total      decimal.Decimal `json:"total"`
	Items      int             `json:"items"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func NewSaleCommitted(sale domain.Sale) SaleCommitted {
	return SaleCommitted{
		Type:       "sale.committed",
		SaleID:     sale.ID,
		ClientID:   sale.ClientID,
		BranchID:   sale.BranchID,
		Total:      sale.Total,
		Items:      len(sale.Items),
		OccurredAt: time.Now().UTC(),
	}
}

// Sink receives sale events. Implementations log their own failures.
type Sink interface {
	Publish(ctx context.Context, event SaleCommitted)
}

// Multi sends every sale to each of its sinks in order.
type Multi []Sink

func (m Multi) SaleCommitted(ctx context.Context, sale domain.Sale) {
	event := NewSaleCommitted(sale)
	for _, sink := range m {
		if sink != nil {
			sink.Publish(ctx, event)
		}
	}
}
