// Package checkout turns a client's cart into a committed sale and keeps
// per-branch inventory consistent while doing so.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"farmacia/m/domain"
	"farmacia/m/internal/store"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrCartChanged     = errors.New("cart changed during checkout")
	ErrDuplicateEvent  = errors.New("payment event already processed")
)

// StockPolicy decides what a checkout does with a product that has no
// inventory record at the sale's branch.
type StockPolicy string

const (
	// PolicyPermissive skips the decrement for untracked products.
	PolicyPermissive StockPolicy = "permissive"
	// PolicyStrict fails the checkout with store.ErrInsufficientStock.
	PolicyStrict StockPolicy = "strict"
)

// SaleListener is told about every sale after its transaction commits.
type SaleListener interface {
	SaleCommitted(ctx context.Context, sale domain.Sale)
}

type Engine struct {
	store    *store.Store
	policy   StockPolicy
	listener SaleListener
}

func NewEngine(st *store.Store, policy StockPolicy, listener SaleListener) *Engine {
	if policy != PolicyStrict {
		policy = PolicyPermissive
	}
	return &Engine{store: st, policy: policy, listener: listener}
}

func (e *Engine) AddToCart(ctx context.Context, clientID, productID, qty int64) (domain.CartLine, error) {
	if qty <= 0 {
		return domain.CartLine{}, ErrInvalidQuantity
	}
	if _, err := e.store.GetClient(ctx, clientID); err != nil {
		return domain.CartLine{}, fmt.Errorf("client %d: %w", clientID, err)
	}
	if _, err := e.store.GetProduct(ctx, productID); err != nil {
		return domain.CartLine{}, fmt.Errorf("product %d: %w", productID, err)
	}
	return e.store.AddCartLine(ctx, clientID, productID, qty)
}

func (e *Engine) ViewCart(ctx context.Context, clientID int64) ([]domain.CartItem, error) {
	return e.store.CartItems(ctx, clientID)
}

func (e *Engine) UpdateQuantity(ctx context.Context, clientID, productID, qty int64) (domain.CartLine, error) {
	if qty <= 0 {
		return domain.CartLine{}, ErrInvalidQuantity
	}
	return e.store.SetCartQuantity(ctx, clientID, productID, qty)
}

func (e *Engine) RemoveItem(ctx context.Context, clientID, productID int64) error {
	return e.store.DeleteCartLine(ctx, clientID, productID)
}

func (e *Engine) ClearCart(ctx context.Context, clientID int64) error {
	_, err := e.store.ClearCart(ctx, clientID)
	return err
}

// ReceiveStock books incoming units for a product at a branch.
func (e *Engine) ReceiveStock(ctx context.Context, productID, branchID, qty int64, reference string) (domain.InventoryRecord, error) {
	if qty <= 0 {
		return domain.InventoryRecord{}, ErrInvalidQuantity
	}
	var rec domain.InventoryRecord
	err := e.store.InTx(ctx, func(q *store.Queries) error {
		var err error
		rec, err = q.ReceiveStock(ctx, productID, branchID, qty, reference)
		return err
	})
	return rec, err
}

// Event identifies the external event a checkout is sourced from.
type Event struct {
	ID   string
	Type string
}

// Payment, when set, makes the checkout also issue the invoice and record
// a completed payment transaction for the full total.
type Payment struct {
	Method string
}

type Request struct {
	ClientID int64
	AgentID  *int64
	BranchID int64
	Event    *Event
	Payment  *Payment
}

// Checkout converts the client's cart into a sale. Everything from the
// event claim to the cart deletion runs in one transaction.
func (e *Engine) Checkout(ctx context.Context, req Request) (domain.Sale, error) {
	var sale domain.Sale
	err := e.store.InTx(ctx, func(q *store.Queries) error {
		if req.Event != nil {
			if err := q.MarkEventProcessed(ctx, req.Event.ID, req.Event.Type); err != nil {
				if errors.Is(err, store.ErrConflict) {
					return ErrDuplicateEvent
				}
				return err
			}
		}

		items, err := q.CartItems(ctx, req.ClientID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		total := decimal.Zero
		for _, item := range items {
			total = total.Add(item.Subtotal())
		}

		sale, err = q.CreateSale(ctx, domain.Sale{
			ClientID: req.ClientID,
			AgentID:  req.AgentID,
			BranchID: req.BranchID,
			Total:    total,
		})
		if err != nil {
			return fmt.Errorf("create sale: %w", err)
		}

		reference := fmt.Sprintf("venta-%d", sale.ID)
		for _, item := range items {
			line, err := q.AddSaleItem(ctx, domain.SaleLineItem{
				SaleID:    sale.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
			if err != nil {
				return fmt.Errorf("add sale item: %w", err)
			}
			line.ProductName = item.ProductName
			sale.Items = append(sale.Items, line)

			if err := e.decrement(ctx, q, item, req.BranchID, reference); err != nil {
				return err
			}
		}

		cleared, err := q.ClearCart(ctx, req.ClientID)
		if err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		if cleared != int64(len(items)) {
			return ErrCartChanged
		}

		if req.Payment != nil {
			invoice, err := q.CreateInvoice(ctx, sale.ID)
			if err != nil {
				return fmt.Errorf("create invoice: %w", err)
			}
			if _, err := q.AddPayment(ctx, domain.PaymentTransaction{
				InvoiceID: invoice.ID,
				Method:    req.Payment.Method,
				Amount:    total,
				Status:    domain.PaymentCompleted,
			}); err != nil {
				return fmt.Errorf("record payment: %w", err)
			}
		}

		if req.Event != nil {
			if err := q.AttachEventSale(ctx, req.Event.ID, sale.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Sale{}, err
	}

	log.Printf("[checkout] sale %d committed for client %d, total %s", sale.ID, sale.ClientID, sale.Total.StringFixed(2))
	if e.listener != nil {
		e.listener.SaleCommitted(ctx, sale)
	}
	return sale, nil
}

func (e *Engine) decrement(ctx context.Context, q *store.Queries, item domain.CartItem, branchID int64, reference string) error {
	found, err := q.DecrementStock(ctx, item.ProductID, branchID, item.Quantity)
	if err != nil {
		return err
	}
	if !found {
		if e.policy == PolicyStrict {
			return fmt.Errorf("%w: product %d is not stocked at branch %d", store.ErrInsufficientStock, item.ProductID, branchID)
		}
		log.Printf("[checkout] product %d has no inventory at branch %d, decrement skipped", item.ProductID, branchID)
		return nil
	}
	return q.RecordMovement(ctx, domain.InventoryMovement{
		ProductID: item.ProductID,
		BranchID:  branchID,
		Kind:      domain.MovementSale,
		Quantity:  item.Quantity,
		Reference: reference,
	})
}
