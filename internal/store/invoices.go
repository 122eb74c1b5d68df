package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"farmacia/m/domain"

	"github.com/google/uuid"
)

// NewInvoiceNumber builds a unique, roughly chronological invoice number.
func NewInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("F-%s-%s", now.UTC().Format("20060102150405"), suffix)
}

// CreateInvoice issues the invoice of a sale. A sale has at most one.
func (q *Queries) CreateInvoice(ctx context.Context, saleID int64) (domain.Invoice, error) {
	id, err := q.insert(ctx, `INSERT INTO invoices (sale_id, number) VALUES (?, ?) RETURNING id`,
		saleID, NewInvoiceNumber(time.Now()))
	if err != nil {
		return domain.Invoice{}, err
	}
	return q.GetInvoice(ctx, id)
}

func (q *Queries) GetInvoice(ctx context.Context, id int64) (domain.Invoice, error) {
	var inv domain.Invoice
	err := q.get(ctx, &inv, `SELECT id, sale_id, number, issued_at FROM invoices WHERE id = ?`, id)
	return inv, err
}

func (q *Queries) InvoiceForSale(ctx context.Context, saleID int64) (domain.Invoice, error) {
	var inv domain.Invoice
	err := q.get(ctx, &inv, `SELECT id, sale_id, number, issued_at FROM invoices WHERE sale_id = ?`, saleID)
	return inv, err
}

func (q *Queries) ListInvoices(ctx context.Context) ([]domain.Invoice, error) {
	invoices := []domain.Invoice{}
	err := q.sel(ctx, &invoices, `SELECT id, sale_id, number, issued_at FROM invoices ORDER BY id DESC`)
	return invoices, err
}

func (q *Queries) AddPayment(ctx context.Context, p domain.PaymentTransaction) (domain.PaymentTransaction, error) {
	if !p.Status.Valid() {
		return domain.PaymentTransaction{}, fmt.Errorf("unknown payment status %q", p.Status)
	}
	var out domain.PaymentTransaction
	err := q.get(ctx, &out, `INSERT INTO payment_transactions (invoice_id, method, amount, status) VALUES (?, ?, ?, ?)
            RETURNING id, invoice_id, method, amount, status, created_at`,
		p.InvoiceID, p.Method, p.Amount, p.Status)
	return out, err
}

func (q *Queries) PaymentsForInvoice(ctx context.Context, invoiceID int64) ([]domain.PaymentTransaction, error) {
	payments := []domain.PaymentTransaction{}
	err := q.sel(ctx, &payments, `SELECT id, invoice_id, method, amount, status, created_at
            FROM payment_transactions WHERE invoice_id = ? ORDER BY id`, invoiceID)
	return payments, err
}

// InvoiceDocument gathers the invoice, its sale and the names printed on it.
func (q *Queries) InvoiceDocument(ctx context.Context, invoiceID int64) (domain.InvoiceDocument, error) {
	inv, err := q.GetInvoice(ctx, invoiceID)
	if err != nil {
		return domain.InvoiceDocument{}, err
	}
	sale, err := q.GetSale(ctx, inv.SaleID)
	if err != nil {
		return domain.InvoiceDocument{}, err
	}
	doc := domain.InvoiceDocument{Invoice: inv, Sale: sale}

	var names struct {
		ClientName  string `db:"client_name"`
		ClientEmail string `db:"client_email"`
		BranchName  string `db:"branch_name"`
		AgentName   string `db:"agent_name"`
	}
	err = q.get(ctx, &names, `SELECT COALESCE(c.first_name || ' ' || c.last_name, '') AS client_name,
                COALESCE(c.email, '') AS client_email,
                COALESCE(b.name, '') AS branch_name,
                COALESCE(e.name, '') AS agent_name
            FROM sales s
            LEFT JOIN clients c ON c.id = s.client_id
            LEFT JOIN branches b ON b.id = s.branch_id
            LEFT JOIN employees e ON e.id = s.agent_id
            WHERE s.id = ?`, sale.ID)
	if err != nil {
		return domain.InvoiceDocument{}, err
	}
	doc.ClientName = strings.TrimSpace(names.ClientName)
	doc.ClientEmail = names.ClientEmail
	doc.BranchName = names.BranchName
	doc.AgentName = names.AgentName
	return doc, nil
}
