package invoice

import (
	"context"
	"errors"
	"fmt"
	"log"

	"farmacia/m/domain"
)

var ErrNoRecipient = errors.New("client has no email address")

// Documents loads what an invoice needs to be printed.
type Documents interface {
	InvoiceDocument(ctx context.Context, invoiceID int64) (domain.InvoiceDocument, error)
}

type Mailer interface {
	SendInvoice(ctx context.Context, to, number string, pdf []byte) error
}

type Service struct {
	docs   Documents
	mailer Mailer
}

func NewService(docs Documents, mailer Mailer) *Service {
	return &Service{docs: docs, mailer: mailer}
}

// PDF renders the invoice and returns the document alongside the bytes.
func (s *Service) PDF(ctx context.Context, invoiceID int64) (domain.InvoiceDocument, []byte, error) {
	doc, err := s.docs.InvoiceDocument(ctx, invoiceID)
	if err != nil {
		return domain.InvoiceDocument{}, nil, err
	}
	data, err := Render(doc)
	return doc, data, err
}

// Send mails the invoice PDF to the client of the sale.
func (s *Service) Send(ctx context.Context, invoiceID int64) (domain.InvoiceDocument, error) {
	doc, data, err := s.PDF(ctx, invoiceID)
	if err != nil {
		return domain.InvoiceDocument{}, err
	}
	if doc.ClientEmail == "" {
		return doc, ErrNoRecipient
	}
	if err := s.mailer.SendInvoice(ctx, doc.ClientEmail, doc.Invoice.Number, data); err != nil {
		log.Printf("[invoice] sending %s to %s failed: %v", doc.Invoice.Number, doc.ClientEmail, err)
		return doc, fmt.Errorf("send invoice %s: %w", doc.Invoice.Number, err)
	}
	return doc, nil
}
