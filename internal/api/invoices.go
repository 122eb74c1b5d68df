package api

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"farmacia/m/domain"
)

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SaleID int64 `json:"id_venta"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadBody(w, r, err)
		return
	}
	if req.SaleID <= 0 {
		respondError(w, http.StatusBadRequest, "id_venta es obligatorio.")
		return
	}
	if _, err := h.Store.GetSale(r.Context(), req.SaleID); err != nil {
		respondErr(w, r, err)
		return
	}
	inv, err := h.Store.CreateInvoice(r.Context(), req.SaleID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, inv)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.Store.ListInvoices(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, invoices)
}

type invoiceResponse struct {
	domain.Invoice
	Sale     domain.Sale                 `json:"venta"`
	Payments []domain.PaymentTransaction `json:"transacciones"`
}

// loadDocument resolves the invoice in the URL and checks the caller may
// see it. It writes the error response itself.
func (h *Handler) loadDocument(w http.ResponseWriter, r *http.Request) (domain.InvoiceDocument, bool) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "id inválido.")
		return domain.InvoiceDocument{}, false
	}
	doc, err := h.Store.InvoiceDocument(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return domain.InvoiceDocument{}, false
	}
	if !ownsClient(w, r, doc.Sale.ClientID) {
		return domain.InvoiceDocument{}, false
	}
	return doc, true
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadDocument(w, r)
	if !ok {
		return
	}
	payments, err := h.Store.PaymentsForInvoice(r.Context(), doc.Invoice.ID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, invoiceResponse{Invoice: doc.Invoice, Sale: doc.Sale, Payments: payments})
}

// latestSale returns the client's most recent sale with its invoice, if any.
func (h *Handler) latestSale(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(r, "id_cliente")
	if !ok {
		respondError(w, http.StatusBadRequest, "id_cliente inválido.")
		return
	}
	if !ownsClient(w, r, clientID) {
		return
	}
	sale, err := h.Store.LatestSaleForClient(r.Context(), clientID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	resp := map[string]any{"venta": sale}
	if inv, err := h.Store.InvoiceForSale(r.Context(), sale.ID); err == nil {
		resp["factura"] = inv
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadDocument(w, r)
	if !ok {
		return
	}
	_, data, err := h.Invoices.PDF(r.Context(), doc.Invoice.ID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=factura-"+doc.Invoice.Number+".pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) sendInvoice(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadDocument(w, r)
	if !ok {
		return
	}
	if _, err := h.Invoices.Send(r.Context(), doc.Invoice.ID); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Factura enviada a " + doc.ClientEmail + "."})
}

type transactionRequest struct {
	InvoiceID int64                `json:"id_factura"`
	Method    string               `json:"metodo_pago"`
	Amount    decimal.Decimal      `json:"monto"`
	Status    domain.PaymentStatus `json:"estado"`
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadBody(w, r, err)
		return
	}
	if req.Status == "" {
		req.Status = domain.PaymentPending
	}
	if req.InvoiceID <= 0 || strings.TrimSpace(req.Method) == "" || !req.Amount.IsPositive() || !req.Status.Valid() {
		respondError(w, http.StatusBadRequest, "id_factura, metodo_pago, monto positivo y estado válido son obligatorios.")
		return
	}
	if _, err := h.Store.GetInvoice(r.Context(), req.InvoiceID); err != nil {
		respondErr(w, r, err)
		return
	}
	tx, err := h.Store.AddPayment(r.Context(), domain.PaymentTransaction{
		InvoiceID: req.InvoiceID,
		Method:    strings.TrimSpace(req.Method),
		Amount:    req.Amount.Round(2),
		Status:    req.Status,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, tx)
}
