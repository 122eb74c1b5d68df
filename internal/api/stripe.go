package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"farmacia/m/internal/payment"
)

const maxWebhookBody = 65536

type paymentSessionRequest struct {
	ClientID int64  `json:"id_cliente"`
	Email    string `json:"cliente_email"`
	BranchID int64  `json:"id_sucursal"`
}

func (h *Handler) createPaymentSession(w http.ResponseWriter, r *http.Request) {
	var req paymentSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadBody(w, r, err)
		return
	}
	clientID, ok := clientFor(w, r, req.ClientID)
	if !ok {
		return
	}
	email := req.Email
	if email == "" {
		email = claimsFrom(r.Context()).Email
	}
	url, err := h.Sessions.Create(r.Context(), clientID, email, req.BranchID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// stripeWebhook rejects only deliveries whose signature does not verify.
// Any other failure is logged and acknowledged so Stripe does not retry
// forever.
func (h *Handler) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Webhook Error: cuerpo inválido.")
		return
	}

	res, err := h.Reconciler.HandlePaymentCompleted(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	switch {
	case errors.Is(err, payment.ErrInvalidSignature):
		log.Printf("[webhook] rejected delivery: %v", err)
		respondError(w, http.StatusBadRequest, "Webhook Error: firma inválida.")
	case err != nil:
		log.Printf("[webhook] delivery acknowledged with error: %v", err)
		respondJSON(w, http.StatusOK, map[string]any{"received": true, "message": "Evento recibido."})
	case res.Outcome == payment.Processed:
		respondJSON(w, http.StatusOK, map[string]any{"received": true, "message": "Venta registrada.", "id_venta": res.Sale.ID})
	default:
		log.Printf("[webhook] ignored: %s", res.Reason)
		respondJSON(w, http.StatusOK, map[string]any{"received": true, "message": "Evento ignorado."})
	}
}
