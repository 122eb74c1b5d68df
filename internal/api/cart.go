package api

import (
	"net/http"

	"farmacia/m/domain"
	"farmacia/m/internal/checkout"
)

type cartLineRequest struct {
	ClientID  int64 `json:"id_cliente"`
	ProductID int64 `json:"id_producto"`
	Quantity  int64 `json:"cantidad"`
}

// clientFor fills in the caller's own id when a customer leaves
// id_cliente out, then applies the ownership rule.
func clientFor(w http.ResponseWriter, r *http.Request, clientID int64) (int64, bool) {
	claims := claimsFrom(r.Context())
	if clientID == 0 && claims != nil && claims.Role == domain.RoleCustomer {
		clientID = claims.UserID
	}
	if clientID <= 0 {
		respondError(w, http.StatusBadRequest, "Datos incompletos.")
		return 0, false
	}
	return clientID, ownsClient(w, r, clientID)
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req cartLineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadBody(w, r, err)
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "Datos incompletos.")
		return
	}
	clientID, ok := clientFor(w, r, req.ClientID)
	if !ok {
		return
	}
	line, err := h.Checkout.AddToCart(r.Context(), clientID, req.ProductID, req.Quantity)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, line)
}

func (h *Handler) viewCart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id_cliente")
	if !ok {
		respondError(w, http.StatusBadRequest, "id_cliente inválido.")
		return
	}
	if !ownsClient(w, r, id) {
		return
	}
	items, err := h.Checkout.ViewCart(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) updateCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req cartLineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadBody(w, r, err)
		return
	}
	clientID, ok := clientFor(w, r, req.ClientID)
	if !ok {
		return
	}
	line, err := h.Checkout.UpdateQuantity(r.Context(), clientID, req.ProductID, req.Quantity)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, line)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartLineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadBody(w, r, err)
		return
	}
	clientID, ok := clientFor(w, r, req.ClientID)
	if !ok {
		return
	}
	if err := h.Checkout.RemoveItem(r.Context(), clientID, req.ProductID); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Producto eliminado del carrito."})
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id_cliente")
	if !ok {
		respondError(w, http.StatusBadRequest, "id_cliente inválido.")
		return
	}
	if !ownsClient(w, r, id) {
		return
	}
	if err := h.Checkout.ClearCart(r.Context(), id); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Carrito vaciado."})
}

type confirmRequest struct {
	ClientID int64  `json:"id_cliente"`
	AgentID  *int64 `json:"id_usuario"`
	BranchID int64  `json:"id_sucursal"`
}

// confirmPurchase runs a direct checkout. An employee calling it is
// recorded as the sale's agent unless id_usuario says otherwise.
func (h *Handler) confirmPurchase(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadBody(w, r, err)
		return
	}
	clientID, ok := clientFor(w, r, req.ClientID)
	if !ok {
		return
	}
	if req.BranchID <= 0 {
		respondError(w, http.StatusBadRequest, "id_sucursal es obligatorio.")
		return
	}
	if _, err := h.Store.GetBranch(r.Context(), req.BranchID); err != nil {
		respondErr(w, r, err)
		return
	}

	agentID := req.AgentID
	if claims := claimsFrom(r.Context()); agentID == nil && claims.Role == domain.RoleEmployee {
		agentID = &claims.UserID
	}
	if agentID != nil {
		if _, err := h.Store.GetEmployee(r.Context(), *agentID); err != nil {
			respondErr(w, r, err)
			return
		}
	}

	sale, err := h.Checkout.Checkout(r.Context(), checkout.Request{
		ClientID: clientID,
		AgentID:  agentID,
		BranchID: req.BranchID,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Compra confirmada.", "venta": sale})
}
