package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"farmacia/m/domain"
)

type productRequest struct {
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion"`
	UnitPrice   decimal.Decimal `json:"precio_unitario"`
	ImageURL    string          `json:"imagen_url"`
}

func (req productRequest) product() (domain.Product, bool) {
	if strings.TrimSpace(req.Name) == "" || req.UnitPrice.IsNegative() {
		return domain.Product{}, false
	}
	return domain.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		UnitPrice:   req.UnitPrice.Round(2),
		ImageURL:    nullIfEmpty(req.ImageURL),
	}, true
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadBody(w, r, err)
		return
	}
	p, ok := req.product()
	if !ok {
		respondError(w, http.StatusBadRequest, "nombre y precio_unitario no negativo son obligatorios.")
		return
	}
	product, err := h.Store.CreateProduct(r.Context(), p)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "id inválido.")
		return
	}
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadBody(w, r, err)
		return
	}
	p, ok := req.product()
	if !ok {
		respondError(w, http.StatusBadRequest, "nombre y precio_unitario no negativo son obligatorios.")
		return
	}
	p.ID = id
	product, err := h.Store.UpdateProduct(r.Context(), p)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.ListProducts(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "id inválido.")
		return
	}
	product, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

type branchRequest struct {
	Name    string `json:"nombre"`
	Address string `json:"direccion"`
	Phone   string `json:"telefono"`
}

func (h *Handler) createBranch(w http.ResponseWriter, r *http.Request) {
	var req branchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadBody(w, r, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "nombre es obligatorio.")
		return
	}
	branch, err := h.Store.CreateBranch(r.Context(), domain.Branch{
		Name:    strings.TrimSpace(req.Name),
		Address: strings.TrimSpace(req.Address),
		Phone:   strings.TrimSpace(req.Phone),
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, branch)
}

func (h *Handler) listBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.Store.ListBranches(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, branches)
}

type stockRequest struct {
	ProductID int64  `json:"id_producto"`
	BranchID  int64  `json:"id_sucursal"`
	Quantity  int64  `json:"cantidad"`
	Reference string `json:"referencia"`
}

// receiveStock books incoming units, creating the inventory record on the
// first receipt for a product at a branch.
func (h *Handler) receiveStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadBody(w, r, err)
		return
	}
	if req.ProductID <= 0 || req.BranchID <= 0 {
		respondError(w, http.StatusBadRequest, "id_producto e id_sucursal son obligatorios.")
		return
	}
	ctx := r.Context()
	if _, err := h.Store.GetProduct(ctx, req.ProductID); err != nil {
		respondErr(w, r, err)
		return
	}
	if _, err := h.Store.GetBranch(ctx, req.BranchID); err != nil {
		respondErr(w, r, err)
		return
	}
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		reference = "recepcion"
	}
	rec, err := h.Checkout.ReceiveStock(ctx, req.ProductID, req.BranchID, req.Quantity, reference)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	var branchID int64
	if raw := strings.TrimSpace(r.URL.Query().Get("id_sucursal")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, http.StatusBadRequest, "id_sucursal inválido.")
			return
		}
		branchID = id
	}
	records, err := h.Store.ListInventory(r.Context(), branchID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	productID, err1 := strconv.ParseInt(r.URL.Query().Get("id_producto"), 10, 64)
	branchID, err2 := strconv.ParseInt(r.URL.Query().Get("id_sucursal"), 10, 64)
	if err1 != nil || err2 != nil || productID <= 0 || branchID <= 0 {
		respondError(w, http.StatusBadRequest, "id_producto e id_sucursal son obligatorios.")
		return
	}
	movements, err := h.Store.ListMovements(r.Context(), productID, branchID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, movements)
}
