package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"farmacia/m/domain"
	"farmacia/m/internal/auth"
	"farmacia/m/internal/checkout"
	"farmacia/m/internal/invoice"
	"farmacia/m/internal/notify"
	"farmacia/m/internal/payment"
	"farmacia/m/internal/store"
)

// Deps is the application context the handlers run against. It is built
// once in main.
type Deps struct {
	Store       *store.Store
	Tokens      *auth.Tokens
	Auth        *auth.Service
	Checkout    *checkout.Engine
	Sessions    *payment.Sessions
	Reconciler  *payment.Reconciler
	Invoices    *invoice.Service
	Hub         *notify.Hub
	FrontendURL string
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	Deps
}

// New constructs a Handler.
func New(deps Deps) *Handler {
	return &Handler{Deps: deps}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RequestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		// Stripe signs the exact bytes it sent, so this handler reads the
		// raw body itself.
		r.Post("/stripe/webhook", h.stripeWebhook)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login-cliente", h.login(domain.RoleCustomer))
			r.Post("/login-empleado", h.login(domain.RoleEmployee))
			r.Post("/solicitar-con", h.requestReset(domain.RoleEmployee))
			r.Post("/restablecer-con", h.resetPassword(domain.RoleEmployee))
			r.Post("/solicitar-con-cli", h.requestReset(domain.RoleCustomer))
			r.Post("/restablecer-con-cli", h.resetPassword(domain.RoleCustomer))
		})

		r.Post("/customer/create", h.createClient)
		r.Get("/producto", h.listProducts)
		r.Get("/producto/{id}", h.getProduct)
		r.Get("/sucursal", h.listBranches)

		r.With(tokenFromQuery, h.authenticate, h.requireRole(domain.RoleEmployee)).Get("/ventas/ws", h.Hub.ServeHTTP)

		r.Group(func(pr chi.Router) {
			pr.Use(h.authenticate)

			pr.With(h.requireRole(domain.RoleCustomer, domain.RoleEmployee)).Put("/customer/update/{id}", h.updateClient)

			pr.Route("/carrito", func(r chi.Router) {
				r.Use(h.requireRole(domain.RoleCustomer, domain.RoleEmployee))
				r.Post("/agregar", h.addToCart)
				r.Get("/ver/{id_cliente}", h.viewCart)
				r.Put("/actualizar", h.updateCartQuantity)
				r.Post("/actualizar", h.updateCartQuantity)
				r.Delete("/eliminar", h.removeCartItem)
				r.Delete("/vaciar/{id_cliente}", h.clearCart)
				r.Post("/confirmar", h.confirmPurchase)
			})

			pr.With(h.requireRole(domain.RoleCustomer)).Post("/stripe/checkout", h.createPaymentSession)

			pr.Route("/facturas", func(r chi.Router) {
				r.Use(h.requireRole(domain.RoleCustomer, domain.RoleEmployee))
				r.With(h.requireRole(domain.RoleEmployee)).Post("/create", h.createInvoice)
				r.With(h.requireRole(domain.RoleEmployee)).Get("/", h.listInvoices)
				r.Get("/{id}", h.getInvoice)
				r.Get("/ultima/{id_cliente}", h.latestSale)
				r.Get("/pdf/{id}", h.invoicePDF)
				r.Get("/{id}/enviar", h.sendInvoice)
			})

			pr.Group(func(r chi.Router) {
				r.Use(h.requireRole(domain.RoleEmployee))

				r.Post("/usuario/create", h.createEmployee)
				r.Post("/producto/create", h.createProduct)
				r.Put("/producto/update/{id}", h.updateProduct)
				r.Post("/sucursal/create", h.createBranch)

				r.Post("/inventario/create", h.receiveStock)
				r.Get("/inventario", h.listInventory)
				r.Get("/inventario/movimientos", h.listMovements)

				r.Route("/ventas", func(r chi.Router) {
					r.Get("/", h.listSales)
					r.Get("/export", h.exportSales)
					r.Get("/{id}", h.getSale)
					r.Delete("/delete/{id}", h.deleteSale)
				})

				r.Post("/transacciones/create", h.createTransaction)
			})
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helpers

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func nullIfEmpty(val string) *string {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondBadBody logs the decoder error and answers with a fixed message.
func respondBadBody(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("[api] %s %s: bad request body: %v", r.Method, r.URL.Path, err)
	respondError(w, http.StatusBadRequest, "Cuerpo de solicitud inválido.")
}
