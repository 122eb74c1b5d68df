package api

import (
	"errors"
	"log"
	"net/http"

	"farmacia/m/internal/auth"
	"farmacia/m/internal/checkout"
	"farmacia/m/internal/invoice"
	"farmacia/m/internal/payment"
	"farmacia/m/internal/store"
)

// respondErr maps a service error onto a status and a stable message.
// Unknown errors are logged and reported as a generic internal error.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[api] %s %s: %v", r.Method, r.URL.Path, err)
	}
	respondError(w, status, message)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		return http.StatusBadRequest, "Correo y contraseña son obligatorios."
	case errors.Is(err, auth.ErrInvalidInput):
		return http.StatusBadRequest, "Token y nueva contraseña (mínimo 6 caracteres) son obligatorios."
	case errors.Is(err, checkout.ErrInvalidQuantity):
		return http.StatusBadRequest, "La cantidad debe ser un entero positivo."
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusBadRequest, "Carrito vacío."
	case errors.Is(err, payment.ErrNoBranch):
		return http.StatusBadRequest, "id_sucursal es obligatorio."
	case errors.Is(err, invoice.ErrNoRecipient):
		return http.StatusBadRequest, "El cliente no tiene correo registrado."
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "Registro no encontrado."
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Contraseña incorrecta."
	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, "El enlace ha expirado. Solicita uno nuevo."
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusBadRequest, "Token inválido."
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, "Acceso denegado."
	case errors.Is(err, store.ErrInsufficientStock):
		return http.StatusConflict, "Inventario insuficiente."
	case errors.Is(err, checkout.ErrCartChanged):
		return http.StatusConflict, "El carrito cambió durante la compra. Intenta de nuevo."
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, "El registro ya existe."
	case errors.Is(err, auth.ErrDelivery):
		return http.StatusInternalServerError, "No se pudo enviar el correo."
	case errors.Is(err, payment.ErrPaymentProvider):
		return http.StatusBadGateway, "Error con el proveedor de pagos."
	default:
		return http.StatusInternalServerError, "Error interno del servidor."
	}
}
