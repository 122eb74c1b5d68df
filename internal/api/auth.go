package api

import (
	"errors"
	"net/http"
	"strings"

	"farmacia/m/domain"
	"farmacia/m/internal/auth"
)

type credentialsRequest struct {
	Email    string `json:"correo"`
	Password string `json:"contrasena"`
}

func (h *Handler) login(role domain.Role) http.HandlerFunc {
	key := "cliente"
	if role == domain.RoleEmployee {
		key = "empleado"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := decodeJSON(r, &req); err != nil {
			respondBadBody(w, r, err)
			return
		}
		res, err := h.Auth.Login(r.Context(), role, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrNotFound) {
				respondError(w, http.StatusNotFound, "Cuenta no encontrada.")
				return
			}
			respondErr(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"message": "Login exitoso.",
			"token":   res.Token,
			key:       res.Profile,
		})
	}
}

const resetRequestedMessage = "Si el correo está registrado, recibirás instrucciones para restablecer la contraseña."

// requestReset answers the same way whether or not the email exists.
func (h *Handler) requestReset(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"correo"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondBadBody(w, r, err)
			return
		}
		err := h.Auth.RequestPasswordReset(r.Context(), role, req.Email)
		if err != nil && !errors.Is(err, auth.ErrNotFound) {
			if errors.Is(err, auth.ErrMissingCredentials) {
				respondError(w, http.StatusBadRequest, "El correo es obligatorio.")
				return
			}
			respondErr(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"message": resetRequestedMessage})
	}
}

func (h *Handler) resetPassword(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token       string `json:"token"`
			NewPassword string `json:"nuevaContrasena"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondBadBody(w, r, err)
			return
		}
		if err := h.Auth.ResetPassword(r.Context(), role, req.Token, req.NewPassword); err != nil {
			if errors.Is(err, auth.ErrNotFound) {
				respondError(w, http.StatusNotFound, "Usuario no encontrado.")
				return
			}
			respondErr(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"message": "Contraseña actualizada correctamente. Ya puedes iniciar sesión."})
	}
}

type clientRequest struct {
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	TaxID     string `json:"nit"`
	Address   string `json:"direccion"`
	Phone     string `json:"telefono"`
	Email     string `json:"correo"`
	Password  string `json:"contrasena"`
}

func (req clientRequest) client() domain.Client {
	return domain.Client{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		TaxID:     strings.TrimSpace(req.TaxID),
		Address:   strings.TrimSpace(req.Address),
		Phone:     strings.TrimSpace(req.Phone),
		Email:     req.Email,
	}
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadBody(w, r, err)
		return
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.Email) == "" || len(req.Password) < auth.MinPasswordLength {
		respondError(w, http.StatusBadRequest, "nombre, correo y contrasena (mínimo 6 caracteres) son obligatorios.")
		return
	}
	client, err := h.Store.CreateClient(r.Context(), req.client(), req.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, client)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "id inválido.")
		return
	}
	if !ownsClient(w, r, id) {
		return
	}
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadBody(w, r, err)
		return
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.Email) == "" {
		respondError(w, http.StatusBadRequest, "nombre y correo son obligatorios.")
		return
	}
	if req.Password != "" && len(req.Password) < auth.MinPasswordLength {
		respondError(w, http.StatusBadRequest, "La contraseña debe tener al menos 6 caracteres.")
		return
	}
	c := req.client()
	c.ID = id
	client, err := h.Store.UpdateClient(r.Context(), c, req.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

type employeeRequest struct {
	Name     string `json:"nombre"`
	Email    string `json:"correo"`
	Password string `json:"contrasena"`
	Position string `json:"puesto"`
	Phone    string `json:"telefono"`
	BranchID *int64 `json:"id_sucursal"`
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadBody(w, r, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || len(req.Password) < auth.MinPasswordLength {
		respondError(w, http.StatusBadRequest, "nombre, correo y contrasena (mínimo 6 caracteres) son obligatorios.")
		return
	}
	if req.BranchID != nil {
		if _, err := h.Store.GetBranch(r.Context(), *req.BranchID); err != nil {
			respondErr(w, r, err)
			return
		}
	}
	employee, err := h.Store.CreateEmployee(r.Context(), domain.Employee{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Position: strings.TrimSpace(req.Position),
		Phone:    strings.TrimSpace(req.Phone),
		BranchID: req.BranchID,
	}, req.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, employee)
}
