package auth

import (
	"errors"

	"farmacia/m/domain"
)

var ErrForbidden = errors.New("forbidden")

// Authorize reports whether the claims hold one of the allowed roles.
func Authorize(claims *SessionClaims, allowed ...domain.Role) error {
	if claims == nil {
		return ErrForbidden
	}
	for _, role := range allowed {
		if claims.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

// CanActForClient is the ownership rule for per-client resources such as
// the cart: employees act for anyone, a customer only for itself.
func CanActForClient(claims *SessionClaims, clientID int64) error {
	if claims == nil {
		return ErrForbidden
	}
	switch claims.Role {
	case domain.RoleEmployee:
		return nil
	case domain.RoleCustomer:
		if claims.UserID == clientID {
			return nil
		}
	}
	return ErrForbidden
}
