// Package auth issues and verifies signed tokens and implements the
// login and password reset flows for clients and employees.
package auth

import (
	"errors"
	"fmt"
	"time"

	"farmacia/m/domain"

	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionTTL = 2 * time.Hour
	ResetTTL   = 15 * time.Minute

	purposeSession = "session"
	purposeReset   = "reset"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// SessionClaims is the claim set carried by a login token.
type SessionClaims struct {
	UserID  int64       `json:"id"`
	Email   string      `json:"correo"`
	Role    domain.Role `json:"role"`
	Purpose string      `json:"purpose"`
	jwt.RegisteredClaims
}

// ResetClaims carries only the subject; the purpose claim keeps a reset
// token from being usable as a session and the other way round.
type ResetClaims struct {
	UserID  int64       `json:"id"`
	Role    domain.Role `json:"role"`
	Purpose string      `json:"purpose"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 tokens with one shared secret.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

func (t *Tokens) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *Tokens) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := t.now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func (t *Tokens) IssueSession(account domain.Account) (string, error) {
	return t.sign(SessionClaims{
		UserID:           account.ID,
		Email:            account.Email,
		Role:             account.Role,
		Purpose:          purposeSession,
		RegisteredClaims: t.registered(SessionTTL),
	})
}

func (t *Tokens) IssueReset(account domain.Account) (string, error) {
	return t.sign(ResetClaims{
		UserID:           account.ID,
		Role:             account.Role,
		Purpose:          purposeReset,
		RegisteredClaims: t.registered(ResetTTL),
	})
}

func (t *Tokens) parse(raw string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}

// ParseSession verifies signature and expiry of a session token.
func (t *Tokens) ParseSession(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := t.parse(raw, claims); err != nil {
		return nil, err
	}
	if claims.Purpose != purposeSession || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: not a session token", ErrInvalidToken)
	}
	return claims, nil
}

func (t *Tokens) ParseReset(raw string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	if err := t.parse(raw, claims); err != nil {
		return nil, err
	}
	if claims.Purpose != purposeReset {
		return nil, fmt.Errorf("%w: not a reset token", ErrInvalidToken)
	}
	return claims, nil
}
