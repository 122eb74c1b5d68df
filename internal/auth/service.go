package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"farmacia/m/domain"
	"farmacia/m/internal/password"
	"farmacia/m/internal/store"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("token and a new password of at least 6 characters are required")
	ErrDelivery           = errors.New("could not deliver reset email")

	// ErrNotFound is returned when no account matches the email or token subject.
	ErrNotFound = store.ErrNotFound
)

const MinPasswordLength = 6

// Accounts is the slice of the store the auth flows need.
type Accounts interface {
	FindAccountByEmail(ctx context.Context, role domain.Role, email string) (domain.Account, error)
	FindAccountByID(ctx context.Context, role domain.Role, id int64) (domain.Account, error)
	SetPassword(ctx context.Context, role domain.Role, id int64, plain string) error
}

// ResetMailer delivers a password reset link.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, name, link string) error
}

type Service struct {
	accounts    Accounts
	tokens      *Tokens
	mailer      ResetMailer
	frontendURL string
}

func NewService(accounts Accounts, tokens *Tokens, mailer ResetMailer, frontendURL string) *Service {
	return &Service{
		accounts:    accounts,
		tokens:      tokens,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

type LoginResult struct {
	Token   string
	Profile domain.Profile
}

func (s *Service) Login(ctx context.Context, role domain.Role, email, secret string) (LoginResult, error) {
	if strings.TrimSpace(email) == "" || secret == "" {
		return LoginResult{}, ErrMissingCredentials
	}
	account, err := s.accounts.FindAccountByEmail(ctx, role, email)
	if err != nil {
		return LoginResult{}, err
	}
	if !password.Matches(account.Password, secret) {
		return LoginResult{}, ErrInvalidCredentials
	}
	token, err := s.tokens.IssueSession(account)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign session token: %w", err)
	}
	log.Printf("[auth] %s %d logged in", role, account.ID)
	return LoginResult{Token: token, Profile: account.Profile()}, nil
}

// ResetLink builds the frontend URL a reset token is delivered in.
func (s *Service) ResetLink(role domain.Role, token string) string {
	path := "/reset-password"
	if role == domain.RoleCustomer {
		path = "/reset-password-cli"
	}
	return s.frontendURL + path + "?token=" + token
}

// RequestPasswordReset returns store.ErrNotFound for unknown emails; the
// HTTP layer hides that from the caller.
func (s *Service) RequestPasswordReset(ctx context.Context, role domain.Role, email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrMissingCredentials
	}
	account, err := s.accounts.FindAccountByEmail(ctx, role, email)
	if err != nil {
		return err
	}
	token, err := s.tokens.IssueReset(account)
	if err != nil {
		return fmt.Errorf("sign reset token: %w", err)
	}
	if err := s.mailer.SendPasswordReset(ctx, account.Email, account.Name, s.ResetLink(role, token)); err != nil {
		log.Printf("[auth] reset email to %s failed: %v", account.Email, err)
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, role domain.Role, token, newSecret string) error {
	if token == "" || len(newSecret) < MinPasswordLength {
		return ErrInvalidInput
	}
	claims, err := s.tokens.ParseReset(token)
	if err != nil {
		return err
	}
	if claims.Role != role {
		return fmt.Errorf("%w: token issued for %s", ErrInvalidToken, claims.Role)
	}
	if _, err := s.accounts.FindAccountByID(ctx, role, claims.UserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.accounts.SetPassword(ctx, role, claims.UserID, newSecret); err != nil {
		return err
	}
	log.Printf("[auth] %s %d reset password", role, claims.UserID)
	return nil
}
