// Package payment talks to Stripe: it opens hosted checkout sessions for
// a client's cart and reconciles the completion webhooks into sales.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"farmacia/m/domain"
	"farmacia/m/internal/checkout"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const (
	metaClient = "id_cliente"
	metaAgent  = "id_usuario"
	metaBranch = "id_sucursal"
)

var ErrPaymentProvider = errors.New("payment provider error")

// SessionCreator opens a hosted checkout session.
type SessionCreator interface {
	CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeSessions struct {
	api *client.API
}

// NewStripeSessions returns a SessionCreator backed by the Stripe API.
func NewStripeSessions(secretKey string) SessionCreator {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &stripeSessions{api: api}
}

func (s *stripeSessions) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return s.api.CheckoutSessions.New(params)
}

// CartReader is the part of the checkout engine a session needs.
type CartReader interface {
	ViewCart(ctx context.Context, clientID int64) ([]domain.CartItem, error)
}

type BranchReader interface {
	GetBranch(ctx context.Context, id int64) (domain.Branch, error)
}

type SessionConfig struct {
	Currency     string
	ExchangeRate decimal.Decimal
	FrontendURL  string
	AgentID      int64
	BranchID     int64
}

type Sessions struct {
	cart     CartReader
	branches BranchReader
	creator  SessionCreator
	cfg      SessionConfig
}

func NewSessions(cart CartReader, branches BranchReader, creator SessionCreator, cfg SessionConfig) *Sessions {
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &Sessions{cart: cart, branches: branches, creator: creator, cfg: cfg}
}

// MinorUnits converts a local price into charge currency cents:
// round(price / rate * 100).
func MinorUnits(price, rate decimal.Decimal) int64 {
	if !rate.IsPositive() {
		rate = decimal.NewFromInt(1)
	}
	return price.Div(rate).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Create opens a session for the client's current cart and returns the
// URL the browser is redirected to. branchID 0 means the configured
// web branch.
func (s *Sessions) Create(ctx context.Context, clientID int64, email string, branchID int64) (string, error) {
	items, err := s.cart.ViewCart(ctx, clientID)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", checkout.ErrEmptyCart
	}
	if branchID == 0 {
		branchID = s.cfg.BranchID
	}
	// The webhook books the sale at the metadata branch.
	if branchID <= 0 {
		return "", ErrNoBranch
	}
	if _, err := s.branches.GetBranch(ctx, branchID); err != nil {
		return "", fmt.Errorf("session branch %d: %w", branchID, err)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		ClientReferenceID:  stripe.String(strconv.FormatInt(clientID, 10)),
		SuccessURL:         stripe.String(s.cfg.FrontendURL + "/factura/opc"),
		CancelURL:          stripe.String(s.cfg.FrontendURL + "/cancel"),
	}
	params.Context = ctx
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	for _, item := range items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(s.cfg.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.ProductName),
				},
				UnitAmount: stripe.Int64(MinorUnits(item.UnitPrice, s.cfg.ExchangeRate)),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}
	params.AddMetadata(metaClient, strconv.FormatInt(clientID, 10))
	if s.cfg.AgentID > 0 {
		params.AddMetadata(metaAgent, strconv.FormatInt(s.cfg.AgentID, 10))
	}
	params.AddMetadata(metaBranch, strconv.FormatInt(branchID, 10))

	session, err := s.creator.CreateCheckoutSession(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}
	return session.URL, nil
}
