package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"farmacia/m/domain"
	"farmacia/m/internal/checkout"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const EventCheckoutCompleted = "checkout.session.completed"

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrNoBranch         = errors.New("no branch for sale")
)

type Outcome string

const (
	Processed Outcome = "processed"
	Ignored   Outcome = "ignored"
)

type Result struct {
	Outcome Outcome
	Reason  string
	Sale    *domain.Sale
}

func ignored(reason string) Result {
	return Result{Outcome: Ignored, Reason: reason}
}

// Checkouter is satisfied by *checkout.Engine.
type Checkouter interface {
	Checkout(ctx context.Context, req checkout.Request) (domain.Sale, error)
}

// Reconciler turns completed-payment webhooks into sales.
type Reconciler struct {
	engine   Checkouter
	secret   string
	agentID  int64
	branchID int64
}

// NewReconciler takes the webhook signing secret and the agent and branch
// used when the session metadata does not carry them.
func NewReconciler(engine Checkouter, secret string, agentID, branchID int64) *Reconciler {
	return &Reconciler{engine: engine, secret: secret, agentID: agentID, branchID: branchID}
}

// HandlePaymentCompleted verifies and applies one webhook delivery.
// Only ErrInvalidSignature means the delivery was rejected; every other
// error is an internal failure the caller should log and acknowledge.
func (r *Reconciler) HandlePaymentCompleted(ctx context.Context, payload []byte, signature string) (Result, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, r.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if string(event.Type) != EventCheckoutCompleted {
		return ignored("unhandled event type " + string(event.Type)), nil
	}
	if event.Data == nil {
		return ignored("event without data"), nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return Result{}, fmt.Errorf("decode checkout session: %w", err)
	}
	if session.ClientReferenceID == "" {
		return ignored("missing client reference"), nil
	}
	clientID, err := strconv.ParseInt(session.ClientReferenceID, 10, 64)
	if err != nil || clientID <= 0 {
		return ignored("malformed client reference " + session.ClientReferenceID), nil
	}

	branchID := metadataID(session.Metadata, metaBranch, r.branchID)
	if branchID <= 0 {
		return Result{}, fmt.Errorf("%w: session %s", ErrNoBranch, session.ID)
	}
	req := checkout.Request{
		ClientID: clientID,
		BranchID: branchID,
		Payment:  &checkout.Payment{Method: "stripe"},
	}
	if agentID := metadataID(session.Metadata, metaAgent, r.agentID); agentID > 0 {
		req.AgentID = &agentID
	}
	if id := eventKey(event, session); id != "" {
		req.Event = &checkout.Event{ID: id, Type: string(event.Type)}
	}

	sale, err := r.engine.Checkout(ctx, req)
	switch {
	case err == nil:
		log.Printf("[webhook] event %s created sale %d for client %d", event.ID, sale.ID, clientID)
		return Result{Outcome: Processed, Sale: &sale}, nil
	case errors.Is(err, checkout.ErrEmptyCart):
		return ignored("cart already empty"), nil
	case errors.Is(err, checkout.ErrDuplicateEvent):
		return ignored("event already processed"), nil
	default:
		return Result{}, fmt.Errorf("checkout for client %d: %w", clientID, err)
	}
}

func eventKey(event stripe.Event, session stripe.CheckoutSession) string {
	if event.ID != "" {
		return event.ID
	}
	if session.ID != "" {
		return "session:" + session.ID
	}
	return ""
}

func metadataID(meta map[string]string, key string, fallback int64) int64 {
	raw, ok := meta[key]
	if !ok {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
