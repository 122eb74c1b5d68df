package payment

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"farmacia/m/domain"
	"farmacia/m/internal/checkout"
	"farmacia/m/internal/database"
	"farmacia/m/internal/migrations"
	"farmacia/m/internal/password"
	"farmacia/m/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"golang.org/x/crypto/bcrypt"
)

const whsec = "whsec_test"

func init() {
	password.Cost = bcrypt.MinCost
}

type env struct {
	store   *store.Store
	engine  *checkout.Engine
	rec     *Reconciler
	client  domain.Client
	branch  domain.Branch
	product domain.Product
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := database.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Apply(db))

	ctx := context.Background()
	e := &env{store: store.New(db)}
	e.engine = checkout.NewEngine(e.store, checkout.PolicyPermissive, nil)
	e.client, err = e.store.CreateClient(ctx, domain.Client{FirstName: "Ana", Email: "ana@example.com"}, "secreto1")
	require.NoError(t, err)
	e.branch, err = e.store.CreateBranch(ctx, domain.Branch{Name: "Web"})
	require.NoError(t, err)
	e.product, err = e.store.CreateProduct(ctx, domain.Product{Name: "Ibuprofeno", UnitPrice: decimal.RequireFromString("15.80")})
	require.NoError(t, err)
	e.rec = NewReconciler(e.engine, whsec, 0, e.branch.ID)
	return e
}

func signed(t *testing.T, eventID, eventType string, session map[string]interface{}) ([]byte, string) {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"id":          eventID,
		"object":      "event",
		"api_version": "2020-08-27",
		"type":        eventType,
		"data":        map[string]interface{}{"object": session},
	})
	require.NoError(t, err)
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: body, Secret: whsec})
	return sp.Payload, sp.Header
}

func completedSession(clientRef string) map[string]interface{} {
	return map[string]interface{}{
		"id":                  "cs_test_1",
		"object":              "checkout.session",
		"client_reference_id": clientRef,
		"metadata":            map[string]string{},
	}
}

func (e *env) sales(t *testing.T) []domain.Sale {
	t.Helper()
	sales, err := e.store.ListSales(context.Background())
	require.NoError(t, err)
	return sales
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	e := newEnv(t)
	payload, _ := signed(t, "evt_1", EventCheckoutCompleted, completedSession("1"))

	_, err := e.rec.HandlePaymentCompleted(context.Background(), payload, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	other := NewReconciler(e.engine, "whsec_other", 0, e.branch.ID)
	_, header := signed(t, "evt_1", EventCheckoutCompleted, completedSession("1"))
	_, err = other.HandlePaymentCompleted(context.Background(), payload, header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Empty(t, e.sales(t))
}

func TestWebhookIgnoresOtherEventsAndMissingReference(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	payload, header := signed(t, "evt_1", "payment_intent.created", completedSession("1"))
	res, err := e.rec.HandlePaymentCompleted(ctx, payload, header)
	require.NoError(t, err)
	assert.Equal(t, Ignored, res.Outcome)

	payload, header = signed(t, "evt_2", EventCheckoutCompleted, completedSession(""))
	res, err = e.rec.HandlePaymentCompleted(ctx, payload, header)
	require.NoError(t, err)
	assert.Equal(t, Ignored, res.Outcome)
	assert.Equal(t, "missing client reference", res.Reason)
}

func TestWebhookCreatesExactlyOneSale(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.engine.AddToCart(ctx, e.client.ID, e.product.ID, 2)
	require.NoError(t, err)

	payload, header := signed(t, "evt_1", EventCheckoutCompleted, completedSession(itoa(e.client.ID)))

	res, err := e.rec.HandlePaymentCompleted(ctx, payload, header)
	require.NoError(t, err)
	require.Equal(t, Processed, res.Outcome)
	assert.Equal(t, "31.60", res.Sale.Total.StringFixed(2))

	inv, err := e.store.InvoiceForSale(ctx, res.Sale.ID)
	require.NoError(t, err)
	payments, err := e.store.PaymentsForInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "stripe", payments[0].Method)

	res, err = e.rec.HandlePaymentCompleted(ctx, payload, header)
	require.NoError(t, err)
	assert.Equal(t, Ignored, res.Outcome)
	assert.Len(t, e.sales(t), 1)
}

func TestWebhookRedeliveryWithRefilledCartIsIgnored(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.engine.AddToCart(ctx, e.client.ID, e.product.ID, 1)
	require.NoError(t, err)
	payload, header := signed(t, "evt_1", EventCheckoutCompleted, completedSession(itoa(e.client.ID)))

	_, err = e.rec.HandlePaymentCompleted(ctx, payload, header)
	require.NoError(t, err)

	_, err = e.engine.AddToCart(ctx, e.client.ID, e.product.ID, 1)
	require.NoError(t, err)
	res, err := e.rec.HandlePaymentCompleted(ctx, payload, header)
	require.NoError(t, err)
	assert.Equal(t, Ignored, res.Outcome)
	assert.Equal(t, "event already processed", res.Reason)
	assert.Len(t, e.sales(t), 1)
}

func TestWebhookUsesMetadataBranchAndAgent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	other, err := e.store.CreateBranch(ctx, domain.Branch{Name: "Zona 10"})
	require.NoError(t, err)
	agent, err := e.store.CreateEmployee(ctx, domain.Employee{Name: "Luis", Email: "luis@farmacia.com"}, "secreto1")
	require.NoError(t, err)
	_, err = e.engine.AddToCart(ctx, e.client.ID, e.product.ID, 1)
	require.NoError(t, err)

	session := completedSession(itoa(e.client.ID))
	session["metadata"] = map[string]string{metaBranch: itoa(other.ID), metaAgent: itoa(agent.ID)}
	payload, header := signed(t, "evt_9", EventCheckoutCompleted, session)

	res, err := e.rec.HandlePaymentCompleted(ctx, payload, header)
	require.NoError(t, err)
	require.Equal(t, Processed, res.Outcome)
	assert.Equal(t, other.ID, res.Sale.BranchID)
	require.NotNil(t, res.Sale.AgentID)
	assert.Equal(t, agent.ID, *res.Sale.AgentID)
}

func TestWebhookPersistenceFailureIsReportedNotRejected(t *testing.T) {
	e := newEnv(t)
	rec := NewReconciler(failingCheckout{}, whsec, 0, 1)
	payload, header := signed(t, "evt_1", EventCheckoutCompleted, completedSession(itoa(e.client.ID)))

	_, err := rec.HandlePaymentCompleted(context.Background(), payload, header)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidSignature))
}

type failingCheckout struct{}

func (failingCheckout) Checkout(context.Context, checkout.Request) (domain.Sale, error) {
	return domain.Sale{}, errors.New("database is locked")
}

type fakeCreator struct {
	params *stripe.CheckoutSessionParams
	err    error
}

func (f *fakeCreator) CreateCheckoutSession(p *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.params = p
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.test/cs_1"}, nil
}

func TestMinorUnits(t *testing.T) {
	rate := decimal.RequireFromString("7.9")
	assert.Equal(t, int64(200), MinorUnits(decimal.RequireFromString("15.80"), rate))
	assert.Equal(t, int64(127), MinorUnits(decimal.RequireFromString("10.00"), rate))
	assert.Equal(t, int64(1000), MinorUnits(decimal.RequireFromString("10.00"), decimal.Zero))
}

func TestCreateSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	creator := &fakeCreator{}
	sessions := NewSessions(e.engine, e.store, creator, SessionConfig{
		Currency:     "usd",
		ExchangeRate: decimal.RequireFromString("7.9"),
		FrontendURL:  "http://front.test/",
		BranchID:     e.branch.ID,
	})

	_, err := sessions.Create(ctx, e.client.ID, "ana@example.com", 0)
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)

	_, err = e.engine.AddToCart(ctx, e.client.ID, e.product.ID, 3)
	require.NoError(t, err)
	url, err := sessions.Create(ctx, e.client.ID, "ana@example.com", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.test/cs_1", url)

	p := creator.params
	assert.Equal(t, itoa(e.client.ID), *p.ClientReferenceID)
	assert.Equal(t, "http://front.test/factura/opc", *p.SuccessURL)
	assert.Equal(t, "http://front.test/cancel", *p.CancelURL)
	require.Len(t, p.LineItems, 1)
	assert.Equal(t, int64(200), *p.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, int64(3), *p.LineItems[0].Quantity)
	assert.Equal(t, itoa(e.branch.ID), p.Metadata[metaBranch])

	creator.err = errors.New("api down")
	_, err = sessions.Create(ctx, e.client.ID, "", 0)
	assert.ErrorIs(t, err, ErrPaymentProvider)
}

func TestCreateSessionRequiresBranch(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	creator := &fakeCreator{}
	sessions := NewSessions(e.engine, e.store, creator, SessionConfig{ExchangeRate: decimal.RequireFromString("7.9")})
	_, err := e.engine.AddToCart(ctx, e.client.ID, e.product.ID, 1)
	require.NoError(t, err)

	_, err = sessions.Create(ctx, e.client.ID, "", 0)
	assert.ErrorIs(t, err, ErrNoBranch)
	assert.Nil(t, creator.params, "no session may be opened without a branch")

	_, err = sessions.Create(ctx, e.client.ID, "", e.branch.ID+100)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Nil(t, creator.params)

	_, err = sessions.Create(ctx, e.client.ID, "", e.branch.ID)
	require.NoError(t, err)
	require.NotNil(t, creator.params)

	// A reconciler without a fallback branch still books the sale from the
	// metadata the session carried.
	rec := NewReconciler(e.engine, whsec, 0, 0)
	session := completedSession(*creator.params.ClientReferenceID)
	session["metadata"] = creator.params.Metadata
	payload, header := signed(t, "evt_branch", EventCheckoutCompleted, session)
	res, err := rec.HandlePaymentCompleted(ctx, payload, header)
	require.NoError(t, err)
	assert.Equal(t, Processed, res.Outcome)
	assert.Equal(t, e.branch.ID, res.Sale.BranchID)
	assert.Len(t, e.sales(t), 1)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
