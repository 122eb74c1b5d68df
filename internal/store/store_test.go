package store

import (
	"context"
	"errors"
	"testing"

	"farmacia/m/domain"
	"farmacia/m/internal/database"
	"farmacia/m/internal/migrations"
	"farmacia/m/internal/password"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	password.Cost = bcrypt.MinCost
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Apply(db))
	return New(db)
}

type fixture struct {
	client  domain.Client
	branch  domain.Branch
	product domain.Product
}

func seedFixture(t *testing.T, s *Store) fixture {
	t.Helper()
	ctx := context.Background()
	client, err := s.CreateClient(ctx, domain.Client{FirstName: "Ana", LastName: "Lopez", Email: "Ana@Example.com"}, "secreto1")
	require.NoError(t, err)
	branch, err := s.CreateBranch(ctx, domain.Branch{Name: "Central"})
	require.NoError(t, err)
	product, err := s.CreateProduct(ctx, domain.Product{Name: "Paracetamol", UnitPrice: decimal.RequireFromString("10.00")})
	require.NoError(t, err)
	return fixture{client: client, branch: branch, product: product}
}

func TestCreateClientHashesAndNormalizesEmail(t *testing.T) {
	s := newTestStore(t)
	f := seedFixture(t, s)

	assert.Equal(t, "ana@example.com", f.client.Email)
	assert.NotEqual(t, "secreto1", f.client.Password)
	assert.True(t, password.Matches(f.client.Password, "secreto1"))

	_, err := s.CreateClient(context.Background(), domain.Client{FirstName: "Otra", Email: "ana@example.com"}, "x")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateClientKeepsHashWithoutNewSecret(t *testing.T) {
	s := newTestStore(t)
	f := seedFixture(t, s)
	ctx := context.Background()

	f.client.Phone = "5555"
	updated, err := s.UpdateClient(ctx, f.client, "")
	require.NoError(t, err)
	assert.Equal(t, "5555", updated.Phone)
	assert.Equal(t, f.client.Password, updated.Password)

	updated, err = s.UpdateClient(ctx, updated, "nuevo123")
	require.NoError(t, err)
	assert.True(t, password.Matches(updated.Password, "nuevo123"))
}

func TestFindAccountByEmail(t *testing.T) {
	s := newTestStore(t)
	f := seedFixture(t, s)
	ctx := context.Background()

	acc, err := s.FindAccountByEmail(ctx, domain.RoleCustomer, "  ANA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, f.client.ID, acc.ID)
	assert.Equal(t, domain.RoleCustomer, acc.Role)

	_, err = s.FindAccountByEmail(ctx, domain.RoleEmployee, "ana@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReceiveStockUpsertsAndLogsMovements(t *testing.T) {
	s := newTestStore(t)
	f := seedFixture(t, s)
	ctx := context.Background()

	rec, err := s.ReceiveStock(ctx, f.product.ID, f.branch.ID, 5, "compra-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), rec.Quantity)

	rec, err = s.ReceiveStock(ctx, f.product.ID, f.branch.ID, 3, "compra-2")
	require.NoError(t, err)
	assert.Equal(t, int64(8), rec.Quantity)
	assert.Equal(t, "Paracetamol", rec.ProductName)

	moves, err := s.ListMovements(ctx, f.product.ID, f.branch.ID)
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, domain.MovementReceipt, moves[0].Kind)

	_, err = s.ReceiveStock(ctx, f.product.ID, f.branch.ID, 0, "x")
	assert.Error(t, err)
}

func TestDecrementStock(t *testing.T) {
	s := newTestStore(t)
	f := seedFixture(t, s)
	ctx := context.Background()

	found, err := s.DecrementStock(ctx, f.product.ID, f.branch.ID, 1)
	require.NoError(t, err)
	assert.False(t, found, "no record yet")

	_, err = s.ReceiveStock(ctx, f.product.ID, f.branch.ID, 2, "compra")
	require.NoError(t, err)

	found, err = s.DecrementStock(ctx, f.product.ID, f.branch.ID, 2)
	require.NoError(t, err)
	assert.True(t, found)

	_, err = s.DecrementStock(ctx, f.product.ID, f.branch.ID, 1)
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	rec, err := s.GetInventory(ctx, f.product.ID, f.branch.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.Quantity)
}

func TestCartLines(t *testing.T) {
	s := newTestStore(t)
	f := seedFixture(t, s)
	ctx := context.Background()

	line, err := s.AddCartLine(ctx, f.client.ID, f.product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), line.Quantity)

	line, err = s.AddCartLine(ctx, f.client.ID, f.product.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), line.Quantity)

	items, err := s.CartItems(ctx, f.client.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, decimal.RequireFromString("50").Equal(items[0].Subtotal()))
	assert.Equal(t, "ana@example.com", items[0].ClientEmail)

	_, err = s.SetCartQuantity(ctx, f.client.ID, f.product.ID+99, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	line, err = s.SetCartQuantity(ctx, f.client.ID, f.product.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), line.Quantity)

	require.NoError(t, s.DeleteCartLine(ctx, f.client.ID, f.product.ID))
	require.NoError(t, s.DeleteCartLine(ctx, f.client.ID, f.product.ID))

	n, err := s.ClearCart(ctx, f.client.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSaleInvoiceLifecycle(t *testing.T) {
	s := newTestStore(t)
	f := seedFixture(t, s)
	ctx := context.Background()

	sale, err := s.CreateSale(ctx, domain.Sale{ClientID: f.client.ID, BranchID: f.branch.ID, Total: decimal.RequireFromString("20.00")})
	require.NoError(t, err)
	_, err = s.AddSaleItem(ctx, domain.SaleLineItem{SaleID: sale.ID, ProductID: f.product.ID, Quantity: 2, UnitPrice: f.product.UnitPrice})
	require.NoError(t, err)

	got, err := s.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Paracetamol", got.Items[0].ProductName)
	assert.True(t, decimal.RequireFromString("20").Equal(got.Total))

	inv, err := s.CreateInvoice(ctx, sale.ID)
	require.NoError(t, err)
	assert.Regexp(t, `^F-\d{14}-[0-9A-F]{8}$`, inv.Number)

	_, err = s.CreateInvoice(ctx, sale.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = s.AddPayment(ctx, domain.PaymentTransaction{InvoiceID: inv.ID, Method: "efectivo", Amount: got.Total, Status: domain.PaymentCompleted})
	require.NoError(t, err)

	doc, err := s.InvoiceDocument(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Lopez", doc.ClientName)
	assert.Equal(t, "Central", doc.BranchName)

	latest, err := s.LatestSaleForClient(ctx, f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.ID, latest.ID)

	require.NoError(t, s.DeleteSale(ctx, sale.ID))
	_, err = s.GetSale(ctx, sale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetInvoice(ctx, inv.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteSale(ctx, sale.ID), ErrNotFound)
}

func TestInTxRollsBack(t *testing.T) {
	s := newTestStore(t)
	f := seedFixture(t, s)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(q *Queries) error {
		if _, err := q.AddCartLine(ctx, f.client.ID, f.product.ID, 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	items, err := s.CartItems(ctx, f.client.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMarkEventProcessed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.MarkEventProcessed(ctx, "evt_1", "checkout.session.completed"))
	assert.ErrorIs(t, s.MarkEventProcessed(ctx, "evt_1", "checkout.session.completed"), ErrConflict)

	done, err := s.EventProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, done)
}
