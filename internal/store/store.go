// Package store is the sqlx persistence layer. Every query is written
// with ? placeholders and rebound for the active driver.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// DBTX is satisfied by both *sqlx.DB and *sqlx.Tx.
type DBTX interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// Queries runs repository operations against a connection or a transaction.
type Queries struct {
	db DBTX
}

// Store owns the connection pool and opens transactions.
type Store struct {
	*Queries
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{Queries: &Queries{db: db}, db: db}
}

// InTx runs fn inside one transaction. Any error from fn, or a panic,
// rolls everything back.
func (s *Store) InTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (q *Queries) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	err := q.db.GetContext(ctx, dest, q.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (q *Queries) sel(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return q.db.SelectContext(ctx, dest, q.db.Rebind(query), args...)
}

func (q *Queries) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := q.db.ExecContext(ctx, q.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// insert runs an INSERT ... RETURNING id statement.
func (q *Queries) insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := q.db.QueryRowxContext(ctx, q.db.Rebind(query), args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return 0, err
	}
	return id, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
