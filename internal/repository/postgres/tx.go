package postgres

import (
	"context"
	"database/sql"

	"dispatch/internal/repository"
)

// TxRunner is a PostgreSQL implementation of repository.TxRunner built on
// database/sql transactions.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner creates a new PostgreSQL transaction runner.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

// InTx runs fn inside a single transaction. Any error from fn rolls the
// transaction back and is returned unchanged, so sentinel errors survive
// for the caller's errors.Is checks.
func (r *TxRunner) InTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	repos := repository.Repositories{
		Trips:    NewTripRepositoryWithTx(tx),
		Drivers:  NewDriverRepositoryWithTx(tx),
		Payments: NewPaymentRepositoryWithTx(tx),
	}

	if err := fn(repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
