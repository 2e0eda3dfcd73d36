package postgres

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

// Create persists a new payment record.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, trip_id, amount, status, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.TripID,
		payment.Amount,
		payment.Status,
		payment.IdempotencyKey,
		payment.CreatedAt,
	)
	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	payment, err := r.getOne(ctx, `SELECT id, trip_id, amount, status, idempotency_key, created_at FROM payments WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, repository.ErrNotFound
	}
	return payment, nil
}

// GetByIdempotencyKey retrieves a payment by its idempotency key, or nil.
func (r *PaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	return r.getOne(ctx, `SELECT id, trip_id, amount, status, idempotency_key, created_at FROM payments WHERE idempotency_key = $1`, key)
}

// GetByTripID retrieves the payment recorded for a trip, or nil.
func (r *PaymentRepository) GetByTripID(ctx context.Context, tripID string) (*domain.Payment, error) {
	return r.getOne(ctx, `SELECT id, trip_id, amount, status, idempotency_key, created_at FROM payments WHERE trip_id = $1`, tripID)
}

func (r *PaymentRepository) getOne(ctx context.Context, query string, arg any) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.q.QueryRowContext(ctx, query, arg).Scan(
		&payment.ID,
		&payment.TripID,
		&payment.Amount,
		&payment.Status,
		&payment.IdempotencyKey,
		&payment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}
