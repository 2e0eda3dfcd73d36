package repository

import (
	"context"

	"dispatch/internal/domain"
)

// PaymentRepository defines the persistence operations for payment records.
type PaymentRepository interface {
	// Create persists a new payment record.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByIdempotencyKey retrieves a payment by its idempotency key,
	// or nil if none exists.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error)

	// GetByTripID retrieves the payment recorded for a trip, or nil.
	GetByTripID(ctx context.Context, tripID string) (*domain.Payment, error)
}
