package repository

import (
	"context"

	"dispatch/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetAll retrieves recent trips.
	GetAll(ctx context.Context) ([]*domain.Trip, error)

	// ListByStatus retrieves trips currently in the given status.
	ListByStatus(ctx context.Context, status domain.TripStatus) ([]*domain.Trip, error)

	// GetActiveByRequester returns the requester's non-terminal trip of the
	// given kind, or nil if there is none.
	GetActiveByRequester(ctx context.Context, requesterID string, kind domain.TripKind) (*domain.Trip, error)

	// UpdateIfStatus writes the trip only if the stored status still equals
	// expected, as a single atomic unit. Returns ErrPreconditionFailed when
	// the status moved underneath the caller.
	UpdateIfStatus(ctx context.Context, trip *domain.Trip, expected domain.TripStatus) error
}
