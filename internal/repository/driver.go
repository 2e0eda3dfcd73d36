package repository

import (
	"context"

	"dispatch/internal/domain"
)

// DriverRepository defines the persistence operations for driver
// availability records.
type DriverRepository interface {
	// Create adds a new driver availability record.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetByPhone retrieves a driver by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.Driver, error)

	// GetAll retrieves all drivers.
	GetAll(ctx context.Context) ([]*domain.Driver, error)

	// UpdateVerification sets the driver's verification status.
	UpdateVerification(ctx context.Context, id string, status domain.VerificationStatus) error

	// Reserve atomically marks the driver busy with tripID. The write only
	// commits while the driver is online, available, verified, and holds no
	// trip; otherwise ErrPreconditionFailed.
	Reserve(ctx context.Context, id, tripID string) error

	// Release atomically frees the driver, guarded by the trip currently
	// held so a stale release cannot clobber a newer assignment.
	Release(ctx context.Context, id, tripID string) error

	// SetOnline flips the online flag. Going offline only commits while no
	// active trip is held; otherwise ErrPreconditionFailed.
	SetOnline(ctx context.Context, id string, online bool) error

	// RecordCompletion increments the per-kind trip counter and earnings.
	RecordCompletion(ctx context.Context, id string, kind domain.TripKind, earnings float64) error
}
