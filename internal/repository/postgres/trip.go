package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, kind, requester_id, driver_id, pickup_lat, pickup_lng, pickup_address, pickup_place_ref,
		destination_lat, destination_lng, destination_address, destination_place_ref,
		category, fare, status, notes, recipient_name, recipient_phone, proof_photo_url,
		cancelled_by, cancellation_reason, cancellation_fee,
		created_at, updated_at, accepted_at, picked_up_at, started_at, completed_at, cancelled_at`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
	`

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.Kind,
		trip.RequesterID,
		nullString(trip.DriverID),
		trip.Pickup.Lat,
		trip.Pickup.Lng,
		trip.Pickup.Address,
		nullString(trip.Pickup.PlaceRef),
		trip.Destination.Lat,
		trip.Destination.Lng,
		trip.Destination.Address,
		nullString(trip.Destination.PlaceRef),
		trip.Category,
		trip.Fare,
		trip.Status,
		nullString(trip.Notes),
		nullString(trip.RecipientName),
		nullString(trip.RecipientPhone),
		nullString(trip.ProofPhotoURL),
		nullString(string(trip.CancelledBy)),
		nullString(trip.CancellationReason),
		trip.CancellationFee,
		trip.CreatedAt,
		trip.UpdatedAt,
		nullTime(trip.AcceptedAt),
		nullTime(trip.PickedUpAt),
		nullTime(trip.StartedAt),
		nullTime(trip.CompletedAt),
		nullTime(trip.CancelledAt),
	)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return trip, nil
}

// GetAll retrieves recent trips.
func (r *TripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrips(rows)
}

// ListByStatus retrieves trips currently in the given status.
func (r *TripRepository) ListByStatus(ctx context.Context, status domain.TripStatus) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE status = $1 ORDER BY created_at ASC LIMIT 500`

	rows, err := r.q.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrips(rows)
}

// GetActiveByRequester returns the requester's non-terminal trip of the given
// kind, or nil if there is none.
func (r *TripRepository) GetActiveByRequester(ctx context.Context, requesterID string, kind domain.TripKind) (*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE requester_id = $1 AND kind = $2 AND status NOT IN ($3, $4)
		LIMIT 1
	`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, requesterID, kind, domain.TripStatusCompleted, domain.TripStatusCancelled))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return trip, nil
}

// UpdateIfStatus writes the trip only while the stored status still equals
// expected. The WHERE clause makes the check-then-set a single atomic
// statement, which is what resolves concurrent accept races.
func (r *TripRepository) UpdateIfStatus(ctx context.Context, trip *domain.Trip, expected domain.TripStatus) error {
	query := `
		UPDATE trips
		SET driver_id = $1, status = $2, notes = $3, proof_photo_url = $4,
			cancelled_by = $5, cancellation_reason = $6, cancellation_fee = $7,
			updated_at = $8, accepted_at = $9, picked_up_at = $10, started_at = $11,
			completed_at = $12, cancelled_at = $13
		WHERE id = $14 AND status = $15
	`

	result, err := r.q.ExecContext(ctx, query,
		nullString(trip.DriverID),
		trip.Status,
		nullString(trip.Notes),
		nullString(trip.ProofPhotoURL),
		nullString(string(trip.CancelledBy)),
		nullString(trip.CancellationReason),
		trip.CancellationFee,
		trip.UpdatedAt,
		nullTime(trip.AcceptedAt),
		nullTime(trip.PickedUpAt),
		nullTime(trip.StartedAt),
		nullTime(trip.CompletedAt),
		nullTime(trip.CancelledAt),
		trip.ID,
		expected,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// Distinguish a lost race from a missing row.
		var exists bool
		if err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM trips WHERE id = $1)`, trip.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrPreconditionFailed
	}

	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var driverID, pickupPlaceRef, destPlaceRef, notes sql.NullString
	var recipientName, recipientPhone, proofPhotoURL sql.NullString
	var cancelledBy, cancellationReason sql.NullString
	var acceptedAt, pickedUpAt, startedAt, completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&trip.ID,
		&trip.Kind,
		&trip.RequesterID,
		&driverID,
		&trip.Pickup.Lat,
		&trip.Pickup.Lng,
		&trip.Pickup.Address,
		&pickupPlaceRef,
		&trip.Destination.Lat,
		&trip.Destination.Lng,
		&trip.Destination.Address,
		&destPlaceRef,
		&trip.Category,
		&trip.Fare,
		&trip.Status,
		&notes,
		&recipientName,
		&recipientPhone,
		&proofPhotoURL,
		&cancelledBy,
		&cancellationReason,
		&trip.CancellationFee,
		&trip.CreatedAt,
		&trip.UpdatedAt,
		&acceptedAt,
		&pickedUpAt,
		&startedAt,
		&completedAt,
		&cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	trip.DriverID = driverID.String
	trip.Pickup.PlaceRef = pickupPlaceRef.String
	trip.Destination.PlaceRef = destPlaceRef.String
	trip.Notes = notes.String
	trip.RecipientName = recipientName.String
	trip.RecipientPhone = recipientPhone.String
	trip.ProofPhotoURL = proofPhotoURL.String
	trip.CancelledBy = domain.Role(cancelledBy.String)
	trip.CancellationReason = cancellationReason.String
	if acceptedAt.Valid {
		trip.AcceptedAt = acceptedAt.Time
	}
	if pickedUpAt.Valid {
		trip.PickedUpAt = pickedUpAt.Time
	}
	if startedAt.Valid {
		trip.StartedAt = startedAt.Time
	}
	if completedAt.Valid {
		trip.CompletedAt = completedAt.Time
	}
	if cancelledAt.Valid {
		trip.CancelledAt = cancelledAt.Time
	}

	return &trip, nil
}

func scanTrips(rows *sql.Rows) ([]*domain.Trip, error) {
	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
