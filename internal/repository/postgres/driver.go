package postgres

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

const driverColumns = `id, name, phone, category, verification_status, is_online, is_available,
		current_trip_id, total_rides, total_deliveries, rating, total_earnings, created_at`

// Create adds a new driver availability record.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (` + driverColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.Name,
		driver.Phone,
		driver.Category,
		driver.Verification,
		driver.Online,
		driver.Available,
		nullString(driver.CurrentTripID),
		driver.TotalRides,
		driver.TotalDeliveries,
		driver.Rating,
		driver.TotalEarnings,
		driver.CreatedAt,
	)
	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByPhone retrieves a driver by phone number.
func (r *DriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE phone = $1`
	return r.getOne(ctx, query, phone)
}

func (r *DriverRepository) getOne(ctx context.Context, query string, arg any) (*domain.Driver, error) {
	var driver domain.Driver
	var currentTripID sql.NullString

	err := r.q.QueryRowContext(ctx, query, arg).Scan(
		&driver.ID,
		&driver.Name,
		&driver.Phone,
		&driver.Category,
		&driver.Verification,
		&driver.Online,
		&driver.Available,
		&currentTripID,
		&driver.TotalRides,
		&driver.TotalDeliveries,
		&driver.Rating,
		&driver.TotalEarnings,
		&driver.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	driver.CurrentTripID = currentTripID.String
	return &driver, nil
}

// GetAll retrieves all drivers.
func (r *DriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		var driver domain.Driver
		var currentTripID sql.NullString
		if err := rows.Scan(
			&driver.ID,
			&driver.Name,
			&driver.Phone,
			&driver.Category,
			&driver.Verification,
			&driver.Online,
			&driver.Available,
			&currentTripID,
			&driver.TotalRides,
			&driver.TotalDeliveries,
			&driver.Rating,
			&driver.TotalEarnings,
			&driver.CreatedAt,
		); err != nil {
			return nil, err
		}
		driver.CurrentTripID = currentTripID.String
		drivers = append(drivers, &driver)
	}
	return drivers, rows.Err()
}

// UpdateVerification sets the driver's verification status.
func (r *DriverRepository) UpdateVerification(ctx context.Context, id string, status domain.VerificationStatus) error {
	result, err := r.q.ExecContext(ctx, `UPDATE drivers SET verification_status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Reserve atomically marks the driver busy with tripID. The guards in the
// WHERE clause enforce the one-active-trip invariant at the store.
func (r *DriverRepository) Reserve(ctx context.Context, id, tripID string) error {
	query := `
		UPDATE drivers
		SET is_available = FALSE, current_trip_id = $1
		WHERE id = $2 AND is_online AND is_available AND current_trip_id IS NULL AND verification_status = $3
	`
	result, err := r.q.ExecContext(ctx, query, tripID, id, domain.VerificationVerified)
	if err != nil {
		return err
	}
	return r.requireDriverRow(ctx, result, id)
}

// Release atomically frees the driver, guarded by the held trip.
func (r *DriverRepository) Release(ctx context.Context, id, tripID string) error {
	query := `
		UPDATE drivers
		SET is_available = TRUE, current_trip_id = NULL
		WHERE id = $1 AND current_trip_id = $2
	`
	result, err := r.q.ExecContext(ctx, query, id, tripID)
	if err != nil {
		return err
	}
	return r.requireDriverRow(ctx, result, id)
}

// SetOnline flips the online flag. A driver holding an active trip cannot
// go offline.
func (r *DriverRepository) SetOnline(ctx context.Context, id string, online bool) error {
	var query string
	if online {
		query = `UPDATE drivers SET is_online = TRUE WHERE id = $1`
	} else {
		query = `UPDATE drivers SET is_online = FALSE WHERE id = $1 AND current_trip_id IS NULL`
	}

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return r.requireDriverRow(ctx, result, id)
}

// RecordCompletion increments the per-kind trip counter and earnings.
func (r *DriverRepository) RecordCompletion(ctx context.Context, id string, kind domain.TripKind, earnings float64) error {
	var query string
	if kind == domain.TripKindDelivery {
		query = `UPDATE drivers SET total_deliveries = total_deliveries + 1, total_earnings = total_earnings + $1 WHERE id = $2`
	} else {
		query = `UPDATE drivers SET total_rides = total_rides + 1, total_earnings = total_earnings + $1 WHERE id = $2`
	}

	result, err := r.q.ExecContext(ctx, query, earnings, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// requireDriverRow maps a zero-row guarded update to the precise failure.
func (r *DriverRepository) requireDriverRow(ctx context.Context, result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	if err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM drivers WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrPreconditionFailed
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
