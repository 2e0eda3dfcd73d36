package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/redis"
	"dispatch/internal/repository"
)

// DriverService handles driver registration, verification, availability, and
// live location.
type DriverService struct {
	locationStore redis.LocationStoreInterface
	cacheStore    *redis.CacheStore
	driverRepo    repository.DriverRepository
}

// NewDriverService creates a new DriverService. cacheStore may be nil.
func NewDriverService(
	locationStore redis.LocationStoreInterface,
	cacheStore *redis.CacheStore,
	driverRepo repository.DriverRepository,
) *DriverService {
	return &DriverService{
		locationStore: locationStore,
		cacheStore:    cacheStore,
		driverRepo:    driverRepo,
	}
}

// RegisterDriverRequest contains the parameters for registering a driver.
type RegisterDriverRequest struct {
	Name     string
	Phone    string
	Category domain.Category
}

// Register creates a driver availability record in PENDING verification.
// The driver cannot be matched until an admin verifies them.
func (s *DriverService) Register(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	if req.Name == "" {
		return nil, ErrInvalidDriverName
	}
	if !phonePattern.MatchString(req.Phone) {
		return nil, ErrInvalidPhone
	}
	if !domain.ValidCategory(domain.TripKindRide, req.Category) {
		return nil, ErrUnknownCategory
	}

	existing, err := s.driverRepo.GetByPhone(ctx, req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDriverAlreadyRegistered
	}

	driver := &domain.Driver{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Phone:        req.Phone,
		Category:     req.Category,
		Verification: domain.VerificationPending,
		Online:       false,
		Available:    true,
		Rating:       5.0,
		CreatedAt:    time.Now(),
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}

	return driver, nil
}

// Verify sets a driver's verification status. Only an admin has standing.
func (s *DriverService) Verify(ctx context.Context, driverID string, status domain.VerificationStatus, actor domain.Actor) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if actor.ID == "" || !domain.ValidRole(actor.Role) {
		return ErrInvalidActor
	}
	if actor.Role != domain.RoleAdmin {
		return ErrNotPermitted
	}
	if !domain.ValidVerificationStatus(status) {
		return ErrUnknownVerificationStatus
	}

	if err := s.driverRepo.UpdateVerification(ctx, driverID, status); err != nil {
		return err
	}

	s.invalidate(ctx, driverID)
	return nil
}

// SetOnline flips the driver's online flag. Going offline while holding an
// active trip is a conflict.
func (s *DriverService) SetOnline(ctx context.Context, driverID string, online bool) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	if err := s.driverRepo.SetOnline(ctx, driverID, online); err != nil {
		if errors.Is(err, repository.ErrPreconditionFailed) {
			return ErrDriverHasActiveTrip
		}
		return err
	}

	if !online {
		// Offline drivers leave the geo index so matching never sees them.
		if err := s.locationStore.RemoveLocation(ctx, driverID); err != nil {
			return err
		}
	}

	s.invalidate(ctx, driverID)
	return nil
}

// UpdateLocation records a driver's current position in the geo index.
func (s *DriverService) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if !domain.ValidLatitude(lat) || !domain.ValidLongitude(lng) {
		return ErrInvalidLocation
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return err
	}

	if err := s.locationStore.UpdateLocation(ctx, driverID, lat, lng); err != nil {
		return err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetDriver(ctx, &redis.CachedDriver{
			ID:           driver.ID,
			Name:         driver.Name,
			Category:     string(driver.Category),
			Verification: string(driver.Verification),
			Online:       driver.Online,
			Available:    driver.Available,
			Rating:       driver.Rating,
		})
	}

	return nil
}

// GetDriver retrieves a driver availability record.
func (s *DriverService) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.driverRepo.GetByID(ctx, driverID)
}

// GetAllDrivers retrieves all driver records.
func (s *DriverService) GetAllDrivers(ctx context.Context) ([]*domain.Driver, error) {
	return s.driverRepo.GetAll(ctx)
}

func (s *DriverService) invalidate(ctx context.Context, driverID string) {
	if s.cacheStore == nil {
		return
	}
	_ = s.cacheStore.InvalidateDriver(ctx, driverID)
}
