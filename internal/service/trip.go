package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/observability"
	"dispatch/internal/policy"
	"dispatch/internal/redis"
	"dispatch/internal/repository"
)

const (
	acceptLockTTL = 10 * time.Second

	// Requester-initiated cancellations are free inside this window after
	// acceptance; afterwards a share of the quoted fare is charged.
	cancellationGrace   = 2 * time.Minute
	cancellationFeeRate = 0.10
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// TripLifecycleService orchestrates trip creation, acceptance, progress,
// completion, and cancellation for rides and deliveries.
type TripLifecycleService struct {
	tripRepo       repository.TripRepository
	driverRepo     repository.DriverRepository
	paymentService *PaymentService
	txRunner       repository.TxRunner
	lockStore      redis.LockStoreInterface
	cacheStore     *redis.CacheStore
	notifier       *NotificationService
}

// NewTripLifecycleService creates a new TripLifecycleService. lockStore,
// cacheStore, and notifier may be nil.
func NewTripLifecycleService(
	tripRepo repository.TripRepository,
	driverRepo repository.DriverRepository,
	paymentService *PaymentService,
	txRunner repository.TxRunner,
	lockStore redis.LockStoreInterface,
	cacheStore *redis.CacheStore,
	notifier *NotificationService,
) *TripLifecycleService {
	return &TripLifecycleService{
		tripRepo:       tripRepo,
		driverRepo:     driverRepo,
		paymentService: paymentService,
		txRunner:       txRunner,
		lockStore:      lockStore,
		cacheStore:     cacheStore,
		notifier:       notifier,
	}
}

// CreateTripRequest contains the parameters for creating a trip.
type CreateTripRequest struct {
	Kind        domain.TripKind
	RequesterID string
	Pickup      domain.Location
	Destination domain.Location
	Category    domain.Category
	Fare        float64
	Notes       string

	// Delivery only.
	RecipientName  string
	RecipientPhone string
}

// CreateTrip creates a new trip in REQUESTED state. A requester may hold at
// most one active trip per kind.
func (s *TripLifecycleService) CreateTrip(ctx context.Context, req CreateTripRequest) (*domain.Trip, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	active, err := s.tripRepo.GetActiveByRequester(ctx, req.RequesterID, req.Kind)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrRequesterHasActiveTrip
	}

	now := time.Now()
	trip := &domain.Trip{
		ID:             uuid.New().String(),
		Kind:           req.Kind,
		RequesterID:    req.RequesterID,
		Pickup:         req.Pickup,
		Destination:    req.Destination,
		Category:       req.Category,
		Fare:           req.Fare,
		Status:         domain.TripStatusRequested,
		Notes:          req.Notes,
		RecipientName:  req.RecipientName,
		RecipientPhone: req.RecipientPhone,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	observability.TripsRequested.WithLabelValues(string(trip.Kind)).Inc()
	if s.notifier != nil {
		_ = s.notifier.NotifyTripRequested(ctx, trip)
	}

	return trip, nil
}

func (s *TripLifecycleService) validateCreateRequest(req CreateTripRequest) error {
	if !domain.ValidKind(req.Kind) {
		return ErrUnknownKind
	}
	if req.RequesterID == "" {
		return ErrInvalidRequesterID
	}
	if !req.Pickup.Valid() {
		return ErrInvalidPickupLocation
	}
	if !req.Destination.Valid() {
		return ErrInvalidDestinationLocation
	}
	if !domain.ValidCategory(req.Kind, req.Category) {
		return ErrUnknownCategory
	}
	if req.Fare <= 0 {
		return ErrInvalidFare
	}
	if req.Kind == domain.TripKindDelivery {
		if req.RecipientName == "" || !phonePattern.MatchString(req.RecipientPhone) {
			return ErrInvalidRecipient
		}
	}
	return nil
}

// AcceptTrip claims a REQUESTED trip for a driver. The driver reservation
// and the trip status compare-and-swap run in one transaction with the swap
// as the final gate, so of N concurrent accepts exactly one driver wins and
// a lost swap rolls the reservation back with it.
func (s *TripLifecycleService) AcceptTrip(ctx context.Context, tripID, driverID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if !policy.CanAccept(trip, domain.Actor{ID: driverID, Role: domain.RoleDriver}) || trip.Status != domain.TripStatusRequested {
		observability.AcceptConflicts.Inc()
		return nil, ErrTripAlreadyClaimed
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver.CurrentTripID != "" {
		return nil, ErrDriverHasActiveTrip
	}
	if !driver.Matchable() {
		return nil, ErrDriverNotEligible
	}

	// Short-lived trip lock to thin the herd before the status swap.
	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireTripLock(ctx, tripID, acceptLockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			observability.AcceptConflicts.Inc()
			return nil, ErrTripAlreadyClaimed
		}
		defer func() { _ = s.lockStore.ReleaseTripLock(ctx, tripID) }()
	}

	now := time.Now()
	trip.DriverID = driverID
	trip.Status = domain.TripStatusConfirmed
	trip.AcceptedAt = now
	trip.UpdatedAt = now

	err = s.txRunner.InTx(ctx, func(r repository.Repositories) error {
		if err := r.Drivers.Reserve(ctx, driverID, tripID); err != nil {
			if errors.Is(err, repository.ErrPreconditionFailed) {
				return ErrDriverNotEligible
			}
			return err
		}
		if err := r.Trips.UpdateIfStatus(ctx, trip, domain.TripStatusRequested); err != nil {
			if errors.Is(err, repository.ErrPreconditionFailed) {
				observability.AcceptConflicts.Inc()
				return ErrTripAlreadyClaimed
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.AcceptWins.Inc()
	s.invalidateDriver(ctx, driverID)
	if s.notifier != nil {
		_ = s.notifier.NotifyTripAccepted(ctx, trip)
	}

	return trip, nil
}

// AdvanceTrip moves a trip one step along its forward path. Only the
// assigned driver advances; completion goes through CompleteTrip.
func (s *TripLifecycleService) AdvanceTrip(ctx context.Context, tripID, driverID string, target domain.TripStatus) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if domain.IsTerminal(trip.Status) {
		return nil, ErrTripTerminal
	}
	if !policy.CanAdvance(trip, domain.Actor{ID: driverID, Role: domain.RoleDriver}) {
		return nil, ErrNotAssignedDriver
	}

	if !domain.OnPath(trip.Kind, target) {
		return nil, ErrUnknownStatus
	}
	// Completion and cancellation have their own operations.
	if target == domain.TripStatusCompleted || target == domain.TripStatusCancelled {
		return nil, ErrInvalidTransition
	}
	next, ok := domain.NextStatus(trip.Kind, trip.Status)
	if !ok || target != next {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	prev := trip.Status
	trip.Status = target
	trip.UpdatedAt = now
	switch target {
	case domain.TripStatusPickedUp:
		trip.PickedUpAt = now
	case domain.TripStatusInProgress, domain.TripStatusInTransit:
		trip.StartedAt = now
	}

	if err := s.tripRepo.UpdateIfStatus(ctx, trip, prev); err != nil {
		if errors.Is(err, repository.ErrPreconditionFailed) {
			return nil, ErrTripStateChanged
		}
		return nil, err
	}

	if s.notifier != nil {
		_ = s.notifier.NotifyTripAdvanced(ctx, trip)
	}

	return trip, nil
}

// CompleteTripResponse contains the completed trip and the payment record
// emitted for it.
type CompleteTripResponse struct {
	Trip    *domain.Trip
	Payment *domain.Payment
}

// CompleteTrip finishes a trip from its final pre-completion state, frees
// the driver, and records a pending payment for the quoted fare. All three
// writes commit in one transaction: a trip must never read COMPLETED while
// its driver is still held or its payment was never recorded.
func (s *TripLifecycleService) CompleteTrip(ctx context.Context, tripID, driverID, proofPhotoURL string) (*CompleteTripResponse, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if domain.IsTerminal(trip.Status) {
		return nil, ErrTripTerminal
	}
	if !policy.CanComplete(trip, domain.Actor{ID: driverID, Role: domain.RoleDriver}) {
		return nil, ErrNotAssignedDriver
	}
	if trip.Status != domain.PreCompleteStatus(trip.Kind) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	prev := trip.Status
	trip.Status = domain.TripStatusCompleted
	trip.CompletedAt = now
	trip.UpdatedAt = now
	if trip.Kind == domain.TripKindDelivery && proofPhotoURL != "" {
		trip.ProofPhotoURL = proofPhotoURL
	}

	var payment *domain.Payment
	err = s.txRunner.InTx(ctx, func(r repository.Repositories) error {
		if err := r.Trips.UpdateIfStatus(ctx, trip, prev); err != nil {
			if errors.Is(err, repository.ErrPreconditionFailed) {
				return ErrTripStateChanged
			}
			return err
		}
		if err := r.Drivers.Release(ctx, driverID, tripID); err != nil && !errors.Is(err, repository.ErrPreconditionFailed) {
			return err
		}
		if err := r.Drivers.RecordCompletion(ctx, driverID, trip.Kind, trip.Fare); err != nil {
			return err
		}
		recorded, err := s.paymentService.RecordForTripWith(ctx, r.Payments, trip)
		if err != nil {
			return err
		}
		payment = recorded
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateDriver(ctx, driverID)

	observability.TripsCompleted.WithLabelValues(string(trip.Kind)).Inc()
	if s.notifier != nil {
		_ = s.notifier.NotifyTripCompleted(ctx, trip, payment)
	}

	return &CompleteTripResponse{Trip: trip, Payment: payment}, nil
}

// CancelTrip moves a non-terminal trip to CANCELLED and computes the
// cancellation fee. Standing: the requester, the assigned driver, or an
// admin. The status flip and the driver release commit in one transaction.
func (s *TripLifecycleService) CancelTrip(ctx context.Context, tripID string, actor domain.Actor, reason string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if actor.ID == "" || !domain.ValidRole(actor.Role) {
		return nil, ErrInvalidActor
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if !policy.CanCancel(trip, actor) {
		return nil, ErrNotPermitted
	}
	if domain.IsTerminal(trip.Status) {
		return nil, ErrTripTerminal
	}

	now := time.Now()
	prev := trip.Status
	trip.Status = domain.TripStatusCancelled
	trip.CancelledBy = actor.Role
	trip.CancellationReason = reason
	trip.CancellationFee = cancellationFee(trip, actor, now)
	trip.CancelledAt = now
	trip.UpdatedAt = now

	err = s.txRunner.InTx(ctx, func(r repository.Repositories) error {
		if err := r.Trips.UpdateIfStatus(ctx, trip, prev); err != nil {
			if errors.Is(err, repository.ErrPreconditionFailed) {
				return ErrTripStateChanged
			}
			return err
		}
		if trip.DriverID == "" {
			return nil
		}
		if err := r.Drivers.Release(ctx, trip.DriverID, tripID); err != nil && !errors.Is(err, repository.ErrPreconditionFailed) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if trip.DriverID != "" {
		s.invalidateDriver(ctx, trip.DriverID)
	}

	observability.TripsCancelled.WithLabelValues(string(trip.Kind)).Inc()
	if s.notifier != nil {
		_ = s.notifier.NotifyTripCancelled(ctx, trip)
	}

	return trip, nil
}

// cancellationFee charges 10% of the quoted fare only when the requester
// cancels more than two minutes after a driver accepted. Driver and admin
// cancellations are always free; whether late driver cancellations should
// also be penalized is an open product decision, so the documented rule is
// implemented as-is.
func cancellationFee(trip *domain.Trip, actor domain.Actor, now time.Time) float64 {
	if trip.DriverID == "" || actor.Role != domain.RoleRequester {
		return 0
	}
	if trip.AcceptedAt.IsZero() || now.Sub(trip.AcceptedAt) <= cancellationGrace {
		return 0
	}
	return cancellationFeeRate * trip.Fare
}

// GetTripFor retrieves a trip on behalf of an actor, enforcing view access.
func (s *TripLifecycleService) GetTripFor(ctx context.Context, tripID string, actor domain.Actor) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if actor.ID == "" || !domain.ValidRole(actor.Role) {
		return nil, ErrInvalidActor
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(trip, actor) {
		return nil, ErrNotPermitted
	}
	return trip, nil
}

// GetAllTrips retrieves recent trips.
func (s *TripLifecycleService) GetAllTrips(ctx context.Context) ([]*domain.Trip, error) {
	return s.tripRepo.GetAll(ctx)
}

func (s *TripLifecycleService) invalidateDriver(ctx context.Context, driverID string) {
	if s.cacheStore == nil {
		return
	}
	_ = s.cacheStore.InvalidateDriver(ctx, driverID)
}
