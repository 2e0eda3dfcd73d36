package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// PaymentService appends pending payment records when trips complete.
// Settlement is handled by an external collaborator; the engine never
// captures funds.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(paymentRepo repository.PaymentRepository) *PaymentService {
	return &PaymentService{paymentRepo: paymentRepo}
}

// RecordForTrip records a PENDING payment for the trip's quoted fare. The
// per-trip idempotency key makes a retried completion return the existing
// record instead of charging twice.
func (s *PaymentService) RecordForTrip(ctx context.Context, trip *domain.Trip) (*domain.Payment, error) {
	return s.RecordForTripWith(ctx, s.paymentRepo, trip)
}

// RecordForTripWith records the payment through the given repository, so
// trip completion can write it in the same transaction as the status flip.
func (s *PaymentService) RecordForTripWith(ctx context.Context, payments repository.PaymentRepository, trip *domain.Trip) (*domain.Payment, error) {
	if trip.ID == "" {
		return nil, ErrInvalidTripID
	}

	idempotencyKey := fmt.Sprintf("payment:%s", trip.ID)

	existing, err := payments.GetByIdempotencyKey(ctx, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	payment := &domain.Payment{
		ID:             uuid.New().String(),
		TripID:         trip.ID,
		Amount:         trip.Fare,
		Status:         domain.PaymentStatusPending,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      time.Now(),
	}

	if err := payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// GetPayment retrieves a payment by ID.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}
	return s.paymentRepo.GetByID(ctx, paymentID)
}

// GetPaymentForTrip retrieves the payment recorded for a trip, or nil.
func (s *PaymentService) GetPaymentForTrip(ctx context.Context, tripID string) (*domain.Payment, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	return s.paymentRepo.GetByTripID(ctx, tripID)
}
