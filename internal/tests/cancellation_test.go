package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// ──────────────────────────────────────────────
// CANCELLATION STANDING
// ──────────────────────────────────────────────

func confirmedTrip(id string, acceptedAgo time.Duration) *domain.Trip {
	return &domain.Trip{
		ID:          id,
		Kind:        domain.TripKindRide,
		RequesterID: "rider-1",
		DriverID:    "driver-1",
		Category:    domain.CategoryEconomy,
		Fare:        200.0,
		Status:      domain.TripStatusConfirmed,
		AcceptedAt:  time.Now().Add(-acceptedAgo),
	}
}

func TestCancelTrip_RequesterDriverAndAdminMayCancel(t *testing.T) {
	t.Parallel()

	actors := []domain.Actor{
		{ID: "rider-1", Role: domain.RoleRequester},
		{ID: "driver-1", Role: domain.RoleDriver},
		{ID: "admin-1", Role: domain.RoleAdmin},
	}

	for _, actor := range actors {
		actor := actor
		t.Run(string(actor.Role), func(t *testing.T) {
			t.Parallel()

			tripRepo := NewMockTripRepository()
			driverRepo := NewMockDriverRepository()
			svc := newLifecycleService(tripRepo, driverRepo, NewMockPaymentRepository(), nil)

			tripRepo.AddTrip(confirmedTrip("trip-1", time.Minute))
			driver := verifiedDriver("driver-1")
			driver.Available = false
			driver.CurrentTripID = "trip-1"
			driverRepo.AddDriver(driver)

			trip, err := svc.CancelTrip(context.Background(), "trip-1", actor, "change of plans")
			if err != nil {
				t.Fatalf("cancel failed: %v", err)
			}

			if trip.Status != domain.TripStatusCancelled {
				t.Errorf("expected CANCELLED, got %s", trip.Status)
			}
			if trip.CancelledBy != actor.Role {
				t.Errorf("expected CancelledBy %s, got %s", actor.Role, trip.CancelledBy)
			}
			if trip.CancelledAt.IsZero() {
				t.Error("CancelledAt not stamped")
			}

			// The assigned driver is freed on cancellation.
			d := driverRepo.GetDriver("driver-1")
			if d.CurrentTripID != "" || !d.Available {
				t.Errorf("driver should be free, got trip=%q available=%v", d.CurrentTripID, d.Available)
			}
		})
	}
}

func TestCancelTrip_StrangersHaveNoStanding(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	svc := newLifecycleService(tripRepo, NewMockDriverRepository(), NewMockPaymentRepository(), nil)

	tripRepo.AddTrip(confirmedTrip("trip-1", time.Minute))

	testCases := []struct {
		name  string
		actor domain.Actor
	}{
		{"other requester", domain.Actor{ID: "rider-2", Role: domain.RoleRequester}},
		{"unassigned driver", domain.Actor{ID: "driver-2", Role: domain.RoleDriver}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CancelTrip(context.Background(), "trip-1", tc.actor, "")
			if !errors.Is(err, service.ErrNotPermitted) {
				t.Errorf("expected ErrNotPermitted, got %v", err)
			}
		})
	}
}

func TestCancelTrip_TerminalTripRejected(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	svc := newLifecycleService(tripRepo, NewMockDriverRepository(), NewMockPaymentRepository(), nil)
	ctx := context.Background()
	actor := domain.Actor{ID: "rider-1", Role: domain.RoleRequester}

	trip := confirmedTrip("trip-1", time.Minute)
	trip.DriverID = ""
	trip.Status = domain.TripStatusRequested
	tripRepo.AddTrip(trip)

	if _, err := svc.CancelTrip(ctx, "trip-1", actor, ""); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}

	// A second cancel finds the trip terminal and reports the conflict.
	if _, err := svc.CancelTrip(ctx, "trip-1", actor, ""); !errors.Is(err, service.ErrTripTerminal) {
		t.Errorf("expected ErrTripTerminal on repeat cancel, got %v", err)
	}

	stored := tripRepo.GetTrip("trip-1")
	if stored.Status != domain.TripStatusCancelled {
		t.Errorf("trip status must stay CANCELLED, got %s", stored.Status)
	}
}

// ──────────────────────────────────────────────
// CANCELLATION FEES
// ──────────────────────────────────────────────

func TestCancelTrip_FeeOnlyAfterGracePeriod(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		acceptedAgo time.Duration
		actor       domain.Actor
		wantFee     float64
	}{
		{"requester within grace", time.Minute, domain.Actor{ID: "rider-1", Role: domain.RoleRequester}, 0},
		{"requester after grace", 3 * time.Minute, domain.Actor{ID: "rider-1", Role: domain.RoleRequester}, 20.0},
		{"driver after grace", 10 * time.Minute, domain.Actor{ID: "driver-1", Role: domain.RoleDriver}, 0},
		{"admin after grace", 10 * time.Minute, domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}, 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tripRepo := NewMockTripRepository()
			driverRepo := NewMockDriverRepository()
			svc := newLifecycleService(tripRepo, driverRepo, NewMockPaymentRepository(), nil)

			tripRepo.AddTrip(confirmedTrip("trip-1", tc.acceptedAgo))
			driver := verifiedDriver("driver-1")
			driver.Available = false
			driver.CurrentTripID = "trip-1"
			driverRepo.AddDriver(driver)

			trip, err := svc.CancelTrip(context.Background(), "trip-1", tc.actor, "")
			if err != nil {
				t.Fatalf("cancel failed: %v", err)
			}

			if trip.CancellationFee != tc.wantFee {
				t.Errorf("expected fee %.2f, got %.2f", tc.wantFee, trip.CancellationFee)
			}
		})
	}
}

func TestCancelTrip_NoFeeBeforeDriverAssigned(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	svc := newLifecycleService(tripRepo, NewMockDriverRepository(), NewMockPaymentRepository(), nil)

	// REQUESTED trip with no driver, created well in the past.
	tripRepo.AddTrip(&domain.Trip{
		ID:          "trip-1",
		Kind:        domain.TripKindRide,
		RequesterID: "rider-1",
		Category:    domain.CategoryEconomy,
		Fare:        200.0,
		Status:      domain.TripStatusRequested,
		CreatedAt:   time.Now().Add(-time.Hour),
	})

	trip, err := svc.CancelTrip(context.Background(), "trip-1", domain.Actor{ID: "rider-1", Role: domain.RoleRequester}, "waited too long")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if trip.CancellationFee != 0 {
		t.Errorf("no driver assigned: expected zero fee, got %.2f", trip.CancellationFee)
	}
}

func TestCancelTrip_InProgressStillCancellable(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()
	svc := newLifecycleService(tripRepo, driverRepo, NewMockPaymentRepository(), nil)

	trip := confirmedTrip("trip-1", 20*time.Minute)
	trip.Status = domain.TripStatusInProgress
	tripRepo.AddTrip(trip)
	driver := verifiedDriver("driver-1")
	driver.Available = false
	driver.CurrentTripID = "trip-1"
	driverRepo.AddDriver(driver)

	cancelled, err := svc.CancelTrip(context.Background(), "trip-1", domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}, "dispute")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != domain.TripStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}
}

// The status flip and the driver release commit together: a trip must
// never read CANCELLED while its driver is still pinned to it, because a
// terminal trip rejects every later repair attempt.
func TestCancelTrip_FailedDriverReleaseRollsBack(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()
	svc := newLifecycleService(tripRepo, driverRepo, NewMockPaymentRepository(), nil)
	ctx := context.Background()
	actor := domain.Actor{ID: "rider-1", Role: domain.RoleRequester}

	tripRepo.AddTrip(confirmedTrip("trip-1", 10*time.Minute))
	driver := verifiedDriver("driver-1")
	driver.Available = false
	driver.CurrentTripID = "trip-1"
	driverRepo.AddDriver(driver)

	driverRepo.ReleaseError = ErrMockTimeout
	if _, err := svc.CancelTrip(ctx, "trip-1", actor, "stuck in traffic"); !errors.Is(err, ErrMockTimeout) {
		t.Fatalf("expected ErrMockTimeout, got %v", err)
	}

	// Nothing committed: the trip is not terminal and the driver still
	// holds it, so the cancellation can be retried.
	if stored := tripRepo.GetTrip("trip-1"); stored.Status != domain.TripStatusConfirmed {
		t.Fatalf("trip should still be CONFIRMED, got %s", stored.Status)
	}
	if d := driverRepo.GetDriver("driver-1"); d.CurrentTripID != "trip-1" {
		t.Fatalf("driver should still hold the trip, got %q", d.CurrentTripID)
	}

	driverRepo.ReleaseError = nil
	cancelled, err := svc.CancelTrip(ctx, "trip-1", actor, "stuck in traffic")
	if err != nil {
		t.Fatalf("retry after recovery failed: %v", err)
	}
	if cancelled.Status != domain.TripStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}
	if cancelled.CancellationFee != 20.0 {
		t.Errorf("expected fee 20.00, got %.2f", cancelled.CancellationFee)
	}
	d := driverRepo.GetDriver("driver-1")
	if d.CurrentTripID != "" || !d.Available {
		t.Errorf("driver should be free, got trip=%q available=%v", d.CurrentTripID, d.Available)
	}
}
