package tests

import (
	"context"
	"errors"
	"testing"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// ──────────────────────────────────────────────
// DRIVER REGISTRATION & VERIFICATION
// ──────────────────────────────────────────────

func newDriverService(locationStore *MockLocationStore, driverRepo *MockDriverRepository) *service.DriverService {
	return service.NewDriverService(locationStore, nil, driverRepo)
}

func TestRegisterDriver_StartsPendingAndOffline(t *testing.T) {
	t.Parallel()

	driverRepo := NewMockDriverRepository()
	svc := newDriverService(NewMockLocationStore(), driverRepo)

	driver, err := svc.Register(context.Background(), service.RegisterDriverRequest{
		Name:     "Ravi",
		Phone:    "+919812345678",
		Category: domain.CategoryEconomy,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if driver.Verification != domain.VerificationPending {
		t.Errorf("expected PENDING verification, got %s", driver.Verification)
	}
	if driver.Online {
		t.Error("new driver must start offline")
	}
	if driver.Matchable() {
		t.Error("unverified driver must not be matchable")
	}
}

func TestRegisterDriver_DuplicatePhoneRejected(t *testing.T) {
	t.Parallel()

	driverRepo := NewMockDriverRepository()
	svc := newDriverService(NewMockLocationStore(), driverRepo)
	ctx := context.Background()

	req := service.RegisterDriverRequest{Name: "Ravi", Phone: "+919812345678", Category: domain.CategoryEconomy}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	req.Name = "Someone Else"
	if _, err := svc.Register(ctx, req); !errors.Is(err, service.ErrDriverAlreadyRegistered) {
		t.Errorf("expected ErrDriverAlreadyRegistered, got %v", err)
	}
}

func TestRegisterDriver_ValidationFailures(t *testing.T) {
	t.Parallel()

	svc := newDriverService(NewMockLocationStore(), NewMockDriverRepository())

	testCases := []struct {
		name    string
		req     service.RegisterDriverRequest
		wantErr error
	}{
		{"missing name", service.RegisterDriverRequest{Phone: "+919812345678", Category: domain.CategoryEconomy}, service.ErrInvalidDriverName},
		{"malformed phone", service.RegisterDriverRequest{Name: "Ravi", Phone: "abc", Category: domain.CategoryEconomy}, service.ErrInvalidPhone},
		{"delivery category", service.RegisterDriverRequest{Name: "Ravi", Phone: "+919812345678", Category: domain.CategoryDocuments}, service.ErrUnknownCategory},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := svc.Register(context.Background(), tc.req); !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestVerifyDriver_MakesDriverMatchable(t *testing.T) {
	t.Parallel()

	driverRepo := NewMockDriverRepository()
	svc := newDriverService(NewMockLocationStore(), driverRepo)
	ctx := context.Background()

	driver, err := svc.Register(ctx, service.RegisterDriverRequest{
		Name:     "Ravi",
		Phone:    "+919812345678",
		Category: domain.CategoryEconomy,
	})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	admin := domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
	if err := svc.Verify(ctx, driver.ID, domain.VerificationVerified, admin); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if err := svc.SetOnline(ctx, driver.ID, true); err != nil {
		t.Fatalf("set online failed: %v", err)
	}

	stored := driverRepo.GetDriver(driver.ID)
	if !stored.Matchable() {
		t.Error("verified online driver should be matchable")
	}
}

func TestVerifyDriver_UnknownStatusRejected(t *testing.T) {
	t.Parallel()

	svc := newDriverService(NewMockLocationStore(), NewMockDriverRepository())

	err := svc.Verify(context.Background(), "driver-1", "MAYBE", domain.Actor{ID: "admin-1", Role: domain.RoleAdmin})
	if !errors.Is(err, service.ErrUnknownVerificationStatus) {
		t.Errorf("expected ErrUnknownVerificationStatus, got %v", err)
	}
}

func TestVerifyDriver_AdminOnly(t *testing.T) {
	t.Parallel()

	driverRepo := NewMockDriverRepository()
	svc := newDriverService(NewMockLocationStore(), driverRepo)
	ctx := context.Background()

	driver := verifiedDriver("driver-1")
	driver.Verification = domain.VerificationPending
	driverRepo.AddDriver(driver)

	cases := []struct {
		name    string
		actor   domain.Actor
		wantErr error
	}{
		{"requester", domain.Actor{ID: "rider-1", Role: domain.RoleRequester}, service.ErrNotPermitted},
		{"driver self-verification", domain.Actor{ID: "driver-1", Role: domain.RoleDriver}, service.ErrNotPermitted},
		{"missing actor", domain.Actor{}, service.ErrInvalidActor},
		{"unknown role", domain.Actor{ID: "x-1", Role: "SUPERVISOR"}, service.ErrInvalidActor},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Verify(ctx, "driver-1", domain.VerificationVerified, tc.actor)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	if driverRepo.GetDriver("driver-1").Verification != domain.VerificationPending {
		t.Error("verification status must not change without admin standing")
	}

	if err := svc.Verify(ctx, "driver-1", domain.VerificationVerified, domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("admin verify failed: %v", err)
	}
	if driverRepo.GetDriver("driver-1").Verification != domain.VerificationVerified {
		t.Error("admin verification should commit")
	}
}

// ──────────────────────────────────────────────
// AVAILABILITY & LOCATION
// ──────────────────────────────────────────────

func TestSetOnline_OfflineWithActiveTripRejected(t *testing.T) {
	t.Parallel()

	driverRepo := NewMockDriverRepository()
	svc := newDriverService(NewMockLocationStore(), driverRepo)

	driver := verifiedDriver("driver-1")
	driver.Available = false
	driver.CurrentTripID = "trip-1"
	driverRepo.AddDriver(driver)

	err := svc.SetOnline(context.Background(), "driver-1", false)
	if !errors.Is(err, service.ErrDriverHasActiveTrip) {
		t.Errorf("expected ErrDriverHasActiveTrip, got %v", err)
	}

	if !driverRepo.GetDriver("driver-1").Online {
		t.Error("driver must remain online while holding a trip")
	}
}

func TestSetOnline_OfflineRemovesLocation(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	driverRepo := NewMockDriverRepository()
	svc := newDriverService(locationStore, driverRepo)
	ctx := context.Background()

	driverRepo.AddDriver(verifiedDriver("driver-1"))
	if err := svc.UpdateLocation(ctx, "driver-1", 12.9716, 77.5946); err != nil {
		t.Fatalf("location update failed: %v", err)
	}
	if !locationStore.HasLocation("driver-1") {
		t.Fatal("location should be recorded")
	}

	if err := svc.SetOnline(ctx, "driver-1", false); err != nil {
		t.Fatalf("set offline failed: %v", err)
	}

	if locationStore.HasLocation("driver-1") {
		t.Error("offline driver must leave the geo index")
	}
}

func TestUpdateLocation_InvalidCoordinatesRejected(t *testing.T) {
	t.Parallel()

	driverRepo := NewMockDriverRepository()
	svc := newDriverService(NewMockLocationStore(), driverRepo)
	driverRepo.AddDriver(verifiedDriver("driver-1"))

	testCases := []struct {
		name     string
		lat, lng float64
	}{
		{"latitude too high", 90.1, 0},
		{"latitude too low", -90.1, 0},
		{"longitude too high", 0, 180.1},
		{"longitude too low", 0, -180.1},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := svc.UpdateLocation(context.Background(), "driver-1", tc.lat, tc.lng)
			if !errors.Is(err, service.ErrInvalidLocation) {
				t.Errorf("expected ErrInvalidLocation, got %v", err)
			}
		})
	}
}

func TestUpdateLocation_UnknownDriverRejected(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	svc := newDriverService(locationStore, NewMockDriverRepository())

	if err := svc.UpdateLocation(context.Background(), "driver-missing", 12.9, 77.5); err == nil {
		t.Error("expected error for unknown driver")
	}
	if locationStore.HasLocation("driver-missing") {
		t.Error("location must not be recorded for unknown drivers")
	}
}

// ──────────────────────────────────────────────
// FARE QUOTES
// ──────────────────────────────────────────────

func TestQuoteFare_BasePlusDistance(t *testing.T) {
	t.Parallel()

	svc := service.NewFareService()

	// Same point: quote collapses to the base fare.
	quote, err := svc.QuoteFare(service.QuoteRequest{
		Kind:        domain.TripKindRide,
		Category:    domain.CategoryEconomy,
		Pickup:      domain.Location{Lat: 12.9716, Lng: 77.5946},
		Destination: domain.Location{Lat: 12.9716, Lng: 77.5946},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Fare != 100 {
		t.Errorf("expected base fare 100, got %.2f", quote.Fare)
	}
	if quote.DistanceKm != 0 {
		t.Errorf("expected zero distance, got %.2f", quote.DistanceKm)
	}
}

func TestQuoteFare_HigherTierCostsMore(t *testing.T) {
	t.Parallel()

	svc := service.NewFareService()

	pickup := domain.Location{Lat: 12.9716, Lng: 77.5946}
	destination := domain.Location{Lat: 12.9352, Lng: 77.6245}

	economy, err := svc.QuoteFare(service.QuoteRequest{Kind: domain.TripKindRide, Category: domain.CategoryEconomy, Pickup: pickup, Destination: destination})
	if err != nil {
		t.Fatalf("economy quote failed: %v", err)
	}
	xl, err := svc.QuoteFare(service.QuoteRequest{Kind: domain.TripKindRide, Category: domain.CategoryXL, Pickup: pickup, Destination: destination})
	if err != nil {
		t.Fatalf("xl quote failed: %v", err)
	}

	if xl.Fare <= economy.Fare {
		t.Errorf("XL (%.2f) should cost more than ECONOMY (%.2f)", xl.Fare, economy.Fare)
	}
}

func TestQuoteFare_KindCategoryMismatch(t *testing.T) {
	t.Parallel()

	svc := service.NewFareService()

	_, err := svc.QuoteFare(service.QuoteRequest{
		Kind:        domain.TripKindDelivery,
		Category:    domain.CategoryXL,
		Pickup:      domain.Location{Lat: 12.9716, Lng: 77.5946},
		Destination: domain.Location{Lat: 12.9352, Lng: 77.6245},
	})
	if !errors.Is(err, service.ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
}
