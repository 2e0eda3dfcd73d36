package tests

import (
	"context"
	"errors"
	"testing"

	"dispatch/internal/domain"
	"dispatch/internal/redis"
	"dispatch/internal/service"
)

// ──────────────────────────────────────────────
// NEARBY DRIVERS
// ──────────────────────────────────────────────

// Locations are offsets from the origin along the equator, where one degree
// of latitude is roughly 111.2 km.
const (
	queryLat = 0.0
	queryLng = 0.0
)

func newMatchingService(locationStore *MockLocationStore, driverRepo *MockDriverRepository, tripRepo *MockTripRepository) *service.MatchingService {
	return service.NewMatchingService(locationStore, nil, driverRepo, tripRepo)
}

func addLocatedDriver(locationStore *MockLocationStore, driverRepo *MockDriverRepository, id string, lat, lng float64) {
	driverRepo.AddDriver(verifiedDriver(id))
	locationStore.AddDriverLocation(redis.DriverLocation{DriverID: id, Lat: lat, Lng: lng})
}

func TestNearbyDrivers_RankedByDistance(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	driverRepo := NewMockDriverRepository()
	svc := newMatchingService(locationStore, driverRepo, NewMockTripRepository())

	// ~3.3 km, ~0.56 km, ~1.2 km out, deliberately inserted out of order.
	addLocatedDriver(locationStore, driverRepo, "driver-far", 0.03, 0)
	addLocatedDriver(locationStore, driverRepo, "driver-near", 0.005, 0)
	addLocatedDriver(locationStore, driverRepo, "driver-mid", 0.011, 0)

	results, err := svc.NearbyDrivers(context.Background(), service.NearbyDriversRequest{
		Lat:      queryLat,
		Lng:      queryLng,
		RadiusKm: 2.0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 drivers within 2km, got %d", len(results))
	}
	if results[0].DriverID != "driver-near" || results[1].DriverID != "driver-mid" {
		t.Errorf("expected [driver-near driver-mid], got [%s %s]", results[0].DriverID, results[1].DriverID)
	}
	if results[0].DistanceKm >= results[1].DistanceKm {
		t.Error("results must be sorted by ascending distance")
	}
	if results[0].DistanceKm <= 0 || results[0].DistanceKm > 0.6 {
		t.Errorf("unexpected distance for nearest driver: %.2f", results[0].DistanceKm)
	}
}

func TestNearbyDrivers_RanksOnExactDistance(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	driverRepo := NewMockDriverRepository()
	svc := newMatchingService(locationStore, driverRepo, NewMockTripRepository())

	// Both drivers sit ~1.00 km out and their reported distances round to
	// the same two decimals, but driver-a is a few meters closer and must
	// rank first every time.
	addLocatedDriver(locationStore, driverRepo, "driver-b", 0.00903, 0)
	addLocatedDriver(locationStore, driverRepo, "driver-a", 0.00900, 0)

	for i := 0; i < 10; i++ {
		results, err := svc.NearbyDrivers(context.Background(), service.NearbyDriversRequest{
			Lat:      queryLat,
			Lng:      queryLng,
			RadiusKm: 2.0,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 drivers, got %d", len(results))
		}
		if results[0].DistanceKm != results[1].DistanceKm {
			t.Fatalf("rounded distances should tie, got %.2f and %.2f", results[0].DistanceKm, results[1].DistanceKm)
		}
		if results[0].DriverID != "driver-a" {
			t.Fatalf("expected driver-a first, got %s", results[0].DriverID)
		}
	}
}

func TestNearbyDrivers_EmptyAreaIsNotAnError(t *testing.T) {
	t.Parallel()

	svc := newMatchingService(NewMockLocationStore(), NewMockDriverRepository(), NewMockTripRepository())

	results, err := svc.NearbyDrivers(context.Background(), service.NearbyDriversRequest{Lat: queryLat, Lng: queryLng})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty result, got %d", len(results))
	}
}

func TestNearbyDrivers_FiltersUnmatchableDrivers(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	driverRepo := NewMockDriverRepository()
	svc := newMatchingService(locationStore, driverRepo, NewMockTripRepository())

	addLocatedDriver(locationStore, driverRepo, "driver-ok", 0.005, 0)

	offline := verifiedDriver("driver-offline")
	offline.Online = false
	driverRepo.AddDriver(offline)
	locationStore.AddDriverLocation(redis.DriverLocation{DriverID: "driver-offline", Lat: 0.004, Lng: 0})

	busy := verifiedDriver("driver-busy")
	busy.Available = false
	driverRepo.AddDriver(busy)
	locationStore.AddDriverLocation(redis.DriverLocation{DriverID: "driver-busy", Lat: 0.003, Lng: 0})

	pending := verifiedDriver("driver-pending")
	pending.Verification = domain.VerificationPending
	driverRepo.AddDriver(pending)
	locationStore.AddDriverLocation(redis.DriverLocation{DriverID: "driver-pending", Lat: 0.002, Lng: 0})

	// A stale geo entry whose driver record is gone is skipped, not an error.
	locationStore.AddDriverLocation(redis.DriverLocation{DriverID: "driver-ghost", Lat: 0.001, Lng: 0})

	results, err := svc.NearbyDrivers(context.Background(), service.NearbyDriversRequest{Lat: queryLat, Lng: queryLng})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 1 || results[0].DriverID != "driver-ok" {
		t.Errorf("expected only driver-ok, got %v", results)
	}
}

func TestNearbyDrivers_CategoryFilter(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	driverRepo := NewMockDriverRepository()
	svc := newMatchingService(locationStore, driverRepo, NewMockTripRepository())

	addLocatedDriver(locationStore, driverRepo, "driver-economy", 0.005, 0)
	xl := verifiedDriver("driver-xl")
	xl.Category = domain.CategoryXL
	driverRepo.AddDriver(xl)
	locationStore.AddDriverLocation(redis.DriverLocation{DriverID: "driver-xl", Lat: 0.004, Lng: 0})

	results, err := svc.NearbyDrivers(context.Background(), service.NearbyDriversRequest{
		Lat:      queryLat,
		Lng:      queryLng,
		Category: domain.CategoryXL,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 1 || results[0].DriverID != "driver-xl" {
		t.Errorf("expected only driver-xl, got %v", results)
	}
}

func TestNearbyDrivers_InvalidCoordinates(t *testing.T) {
	t.Parallel()

	svc := newMatchingService(NewMockLocationStore(), NewMockDriverRepository(), NewMockTripRepository())

	_, err := svc.NearbyDrivers(context.Background(), service.NearbyDriversRequest{Lat: 120, Lng: 0})
	if !errors.Is(err, service.ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}
}

// ──────────────────────────────────────────────
// NEARBY JOBS
// ──────────────────────────────────────────────

func TestNearbyJobs_InterleavesKindsByDistance(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	driverRepo := NewMockDriverRepository()
	tripRepo := NewMockTripRepository()
	svc := newMatchingService(locationStore, driverRepo, tripRepo)

	driverRepo.AddDriver(verifiedDriver("driver-1"))
	locationStore.AddDriverLocation(redis.DriverLocation{DriverID: "driver-1", Lat: queryLat, Lng: queryLng})

	tripRepo.AddTrip(&domain.Trip{
		ID:     "ride-far",
		Kind:   domain.TripKindRide,
		Status: domain.TripStatusRequested,
		Fare:   250,
		Pickup: domain.Location{Lat: 0.05, Lng: 0}, // ~5.6 km
	})
	tripRepo.AddTrip(&domain.Trip{
		ID:     "pkg-near",
		Kind:   domain.TripKindDelivery,
		Status: domain.TripStatusRequested,
		Fare:   90,
		Pickup: domain.Location{Lat: 0.01, Lng: 0}, // ~1.1 km
	})
	tripRepo.AddTrip(&domain.Trip{
		ID:     "ride-out-of-range",
		Kind:   domain.TripKindRide,
		Status: domain.TripStatusRequested,
		Pickup: domain.Location{Lat: 0.2, Lng: 0}, // ~22 km
	})
	tripRepo.AddTrip(&domain.Trip{
		ID:     "ride-claimed",
		Kind:   domain.TripKindRide,
		Status: domain.TripStatusConfirmed,
		Pickup: domain.Location{Lat: 0.01, Lng: 0},
	})

	jobs, err := svc.NearbyJobs(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(jobs) != 2 {
		t.Fatalf("expected 2 open jobs within 10km, got %d", len(jobs))
	}
	if jobs[0].TripID != "pkg-near" || jobs[1].TripID != "ride-far" {
		t.Errorf("expected [pkg-near ride-far], got [%s %s]", jobs[0].TripID, jobs[1].TripID)
	}
	if jobs[0].Kind != domain.TripKindDelivery || jobs[1].Kind != domain.TripKindRide {
		t.Error("both kinds should appear in a single ranked list")
	}
}

func TestNearbyJobs_EstimatedMinutesFromDistance(t *testing.T) {
	t.Parallel()

	locationStore := NewMockLocationStore()
	driverRepo := NewMockDriverRepository()
	tripRepo := NewMockTripRepository()
	svc := newMatchingService(locationStore, driverRepo, tripRepo)

	driverRepo.AddDriver(verifiedDriver("driver-1"))
	locationStore.AddDriverLocation(redis.DriverLocation{DriverID: "driver-1", Lat: queryLat, Lng: queryLng})
	tripRepo.AddTrip(&domain.Trip{
		ID:     "ride-1",
		Kind:   domain.TripKindRide,
		Status: domain.TripStatusRequested,
		Pickup: domain.Location{Lat: 0.03, Lng: 0},
	})

	jobs, err := svc.NearbyJobs(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}

	// Two minutes per kilometer of straight-line distance.
	want := jobs[0].DistanceKm * 2
	diff := jobs[0].EstimatedMinutes - want
	if diff < -0.02 || diff > 0.02 {
		t.Errorf("expected ETA ~%.2f minutes, got %.2f", want, jobs[0].EstimatedMinutes)
	}
}

func TestNearbyJobs_DriverWithoutLocation(t *testing.T) {
	t.Parallel()

	driverRepo := NewMockDriverRepository()
	svc := newMatchingService(NewMockLocationStore(), driverRepo, NewMockTripRepository())

	driverRepo.AddDriver(verifiedDriver("driver-1"))

	_, err := svc.NearbyJobs(context.Background(), "driver-1")
	if !errors.Is(err, service.ErrDriverLocationUnknown) {
		t.Errorf("expected ErrDriverLocationUnknown, got %v", err)
	}
}

func TestNearbyJobs_UnknownDriver(t *testing.T) {
	t.Parallel()

	svc := newMatchingService(NewMockLocationStore(), NewMockDriverRepository(), NewMockTripRepository())

	_, err := svc.NearbyJobs(context.Background(), "driver-missing")
	if err == nil {
		t.Error("expected error for unknown driver")
	}
}
