package service

import (
	"context"
	"math"
	"sort"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/geo"
	"dispatch/internal/observability"
	"dispatch/internal/redis"
	"dispatch/internal/repository"
)

const (
	defaultSearchRadiusKm = 5.0
	jobSearchRadiusKm     = 10.0

	// Rough duration heuristic: two minutes per straight-line kilometer.
	// Deliberately not a routing estimate.
	minutesPerKm = 2.0
)

// MatchingService surfaces nearby drivers to requesters and nearby open
// jobs to drivers. Both queries are read-only and rank by haversine distance.
type MatchingService struct {
	locationStore redis.LocationStoreInterface
	cacheStore    *redis.CacheStore
	driverRepo    repository.DriverRepository
	tripRepo      repository.TripRepository
}

// NewMatchingService creates a new MatchingService. cacheStore may be nil.
func NewMatchingService(
	locationStore redis.LocationStoreInterface,
	cacheStore *redis.CacheStore,
	driverRepo repository.DriverRepository,
	tripRepo repository.TripRepository,
) *MatchingService {
	return &MatchingService{
		locationStore: locationStore,
		cacheStore:    cacheStore,
		driverRepo:    driverRepo,
		tripRepo:      tripRepo,
	}
}

// NearbyDriversRequest contains the parameters for a nearby-driver query.
type NearbyDriversRequest struct {
	Lat      float64
	Lng      float64
	RadiusKm float64         // 0 uses the default
	Category domain.Category // optional vehicle tier filter
}

// DriverSummary is one ranked nearby-driver result.
type DriverSummary struct {
	DriverID   string
	Name       string
	Category   domain.Category
	Rating     float64
	Lat        float64
	Lng        float64
	DistanceKm float64
}

// NearbyDrivers returns matchable drivers within the radius, nearest first.
// An empty result is not an error.
func (s *MatchingService) NearbyDrivers(ctx context.Context, req NearbyDriversRequest) ([]DriverSummary, error) {
	if !domain.ValidLatitude(req.Lat) || !domain.ValidLongitude(req.Lng) {
		return nil, ErrInvalidLocation
	}
	if req.Category != "" && !domain.ValidCategory(domain.TripKindRide, req.Category) {
		return nil, ErrUnknownCategory
	}

	radiusKm := req.RadiusKm
	if radiusKm <= 0 {
		radiusKm = defaultSearchRadiusKm
	}

	started := time.Now()
	defer func() {
		observability.MatchLatency.Observe(time.Since(started).Seconds())
	}()
	observability.NearbyDriverQueries.Inc()

	locations, err := s.locationStore.FindNearby(ctx, req.Lat, req.Lng, radiusKm)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return []DriverSummary{}, nil
	}

	driverIDs := make([]string, len(locations))
	for i, loc := range locations {
		driverIDs[i] = loc.DriverID
	}
	cached, missing := s.snapshotBatch(ctx, driverIDs)

	results := make([]DriverSummary, 0, len(locations))
	for _, loc := range locations {
		snapshot, ok := cached[loc.DriverID]
		if !ok {
			if !contains(missing, loc.DriverID) {
				continue
			}
			driver, err := s.driverRepo.GetByID(ctx, loc.DriverID)
			if err != nil {
				if err == repository.ErrNotFound {
					continue
				}
				return nil, err
			}
			snapshot = s.cacheDriver(ctx, driver)
		}

		if !snapshot.Online || !snapshot.Available || snapshot.Verification != string(domain.VerificationVerified) {
			continue
		}
		if req.Category != "" && snapshot.Category != string(req.Category) {
			continue
		}

		distance := geo.DistanceKm(req.Lat, req.Lng, loc.Lat, loc.Lng)
		if distance > radiusKm {
			continue
		}

		results = append(results, DriverSummary{
			DriverID:   loc.DriverID,
			Name:       snapshot.Name,
			Category:   domain.Category(snapshot.Category),
			Rating:     snapshot.Rating,
			Lat:        loc.Lat,
			Lng:        loc.Lng,
			DistanceKm: distance,
		})
	}

	// Rank on the exact distance; round only for presentation so near-equal
	// drivers do not tie arbitrarily.
	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	for i := range results {
		results[i].DistanceKm = roundKm(results[i].DistanceKm)
	}

	return results, nil
}

// JobSummary is one ranked open job near a driver. Ride and delivery
// requests are interleaved in a single distance-ordered list.
type JobSummary struct {
	TripID           string
	Kind             domain.TripKind
	Category         domain.Category
	Fare             float64
	PickupLat        float64
	PickupLng        float64
	PickupAddress    string
	DistanceKm       float64
	EstimatedMinutes float64
}

// NearbyJobs returns REQUESTED trips within ten kilometers of the driver's
// last reported location, nearest first. A driver that has never reported a
// location cannot be matched.
func (s *MatchingService) NearbyJobs(ctx context.Context, driverID string) ([]JobSummary, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return nil, err
	}

	loc, err := s.locationStore.GetLocation(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, ErrDriverLocationUnknown
	}

	observability.NearbyJobQueries.Inc()

	open, err := s.tripRepo.ListByStatus(ctx, domain.TripStatusRequested)
	if err != nil {
		return nil, err
	}

	jobs := make([]JobSummary, 0, len(open))
	for _, trip := range open {
		distance := geo.DistanceKm(loc.Lat, loc.Lng, trip.Pickup.Lat, trip.Pickup.Lng)
		if distance > jobSearchRadiusKm {
			continue
		}
		jobs = append(jobs, JobSummary{
			TripID:        trip.ID,
			Kind:          trip.Kind,
			Category:      trip.Category,
			Fare:          trip.Fare,
			PickupLat:     trip.Pickup.Lat,
			PickupLng:     trip.Pickup.Lng,
			PickupAddress: trip.Pickup.Address,
			DistanceKm:    distance,
		})
	}

	// Rank on the exact distance; round only for presentation.
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].DistanceKm < jobs[j].DistanceKm
	})
	for i := range jobs {
		jobs[i].EstimatedMinutes = roundKm(jobs[i].DistanceKm * minutesPerKm)
		jobs[i].DistanceKm = roundKm(jobs[i].DistanceKm)
	}

	return jobs, nil
}

// snapshotBatch pulls cached availability snapshots; without a cache every
// driver is treated as a miss and read from the repository.
func (s *MatchingService) snapshotBatch(ctx context.Context, driverIDs []string) (map[string]*redis.CachedDriver, []string) {
	if s.cacheStore == nil {
		return make(map[string]*redis.CachedDriver), driverIDs
	}
	cached, missing, err := s.cacheStore.GetDriversBatch(ctx, driverIDs)
	if err != nil {
		return make(map[string]*redis.CachedDriver), driverIDs
	}
	return cached, missing
}

func (s *MatchingService) cacheDriver(ctx context.Context, driver *domain.Driver) *redis.CachedDriver {
	snapshot := &redis.CachedDriver{
		ID:           driver.ID,
		Name:         driver.Name,
		Category:     string(driver.Category),
		Verification: string(driver.Verification),
		Online:       driver.Online,
		Available:    driver.Available,
		Rating:       driver.Rating,
	}
	if s.cacheStore != nil {
		_ = s.cacheStore.SetDriver(ctx, snapshot)
	}
	return snapshot
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func roundKm(v float64) float64 {
	return math.Round(v*100) / 100
}
