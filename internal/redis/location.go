package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	driverLocationKey    = "drivers:locations"
	driverLocatedAtKey   = "drivers:located_at"
	locationTimestampFmt = time.RFC3339
)

// DriverLocation represents a driver's last reported position.
type DriverLocation struct {
	DriverID  string
	Lat       float64
	Lng       float64
	UpdatedAt time.Time
}

// LocationStore handles driver location operations in Redis.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// UpdateLocation stores a driver's location using GEOADD and records the
// report time alongside it.
func (s *LocationStore) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	if err := s.client.GeoAdd(ctx, driverLocationKey, &redis.GeoLocation{
		Name:      driverID,
		Longitude: lng,
		Latitude:  lat,
	}).Err(); err != nil {
		return err
	}
	return s.client.HSet(ctx, driverLocatedAtKey, driverID, time.Now().UTC().Format(locationTimestampFmt)).Err()
}

// GetLocation returns the driver's last reported position, or nil when the
// driver has never reported one.
func (s *LocationStore) GetLocation(ctx context.Context, driverID string) (*DriverLocation, error) {
	positions, err := s.client.GeoPos(ctx, driverLocationKey, driverID).Result()
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 || positions[0] == nil {
		return nil, nil
	}

	loc := &DriverLocation{
		DriverID: driverID,
		Lat:      positions[0].Latitude,
		Lng:      positions[0].Longitude,
	}

	if raw, err := s.client.HGet(ctx, driverLocatedAtKey, driverID).Result(); err == nil {
		if ts, err := time.Parse(locationTimestampFmt, raw); err == nil {
			loc.UpdatedAt = ts
		}
	}

	return loc, nil
}

// FindNearby returns driver positions within the given radius in kilometers.
// Results carry coordinates so callers can rank by exact distance.
func (s *LocationStore) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]DriverLocation, error) {
	results, err := s.client.GeoRadius(ctx, driverLocationKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]DriverLocation, 0, len(results))
	for _, r := range results {
		locations = append(locations, DriverLocation{
			DriverID: r.Name,
			Lat:      r.Latitude,
			Lng:      r.Longitude,
		})
	}

	return locations, nil
}

// RemoveLocation removes a driver's location from the geo index.
func (s *LocationStore) RemoveLocation(ctx context.Context, driverID string) error {
	if err := s.client.ZRem(ctx, driverLocationKey, driverID).Err(); err != nil {
		return err
	}
	return s.client.HDel(ctx, driverLocatedAtKey, driverID).Err()
}
