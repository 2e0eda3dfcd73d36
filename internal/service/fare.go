package service

import (
	"math"

	"dispatch/internal/domain"
	"dispatch/internal/geo"
)

// FareService quotes fares from base and per-kilometer rates over the
// straight-line distance. The quote is fixed at trip creation and never
// recomputed afterwards.
type FareService struct {
	baseFares  map[domain.Category]float64
	perKmRates map[domain.Category]float64
}

// NewFareService creates a FareService with the default rate card.
func NewFareService() *FareService {
	return &FareService{
		baseFares: map[domain.Category]float64{
			domain.CategoryEconomy: 100,
			domain.CategoryComfort: 150,
			domain.CategoryXL:      250,

			domain.CategoryDocuments:     60,
			domain.CategorySmallPackage:  80,
			domain.CategoryMediumPackage: 120,
			domain.CategoryLargePackage:  180,
		},
		perKmRates: map[domain.Category]float64{
			domain.CategoryEconomy: 15,
			domain.CategoryComfort: 25,
			domain.CategoryXL:      40,

			domain.CategoryDocuments:     10,
			domain.CategorySmallPackage:  12,
			domain.CategoryMediumPackage: 18,
			domain.CategoryLargePackage:  25,
		},
	}
}

// QuoteRequest contains the parameters for quoting a fare.
type QuoteRequest struct {
	Kind        domain.TripKind
	Category    domain.Category
	Pickup      domain.Location
	Destination domain.Location
}

// Quote is a fare estimate for a prospective trip.
type Quote struct {
	Kind       domain.TripKind
	Category   domain.Category
	DistanceKm float64
	Fare       float64
}

// QuoteFare estimates the fare for the given route and category.
func (s *FareService) QuoteFare(req QuoteRequest) (*Quote, error) {
	if !domain.ValidKind(req.Kind) {
		return nil, ErrUnknownKind
	}
	if !domain.ValidCategory(req.Kind, req.Category) {
		return nil, ErrUnknownCategory
	}
	if !req.Pickup.Valid() {
		return nil, ErrInvalidPickupLocation
	}
	if !req.Destination.Valid() {
		return nil, ErrInvalidDestinationLocation
	}

	distance := geo.DistanceKm(req.Pickup.Lat, req.Pickup.Lng, req.Destination.Lat, req.Destination.Lng)
	fare := s.baseFares[req.Category] + distance*s.perKmRates[req.Category]

	return &Quote{
		Kind:       req.Kind,
		Category:   req.Category,
		DistanceKm: math.Round(distance*100) / 100,
		Fare:       math.Round(fare*100) / 100,
	}, nil
}
