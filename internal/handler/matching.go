package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// MatchingHandler handles HTTP requests for proximity queries.
type MatchingHandler struct {
	matchingService *service.MatchingService
}

// NewMatchingHandler creates a new MatchingHandler.
func NewMatchingHandler(matchingService *service.MatchingService) *MatchingHandler {
	return &MatchingHandler{matchingService: matchingService}
}

// NearbyDriverResponse is one ranked nearby-driver result.
type NearbyDriverResponse struct {
	DriverID   string  `json:"driver_id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Rating     float64 `json:"rating"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	DistanceKm float64 `json:"distance_km"`
}

// NearbyDrivers handles GET /v1/drivers/nearby
func (h *MatchingHandler) NearbyDrivers(c *gin.Context) {
	var query struct {
		Lat      float64 `form:"lat"`
		Lng      float64 `form:"lng"`
		RadiusKm float64 `form:"radius_km"`
		Category string  `form:"category"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters"})
		return
	}

	drivers, err := h.matchingService.NearbyDrivers(c.Request.Context(), service.NearbyDriversRequest{
		Lat:      query.Lat,
		Lng:      query.Lng,
		RadiusKm: query.RadiusKm,
		Category: domain.Category(query.Category),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]NearbyDriverResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, NearbyDriverResponse{
			DriverID:   d.DriverID,
			Name:       d.Name,
			Category:   string(d.Category),
			Rating:     d.Rating,
			Lat:        d.Lat,
			Lng:        d.Lng,
			DistanceKm: d.DistanceKm,
		})
	}

	respondJSON(c, http.StatusOK, response)
}

// NearbyJobResponse is one open job near a driver.
type NearbyJobResponse struct {
	TripID           string  `json:"trip_id"`
	Kind             string  `json:"kind"`
	Category         string  `json:"category"`
	Fare             float64 `json:"fare"`
	PickupLat        float64 `json:"pickup_lat"`
	PickupLng        float64 `json:"pickup_lng"`
	PickupAddress    string  `json:"pickup_address,omitempty"`
	DistanceKm       float64 `json:"distance_km"`
	EstimatedMinutes float64 `json:"estimated_minutes"`
}

// NearbyJobs handles GET /v1/drivers/:id/jobs
func (h *MatchingHandler) NearbyJobs(c *gin.Context) {
	jobs, err := h.matchingService.NearbyJobs(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]NearbyJobResponse, 0, len(jobs))
	for _, j := range jobs {
		response = append(response, NearbyJobResponse{
			TripID:           j.TripID,
			Kind:             string(j.Kind),
			Category:         string(j.Category),
			Fare:             j.Fare,
			PickupLat:        j.PickupLat,
			PickupLng:        j.PickupLng,
			PickupAddress:    j.PickupAddress,
			DistanceKm:       j.DistanceKm,
			EstimatedMinutes: j.EstimatedMinutes,
		})
	}

	respondJSON(c, http.StatusOK, response)
}
