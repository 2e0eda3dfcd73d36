package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

const timestampFormat = "2006-01-02T15:04:05Z07:00"

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	lifecycleService *service.TripLifecycleService
	fareService      *service.FareService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(lifecycleService *service.TripLifecycleService, fareService *service.FareService) *TripHandler {
	return &TripHandler{
		lifecycleService: lifecycleService,
		fareService:      fareService,
	}
}

// LocationPayload is the JSON shape for a structured location.
type LocationPayload struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Address  string  `json:"address,omitempty"`
	PlaceRef string  `json:"place_ref,omitempty"`
}

func (p LocationPayload) toDomain() domain.Location {
	return domain.Location{Lat: p.Lat, Lng: p.Lng, Address: p.Address, PlaceRef: p.PlaceRef}
}

func locationPayload(l domain.Location) LocationPayload {
	return LocationPayload{Lat: l.Lat, Lng: l.Lng, Address: l.Address, PlaceRef: l.PlaceRef}
}

// CreateTripRequest is the HTTP request body for creating a trip.
type CreateTripRequest struct {
	Kind           string          `json:"kind"`
	RequesterID    string          `json:"requester_id"`
	Pickup         LocationPayload `json:"pickup"`
	Destination    LocationPayload `json:"destination"`
	Category       string          `json:"category"`
	Fare           float64         `json:"fare"`
	Notes          string          `json:"notes,omitempty"`
	RecipientName  string          `json:"recipient_name,omitempty"`
	RecipientPhone string          `json:"recipient_phone,omitempty"`
}

// TripResponse is the HTTP response shape for a trip.
type TripResponse struct {
	ID                 string          `json:"id"`
	Kind               string          `json:"kind"`
	RequesterID        string          `json:"requester_id"`
	DriverID           string          `json:"driver_id,omitempty"`
	Pickup             LocationPayload `json:"pickup"`
	Destination        LocationPayload `json:"destination"`
	Category           string          `json:"category"`
	Fare               float64         `json:"fare"`
	Status             string          `json:"status"`
	Notes              string          `json:"notes,omitempty"`
	RecipientName      string          `json:"recipient_name,omitempty"`
	RecipientPhone     string          `json:"recipient_phone,omitempty"`
	ProofPhotoURL      string          `json:"proof_photo_url,omitempty"`
	CancelledBy        string          `json:"cancelled_by,omitempty"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	CancellationFee    float64         `json:"cancellation_fee,omitempty"`
	CreatedAt          string          `json:"created_at"`
	UpdatedAt          string          `json:"updated_at"`
	AcceptedAt         string          `json:"accepted_at,omitempty"`
	PickedUpAt         string          `json:"picked_up_at,omitempty"`
	StartedAt          string          `json:"started_at,omitempty"`
	CompletedAt        string          `json:"completed_at,omitempty"`
	CancelledAt        string          `json:"cancelled_at,omitempty"`
}

func tripResponse(trip *domain.Trip) TripResponse {
	return TripResponse{
		ID:                 trip.ID,
		Kind:               string(trip.Kind),
		RequesterID:        trip.RequesterID,
		DriverID:           trip.DriverID,
		Pickup:             locationPayload(trip.Pickup),
		Destination:        locationPayload(trip.Destination),
		Category:           string(trip.Category),
		Fare:               trip.Fare,
		Status:             string(trip.Status),
		Notes:              trip.Notes,
		RecipientName:      trip.RecipientName,
		RecipientPhone:     trip.RecipientPhone,
		ProofPhotoURL:      trip.ProofPhotoURL,
		CancelledBy:        string(trip.CancelledBy),
		CancellationReason: trip.CancellationReason,
		CancellationFee:    trip.CancellationFee,
		CreatedAt:          trip.CreatedAt.Format(timestampFormat),
		UpdatedAt:          trip.UpdatedAt.Format(timestampFormat),
		AcceptedAt:         formatTime(trip.AcceptedAt),
		PickedUpAt:         formatTime(trip.PickedUpAt),
		StartedAt:          formatTime(trip.StartedAt),
		CompletedAt:        formatTime(trip.CompletedAt),
		CancelledAt:        formatTime(trip.CancelledAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampFormat)
}

// CreateTrip handles POST /v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.lifecycleService.CreateTrip(c.Request.Context(), service.CreateTripRequest{
		Kind:           domain.TripKind(req.Kind),
		RequesterID:    req.RequesterID,
		Pickup:         req.Pickup.toDomain(),
		Destination:    req.Destination.toDomain(),
		Category:       domain.Category(req.Category),
		Fare:           req.Fare,
		Notes:          req.Notes,
		RecipientName:  req.RecipientName,
		RecipientPhone: req.RecipientPhone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, tripResponse(trip))
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.lifecycleService.GetTripFor(c.Request.Context(), c.Param("id"), domain.Actor{
		ID:   c.Query("actor_id"),
		Role: domain.Role(c.Query("actor_role")),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// GetAll handles GET /v1/trips
func (h *TripHandler) GetAll(c *gin.Context) {
	trips, err := h.lifecycleService.GetAllTrips(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, tripResponse(trip))
	}

	respondJSON(c, http.StatusOK, response)
}

// AcceptTripRequest is the HTTP request body for accepting a trip.
type AcceptTripRequest struct {
	DriverID string `json:"driver_id"`
}

// AcceptTrip handles POST /v1/trips/:id/accept
func (h *TripHandler) AcceptTrip(c *gin.Context) {
	var req AcceptTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.lifecycleService.AcceptTrip(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// AdvanceTripRequest is the HTTP request body for advancing a trip.
type AdvanceTripRequest struct {
	DriverID     string `json:"driver_id"`
	TargetStatus string `json:"target_status"`
}

// AdvanceTrip handles POST /v1/trips/:id/advance
func (h *TripHandler) AdvanceTrip(c *gin.Context) {
	var req AdvanceTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.lifecycleService.AdvanceTrip(c.Request.Context(), c.Param("id"), req.DriverID, domain.TripStatus(req.TargetStatus))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// CompleteTripRequest is the HTTP request body for completing a trip.
type CompleteTripRequest struct {
	DriverID      string `json:"driver_id"`
	ProofPhotoURL string `json:"proof_photo_url,omitempty"`
}

// CompleteTripResponse is the HTTP response for completing a trip.
type CompleteTripResponse struct {
	Trip    TripResponse     `json:"trip"`
	Payment *PaymentResponse `json:"payment,omitempty"`
}

// CompleteTrip handles POST /v1/trips/:id/complete
func (h *TripHandler) CompleteTrip(c *gin.Context) {
	var req CompleteTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.lifecycleService.CompleteTrip(c.Request.Context(), c.Param("id"), req.DriverID, req.ProofPhotoURL)
	if err != nil {
		respondError(c, err)
		return
	}

	response := CompleteTripResponse{Trip: tripResponse(result.Trip)}
	if result.Payment != nil {
		p := paymentResponse(result.Payment)
		response.Payment = &p
	}

	respondJSON(c, http.StatusOK, response)
}

// CancelTripRequest is the HTTP request body for cancelling a trip.
type CancelTripRequest struct {
	ActorID   string `json:"actor_id"`
	ActorRole string `json:"actor_role"`
	Reason    string `json:"reason,omitempty"`
}

// CancelTrip handles POST /v1/trips/:id/cancel
func (h *TripHandler) CancelTrip(c *gin.Context) {
	var req CancelTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.lifecycleService.CancelTrip(c.Request.Context(), c.Param("id"), domain.Actor{
		ID:   req.ActorID,
		Role: domain.Role(req.ActorRole),
	}, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// QuoteResponse is the HTTP response for a fare quote.
type QuoteResponse struct {
	Kind       string  `json:"kind"`
	Category   string  `json:"category"`
	DistanceKm float64 `json:"distance_km"`
	Fare       float64 `json:"fare"`
}

// QuoteFare handles GET /v1/trips/quote
func (h *TripHandler) QuoteFare(c *gin.Context) {
	var query struct {
		Kind           string  `form:"kind"`
		Category       string  `form:"category"`
		PickupLat      float64 `form:"pickup_lat"`
		PickupLng      float64 `form:"pickup_lng"`
		DestinationLat float64 `form:"destination_lat"`
		DestinationLng float64 `form:"destination_lng"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters"})
		return
	}

	quote, err := h.fareService.QuoteFare(service.QuoteRequest{
		Kind:        domain.TripKind(query.Kind),
		Category:    domain.Category(query.Category),
		Pickup:      domain.Location{Lat: query.PickupLat, Lng: query.PickupLng},
		Destination: domain.Location{Lat: query.DestinationLat, Lng: query.DestinationLng},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, QuoteResponse{
		Kind:       string(quote.Kind),
		Category:   string(quote.Category),
		DistanceKm: quote.DistanceKm,
		Fare:       quote.Fare,
	})
}
