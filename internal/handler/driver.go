package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// DriverHandler handles HTTP requests for driver registration and availability.
type DriverHandler struct {
	driverService *service.DriverService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

// RegisterDriverRequest is the HTTP request body for registering a driver.
type RegisterDriverRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Category string `json:"category"`
}

// DriverResponse is the HTTP response shape for a driver.
type DriverResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Phone           string  `json:"phone"`
	Category        string  `json:"category"`
	Verification    string  `json:"verification_status"`
	Online          bool    `json:"online"`
	Available       bool    `json:"available"`
	CurrentTripID   string  `json:"current_trip_id,omitempty"`
	TotalRides      int     `json:"total_rides"`
	TotalDeliveries int     `json:"total_deliveries"`
	Rating          float64 `json:"rating"`
	TotalEarnings   float64 `json:"total_earnings"`
	CreatedAt       string  `json:"created_at"`
}

func driverResponse(driver *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:              driver.ID,
		Name:            driver.Name,
		Phone:           driver.Phone,
		Category:        string(driver.Category),
		Verification:    string(driver.Verification),
		Online:          driver.Online,
		Available:       driver.Available,
		CurrentTripID:   driver.CurrentTripID,
		TotalRides:      driver.TotalRides,
		TotalDeliveries: driver.TotalDeliveries,
		Rating:          driver.Rating,
		TotalEarnings:   driver.TotalEarnings,
		CreatedAt:       driver.CreatedAt.Format(timestampFormat),
	}
}

// Register handles POST /v1/drivers/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.Register(c.Request.Context(), service.RegisterDriverRequest{
		Name:     req.Name,
		Phone:    req.Phone,
		Category: domain.Category(req.Category),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, driverResponse(driver))
}

// VerifyDriverRequest is the HTTP request body for updating verification.
// Only an admin actor is accepted.
type VerifyDriverRequest struct {
	Status    string `json:"status"`
	ActorID   string `json:"actor_id"`
	ActorRole string `json:"actor_role"`
}

// Verify handles POST /v1/drivers/:id/verify
func (h *DriverHandler) Verify(c *gin.Context) {
	var req VerifyDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	actor := domain.Actor{ID: req.ActorID, Role: domain.Role(req.ActorRole)}
	if err := h.driverService.Verify(c.Request.Context(), c.Param("id"), domain.VerificationStatus(req.Status), actor); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": req.Status})
}

// AvailabilityRequest is the HTTP request body for toggling availability.
type AvailabilityRequest struct {
	Online bool `json:"online"`
}

// SetAvailability handles POST /v1/drivers/:id/availability
func (h *DriverHandler) SetAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.driverService.SetOnline(c.Request.Context(), c.Param("id"), req.Online); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"online": req.Online})
}

// UpdateLocationRequest is the HTTP request body for a location ping.
type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UpdateLocation handles POST /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.driverService.UpdateLocation(c.Request.Context(), c.Param("id"), req.Lat, req.Lng); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "updated"})
}

// GetDriver handles GET /v1/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	driver, err := h.driverService.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, driverResponse(driver))
}

// GetAll handles GET /v1/drivers
func (h *DriverHandler) GetAll(c *gin.Context) {
	drivers, err := h.driverService.GetAllDrivers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, driver := range drivers {
		response = append(response, driverResponse(driver))
	}

	respondJSON(c, http.StatusOK, response)
}
