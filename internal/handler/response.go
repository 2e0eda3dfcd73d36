package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/repository"
	"dispatch/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRequesterID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidActor),
		errors.Is(err, service.ErrUnknownKind),
		errors.Is(err, service.ErrUnknownCategory),
		errors.Is(err, service.ErrUnknownStatus),
		errors.Is(err, service.ErrInvalidPickupLocation),
		errors.Is(err, service.ErrInvalidDestinationLocation),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidFare),
		errors.Is(err, service.ErrInvalidRecipient),
		errors.Is(err, service.ErrInvalidDriverName),
		errors.Is(err, service.ErrInvalidPhone),
		errors.Is(err, service.ErrUnknownVerificationStatus),
		errors.Is(err, service.ErrDriverLocationUnknown),
		errors.Is(err, service.ErrInvalidPaymentID):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrTripAlreadyClaimed),
		errors.Is(err, service.ErrTripTerminal),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrTripStateChanged),
		errors.Is(err, service.ErrDriverNotEligible),
		errors.Is(err, service.ErrDriverHasActiveTrip),
		errors.Is(err, service.ErrRequesterHasActiveTrip),
		errors.Is(err, service.ErrDriverAlreadyRegistered):
		return http.StatusConflict

	// Forbidden errors
	case errors.Is(err, service.ErrNotAssignedDriver),
		errors.Is(err, service.ErrNotPermitted):
		return http.StatusForbidden

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
