package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// PaymentHandler handles HTTP requests for payment records.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// PaymentResponse is the HTTP response shape for a payment record.
type PaymentResponse struct {
	ID        string  `json:"id"`
	TripID    string  `json:"trip_id"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

func paymentResponse(payment *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        payment.ID,
		TripID:    payment.TripID,
		Amount:    payment.Amount,
		Status:    string(payment.Status),
		CreatedAt: payment.CreatedAt.Format(timestampFormat),
	}
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, paymentResponse(payment))
}

// GetPaymentForTrip handles GET /v1/trips/:id/payment
func (h *PaymentHandler) GetPaymentForTrip(c *gin.Context) {
	payment, err := h.paymentService.GetPaymentForTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if payment == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no payment recorded for trip"})
		return
	}

	respondJSON(c, http.StatusOK, paymentResponse(payment))
}
