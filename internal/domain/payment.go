package domain

import "time"

// PaymentStatus represents the current status of a payment record.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Payment is the record emitted when a trip completes. The engine only
// appends it in PENDING state; settlement happens downstream.
type Payment struct {
	ID             string
	TripID         string
	Amount         float64
	Status         PaymentStatus
	IdempotencyKey string
	CreatedAt      time.Time
}
