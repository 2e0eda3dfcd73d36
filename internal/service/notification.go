package service

import (
	"context"
	"log"

	"dispatch/internal/domain"
)

// NotificationType represents the type of lifecycle notification.
type NotificationType string

const (
	NotificationTripRequested NotificationType = "TRIP_REQUESTED"
	NotificationTripAccepted  NotificationType = "TRIP_ACCEPTED"
	NotificationTripAdvanced  NotificationType = "TRIP_ADVANCED"
	NotificationTripCompleted NotificationType = "TRIP_COMPLETED"
	NotificationTripCancelled NotificationType = "TRIP_CANCELLED"
)

// NotificationService records lifecycle events for the parties of a trip.
// Actual push/SMS delivery is an external concern; this sink logs the event
// so the delivery layer can consume it.
type NotificationService struct{}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyTripRequested records a trip creation event.
func (s *NotificationService) NotifyTripRequested(ctx context.Context, trip *domain.Trip) error {
	return s.emit(NotificationTripRequested, trip, "")
}

// NotifyTripAccepted records a driver acceptance event.
func (s *NotificationService) NotifyTripAccepted(ctx context.Context, trip *domain.Trip) error {
	return s.emit(NotificationTripAccepted, trip, "")
}

// NotifyTripAdvanced records a progress transition.
func (s *NotificationService) NotifyTripAdvanced(ctx context.Context, trip *domain.Trip) error {
	return s.emit(NotificationTripAdvanced, trip, "")
}

// NotifyTripCompleted records completion together with the payment id.
func (s *NotificationService) NotifyTripCompleted(ctx context.Context, trip *domain.Trip, payment *domain.Payment) error {
	extra := ""
	if payment != nil {
		extra = "payment=" + payment.ID
	}
	return s.emit(NotificationTripCompleted, trip, extra)
}

// NotifyTripCancelled records cancellation with the cancelling role.
func (s *NotificationService) NotifyTripCancelled(ctx context.Context, trip *domain.Trip) error {
	return s.emit(NotificationTripCancelled, trip, "cancelled_by="+string(trip.CancelledBy))
}

func (s *NotificationService) emit(typ NotificationType, trip *domain.Trip, extra string) error {
	log.Printf("notify %s trip=%s kind=%s status=%s requester=%s driver=%s %s",
		typ, trip.ID, trip.Kind, trip.Status, trip.RequesterID, trip.DriverID, extra)
	return nil
}
