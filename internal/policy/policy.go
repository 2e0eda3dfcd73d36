// Package policy centralizes the role and ownership checks that gate every
// trip mutation, so the requester/driver/admin rules live in one place.
package policy

import "dispatch/internal/domain"

// CanView reports whether the actor may read the trip.
func CanView(trip *domain.Trip, actor domain.Actor) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleRequester:
		return trip.RequesterID == actor.ID
	case domain.RoleDriver:
		// Any driver may see an open request; afterwards only the
		// assigned driver retains access.
		return trip.Status == domain.TripStatusRequested || trip.DriverID == actor.ID
	}
	return false
}

// CanAccept reports whether the actor may claim the trip. Only drivers
// accept; eligibility (online, available, verified) is checked separately
// against the availability record.
func CanAccept(trip *domain.Trip, actor domain.Actor) bool {
	return actor.Role == domain.RoleDriver && trip.DriverID == ""
}

// CanAdvance reports whether the actor may move the trip forward. Progress
// transitions belong exclusively to the assigned driver.
func CanAdvance(trip *domain.Trip, actor domain.Actor) bool {
	return actor.Role == domain.RoleDriver && trip.DriverID != "" && trip.DriverID == actor.ID
}

// CanComplete reports whether the actor may complete the trip.
func CanComplete(trip *domain.Trip, actor domain.Actor) bool {
	return CanAdvance(trip, actor)
}

// CanCancel reports whether the actor may cancel the trip. The requester,
// the assigned driver, and admins all have standing.
func CanCancel(trip *domain.Trip, actor domain.Actor) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleRequester:
		return trip.RequesterID == actor.ID
	case domain.RoleDriver:
		return trip.DriverID != "" && trip.DriverID == actor.ID
	}
	return false
}
