package service

import "errors"

// Validation errors: malformed or out-of-range input. Nothing is written.
var (
	// ErrInvalidRequesterID is returned when requester ID is empty.
	ErrInvalidRequesterID = errors.New("invalid requester id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidActor is returned when the actor id or role is missing or unknown.
	ErrInvalidActor = errors.New("invalid actor")

	// ErrUnknownKind is returned when the trip kind is not RIDE or DELIVERY.
	ErrUnknownKind = errors.New("unknown trip kind")

	// ErrUnknownCategory is returned when the category is outside the closed
	// set for the trip kind.
	ErrUnknownCategory = errors.New("unknown category for trip kind")

	// ErrUnknownStatus is returned when a target status is not part of the
	// trip kind's state machine.
	ErrUnknownStatus = errors.New("unknown status for trip kind")

	// ErrInvalidPickupLocation is returned when pickup coordinates are invalid.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDestinationLocation is returned when destination coordinates are invalid.
	ErrInvalidDestinationLocation = errors.New("invalid destination location")

	// ErrInvalidLocation is returned when location coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidFare is returned when the quoted fare is not positive.
	ErrInvalidFare = errors.New("fare must be positive")

	// ErrInvalidRecipient is returned when a delivery is missing recipient
	// details or the recipient phone is malformed.
	ErrInvalidRecipient = errors.New("invalid recipient details")

	// ErrInvalidDriverName is returned when a driver registers without a name.
	ErrInvalidDriverName = errors.New("invalid driver name")

	// ErrInvalidPhone is returned when a phone number is malformed.
	ErrInvalidPhone = errors.New("invalid phone number")

	// ErrUnknownVerificationStatus is returned for an unrecognized
	// verification status value.
	ErrUnknownVerificationStatus = errors.New("unknown verification status")

	// ErrDriverLocationUnknown is returned when matching is attempted for a
	// driver that has never reported a location.
	ErrDriverLocationUnknown = errors.New("driver has no recorded location")

	// ErrInvalidPaymentID is returned when payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")
)

// Conflict errors: the precondition no longer holds because of a concurrent
// or prior state change.
var (
	// ErrTripAlreadyClaimed is returned when an accept attempt loses the
	// race or the trip has otherwise left the REQUESTED state.
	ErrTripAlreadyClaimed = errors.New("trip already claimed")

	// ErrTripTerminal is returned when the trip is already completed or cancelled.
	ErrTripTerminal = errors.New("trip is in a terminal state")

	// ErrInvalidTransition is returned when the requested transition does
	// not follow the trip's state machine.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTripStateChanged is returned when the trip status moved underneath
	// a transition before it could commit.
	ErrTripStateChanged = errors.New("trip state changed concurrently")

	// ErrDriverNotEligible is returned when the driver is offline,
	// unavailable, or not verified.
	ErrDriverNotEligible = errors.New("driver not eligible")

	// ErrDriverHasActiveTrip is returned when the driver already holds an
	// active trip.
	ErrDriverHasActiveTrip = errors.New("driver already has an active trip")

	// ErrRequesterHasActiveTrip is returned when the requester already has
	// an active trip of the same kind.
	ErrRequesterHasActiveTrip = errors.New("requester already has an active trip of this kind")

	// ErrDriverAlreadyRegistered is returned when the phone number is taken.
	ErrDriverAlreadyRegistered = errors.New("driver already registered")
)

// Forbidden errors: the actor lacks standing for the operation.
var (
	// ErrNotAssignedDriver is returned when a progress transition comes from
	// anyone but the assigned driver.
	ErrNotAssignedDriver = errors.New("not the assigned driver")

	// ErrNotPermitted is returned when the actor has no standing on the trip.
	ErrNotPermitted = errors.New("actor not permitted")
)
