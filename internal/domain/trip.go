package domain

import "time"

// TripKind distinguishes the two trip variants the engine dispatches.
type TripKind string

const (
	TripKindRide     TripKind = "RIDE"
	TripKindDelivery TripKind = "DELIVERY"
)

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusRequested      TripStatus = "REQUESTED"
	TripStatusConfirmed      TripStatus = "CONFIRMED"
	TripStatusDriverAssigned TripStatus = "DRIVER_ASSIGNED"
	TripStatusArriving       TripStatus = "ARRIVING"
	TripStatusPickedUp       TripStatus = "PICKED_UP"
	TripStatusInProgress     TripStatus = "IN_PROGRESS"
	TripStatusInTransit      TripStatus = "IN_TRANSIT"
	TripStatusCompleted      TripStatus = "COMPLETED"
	TripStatusCancelled      TripStatus = "CANCELLED"
)

// statusPaths holds the forward path through the state machine per kind.
// CANCELLED is reachable from every non-terminal state and is not listed.
var statusPaths = map[TripKind][]TripStatus{
	TripKindRide: {
		TripStatusRequested,
		TripStatusConfirmed,
		TripStatusDriverAssigned,
		TripStatusArriving,
		TripStatusInProgress,
		TripStatusCompleted,
	},
	TripKindDelivery: {
		TripStatusRequested,
		TripStatusConfirmed,
		TripStatusDriverAssigned,
		TripStatusPickedUp,
		TripStatusInTransit,
		TripStatusCompleted,
	},
}

// ValidKind reports whether k is a known trip kind.
func ValidKind(k TripKind) bool {
	_, ok := statusPaths[k]
	return ok
}

// NextStatus returns the status that follows current on the forward path
// for the given kind. ok is false when current is terminal or unknown.
func NextStatus(kind TripKind, current TripStatus) (TripStatus, bool) {
	path := statusPaths[kind]
	for i, s := range path {
		if s == current && i+1 < len(path) {
			return path[i+1], true
		}
	}
	return "", false
}

// OnPath reports whether s appears on the forward path for kind.
func OnPath(kind TripKind, s TripStatus) bool {
	for _, v := range statusPaths[kind] {
		if v == s {
			return true
		}
	}
	return false
}

// PreCompleteStatus returns the state immediately preceding COMPLETED.
func PreCompleteStatus(kind TripKind) TripStatus {
	path := statusPaths[kind]
	return path[len(path)-2]
}

// IsTerminal reports whether s permits no further transitions.
func IsTerminal(s TripStatus) bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// Location is a structured geographic point.
type Location struct {
	Lat      float64
	Lng      float64
	Address  string
	PlaceRef string
}

// ValidLatitude reports whether lat is within [-90, 90].
func ValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

// ValidLongitude reports whether lng is within [-180, 180].
func ValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}

// Valid reports whether the location carries usable coordinates.
func (l Location) Valid() bool {
	return ValidLatitude(l.Lat) && ValidLongitude(l.Lng)
}

// Trip represents a ride or delivery request and its full lifecycle.
// The driver is assigned exactly once; terminal trips are kept as history.
type Trip struct {
	ID          string
	Kind        TripKind
	RequesterID string
	DriverID    string
	Pickup      Location
	Destination Location
	Category    Category
	Fare        float64
	Status      TripStatus
	Notes       string

	// Delivery-only fields.
	RecipientName  string
	RecipientPhone string
	ProofPhotoURL  string

	// Populated only on cancellation.
	CancelledBy        Role
	CancellationReason string
	CancellationFee    float64

	CreatedAt   time.Time
	UpdatedAt   time.Time
	AcceptedAt  time.Time
	PickedUpAt  time.Time
	StartedAt   time.Time
	CompletedAt time.Time
	CancelledAt time.Time
}
