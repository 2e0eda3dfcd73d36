package domain

import "time"

// VerificationStatus gates whether a driver may be matched at all.
type VerificationStatus string

const (
	VerificationPending   VerificationStatus = "PENDING"
	VerificationVerified  VerificationStatus = "VERIFIED"
	VerificationRejected  VerificationStatus = "REJECTED"
	VerificationSuspended VerificationStatus = "SUSPENDED"
)

// ValidVerificationStatus reports whether s is a known verification status.
func ValidVerificationStatus(s VerificationStatus) bool {
	switch s {
	case VerificationPending, VerificationVerified, VerificationRejected, VerificationSuspended:
		return true
	}
	return false
}

// Driver is a driver's availability record. Available is false while the
// driver holds an active trip; CurrentTripID is empty otherwise. Live
// location is kept separately in the geo store.
type Driver struct {
	ID            string
	Name          string
	Phone         string
	Category      Category // vehicle tier offered for rides
	Verification  VerificationStatus
	Online        bool
	Available     bool
	CurrentTripID string

	TotalRides      int
	TotalDeliveries int
	Rating          float64
	TotalEarnings   float64

	CreatedAt time.Time
}

// Matchable reports whether the driver may be surfaced to requesters.
func (d *Driver) Matchable() bool {
	return d.Online && d.Available && d.Verification == VerificationVerified
}
