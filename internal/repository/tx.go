package repository

import "context"

// Repositories bundles the repositories bound to a single unit of work.
type Repositories struct {
	Trips    TripRepository
	Drivers  DriverRepository
	Payments PaymentRepository
}

// TxRunner executes fn as one atomic unit of work. Writes made through the
// supplied repositories commit together or not at all, so a trip status flip
// and its dependent driver and payment writes can never be torn apart by a
// mid-sequence failure.
type TxRunner interface {
	InTx(ctx context.Context, fn func(r Repositories) error) error
}
