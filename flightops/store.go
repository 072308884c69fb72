/*
store.go - Persistence interface for the approval core

PURPOSE:
  Defines what the orchestrators need from the database. A single Store
  covers all five aggregates because approval writes all five inside one
  transaction; splitting the interface per aggregate would force the
  transaction boundary into the caller anyway.

TRANSACTIONS:
  TxStore.WithTx runs a function against a Store bound to one database
  transaction. The orchestrators re-read submission state INSIDE the
  transaction; a pre-transaction read is never trusted.

IMPLEMENTATIONS:
  - store/sqlite (top level): production SQLite
*/
package flightops

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/clubaereo/bitacora/ledger"
)

// Store is the persistence surface for the approval core.
// Lookup methods return (nil, nil) when the record does not exist;
// the orchestrators turn that into NotFoundError.
type Store interface {
	ledger.Store

	// Submissions
	Submission(ctx context.Context, id int64) (*Submission, error)
	SaveSubmission(ctx context.Context, s *Submission) error // assigns ID on insert
	PendingSubmissions(ctx context.Context) ([]Submission, error)

	// Flights
	InsertFlight(ctx context.Context, f *Flight) (int64, error)
	DeleteFlight(ctx context.Context, id int64) error
	FlightBySubmission(ctx context.Context, submissionID int64) (*Flight, error)

	// LatestFlight returns the most recent flight for an aircraft ordered
	// by (fecha DESC, created_at DESC, id DESC). Flight date ordering, not
	// insertion order: flights get back-dated during corrections.
	LatestFlight(ctx context.Context, matricula string) (*Flight, error)
	FlightsByAircraft(ctx context.Context, matricula string) ([]Flight, error)

	// Aircraft
	Aircraft(ctx context.Context, matricula string) (*Aircraft, error)
	ListAircraft(ctx context.Context) ([]Aircraft, error)
	UpdateAircraftCounters(ctx context.Context, matricula string, hobbs, tach decimal.Decimal) error

	// Components
	Components(ctx context.Context, matricula string) ([]Component, error)
	UpdateComponentHours(ctx context.Context, componentID int64, hours decimal.NullDecimal) error

	// Pending financial records
	Deposit(ctx context.Context, id int64) (*Deposit, error)
	SaveDeposit(ctx context.Context, d *Deposit) error
	MarkDepositApproved(ctx context.Context, id int64) error
	DeleteDeposit(ctx context.Context, id int64) error

	FuelLog(ctx context.Context, id int64) (*FuelLog, error)
	SaveFuelLog(ctx context.Context, f *FuelLog) error
	MarkFuelApproved(ctx context.Context, id int64) error
	DeleteFuelLog(ctx context.Context, id int64) error
}

// TxStore wraps Store with transaction support.
// The database transaction is the sole concurrency boundary; there are no
// in-process locks or queues above it.
type TxStore interface {
	Store

	// WithTx executes fn within one database transaction.
	// If fn returns an error, every write is rolled back.
	WithTx(ctx context.Context, fn func(Store) error) error
}
