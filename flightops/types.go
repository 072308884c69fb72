/*
Package flightops implements the club's flight, maintenance and financial
approval core.

PURPOSE:
  A pilot reports a completed flight (final HOBBS/TACH readings); an admin
  approves it with the applicable rates. Approval atomically creates the
  immutable flight record, advances the aircraft's meters, rolls component
  hours toward their TBO limits, and charges the pilot's account on the
  ledger. Cancellation undoes all of it.

KEY CONCEPTS IN THIS FILE (types.go):
  - Aircraft: current HOBBS/TACH meter readings per tail number
  - Component: per-part accumulated hours against a TBO limit
  - Flight: the immutable record produced by approval
  - Submission: the mutable workflow object a pilot creates
  - Deposit/FuelLog: pending financial records awaiting admin approval

DESIGN PRINCIPLES:
  1. Aircraft counters always equal the finals of the latest approved flight
     (or an admin-corrected baseline); only the orchestrators mutate them
  2. Component hours are a cached rollup of flight deltas, not a source of
     truth; a component with no recorded baseline stays null forever
  3. Flights are immutable once created and deleted only by cancellation
  4. Submissions are never deleted; COMPLETADO and CANCELADO are terminal

SEE ALSO:
  - approval.go: The cross-aggregate approval transaction
  - cancel.go: Its algebraic inverse
  - finance.go: Deposit and fuel-credit approval
*/
package flightops

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SUBMISSION STATE MACHINE
// =============================================================================

// Status is the workflow state of a flight submission.
//
// Transitions:
//
//	creation                          -> PENDIENTE
//	PENDIENTE                         -> ESPERANDO_APROBACION (pilot finalizes)
//	PENDIENTE, ESPERANDO_APROBACION   -> COMPLETADO           (approval)
//	PENDIENTE, ESPERANDO_APROBACION   -> CANCELADO            (cancellation)
//
// No transition leaves COMPLETADO, CANCELADO or ERROR.
type Status string

const (
	StatusPendiente           Status = "PENDIENTE"
	StatusEsperandoAprobacion Status = "ESPERANDO_APROBACION"
	StatusCompletado          Status = "COMPLETADO"
	StatusCancelado           Status = "CANCELADO"

	// StatusError is terminal and reserved for automated-validation
	// failures. Nothing in this package produces it.
	StatusError Status = "ERROR"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompletado || s == StatusCancelado || s == StatusError
}

// Approvable reports whether the approval orchestrator accepts this state.
func (s Status) Approvable() bool {
	return s == StatusPendiente || s == StatusEsperandoAprobacion
}

// =============================================================================
// AIRCRAFT AND COMPONENTS
// =============================================================================

// Aircraft holds the current meter readings for one tail number.
// Hobbs bills the pilot; Tach wears the components.
type Aircraft struct {
	Matricula string
	Hobbs     decimal.Decimal
	Tach      decimal.Decimal
}

// ComponentType identifies which tracked part of the aircraft.
type ComponentType string

const (
	ComponentAirframe  ComponentType = "AIRFRAME"
	ComponentEngine    ComponentType = "ENGINE"
	ComponentPropeller ComponentType = "PROPELLER"
)

// Component tracks accumulated hours on one part against its TBO limit.
// Hours is null when the club never recorded a baseline for the part;
// approvals leave it null rather than fabricating a starting point.
type Component struct {
	ID        int64
	Matricula string
	Type      ComponentType
	Hours     decimal.NullDecimal
	TBOLimit  decimal.Decimal
}

// Remaining returns hours left before overhaul, or invalid when the
// component has no recorded baseline.
func (c Component) Remaining() decimal.NullDecimal {
	if !c.Hours.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{
		Decimal: c.TBOLimit.Sub(c.Hours.Decimal),
		Valid:   true,
	}
}

// =============================================================================
// FLIGHT - Immutable record created by approval
// =============================================================================

// Flight is the approved, immutable record of one completed flight.
// Created only by the approval orchestrator; deleted only by cancellation.
//
// Invariants: DiffHobbs = HobbsEnd - HobbsStart and DiffTach = TachEnd -
// TachStart, both non-negative; Cost = DiffHobbs * (Rate + InstructorRate).
//
// The per-component hour fields record the resulting accumulated hours
// after this flight, so cancellation of a later flight can restore them
// exactly. A field is invalid when the component had no baseline.
type Flight struct {
	ID             int64
	Date           time.Time
	HobbsStart     decimal.Decimal
	HobbsEnd       decimal.Decimal
	TachStart      decimal.Decimal
	TachEnd        decimal.Decimal
	DiffHobbs      decimal.Decimal
	DiffTach       decimal.Decimal
	Cost           decimal.Decimal
	Rate           decimal.Decimal
	InstructorRate decimal.Decimal

	AirframeHours  decimal.NullDecimal
	EngineHours    decimal.NullDecimal
	PropellerHours decimal.NullDecimal

	Client       string // paying client code
	Matricula    string
	PilotID      string
	SubmissionID int64

	CreatedAt time.Time
}

// ComponentHours returns the recorded post-flight hours for a component type.
func (f *Flight) ComponentHours(t ComponentType) decimal.NullDecimal {
	switch t {
	case ComponentAirframe:
		return f.AirframeHours
	case ComponentEngine:
		return f.EngineHours
	case ComponentPropeller:
		return f.PropellerHours
	}
	return decimal.NullDecimal{}
}

// SetComponentHours records the post-flight hours for a component type.
func (f *Flight) SetComponentHours(t ComponentType, hours decimal.NullDecimal) {
	switch t {
	case ComponentAirframe:
		f.AirframeHours = hours
	case ComponentEngine:
		f.EngineHours = hours
	case ComponentPropeller:
		f.PropellerHours = hours
	}
}

// =============================================================================
// SUBMISSION - Mutable workflow object
// =============================================================================

// Submission is a pilot's in-flight report as it moves through the workflow.
// It carries no cost or rate data; rates arrive with the approving admin.
type Submission struct {
	ID         int64
	Status     Status
	FinalHobbs decimal.NullDecimal
	FinalTach  decimal.NullDecimal
	PilotID    string
	Matricula  string
	Copilot    string // optional co-pilot / instructor name
	Remarks    string
	Route      string

	// FlightID is the one-time link set when approval creates the flight.
	FlightID     *int64
	CancelReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// PENDING FINANCIAL RECORDS
// =============================================================================

// FinanceStatus is the state of a pending deposit or fuel log.
type FinanceStatus string

const (
	FinancePendiente FinanceStatus = "PENDIENTE"
	FinanceAprobado  FinanceStatus = "APROBADO"
)

// Deposit is a cash deposit reported by a pilot, awaiting admin approval.
type Deposit struct {
	ID        int64
	PilotID   string
	Amount    decimal.Decimal
	Date      time.Time
	Status    FinanceStatus
	CreatedAt time.Time
}

// FuelLog is a fuel purchase reported by a pilot, awaiting admin approval.
// Approved purchases on or after FuelCreditCutoff credit the pilot's account.
type FuelLog struct {
	ID        int64
	PilotID   string
	Amount    decimal.Decimal
	Liters    decimal.Decimal
	Date      time.Time
	Status    FinanceStatus
	CreatedAt time.Time
}

// FuelCreditCutoff is the billing-policy change date. Fuel purchases dated
// before it are approved for the record but post no ledger credit; purchases
// on or after it credit the pilot. The instant is fixed and must not move.
var FuelCreditCutoff = time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
