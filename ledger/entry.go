/*
Package ledger provides the club's append-mostly financial ledger.

PURPOSE:
  Every peso that moves through a pilot's account is recorded here as a
  signed entry: flight charges (negative), cash deposits (positive), and
  fuel-purchase credits (positive). A pilot's balance is ALWAYS the sum of
  their entries - there is no stored balance field that can drift.

KEY CONCEPTS IN THIS FILE (entry.go):
  - Entry: A signed, immutable financial record tied to a pilot
  - Kind: What the entry represents (charge, deposit, fuel credit)
  - Balance: The derived aggregate, broken down by kind

DESIGN PRINCIPLES:
  1. Derived balance: Balance is computed, never persisted as mutable state
  2. Precision: decimal.Decimal throughout - no float money
  3. Signed storage: Charges carry a negative amount so balance is a plain sum
  4. One escape hatch: Flight cancellation removes the flight's CHARGE entry
     together with the flight itself; this is the single non-append path and
     it is keyed strictly to a flight id (see Store.RemoveByFlight)

SEE ALSO:
  - ledger.go: Ledger facade and Store interface
  - errors.go: Sentinel errors
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENTRY - Signed financial record
// =============================================================================

// Kind classifies a ledger entry.
type Kind string

const (
	// KindCharge is a flight cost debited from the pilot. Amount is negative.
	KindCharge Kind = "CHARGE"

	// KindDeposit is an approved cash deposit. Amount is positive.
	KindDeposit Kind = "DEPOSIT"

	// KindFuelCredit is an approved fuel purchase credited back to the pilot.
	// Amount is positive.
	KindFuelCredit Kind = "FUEL_CREDIT"
)

// Entry is one signed movement on a pilot's account.
// Entries are immutable once written. The only removal path is
// Store.RemoveByFlight during flight cancellation.
type Entry struct {
	ID       string          // uuid
	PilotID  string
	Amount   decimal.Decimal // signed: charges negative, credits positive
	Kind     Kind
	FlightID *int64 // set for charges, nil for deposits/fuel credits

	CreatedAt time.Time
}

// =============================================================================
// BALANCE - Derived aggregate, never stored
// =============================================================================

// Balance is the computed state of a pilot's account.
// Balance.Total == Deposits + FuelCredits - Charges, where each component
// is reported as a positive magnitude.
type Balance struct {
	PilotID     string
	Deposits    decimal.Decimal
	FuelCredits decimal.Decimal
	Charges     decimal.Decimal // positive magnitude of all charges
	Total       decimal.Decimal
}

// Sum folds entries into a Balance. Entries of unknown kind are ignored.
func Sum(pilotID string, entries []Entry) Balance {
	b := Balance{
		PilotID:     pilotID,
		Deposits:    decimal.Zero,
		FuelCredits: decimal.Zero,
		Charges:     decimal.Zero,
		Total:       decimal.Zero,
	}

	for _, e := range entries {
		switch e.Kind {
		case KindDeposit:
			b.Deposits = b.Deposits.Add(e.Amount)
		case KindFuelCredit:
			b.FuelCredits = b.FuelCredits.Add(e.Amount)
		case KindCharge:
			b.Charges = b.Charges.Add(e.Amount.Neg())
		default:
			continue
		}
		b.Total = b.Total.Add(e.Amount)
	}
	return b
}
