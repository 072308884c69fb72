// Component-hour derivation helpers.
//
// Component hours are a cached rollup: every approved flight adds its TACH
// delta to each baselined component, rounded to one decimal the way the
// club's paper logs always were. A component with no baseline stays null;
// fabricating a starting point from a single delta would be wrong.
package flightops

import "github.com/shopspring/decimal"

// RollForward returns the component hours after adding a flight's TACH
// delta. Null baseline in, null out.
func RollForward(hours decimal.NullDecimal, diffTach decimal.Decimal) decimal.NullDecimal {
	if !hours.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{
		Decimal: hours.Decimal.Add(diffTach).Round(1),
		Valid:   true,
	}
}
