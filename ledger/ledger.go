/*
ledger.go - Ledger facade and persistence interface

PURPOSE:
  The Ledger is the source of truth for pilot account movements. Balance is
  recomputed from entries on every read; a cached saldo field elsewhere in
  the system is display-only and must never be trusted over this sum.

WRITE PATHS:
  - Append: flight approval (CHARGE), deposit approval (DEPOSIT),
    fuel approval (FUEL_CREDIT). All three happen inside the same database
    transaction as their originating aggregate update.
  - RemoveByFlight: the single removal path, invoked only by flight
    cancellation, which deletes the flight and its charge as one unit.

SEE ALSO:
  - entry.go: Entry and Balance types
  - store/memory.go: In-memory Store for tests
  - store/sqlite (top level): Production implementation
*/
package ledger

import "context"

// =============================================================================
// STORE - Persistence interface
// =============================================================================

// Store persists ledger entries.
type Store interface {
	// AppendEntry persists an entry. Fails with ErrDuplicateEntry if the
	// entry id already exists.
	AppendEntry(ctx context.Context, e Entry) error

	// EntriesByPilot returns all entries for a pilot, oldest first.
	EntriesByPilot(ctx context.Context, pilotID string) ([]Entry, error)

	// EntryByFlight returns the charge entry linked to a flight, or
	// ErrEntryNotFound.
	EntryByFlight(ctx context.Context, flightID int64) (*Entry, error)

	// RemoveByFlight deletes the charge entry linked to a flight.
	// Removing a flight with no entry is not an error; cancellation of a
	// never-approved submission has nothing to undo.
	RemoveByFlight(ctx context.Context, flightID int64) error
}

// =============================================================================
// LEDGER - Balance derivation over a Store
// =============================================================================

// Ledger derives account state from a Store.
type Ledger struct {
	Store Store
}

func New(store Store) *Ledger {
	return &Ledger{Store: store}
}

// Balance recomputes a pilot's balance from their full entry history.
func (l *Ledger) Balance(ctx context.Context, pilotID string) (Balance, error) {
	entries, err := l.Store.EntriesByPilot(ctx, pilotID)
	if err != nil {
		return Balance{}, err
	}
	return Sum(pilotID, entries), nil
}

// Statement returns a pilot's entries oldest first, for account review.
func (l *Ledger) Statement(ctx context.Context, pilotID string) ([]Entry, error) {
	return l.Store.EntriesByPilot(ctx, pilotID)
}
