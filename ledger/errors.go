/*
errors.go - Sentinel errors for the ledger package

USAGE:
  Callers discriminate with errors.Is():

    if errors.Is(err, ledger.ErrDuplicateEntry) { ... }
*/
package ledger

import "errors"

var (
	// ErrDuplicateEntry is returned when an entry with the same id already
	// exists. Retrying an append with the same entry is safe to ignore.
	ErrDuplicateEntry = errors.New("duplicate ledger entry")

	// ErrEntryNotFound is returned when a referenced entry does not exist.
	ErrEntryNotFound = errors.New("ledger entry not found")
)
