package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubaereo/bitacora/ledger"
	"github.com/clubaereo/bitacora/ledger/store"
)

func entry(id, pilotID, amount string, kind ledger.Kind, flightID *int64) ledger.Entry {
	return ledger.Entry{
		ID:       id,
		PilotID:  pilotID,
		Amount:   decimal.RequireFromString(amount),
		Kind:     kind,
		FlightID: flightID,
	}
}

func i64(v int64) *int64 { return &v }

// =============================================================================
// BALANCE DERIVATION
// =============================================================================

func TestSum_FoldsByKind(t *testing.T) {
	entries := []ledger.Entry{
		entry("e1", "p1", "500000", ledger.KindDeposit, nil),
		entry("e2", "p1", "80000", ledger.KindFuelCredit, nil),
		entry("e3", "p1", "-340000", ledger.KindCharge, i64(1)),
		entry("e4", "p1", "-100000", ledger.KindCharge, i64(2)),
	}

	b := ledger.Sum("p1", entries)
	assert.True(t, b.Deposits.Equal(decimal.RequireFromString("500000")))
	assert.True(t, b.FuelCredits.Equal(decimal.RequireFromString("80000")))
	assert.True(t, b.Charges.Equal(decimal.RequireFromString("440000")), "charges reported positive")
	assert.True(t, b.Total.Equal(decimal.RequireFromString("140000")))
}

func TestSum_EmptyStatement(t *testing.T) {
	b := ledger.Sum("p1", nil)
	assert.True(t, b.Total.IsZero())
	assert.True(t, b.Deposits.IsZero())
}

func TestBalance_IsDerivedNotStored(t *testing.T) {
	// Removing a flight's charge must change the balance with no separate
	// bookkeeping; the balance exists only as a fold over entries.

	mem := store.NewMemory()
	l := ledger.New(mem)
	ctx := context.Background()

	require.NoError(t, mem.AppendEntry(ctx, entry("e1", "p1", "500000", ledger.KindDeposit, nil)))
	require.NoError(t, mem.AppendEntry(ctx, entry("e2", "p1", "-200000", ledger.KindCharge, i64(7))))

	b, err := l.Balance(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, b.Total.Equal(decimal.RequireFromString("300000")))

	require.NoError(t, mem.RemoveByFlight(ctx, 7))

	b, err = l.Balance(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, b.Total.Equal(decimal.RequireFromString("500000")))
}

// =============================================================================
// STORE CONTRACT
// =============================================================================

func TestMemory_DuplicateEntryRejected(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.AppendEntry(ctx, entry("e1", "p1", "100", ledger.KindDeposit, nil)))
	err := mem.AppendEntry(ctx, entry("e1", "p1", "100", ledger.KindDeposit, nil))
	assert.ErrorIs(t, err, ledger.ErrDuplicateEntry)
}

func TestMemory_EntryByFlight(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.AppendEntry(ctx, entry("e1", "p1", "-100", ledger.KindCharge, i64(3))))

	got, err := mem.EntryByFlight(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "e1", got.ID)

	_, err = mem.EntryByFlight(ctx, 4)
	assert.ErrorIs(t, err, ledger.ErrEntryNotFound)
}

func TestMemory_RemoveByFlightIsIdempotent(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.AppendEntry(ctx, entry("e1", "p1", "-100", ledger.KindCharge, i64(3))))
	require.NoError(t, mem.RemoveByFlight(ctx, 3))
	require.NoError(t, mem.RemoveByFlight(ctx, 3), "removing again is a no-op")

	entries, err := mem.EntriesByPilot(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
