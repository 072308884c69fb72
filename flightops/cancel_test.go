package flightops_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubaereo/bitacora/flightops"
	"github.com/clubaereo/bitacora/ledger"
	"github.com/clubaereo/bitacora/store/sqlite"
)

// reopenSubmission simulates the manual correction that puts an approved
// submission back under review while its flight still exists.
func reopenSubmission(t *testing.T, store *sqlite.Store, id int64) {
	t.Helper()
	ctx := context.Background()
	sub, err := store.Submission(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, sub)
	sub.Status = flightops.StatusEsperandoAprobacion
	require.NoError(t, store.SaveSubmission(ctx, sub))
}

func pilotBalance(t *testing.T, store *sqlite.Store, pilotID string) ledger.Balance {
	t.Helper()
	balance, err := ledger.New(store).Balance(context.Background(), pilotID)
	require.NoError(t, err)
	return balance
}

// =============================================================================
// CANCELLATION TESTS
// =============================================================================

func TestCancel_PendingSubmission(t *testing.T) {
	// GIVEN: A submission never approved
	// WHEN: Cancelling it with a reason
	// THEN: Status CANCELADO, reason kept, counters untouched

	store := newTestStore(t)
	ctx := context.Background()
	seedAircraft(t, store, "LV-ABC", "100.0", "50.0")
	sub := seedSubmission(t, store, "pilot-7", "LV-ABC", "102.0", "51.0")

	svc := flightops.NewApprovalService(store, nil)
	require.NoError(t, svc.Cancel(ctx, sub.ID, "pilot reported wrong aircraft"))

	got, err := store.Submission(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, flightops.StatusCancelado, got.Status)
	assert.Equal(t, "pilot reported wrong aircraft", got.CancelReason)

	aircraft, err := store.Aircraft(ctx, "LV-ABC")
	require.NoError(t, err)
	assert.True(t, aircraft.Hobbs.Equal(d("100.0")))
}

func TestCancel_CompletedSubmissionRejected(t *testing.T) {
	// A settled flight needs an explicit reversal; plain cancel refuses.

	store := newTestStore(t)
	ctx := context.Background()
	seedAircraft(t, store, "LV-ABC", "100.0", "50.0")
	sub := seedSubmission(t, store, "pilot-7", "LV-ABC", "102.0", "51.0")

	svc := flightops.NewApprovalService(store, nil)
	_, err := svc.Approve(ctx, sub.ID, d("170000"), decimal.Zero)
	require.NoError(t, err)

	err = svc.Cancel(ctx, sub.ID, "changed my mind")
	require.Error(t, err)
	assert.ErrorIs(t, err, flightops.ErrInvalidState)

	// Flight and charge survive.
	flight, err := store.FlightBySubmission(ctx, sub.ID)
	require.NoError(t, err)
	assert.NotNil(t, flight)
}

func TestCancel_NotFound(t *testing.T) {
	store := newTestStore(t)
	svc := flightops.NewApprovalService(store, nil)

	err := svc.Cancel(context.Background(), 4242, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, flightops.ErrNotFound)
}

func TestCancel_RollbackRestoresPriorState(t *testing.T) {
	// GIVEN: Two approved flights; the second reopened by manual correction
	// WHEN: Cancelling the second
	// THEN: Aircraft counters, component hours and the pilot's balance all
	//       equal their values right after the first approval

	store := newTestStore(t)
	ctx := context.Background()
	seedAircraft(t, store, "LV-ABC", "100.0", "50.0")
	svc := flightops.NewApprovalService(store, nil)

	subA := seedSubmission(t, store, "pilot-7", "LV-ABC", "102.0", "51.0")
	_, err := svc.Approve(ctx, subA.ID, d("170000"), decimal.Zero)
	require.NoError(t, err)

	// Snapshot the state the rollback must land on.
	wantAircraft, err := store.Aircraft(ctx, "LV-ABC")
	require.NoError(t, err)
	wantAirframe := componentByType(t, store, "LV-ABC", flightops.ComponentAirframe).Hours
	wantBalance := pilotBalance(t, store, "pilot-7").Total

	subB := seedSubmission(t, store, "pilot-7", "LV-ABC", "104.5", "52.5")
	flightB, err := svc.Approve(ctx, subB.ID, d("170000"), d("30000"))
	require.NoError(t, err)

	reopenSubmission(t, store, subB.ID)
	require.NoError(t, svc.Cancel(ctx, subB.ID, "counters misread"))

	// Flight and charge gone.
	gone, err := store.FlightBySubmission(ctx, subB.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	_, err = store.EntryByFlight(ctx, flightB)
	assert.ErrorIs(t, err, ledger.ErrEntryNotFound)

	// Counters back to flight A's finals.
	aircraft, err := store.Aircraft(ctx, "LV-ABC")
	require.NoError(t, err)
	assert.True(t, aircraft.Hobbs.Equal(wantAircraft.Hobbs), "hobbs rolled back, got %s", aircraft.Hobbs)
	assert.True(t, aircraft.Tach.Equal(wantAircraft.Tach), "tach rolled back, got %s", aircraft.Tach)

	// Component hours back to flight A's recorded results.
	airframe := componentByType(t, store, "LV-ABC", flightops.ComponentAirframe)
	require.Equal(t, wantAirframe.Valid, airframe.Hours.Valid)
	assert.True(t, airframe.Hours.Decimal.Equal(wantAirframe.Decimal))
	engine := componentByType(t, store, "LV-ABC", flightops.ComponentEngine)
	assert.False(t, engine.Hours.Valid, "missing baseline stays missing through the round trip")

	// Balance back to the pre-B charge.
	assert.True(t, pilotBalance(t, store, "pilot-7").Total.Equal(wantBalance))

	got, err := store.Submission(ctx, subB.ID)
	require.NoError(t, err)
	assert.Equal(t, flightops.StatusCancelado, got.Status)
}

func TestCancel_NoRemainingFlightKeepsCounters(t *testing.T) {
	// With no flight left after removal there is nothing to roll back to;
	// counters keep their current values rather than resetting to some
	// hypothetical zero.

	store := newTestStore(t)
	ctx := context.Background()
	seedAircraft(t, store, "LV-ABC", "100.0", "50.0")
	svc := flightops.NewApprovalService(store, nil)

	sub := seedSubmission(t, store, "pilot-7", "LV-ABC", "102.0", "51.0")
	flightID, err := svc.Approve(ctx, sub.ID, d("170000"), decimal.Zero)
	require.NoError(t, err)

	reopenSubmission(t, store, sub.ID)
	require.NoError(t, svc.Cancel(ctx, sub.ID, ""))

	_, err = store.EntryByFlight(ctx, flightID)
	assert.ErrorIs(t, err, ledger.ErrEntryNotFound)

	aircraft, err := store.Aircraft(ctx, "LV-ABC")
	require.NoError(t, err)
	assert.True(t, aircraft.Hobbs.Equal(d("102.0")), "counters stay where they are")
	assert.True(t, aircraft.Tach.Equal(d("51.0")))
}

func TestCancel_BalanceInvariantAcrossApproveCancelApprove(t *testing.T) {
	// balance == deposits + fuel credits - charges after any sequence.

	store := newTestStore(t)
	ctx := context.Background()
	seedAircraft(t, store, "LV-ABC", "100.0", "50.0")
	svc := flightops.NewApprovalService(store, nil)

	subA := seedSubmission(t, store, "pilot-7", "LV-ABC", "102.0", "51.0")
	_, err := svc.Approve(ctx, subA.ID, d("100000"), decimal.Zero) // charge 200000
	require.NoError(t, err)

	subB := seedSubmission(t, store, "pilot-7", "LV-ABC", "103.0", "51.5")
	_, err = svc.Approve(ctx, subB.ID, d("100000"), decimal.Zero) // charge 100000
	require.NoError(t, err)

	reopenSubmission(t, store, subB.ID)
	require.NoError(t, svc.Cancel(ctx, subB.ID, ""))

	balance := pilotBalance(t, store, "pilot-7")
	assert.True(t, balance.Charges.Equal(d("200000")), "charges, got %s", balance.Charges)
	want := balance.Deposits.Add(balance.FuelCredits).Sub(balance.Charges)
	assert.True(t, balance.Total.Equal(want), "balance identity, got %s want %s", balance.Total, want)
	assert.True(t, balance.Total.Equal(d("-200000")))
}
