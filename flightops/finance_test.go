package flightops_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubaereo/bitacora/flightops"
	"github.com/clubaereo/bitacora/ledger"
	"github.com/clubaereo/bitacora/store/sqlite"
)

func seedDeposit(t *testing.T, store *sqlite.Store, pilotID, amount string) *flightops.Deposit {
	t.Helper()
	dep := &flightops.Deposit{
		PilotID: pilotID,
		Amount:  d(amount),
		Date:    time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
		Status:  flightops.FinancePendiente,
	}
	require.NoError(t, store.SaveDeposit(context.Background(), dep))
	return dep
}

func seedFuelLog(t *testing.T, store *sqlite.Store, pilotID, amount string, date time.Time) *flightops.FuelLog {
	t.Helper()
	f := &flightops.FuelLog{
		PilotID: pilotID,
		Amount:  d(amount),
		Liters:  d("40.0"),
		Date:    date,
		Status:  flightops.FinancePendiente,
	}
	require.NoError(t, store.SaveFuelLog(context.Background(), f))
	return f
}

// =============================================================================
// DEPOSIT TESTS
// =============================================================================

func TestApproveDeposit_CreditsPilot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	dep := seedDeposit(t, store, "pilot-7", "500000")

	svc := flightops.NewFinanceService(store, nil)
	require.NoError(t, svc.ApproveDeposit(ctx, dep.ID))

	got, err := store.Deposit(ctx, dep.ID)
	require.NoError(t, err)
	assert.Equal(t, flightops.FinanceAprobado, got.Status)

	balance := pilotBalance(t, store, "pilot-7")
	assert.True(t, balance.Deposits.Equal(d("500000")))
	assert.True(t, balance.Total.Equal(d("500000")))
}

func TestApproveDeposit_Twice(t *testing.T) {
	// GIVEN: An approved deposit
	// WHEN: Approving it again
	// THEN: AlreadyApprovedError; no double credit

	store := newTestStore(t)
	ctx := context.Background()
	dep := seedDeposit(t, store, "pilot-7", "500000")

	svc := flightops.NewFinanceService(store, nil)
	require.NoError(t, svc.ApproveDeposit(ctx, dep.ID))

	err := svc.ApproveDeposit(ctx, dep.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, flightops.ErrAlreadyApproved)

	balance := pilotBalance(t, store, "pilot-7")
	assert.True(t, balance.Deposits.Equal(d("500000")), "credited exactly once")
}

func TestRejectDeposit_DeletesRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	dep := seedDeposit(t, store, "pilot-7", "500000")

	svc := flightops.NewFinanceService(store, nil)
	require.NoError(t, svc.RejectDeposit(ctx, dep.ID))

	got, err := store.Deposit(ctx, dep.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "rejected deposit is hard-deleted")

	entries, err := store.EntriesByPilot(ctx, "pilot-7")
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing ever reaches the ledger")
}

func TestRejectDeposit_ApprovedCannotBeRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	dep := seedDeposit(t, store, "pilot-7", "500000")

	svc := flightops.NewFinanceService(store, nil)
	require.NoError(t, svc.ApproveDeposit(ctx, dep.ID))

	err := svc.RejectDeposit(ctx, dep.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, flightops.ErrAlreadyApproved)
}

// =============================================================================
// FUEL CREDIT CUTOFF TESTS
// =============================================================================

func TestApproveFuel_OnCutoffDateCreditsPilot(t *testing.T) {
	// A purchase dated exactly at the cutoff instant is inside the new
	// billing policy.

	store := newTestStore(t)
	ctx := context.Background()
	f := seedFuelLog(t, store, "pilot-7", "80000", flightops.FuelCreditCutoff)

	svc := flightops.NewFinanceService(store, nil)
	require.NoError(t, svc.ApproveFuel(ctx, f.ID))

	got, err := store.FuelLog(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, flightops.FinanceAprobado, got.Status)

	balance := pilotBalance(t, store, "pilot-7")
	assert.True(t, balance.FuelCredits.Equal(d("80000")))
}

func TestApproveFuel_BeforeCutoffApprovesWithoutCredit(t *testing.T) {
	// GIVEN: A fuel purchase dated the day before the policy change
	// WHEN: Approving it
	// THEN: Status flips to APROBADO but the ledger stays empty

	store := newTestStore(t)
	ctx := context.Background()
	f := seedFuelLog(t, store, "pilot-7", "80000", flightops.FuelCreditCutoff.AddDate(0, 0, -1))

	svc := flightops.NewFinanceService(store, nil)
	require.NoError(t, svc.ApproveFuel(ctx, f.ID))

	got, err := store.FuelLog(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, flightops.FinanceAprobado, got.Status, "approved for the record")

	entries, err := store.EntriesByPilot(ctx, "pilot-7")
	require.NoError(t, err)
	assert.Empty(t, entries, "pre-cutoff purchase posts no credit")
}

func TestApproveFuel_Twice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	f := seedFuelLog(t, store, "pilot-7", "80000", flightops.FuelCreditCutoff)

	svc := flightops.NewFinanceService(store, nil)
	require.NoError(t, svc.ApproveFuel(ctx, f.ID))

	err := svc.ApproveFuel(ctx, f.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, flightops.ErrAlreadyApproved)
}

func TestRejectFuel_DeletesRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	f := seedFuelLog(t, store, "pilot-7", "80000", flightops.FuelCreditCutoff)

	svc := flightops.NewFinanceService(store, nil)
	require.NoError(t, svc.RejectFuel(ctx, f.ID))

	got, err := store.FuelLog(ctx, f.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFinance_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	svc := flightops.NewFinanceService(store, nil)

	assert.ErrorIs(t, svc.ApproveDeposit(ctx, 111), flightops.ErrNotFound)
	assert.ErrorIs(t, svc.RejectDeposit(ctx, 111), flightops.ErrNotFound)
	assert.ErrorIs(t, svc.ApproveFuel(ctx, 111), flightops.ErrNotFound)
	assert.ErrorIs(t, svc.RejectFuel(ctx, 111), flightops.ErrNotFound)
}

// =============================================================================
// MIXED LEDGER SEQUENCE
// =============================================================================

func TestBalance_MixedEntryKinds(t *testing.T) {
	// Deposit + fuel credit + flight charge, then verify the identity
	// balance == deposits + fuel credits - charges.

	store := newTestStore(t)
	ctx := context.Background()
	seedAircraft(t, store, "LV-ABC", "100.0", "50.0")

	finance := flightops.NewFinanceService(store, nil)
	dep := seedDeposit(t, store, "pilot-7", "600000")
	require.NoError(t, finance.ApproveDeposit(ctx, dep.ID))
	fuel := seedFuelLog(t, store, "pilot-7", "150000", flightops.FuelCreditCutoff.AddDate(1, 0, 0))
	require.NoError(t, finance.ApproveFuel(ctx, fuel.ID))

	approvals := flightops.NewApprovalService(store, nil)
	sub := seedSubmission(t, store, "pilot-7", "LV-ABC", "102.0", "51.0")
	_, err := approvals.Approve(ctx, sub.ID, d("170000"), d("30000")) // charge 400000
	require.NoError(t, err)

	balance := pilotBalance(t, store, "pilot-7")
	assert.True(t, balance.Deposits.Equal(d("600000")))
	assert.True(t, balance.FuelCredits.Equal(d("150000")))
	assert.True(t, balance.Charges.Equal(d("400000")))
	assert.True(t, balance.Total.Equal(d("350000")))

	statement, err := ledger.New(store).Statement(ctx, "pilot-7")
	require.NoError(t, err)
	assert.Len(t, statement, 3)
}
