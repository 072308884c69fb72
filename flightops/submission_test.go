package flightops_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubaereo/bitacora/flightops"
)

// =============================================================================
// SUBMISSION LIFECYCLE TESTS
// =============================================================================

func TestSubmissionCreate_StartsPendiente(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedAircraft(t, store, "LV-ABC", "100.0", "50.0")

	svc := flightops.NewSubmissionService(store, nil)
	sub := &flightops.Submission{
		PilotID:   "pilot-7",
		Matricula: "LV-ABC",
		Route:     "SADF-SADP",
	}
	require.NoError(t, svc.Create(ctx, sub))
	assert.NotZero(t, sub.ID)
	assert.Equal(t, flightops.StatusPendiente, sub.Status)

	pending, err := store.PendingSubmissions(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, sub.ID, pending[0].ID)
}

func TestSubmissionCreate_UnknownAircraft(t *testing.T) {
	store := newTestStore(t)
	svc := flightops.NewSubmissionService(store, nil)

	err := svc.Create(context.Background(), &flightops.Submission{
		PilotID:   "pilot-7",
		Matricula: "LV-NOPE",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, flightops.ErrNotFound)
}

func TestSubmissionCreate_RegressingFinalsRejected(t *testing.T) {
	// GIVEN: Aircraft at HOBBS 100.0
	// WHEN: A submission reports a final below it
	// THEN: ErrCounterRegression, nothing saved

	store := newTestStore(t)
	ctx := context.Background()
	seedAircraft(t, store, "LV-ABC", "100.0", "50.0")

	svc := flightops.NewSubmissionService(store, nil)
	err := svc.Create(ctx, &flightops.Submission{
		PilotID:    "pilot-7",
		Matricula:  "LV-ABC",
		FinalHobbs: nd("99.0"),
		FinalTach:  nd("51.0"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, flightops.ErrCounterRegression)

	pending, err := store.PendingSubmissions(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSubmissionFinalize_Transitions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedAircraft(t, store, "LV-ABC", "100.0", "50.0")

	svc := flightops.NewSubmissionService(store, nil)
	sub := &flightops.Submission{PilotID: "pilot-7", Matricula: "LV-ABC"}
	require.NoError(t, svc.Create(ctx, sub))

	require.NoError(t, svc.Finalize(ctx, sub.ID, d("102.0"), d("51.0")))

	got, err := store.Submission(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, flightops.StatusEsperandoAprobacion, got.Status)
	require.True(t, got.FinalHobbs.Valid)
	assert.True(t, got.FinalHobbs.Decimal.Equal(d("102.0")))

	// Finalizing again is a state violation.
	err = svc.Finalize(ctx, sub.ID, d("103.0"), d("51.5"))
	require.Error(t, err)
	assert.ErrorIs(t, err, flightops.ErrInvalidState)
}

func TestSubmissionFinalize_RegressingTachRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedAircraft(t, store, "LV-ABC", "100.0", "50.0")

	svc := flightops.NewSubmissionService(store, nil)
	sub := &flightops.Submission{PilotID: "pilot-7", Matricula: "LV-ABC"}
	require.NoError(t, svc.Create(ctx, sub))

	err := svc.Finalize(ctx, sub.ID, d("102.0"), d("49.0"))
	require.Error(t, err)
	assert.ErrorIs(t, err, flightops.ErrCounterRegression)

	// Still PENDIENTE, still without finals.
	got, err := store.Submission(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, flightops.StatusPendiente, got.Status)
	assert.False(t, got.FinalHobbs.Valid)
}

// =============================================================================
// STATE MACHINE PROPERTIES
// =============================================================================

func TestStatus_TerminalAndApprovable(t *testing.T) {
	assert.True(t, flightops.StatusPendiente.Approvable())
	assert.True(t, flightops.StatusEsperandoAprobacion.Approvable())
	assert.False(t, flightops.StatusCompletado.Approvable())
	assert.False(t, flightops.StatusCancelado.Approvable())
	assert.False(t, flightops.StatusError.Approvable())

	assert.False(t, flightops.StatusPendiente.Terminal())
	assert.False(t, flightops.StatusEsperandoAprobacion.Terminal())
	assert.True(t, flightops.StatusCompletado.Terminal())
	assert.True(t, flightops.StatusCancelado.Terminal())
	assert.True(t, flightops.StatusError.Terminal())
}

func TestCancelledSubmissionNotApprovable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedAircraft(t, store, "LV-ABC", "100.0", "50.0")
	sub := seedSubmission(t, store, "pilot-7", "LV-ABC", "102.0", "51.0")

	svc := flightops.NewApprovalService(store, nil)
	require.NoError(t, svc.Cancel(ctx, sub.ID, "weather"))

	_, err := svc.Approve(ctx, sub.ID, d("170000"), decimal.Zero)
	require.Error(t, err)
	assert.ErrorIs(t, err, flightops.ErrInvalidState)
}

// =============================================================================
// COMPONENT ROLL-FORWARD
// =============================================================================

func TestRollForward(t *testing.T) {
	rolled := flightops.RollForward(nd("3200.04"), d("1.5"))
	require.True(t, rolled.Valid)
	assert.True(t, rolled.Decimal.Equal(d("3201.5")), "rounded to one decimal, got %s", rolled.Decimal)

	missing := flightops.RollForward(decimal.NullDecimal{}, d("1.5"))
	assert.False(t, missing.Valid, "no baseline means no derived total")
}
