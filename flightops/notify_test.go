package flightops_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubaereo/bitacora/flightops"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []flightops.Event
	fail   int // fail this many deliveries before succeeding
}

func (n *recordingNotifier) Notify(_ context.Context, ev flightops.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail > 0 {
		n.fail--
		return errors.New("smtp unavailable")
	}
	n.events = append(n.events, ev)
	return nil
}

func (n *recordingNotifier) delivered() []flightops.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]flightops.Event(nil), n.events...)
}

func TestDispatcher_RetriesUntilDelivered(t *testing.T) {
	notifier := &recordingNotifier{fail: 2}
	d := flightops.NewDispatcher(notifier, nil)
	d.Backoff = 0 // keep the test fast

	d.Dispatch(flightops.Event{Type: flightops.EventFlightApproved, SubmissionID: 1, FlightID: 10})
	d.Wait()

	events := notifier.delivered()
	require.Len(t, events, 1)
	assert.Equal(t, flightops.EventFlightApproved, events[0].Type)
	assert.Equal(t, int64(10), events[0].FlightID)
}

func TestDispatcher_GivesUpAfterMaxAttempts(t *testing.T) {
	notifier := &recordingNotifier{fail: 100}
	d := flightops.NewDispatcher(notifier, nil)
	d.Backoff = 0

	d.Dispatch(flightops.Event{Type: flightops.EventSubmissionCancelled, SubmissionID: 2})
	d.Wait()

	assert.Empty(t, notifier.delivered(), "delivery abandoned, never escalated")
}

func TestApprove_NotificationFailureDoesNotAffectLedger(t *testing.T) {
	// The dispatcher is strictly post-commit; a dead notifier must not
	// surface as an approval error or touch any written state.

	store := newTestStore(t)
	ctx := context.Background()
	seedAircraft(t, store, "LV-ABC", "100.0", "50.0")
	sub := seedSubmission(t, store, "pilot-7", "LV-ABC", "102.0", "51.0")

	notifier := &recordingNotifier{fail: 100}
	svc := flightops.NewApprovalService(store, nil)
	svc.Dispatcher = flightops.NewDispatcher(notifier, nil)
	svc.Dispatcher.Backoff = 0

	flightID, err := svc.Approve(ctx, sub.ID, d("170000"), decimal.Zero)
	require.NoError(t, err)
	svc.Dispatcher.Wait()

	flight, err := store.FlightBySubmission(ctx, sub.ID)
	require.NoError(t, err)
	require.NotNil(t, flight)
	assert.Equal(t, flightID, flight.ID)
}
