/*
notify.go - Post-commit notification dispatch

PURPOSE:
  Email and other outbound notifications are explicitly OUTSIDE the
  approval transaction. They run after commit on their own goroutine with
  retry and backoff; a notification failure never rolls back a ledger
  update.

  The actual delivery mechanism (email) lives outside this module; callers
  plug in a Notifier. LogNotifier is the default when none is configured.
*/
package flightops

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventType identifies what happened.
type EventType string

const (
	EventFlightApproved      EventType = "flight_approved"
	EventSubmissionCancelled EventType = "submission_cancelled"
)

// Event describes a committed state change worth notifying about.
type Event struct {
	Type         EventType
	SubmissionID int64
	FlightID     int64
}

// Notifier delivers one event. Implementations may block; the dispatcher
// calls them off the request path.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Dispatcher retries delivery with backoff, best-effort.
type Dispatcher struct {
	Notifier    Notifier
	Log         *zap.Logger
	MaxAttempts int           // default 3
	Backoff     time.Duration // default 2s, doubled per attempt

	wg sync.WaitGroup
}

func NewDispatcher(n Notifier, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{Notifier: n, Log: log, MaxAttempts: 3, Backoff: 2 * time.Second}
}

// Dispatch delivers ev asynchronously. Returns immediately.
func (d *Dispatcher) Dispatch(ev Event) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		backoff := d.Backoff
		for attempt := 1; attempt <= d.MaxAttempts; attempt++ {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := d.Notifier.Notify(ctx, ev)
			cancel()
			if err == nil {
				return
			}
			d.Log.Warn("notification delivery failed",
				zap.String("event", string(ev.Type)),
				zap.Int64("submission_id", ev.SubmissionID),
				zap.Int("attempt", attempt),
				zap.Error(err))
			if attempt < d.MaxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
	}()
}

// Wait blocks until in-flight deliveries finish. For shutdown and tests.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// LogNotifier just records the event. Used when no email transport is
// configured.
type LogNotifier struct {
	Log *zap.Logger
}

func (n *LogNotifier) Notify(_ context.Context, ev Event) error {
	n.Log.Info("notification",
		zap.String("event", string(ev.Type)),
		zap.Int64("submission_id", ev.SubmissionID),
		zap.Int64("flight_id", ev.FlightID))
	return nil
}
