/*
cancel.go - Cancellation: the algebraic inverse of approval

PURPOSE:
  Removes a submission's flight and charge, rolls the aircraft's counters
  and component hours back to the previous flight's recorded values, and
  marks the submission CANCELADO. All in one transaction.

ROLLBACK TARGET:
  The "previous" state is whatever flight is now the latest for the
  aircraft, ordered the same way approval orders its baseline. It is NOT
  assumed that the flight being removed was the newest one. If another
  flight was approved after the cancelled one, the rollback lands on that
  newer flight's finals; a consistent state, though not the one that
  existed before the cancelled approval. Known sharp edge, not a bug.

  With no remaining flight, counters are left at their current values; no
  reset to a hypothetical zero.
*/
package flightops

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Cancel cancels submission submissionID, undoing its flight, charge and
// counter effects if it was approved. reason is optional, kept for the
// record.
//
// A submission whose status is COMPLETADO cannot be cancelled: a settled
// flight needs an explicit reversal, which does not exist yet.
func (s *ApprovalService) Cancel(ctx context.Context, submissionID int64, reason string) error {
	err := s.Store.WithTx(ctx, func(tx Store) error {
		sub, err := tx.Submission(ctx, submissionID)
		if err != nil {
			return fmt.Errorf("load submission: %w", err)
		}
		if sub == nil {
			return &NotFoundError{Kind: "submission", ID: fmt.Sprint(submissionID)}
		}
		if sub.Status == StatusCompletado {
			return &InvalidStateError{SubmissionID: submissionID, Status: sub.Status, Operation: "cancel"}
		}

		flight, err := tx.FlightBySubmission(ctx, submissionID)
		if err != nil {
			return fmt.Errorf("load flight: %w", err)
		}
		if flight != nil {
			// A non-COMPLETADO submission with a linked flight only
			// happens after a manual correction. Proceed, but leave a
			// trace; nothing here repairs the status history.
			s.Log.Warn("cancelling submission that still has a linked flight",
				zap.Int64("submission_id", submissionID),
				zap.Int64("flight_id", flight.ID),
				zap.String("status", string(sub.Status)))

			if err := rollBackFlight(ctx, tx, flight); err != nil {
				return err
			}
		}

		sub.Status = StatusCancelado
		sub.CancelReason = reason
		if err := tx.SaveSubmission(ctx, sub); err != nil {
			return fmt.Errorf("save submission: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Log.Info("submission cancelled",
		zap.Int64("submission_id", submissionID),
		zap.String("reason", reason))

	if s.Dispatcher != nil {
		s.Dispatcher.Dispatch(Event{
			Type:         EventSubmissionCancelled,
			SubmissionID: submissionID,
		})
	}
	return nil
}

// rollBackFlight removes a flight and its charge, then resets the aircraft
// and its components to the finals of whatever flight is now the latest.
func rollBackFlight(ctx context.Context, tx Store, flight *Flight) error {
	// Charge first, then the flight row it references.
	if err := tx.RemoveByFlight(ctx, flight.ID); err != nil {
		return fmt.Errorf("remove charge: %w", err)
	}
	if err := tx.DeleteFlight(ctx, flight.ID); err != nil {
		return fmt.Errorf("delete flight: %w", err)
	}

	prev, err := tx.LatestFlight(ctx, flight.Matricula)
	if err != nil {
		return fmt.Errorf("resolve rollback target: %w", err)
	}
	if prev == nil {
		// Nothing to roll back to; counters keep their current values.
		return nil
	}

	if err := tx.UpdateAircraftCounters(ctx, flight.Matricula, prev.HobbsEnd, prev.TachEnd); err != nil {
		return fmt.Errorf("reset aircraft counters: %w", err)
	}

	components, err := tx.Components(ctx, flight.Matricula)
	if err != nil {
		return fmt.Errorf("load components: %w", err)
	}
	for _, c := range components {
		if err := tx.UpdateComponentHours(ctx, c.ID, prev.ComponentHours(c.Type)); err != nil {
			return fmt.Errorf("reset component %d: %w", c.ID, err)
		}
	}
	return nil
}
