/*
approval.go - The cross-aggregate approval transaction

PURPOSE:
  Turns a pilot's submission into an approved, immutable flight record.
  One database transaction covers all five effects:

    1. Insert the Flight row
    2. Advance the Aircraft's HOBBS/TACH to the reported finals
    3. Roll each baselined Component's hours forward by the TACH delta
    4. Append the CHARGE entry to the pilot's ledger
    5. Mark the Submission COMPLETADO and link it to the Flight

  Either all five land or none do.

BASELINE:
  The starting counters come from the latest prior flight for the aircraft
  ordered by flight date then creation time, NOT by row id: flights get
  entered out of chronological order during corrections. With no prior
  flight, the aircraft's current counters are the baseline.

CONCURRENCY:
  Submission state is re-read inside the transaction. Two concurrent
  approvals of the same submission race on that read; the loser sees
  COMPLETADO and fails with InvalidStateError. At most one flight is ever
  created per submission (also enforced by a unique index on submission_id).

KNOWN GAP (kept on purpose):
  Approval does not re-validate that the finals exceed the baseline. That
  check happens at submission time. Two interleaved submissions for one
  aircraft can therefore approve out-of-order deltas; surfacing that to
  stakeholders beats silently patching it here.
*/
package flightops

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/clubaereo/bitacora/ledger"
)

// ApprovalService is the single entry point for approving and cancelling
// flight submissions.
type ApprovalService struct {
	Store      TxStore
	Log        *zap.Logger
	Dispatcher *Dispatcher // optional post-commit notifications
}

func NewApprovalService(store TxStore, log *zap.Logger) *ApprovalService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ApprovalService{Store: store, Log: log}
}

// Approve turns submission submissionID into a flight record billed at
// rate + instructorRate per HOBBS hour. Returns the new flight's id.
//
// Fails with NotFoundError, InvalidStateError or IncompleteDataError
// without writing anything.
func (s *ApprovalService) Approve(ctx context.Context, submissionID int64, rate, instructorRate decimal.Decimal) (int64, error) {
	var flightID int64

	err := s.Store.WithTx(ctx, func(tx Store) error {
		// Status is checked inside the transaction; a pre-transaction
		// read could race a concurrent approval or cancellation.
		sub, err := tx.Submission(ctx, submissionID)
		if err != nil {
			return fmt.Errorf("load submission: %w", err)
		}
		if sub == nil {
			return &NotFoundError{Kind: "submission", ID: fmt.Sprint(submissionID)}
		}
		if !sub.Status.Approvable() {
			return &InvalidStateError{SubmissionID: submissionID, Status: sub.Status, Operation: "approve"}
		}
		if missing := missingFinals(sub); len(missing) > 0 {
			return &IncompleteDataError{SubmissionID: submissionID, Missing: missing}
		}

		aircraft, err := tx.Aircraft(ctx, sub.Matricula)
		if err != nil {
			return fmt.Errorf("load aircraft: %w", err)
		}
		if aircraft == nil {
			return &NotFoundError{Kind: "aircraft", ID: sub.Matricula}
		}

		baselineHobbs, baselineTach, err := resolveBaseline(ctx, tx, aircraft)
		if err != nil {
			return err
		}

		// No monotonicity re-validation here: the deltas are taken as
		// validated at submission time, which keeps a re-run with
		// identical inputs deterministic.
		diffHobbs := sub.FinalHobbs.Decimal.Sub(baselineHobbs)
		diffTach := sub.FinalTach.Decimal.Sub(baselineTach)
		cost := diffHobbs.Mul(rate.Add(instructorRate))

		flight := &Flight{
			Date:           time.Now().UTC(),
			HobbsStart:     baselineHobbs,
			HobbsEnd:       sub.FinalHobbs.Decimal,
			TachStart:      baselineTach,
			TachEnd:        sub.FinalTach.Decimal,
			DiffHobbs:      diffHobbs,
			DiffTach:       diffTach,
			Cost:           cost,
			Rate:           rate,
			InstructorRate: instructorRate,
			Client:         sub.PilotID,
			Matricula:      sub.Matricula,
			PilotID:        sub.PilotID,
			SubmissionID:   sub.ID,
		}

		// Roll component hours forward; record the results on the flight
		// so a later cancellation can restore them exactly.
		components, err := tx.Components(ctx, sub.Matricula)
		if err != nil {
			return fmt.Errorf("load components: %w", err)
		}
		for _, c := range components {
			hours := RollForward(c.Hours, diffTach)
			flight.SetComponentHours(c.Type, hours)
			if err := tx.UpdateComponentHours(ctx, c.ID, hours); err != nil {
				return fmt.Errorf("update component %d: %w", c.ID, err)
			}
		}

		id, err := tx.InsertFlight(ctx, flight)
		if err != nil {
			return fmt.Errorf("insert flight: %w", err)
		}
		flightID = id

		if err := tx.UpdateAircraftCounters(ctx, sub.Matricula, sub.FinalHobbs.Decimal, sub.FinalTach.Decimal); err != nil {
			return fmt.Errorf("update aircraft counters: %w", err)
		}

		charge := ledger.Entry{
			ID:       uuid.NewString(),
			PilotID:  sub.PilotID,
			Amount:   cost.Neg(),
			Kind:     ledger.KindCharge,
			FlightID: &flightID,
		}
		if err := tx.AppendEntry(ctx, charge); err != nil {
			return fmt.Errorf("append charge: %w", err)
		}

		sub.Status = StatusCompletado
		sub.FlightID = &flightID
		if err := tx.SaveSubmission(ctx, sub); err != nil {
			return fmt.Errorf("save submission: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.Log.Info("flight approved",
		zap.Int64("submission_id", submissionID),
		zap.Int64("flight_id", flightID))

	// Notifications run after commit, best-effort. Their failure must
	// never roll back the ledger update.
	if s.Dispatcher != nil {
		s.Dispatcher.Dispatch(Event{
			Type:         EventFlightApproved,
			SubmissionID: submissionID,
			FlightID:     flightID,
		})
	}
	return flightID, nil
}

// resolveBaseline returns the counters the new flight starts from: the
// finals of the latest prior flight, or the aircraft's current meters when
// no flight exists yet.
func resolveBaseline(ctx context.Context, tx Store, aircraft *Aircraft) (hobbs, tach decimal.Decimal, err error) {
	prev, err := tx.LatestFlight(ctx, aircraft.Matricula)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("resolve baseline: %w", err)
	}
	if prev != nil {
		return prev.HobbsEnd, prev.TachEnd, nil
	}
	return aircraft.Hobbs, aircraft.Tach, nil
}

func missingFinals(sub *Submission) []string {
	var missing []string
	if !sub.FinalHobbs.Valid {
		missing = append(missing, "hobbs_final")
	}
	if !sub.FinalTach.Valid {
		missing = append(missing, "tach_final")
	}
	return missing
}
