/*
submission.go - Pilot-facing submission lifecycle

PURPOSE:
  Creation and finalization of flight submissions, and the monotonicity
  guard. Reported finals must be at or above the aircraft's current meters
  HERE, at submission time; the approval orchestrator deliberately does not
  re-check (see approval.go).
*/
package flightops

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SubmissionService creates and finalizes pilot submissions.
type SubmissionService struct {
	Store TxStore
	Log   *zap.Logger
}

func NewSubmissionService(store TxStore, log *zap.Logger) *SubmissionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SubmissionService{Store: store, Log: log}
}

// Create registers a new submission in PENDIENTE. Finals are optional at
// creation; when present they are validated against the aircraft's current
// meters.
func (s *SubmissionService) Create(ctx context.Context, sub *Submission) error {
	return s.Store.WithTx(ctx, func(tx Store) error {
		aircraft, err := tx.Aircraft(ctx, sub.Matricula)
		if err != nil {
			return fmt.Errorf("load aircraft: %w", err)
		}
		if aircraft == nil {
			return &NotFoundError{Kind: "aircraft", ID: sub.Matricula}
		}
		if err := checkMonotonic(sub, aircraft); err != nil {
			return err
		}

		sub.Status = StatusPendiente
		return tx.SaveSubmission(ctx, sub)
	})
}

// Finalize records the finals and moves PENDIENTE -> ESPERANDO_APROBACION.
func (s *SubmissionService) Finalize(ctx context.Context, id int64, finalHobbs, finalTach decimal.Decimal) error {
	return s.Store.WithTx(ctx, func(tx Store) error {
		sub, err := tx.Submission(ctx, id)
		if err != nil {
			return fmt.Errorf("load submission: %w", err)
		}
		if sub == nil {
			return &NotFoundError{Kind: "submission", ID: fmt.Sprint(id)}
		}
		if sub.Status != StatusPendiente {
			return &InvalidStateError{SubmissionID: id, Status: sub.Status, Operation: "finalize"}
		}

		sub.FinalHobbs = decimal.NullDecimal{Decimal: finalHobbs, Valid: true}
		sub.FinalTach = decimal.NullDecimal{Decimal: finalTach, Valid: true}

		aircraft, err := tx.Aircraft(ctx, sub.Matricula)
		if err != nil {
			return fmt.Errorf("load aircraft: %w", err)
		}
		if aircraft == nil {
			return &NotFoundError{Kind: "aircraft", ID: sub.Matricula}
		}
		if err := checkMonotonic(sub, aircraft); err != nil {
			return err
		}

		sub.Status = StatusEsperandoAprobacion
		return tx.SaveSubmission(ctx, sub)
	})
}

func checkMonotonic(sub *Submission, aircraft *Aircraft) error {
	if sub.FinalHobbs.Valid && sub.FinalHobbs.Decimal.LessThan(aircraft.Hobbs) {
		return fmt.Errorf("hobbs %s below aircraft %s: %w",
			sub.FinalHobbs.Decimal, aircraft.Hobbs, ErrCounterRegression)
	}
	if sub.FinalTach.Valid && sub.FinalTach.Decimal.LessThan(aircraft.Tach) {
		return fmt.Errorf("tach %s below aircraft %s: %w",
			sub.FinalTach.Decimal, aircraft.Tach, ErrCounterRegression)
	}
	return nil
}
