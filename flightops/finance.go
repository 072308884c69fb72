/*
finance.go - Deposit and fuel-credit approval

PURPOSE:
  Pilots report cash deposits and fuel purchases; an admin approves or
  rejects them. Approval flips the record to APROBADO and posts exactly one
  ledger entry. Rejection deletes the pending record outright - no
  soft-delete, and nothing ever reaches the ledger.

FUEL CUTOFF:
  Mid-operation the club changed its billing policy: fuel purchases only
  credit the pilot's account from FuelCreditCutoff onward. Older purchases
  still flip to APROBADO (the record matters for bookkeeping) but post no
  entry. The cutoff instant is fixed; see types.go.

  Unlike the flight operations, these are single-aggregate-plus-ledger
  writes and propagate errors directly rather than wrapping them in a
  result structure.
*/
package flightops

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clubaereo/bitacora/ledger"
)

// FinanceService approves and rejects pending deposits and fuel logs.
type FinanceService struct {
	Store TxStore
	Log   *zap.Logger
}

func NewFinanceService(store TxStore, log *zap.Logger) *FinanceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FinanceService{Store: store, Log: log}
}

// ApproveDeposit flips deposit id to APROBADO and credits the pilot.
func (s *FinanceService) ApproveDeposit(ctx context.Context, id int64) error {
	return s.Store.WithTx(ctx, func(tx Store) error {
		d, err := tx.Deposit(ctx, id)
		if err != nil {
			return fmt.Errorf("load deposit: %w", err)
		}
		if d == nil {
			return &NotFoundError{Kind: "deposit", ID: fmt.Sprint(id)}
		}
		if d.Status == FinanceAprobado {
			return &AlreadyApprovedError{Kind: "deposit", ID: id}
		}

		if err := tx.MarkDepositApproved(ctx, id); err != nil {
			return fmt.Errorf("mark deposit approved: %w", err)
		}
		return tx.AppendEntry(ctx, ledger.Entry{
			ID:      uuid.NewString(),
			PilotID: d.PilotID,
			Amount:  d.Amount,
			Kind:    ledger.KindDeposit,
		})
	})
}

// ApproveFuel flips fuel log id to APROBADO. Purchases dated on/after
// FuelCreditCutoff additionally credit the pilot; older ones do not.
func (s *FinanceService) ApproveFuel(ctx context.Context, id int64) error {
	return s.Store.WithTx(ctx, func(tx Store) error {
		f, err := tx.FuelLog(ctx, id)
		if err != nil {
			return fmt.Errorf("load fuel log: %w", err)
		}
		if f == nil {
			return &NotFoundError{Kind: "fuel log", ID: fmt.Sprint(id)}
		}
		if f.Status == FinanceAprobado {
			return &AlreadyApprovedError{Kind: "fuel log", ID: id}
		}

		if err := tx.MarkFuelApproved(ctx, id); err != nil {
			return fmt.Errorf("mark fuel approved: %w", err)
		}

		if f.Date.Before(FuelCreditCutoff) {
			// Pre-cutoff purchase: approved for the record, no credit.
			s.Log.Info("fuel purchase predates credit cutoff, no ledger entry",
				zap.Int64("fuel_log_id", id),
				zap.Time("purchase_date", f.Date))
			return nil
		}

		return tx.AppendEntry(ctx, ledger.Entry{
			ID:      uuid.NewString(),
			PilotID: f.PilotID,
			Amount:  f.Amount,
			Kind:    ledger.KindFuelCredit,
		})
	})
}

// RejectDeposit deletes a pending deposit. Approved deposits cannot be
// rejected; their ledger entry already exists.
func (s *FinanceService) RejectDeposit(ctx context.Context, id int64) error {
	return s.Store.WithTx(ctx, func(tx Store) error {
		d, err := tx.Deposit(ctx, id)
		if err != nil {
			return fmt.Errorf("load deposit: %w", err)
		}
		if d == nil {
			return &NotFoundError{Kind: "deposit", ID: fmt.Sprint(id)}
		}
		if d.Status == FinanceAprobado {
			return &AlreadyApprovedError{Kind: "deposit", ID: id}
		}
		return tx.DeleteDeposit(ctx, id)
	})
}

// RejectFuel deletes a pending fuel log.
func (s *FinanceService) RejectFuel(ctx context.Context, id int64) error {
	return s.Store.WithTx(ctx, func(tx Store) error {
		f, err := tx.FuelLog(ctx, id)
		if err != nil {
			return fmt.Errorf("load fuel log: %w", err)
		}
		if f == nil {
			return &NotFoundError{Kind: "fuel log", ID: fmt.Sprint(id)}
		}
		if f.Status == FinanceAprobado {
			return &AlreadyApprovedError{Kind: "fuel log", ID: id}
		}
		return tx.DeleteFuelLog(ctx, id)
	})
}
