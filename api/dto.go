/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the admin/pilot UI. These decouple the internal
  domain model from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

  Decimals travel as JSON strings to keep precision; the UI formats them.
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/clubaereo/bitacora/flightops"
	"github.com/clubaereo/bitacora/ledger"
)

// =============================================================================
// FLIGHT OPERATION RESULTS
// =============================================================================

// OperationResult is the structured outcome of the two flight operations.
// Always returned with HTTP 200; Success distinguishes outcomes, per the
// admin UI contract.
type OperationResult struct {
	Success  bool   `json:"success"`
	FlightID *int64 `json:"flight_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ApproveSubmissionRequest carries the admin-supplied rates.
type ApproveSubmissionRequest struct {
	Rate           string `json:"rate"`
	InstructorRate string `json:"instructor_rate"`
}

// CancelSubmissionRequest carries the optional cancellation reason.
type CancelSubmissionRequest struct {
	Reason string `json:"reason,omitempty"`
}

// =============================================================================
// SUBMISSIONS
// =============================================================================

// CreateSubmissionRequest is a pilot's flight report.
type CreateSubmissionRequest struct {
	PilotID    string  `json:"pilot_id"`
	Matricula  string  `json:"matricula"`
	FinalHobbs *string `json:"final_hobbs,omitempty"`
	FinalTach  *string `json:"final_tach,omitempty"`
	Copilot    string  `json:"copilot,omitempty"`
	Remarks    string  `json:"remarks,omitempty"`
	Route      string  `json:"route,omitempty"`
}

// FinalizeSubmissionRequest records the finals before admin review.
type FinalizeSubmissionRequest struct {
	FinalHobbs string `json:"final_hobbs"`
	FinalTach  string `json:"final_tach"`
}

// SubmissionDTO represents a submission in API responses.
type SubmissionDTO struct {
	ID           int64   `json:"id"`
	Status       string  `json:"status"`
	PilotID      string  `json:"pilot_id"`
	Matricula    string  `json:"matricula"`
	FinalHobbs   *string `json:"final_hobbs,omitempty"`
	FinalTach    *string `json:"final_tach,omitempty"`
	Copilot      string  `json:"copilot,omitempty"`
	Remarks      string  `json:"remarks,omitempty"`
	Route        string  `json:"route,omitempty"`
	FlightID     *int64  `json:"flight_id,omitempty"`
	CancelReason string  `json:"cancel_reason,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

func toSubmissionDTO(s flightops.Submission) SubmissionDTO {
	return SubmissionDTO{
		ID:           s.ID,
		Status:       string(s.Status),
		PilotID:      s.PilotID,
		Matricula:    s.Matricula,
		FinalHobbs:   nullDecimalString(s.FinalHobbs),
		FinalTach:    nullDecimalString(s.FinalTach),
		Copilot:      s.Copilot,
		Remarks:      s.Remarks,
		Route:        s.Route,
		FlightID:     s.FlightID,
		CancelReason: s.CancelReason,
		CreatedAt:    s.CreatedAt.Format(timeLayout),
	}
}

// =============================================================================
// AIRCRAFT AND FLIGHTS
// =============================================================================

// AircraftDTO includes the component TBO picture the maintenance view needs.
type AircraftDTO struct {
	Matricula  string         `json:"matricula"`
	Hobbs      string         `json:"hobbs"`
	Tach       string         `json:"tach"`
	Components []ComponentDTO `json:"components,omitempty"`
}

type ComponentDTO struct {
	Type      string  `json:"type"`
	Hours     *string `json:"hours"` // null when no baseline recorded
	TBOLimit  string  `json:"tbo_limit"`
	Remaining *string `json:"remaining"`
}

func toComponentDTO(c flightops.Component) ComponentDTO {
	return ComponentDTO{
		Type:      string(c.Type),
		Hours:     nullDecimalString(c.Hours),
		TBOLimit:  c.TBOLimit.String(),
		Remaining: nullDecimalString(c.Remaining()),
	}
}

type FlightDTO struct {
	ID             int64  `json:"id"`
	Date           string `json:"date"`
	HobbsStart     string `json:"hobbs_start"`
	HobbsEnd       string `json:"hobbs_end"`
	TachStart      string `json:"tach_start"`
	TachEnd        string `json:"tach_end"`
	DiffHobbs      string `json:"diff_hobbs"`
	DiffTach       string `json:"diff_tach"`
	Cost           string `json:"cost"`
	Rate           string `json:"rate"`
	InstructorRate string `json:"instructor_rate"`
	Matricula      string `json:"matricula"`
	PilotID        string `json:"pilot_id"`
	SubmissionID   int64  `json:"submission_id"`
}

func toFlightDTO(f flightops.Flight) FlightDTO {
	return FlightDTO{
		ID:             f.ID,
		Date:           f.Date.Format(timeLayout),
		HobbsStart:     f.HobbsStart.String(),
		HobbsEnd:       f.HobbsEnd.String(),
		TachStart:      f.TachStart.String(),
		TachEnd:        f.TachEnd.String(),
		DiffHobbs:      f.DiffHobbs.String(),
		DiffTach:       f.DiffTach.String(),
		Cost:           f.Cost.String(),
		Rate:           f.Rate.String(),
		InstructorRate: f.InstructorRate.String(),
		Matricula:      f.Matricula,
		PilotID:        f.PilotID,
		SubmissionID:   f.SubmissionID,
	}
}

// UpdateCountersRequest is the admin baseline correction.
type UpdateCountersRequest struct {
	Hobbs string `json:"hobbs"`
	Tach  string `json:"tach"`
}

// =============================================================================
// FINANCE
// =============================================================================

type CreateDepositRequest struct {
	PilotID string `json:"pilot_id"`
	Amount  string `json:"amount"`
	Date    string `json:"date"` // YYYY-MM-DD
}

type CreateFuelLogRequest struct {
	PilotID string `json:"pilot_id"`
	Amount  string `json:"amount"`
	Liters  string `json:"liters"`
	Date    string `json:"date"` // YYYY-MM-DD
}

// BalanceDTO is a pilot's derived account state.
type BalanceDTO struct {
	PilotID     string `json:"pilot_id"`
	Deposits    string `json:"deposits"`
	FuelCredits string `json:"fuel_credits"`
	Charges     string `json:"charges"`
	Balance     string `json:"balance"`
}

func toBalanceDTO(b ledger.Balance) BalanceDTO {
	return BalanceDTO{
		PilotID:     b.PilotID,
		Deposits:    b.Deposits.String(),
		FuelCredits: b.FuelCredits.String(),
		Charges:     b.Charges.String(),
		Balance:     b.Total.String(),
	}
}

type EntryDTO struct {
	ID        string `json:"id"`
	Amount    string `json:"amount"`
	Kind      string `json:"kind"`
	FlightID  *int64 `json:"flight_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toEntryDTO(e ledger.Entry) EntryDTO {
	return EntryDTO{
		ID:        e.ID,
		Amount:    e.Amount.String(),
		Kind:      string(e.Kind),
		FlightID:  e.FlightID,
		CreatedAt: e.CreatedAt.Format(timeLayout),
	}
}

// =============================================================================
// HELPERS
// =============================================================================

const timeLayout = "2006-01-02T15:04:05Z07:00"

func nullDecimalString(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}
