/*
handlers.go - HTTP handlers for the flight ledger API

PURPOSE:
  Thin HTTP layer over the domain services. Handlers decode requests,
  call the service, and encode the response; all business rules live in
  the flightops and ledger packages.

ERROR CONTRACT:
  - Approve/Cancel return HTTP 200 with a structured OperationResult,
    so the admin UI can show the outcome inline without status handling.
  - Finance and submission operations map domain errors to status codes:
      ErrNotFound                          -> 404
      ErrAlreadyApproved, ErrInvalidState  -> 409
      ErrIncompleteData, ErrCounterRegression -> 400

SEE ALSO:
  - flightops/approval.go: flight approval transaction
  - flightops/finance.go: deposit and fuel approval
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/clubaereo/bitacora/flightops"
	"github.com/clubaereo/bitacora/ledger"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	store       flightops.TxStore
	submissions *flightops.SubmissionService
	approvals   *flightops.ApprovalService
	finance     *flightops.FinanceService
	ledger      *ledger.Ledger
	log         *zap.Logger
}

// NewHandler wires the services over a shared transactional store.
func NewHandler(store flightops.TxStore, approvals *flightops.ApprovalService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		store:       store,
		submissions: flightops.NewSubmissionService(store, log),
		approvals:   approvals,
		finance:     flightops.NewFinanceService(store, log),
		ledger:      ledger.New(store),
		log:         log,
	}
}

// =============================================================================
// SUBMISSIONS
// =============================================================================

func (h *Handler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	var req CreateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PilotID == "" || req.Matricula == "" {
		writeError(w, http.StatusBadRequest, "pilot_id and matricula are required")
		return
	}

	sub := flightops.Submission{
		PilotID:   req.PilotID,
		Matricula: req.Matricula,
		Copilot:   req.Copilot,
		Remarks:   req.Remarks,
		Route:     req.Route,
	}
	var err error
	if sub.FinalHobbs, err = parseOptionalDecimal(req.FinalHobbs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid final_hobbs")
		return
	}
	if sub.FinalTach, err = parseOptionalDecimal(req.FinalTach); err != nil {
		writeError(w, http.StatusBadRequest, "invalid final_tach")
		return
	}

	if err := h.submissions.Create(r.Context(), &sub); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubmissionDTO(sub))
}

func (h *Handler) FinalizeSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req FinalizeSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	finalHobbs, err := decimal.NewFromString(req.FinalHobbs)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid final_hobbs")
		return
	}
	finalTach, err := decimal.NewFromString(req.FinalTach)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid final_tach")
		return
	}

	if err := h.submissions.Finalize(r.Context(), id, finalHobbs, finalTach); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PendingSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.store.PendingSubmissions(r.Context())
	if err != nil {
		h.writeInternalError(w, err)
		return
	}
	dtos := make([]SubmissionDTO, 0, len(subs))
	for _, s := range subs {
		dtos = append(dtos, toSubmissionDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	sub, err := h.store.Submission(r.Context(), id)
	if err != nil {
		h.writeInternalError(w, err)
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "submission not found")
		return
	}
	writeJSON(w, http.StatusOK, toSubmissionDTO(*sub))
}

// =============================================================================
// FLIGHT OPERATIONS
// =============================================================================

// ApproveSubmission runs the approval transaction. The outcome is always a
// 200 with OperationResult; failures carry the reason in the error field.
func (h *Handler) ApproveSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ApproveSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rate")
		return
	}
	instructorRate := decimal.Zero
	if req.InstructorRate != "" {
		if instructorRate, err = decimal.NewFromString(req.InstructorRate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid instructor_rate")
			return
		}
	}

	flightID, err := h.approvals.Approve(r.Context(), id, rate, instructorRate)
	if err != nil {
		writeJSON(w, http.StatusOK, OperationResult{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, OperationResult{Success: true, FlightID: &flightID})
}

func (h *Handler) CancelSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req CancelSubmissionRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if err := h.approvals.Cancel(r.Context(), id, req.Reason); err != nil {
		writeJSON(w, http.StatusOK, OperationResult{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, OperationResult{Success: true})
}

// =============================================================================
// AIRCRAFT
// =============================================================================

func (h *Handler) ListAircraft(w http.ResponseWriter, r *http.Request) {
	aircraft, err := h.store.ListAircraft(r.Context())
	if err != nil {
		h.writeInternalError(w, err)
		return
	}
	dtos := make([]AircraftDTO, 0, len(aircraft))
	for _, a := range aircraft {
		dtos = append(dtos, AircraftDTO{
			Matricula: a.Matricula,
			Hobbs:     a.Hobbs.String(),
			Tach:      a.Tach.String(),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetAircraft(w http.ResponseWriter, r *http.Request) {
	matricula := chi.URLParam(r, "matricula")
	a, err := h.store.Aircraft(r.Context(), matricula)
	if err != nil {
		h.writeInternalError(w, err)
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "aircraft not found")
		return
	}
	components, err := h.store.Components(r.Context(), matricula)
	if err != nil {
		h.writeInternalError(w, err)
		return
	}
	dto := AircraftDTO{
		Matricula: a.Matricula,
		Hobbs:     a.Hobbs.String(),
		Tach:      a.Tach.String(),
	}
	for _, c := range components {
		dto.Components = append(dto.Components, toComponentDTO(c))
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) AircraftFlights(w http.ResponseWriter, r *http.Request) {
	matricula := chi.URLParam(r, "matricula")
	flights, err := h.store.FlightsByAircraft(r.Context(), matricula)
	if err != nil {
		h.writeInternalError(w, err)
		return
	}
	dtos := make([]FlightDTO, 0, len(flights))
	for _, f := range flights {
		dtos = append(dtos, toFlightDTO(f))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpdateCounters is the admin correction for aircraft counters, used when
// maintenance resets a gauge or a historical value was recorded wrong.
func (h *Handler) UpdateCounters(w http.ResponseWriter, r *http.Request) {
	matricula := chi.URLParam(r, "matricula")
	var req UpdateCountersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	hobbs, err := decimal.NewFromString(req.Hobbs)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hobbs")
		return
	}
	tach, err := decimal.NewFromString(req.Tach)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tach")
		return
	}

	a, err := h.store.Aircraft(r.Context(), matricula)
	if err != nil {
		h.writeInternalError(w, err)
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "aircraft not found")
		return
	}
	if err := h.store.UpdateAircraftCounters(r.Context(), matricula, hobbs, tach); err != nil {
		h.writeInternalError(w, err)
		return
	}
	h.log.Info("aircraft counters updated by admin",
		zap.String("matricula", matricula),
		zap.String("hobbs", hobbs.String()),
		zap.String("tach", tach.String()))
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// FINANCE
// =============================================================================

func (h *Handler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	var req CreateDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "amount must be a positive number")
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if req.PilotID == "" {
		writeError(w, http.StatusBadRequest, "pilot_id is required")
		return
	}

	d := flightops.Deposit{
		PilotID: req.PilotID,
		Amount:  amount,
		Date:    date,
		Status:  flightops.FinancePendiente,
	}
	if err := h.store.SaveDeposit(r.Context(), &d); err != nil {
		h.writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": d.ID})
}

func (h *Handler) ApproveDeposit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.finance.ApproveDeposit(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RejectDeposit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.finance.RejectDeposit(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateFuelLog(w http.ResponseWriter, r *http.Request) {
	var req CreateFuelLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "amount must be a positive number")
		return
	}
	liters, err := decimal.NewFromString(req.Liters)
	if err != nil || !liters.IsPositive() {
		writeError(w, http.StatusBadRequest, "liters must be a positive number")
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if req.PilotID == "" {
		writeError(w, http.StatusBadRequest, "pilot_id is required")
		return
	}

	f := flightops.FuelLog{
		PilotID: req.PilotID,
		Amount:  amount,
		Liters:  liters,
		Date:    date,
		Status:  flightops.FinancePendiente,
	}
	if err := h.store.SaveFuelLog(r.Context(), &f); err != nil {
		h.writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": f.ID})
}

func (h *Handler) ApproveFuelLog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.finance.ApproveFuel(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RejectFuelLog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.finance.RejectFuel(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PILOT ACCOUNT
// =============================================================================

func (h *Handler) PilotBalance(w http.ResponseWriter, r *http.Request) {
	pilotID := chi.URLParam(r, "id")
	balance, err := h.ledger.Balance(r.Context(), pilotID)
	if err != nil {
		h.writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(balance))
}

func (h *Handler) PilotStatement(w http.ResponseWriter, r *http.Request) {
	pilotID := chi.URLParam(r, "id")
	entries, err := h.ledger.Statement(r.Context(), pilotID)
	if err != nil {
		h.writeInternalError(w, err)
		return
	}
	dtos := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, toEntryDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func parseOptionalDecimal(s *string) (decimal.NullDecimal, error) {
	if s == nil || *s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// writeDomainError maps domain sentinels onto HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, flightops.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, flightops.ErrAlreadyApproved), errors.Is(err, flightops.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, flightops.ErrIncompleteData), errors.Is(err, flightops.ErrCounterRegression):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.writeInternalError(w, err)
	}
}

func (h *Handler) writeInternalError(w http.ResponseWriter, err error) {
	h.log.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already sent; nothing useful left to do.
		return
	}
}
