/*
handlers.go - HTTP API handlers for the shift engine

PURPOSE:
  Exposes the scheduling and billing engines via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Shifts:
    POST   /api/shifts                     Create a shift or recurring series
    GET    /api/shifts/{id}                Get one shift
    PUT    /api/shifts/{id}?scope=         Edit one shift or the whole series
    DELETE /api/shifts/{id}?scope=         Delete one shift or the whole series
    PUT    /api/shifts/{id}/payment        Update financial attributes

  Owners:
    GET    /api/owners/{id}/shifts         List shifts, optional from/to range
    GET    /api/owners/{id}/agenda?month=  42-cell monthly agenda
    GET    /api/owners/{id}/goal           Evaluated goal status
    PUT    /api/owners/{id}/goal           Configure the goal

  Billing:
    POST   /api/payments                   Record a payment or installment plan
    GET    /api/payments/{id}/installments List a plan's installments
    POST   /api/installments/{id}/receive  Mark one installment received

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input shape
  3. Call domain logic (scheduler, tracker)
  4. Serialize response
  5. Map domain errors to HTTP status

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 409: Overlap conflict
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anesta/shift-engine/billing"
	"github.com/anesta/shift-engine/schedule"
	"github.com/anesta/shift-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Scheduler *schedule.Scheduler
	Tracker   *billing.Tracker

	// Clock is the request-time source, overridable in tests.
	Clock func() time.Time
}

// NewHandler creates a handler wired to the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:     store,
		Scheduler: schedule.NewScheduler(store),
		Tracker:   billing.NewTracker(store, store),
		Clock:     time.Now,
	}
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// CreateShift creates a shift, materializing the series when recurring.
// POST /api/shifts
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	shift := schedule.Shift{
		OwnerID:      schedule.OwnerID(req.OwnerID),
		Title:        req.Title,
		Kind:         schedule.ShiftKind(req.Kind),
		HospitalName: req.HospitalName,
		IsRecurring:  req.IsRecurring,
	}

	var err error
	if shift.StartAt, err = parseTimestamp(req.StartAt); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_at (use RFC3339)", err)
		return
	}
	if shift.EndAt, err = parseTimestamp(req.EndAt); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_at (use RFC3339)", err)
		return
	}
	if req.IsRecurring {
		shift.RecurrenceRule = schedule.RecurrenceRule(req.RecurrenceRule)
		if shift.RecurrenceEndAt, err = parseTimestamp(req.RecurrenceEndAt); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid recurrence_end_at (use RFC3339)", err)
			return
		}
	}
	if req.PaymentValue != "" {
		if shift.PaymentValue, err = decimal.NewFromString(req.PaymentValue); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid payment_value", err)
			return
		}
	}

	created, err := h.Scheduler.CreateShift(r.Context(), shift, h.Clock().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShiftDTOs(created))
}

// GetShift returns one shift by id.
// GET /api/shifts/{id}
func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	id := schedule.ShiftID(chi.URLParam(r, "id"))

	shift, err := h.Scheduler.GetShift(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(shift))
}

// UpdateShift edits a shift. ?scope=series propagates to the whole
// recurring series; the default scope edits only the addressed record.
// PUT /api/shifts/{id}?scope=series|single
func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	id := schedule.ShiftID(chi.URLParam(r, "id"))

	var req UpdateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	patch := schedule.ShiftPatch{
		Title:        req.Title,
		HospitalName: req.HospitalName,
	}
	if req.Kind != nil {
		kind := schedule.ShiftKind(*req.Kind)
		patch.Kind = &kind
	}
	if req.StartAt != nil {
		t, err := parseTimestamp(*req.StartAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_at (use RFC3339)", err)
			return
		}
		patch.StartAt = &t
	}
	if req.EndAt != nil {
		t, err := parseTimestamp(*req.EndAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_at (use RFC3339)", err)
			return
		}
		patch.EndAt = &t
	}

	updated, err := h.Scheduler.UpdateShift(r.Context(), id, patch, parseScope(r), h.Clock().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTOs(updated))
}

// DeleteShift removes a shift or its whole series.
// DELETE /api/shifts/{id}?scope=series|single
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id := schedule.ShiftID(chi.URLParam(r, "id"))

	if err := h.Scheduler.DeleteShift(r.Context(), id, parseScope(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateShiftPayment mutates the financial attributes of one shift.
// PUT /api/shifts/{id}/payment
func (h *Handler) UpdateShiftPayment(w http.ResponseWriter, r *http.Request) {
	id := schedule.ShiftID(chi.URLParam(r, "id"))

	var req UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var patch schedule.PaymentPatch
	if req.Status != nil {
		status := schedule.PaymentStatus(*req.Status)
		switch status {
		case schedule.PaymentPending, schedule.PaymentInvoiced, schedule.PaymentPaid:
		default:
			writeError(w, http.StatusBadRequest, "Invalid payment status", nil)
			return
		}
		patch.Status = &status
	}
	if req.Value != nil {
		value, err := decimal.NewFromString(*req.Value)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid payment value", err)
			return
		}
		patch.Value = &value
	}
	if req.Date != nil {
		t, err := parseTimestamp(*req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use RFC3339)", err)
			return
		}
		patch.PaidAt = &t
	}

	updated, err := h.Scheduler.UpdatePayment(r.Context(), id, patch, h.Clock().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(updated))
}

// =============================================================================
// OWNER HANDLERS
// =============================================================================

// ListShifts returns an owner's shifts, optionally bounded by from/to.
// GET /api/owners/{id}/shifts?from=...&to=...
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	ownerID := schedule.OwnerID(chi.URLParam(r, "id"))

	var from, to time.Time
	var err error
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = parseTimestamp(raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from (use RFC3339)", err)
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = parseTimestamp(raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to (use RFC3339)", err)
			return
		}
	}

	shifts, err := h.Scheduler.ListShifts(r.Context(), ownerID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTOs(shifts))
}

// GetAgenda returns the 42-cell agenda for the requested month.
// GET /api/owners/{id}/agenda?month=YYYY-MM
func (h *Handler) GetAgenda(w http.ResponseWriter, r *http.Request) {
	ownerID := schedule.OwnerID(chi.URLParam(r, "id"))

	monthParam := r.URL.Query().Get("month")
	month := h.Clock().UTC()
	if monthParam != "" {
		var err error
		if month, err = time.Parse("2006-01", monthParam); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month format (use YYYY-MM)", err)
			return
		}
	}

	cells, err := h.Scheduler.Agenda(r.Context(), ownerID, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build agenda", err)
		return
	}
	writeJSON(w, http.StatusOK, toAgendaDTOs(cells))
}

// GetGoal evaluates the owner's goal as of now (or ?at= for tests).
// GET /api/owners/{id}/goal
func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	ownerID := billing.OwnerID(chi.URLParam(r, "id"))
	ctx := r.Context()

	ref := h.Clock().UTC()
	if raw := r.URL.Query().Get("at"); raw != "" {
		var err error
		if ref, err = parseTimestamp(raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid at (use RFC3339)", err)
			return
		}
	}

	goal, err := h.Store.GetGoal(ctx, ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load goal", err)
		return
	}

	status, err := h.Tracker.Evaluate(ctx, goal, ref)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalStatusDTO(status))
}

// SaveGoal configures the owner's monthly goal.
// PUT /api/owners/{id}/goal
func (h *Handler) SaveGoal(w http.ResponseWriter, r *http.Request) {
	ownerID := billing.OwnerID(chi.URLParam(r, "id"))

	var req SaveGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ResetDay < 1 || req.ResetDay > 31 {
		writeError(w, http.StatusBadRequest, "reset_day must be between 1 and 31", nil)
		return
	}
	target := decimal.Zero
	if req.TargetValue != "" {
		var err error
		if target, err = decimal.NewFromString(req.TargetValue); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid target_value", err)
			return
		}
	}
	if req.Enabled && !target.IsPositive() {
		writeError(w, http.StatusBadRequest, "target_value must be positive for an enabled goal", nil)
		return
	}

	goal := billing.Goal{
		OwnerID:     ownerID,
		Enabled:     req.Enabled,
		TargetValue: target,
		ResetDay:    req.ResetDay,
	}
	if err := h.Store.SaveGoal(r.Context(), goal); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save goal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// BILLING HANDLERS
// =============================================================================

// CreatePayment records a payment; installments > 1 creates a plan with
// that many equal parts.
// POST /api/payments
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.OwnerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required", nil)
		return
	}
	value, err := decimal.NewFromString(req.Value)
	if err != nil || !value.IsPositive() {
		writeError(w, http.StatusBadRequest, "value must be a positive decimal", err)
		return
	}

	status := billing.StatusPending
	if req.Status != "" {
		status = billing.PaymentStatus(req.Status)
		if status != billing.StatusPending && status != billing.StatusPaid {
			writeError(w, http.StatusBadRequest, "status must be pending or paid", nil)
			return
		}
	}

	payment := billing.Payment{
		ID:           billing.PaymentID(uuid.NewString()),
		OwnerID:      billing.OwnerID(req.OwnerID),
		Description:  req.Description,
		Value:        value,
		Status:       status,
		Installments: req.Installments > 1,
		CreatedAt:    h.Clock().UTC(),
	}
	if req.PaidAt != "" {
		if payment.PaidAt, err = parseTimestamp(req.PaidAt); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid paid_at (use RFC3339)", err)
			return
		}
	}

	// One atomic write: a plan never lands without its parts.
	var parts []billing.Installment
	if payment.Installments {
		parts = splitInstallments(payment, req.Installments)
	}
	if err := h.Store.CreatePaymentWithInstallments(r.Context(), payment, parts); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPaymentDTO(payment))
}

// ListPayments returns an owner's payments in creation order.
// GET /api/payments?owner_id=...
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	ownerID := billing.OwnerID(r.URL.Query().Get("owner_id"))
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required", nil)
		return
	}

	payments, err := h.Store.ListPayments(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payments", err)
		return
	}
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// splitInstallments divides the payment value into n equal parts, pushing
// the rounding remainder onto the last one so the parts sum exactly.
func splitInstallments(p billing.Payment, n int) []billing.Installment {
	each := p.Value.DivRound(decimal.NewFromInt(int64(n)), 2)
	parts := make([]billing.Installment, n)
	for i := 0; i < n; i++ {
		value := each
		if i == n-1 {
			value = p.Value.Sub(each.Mul(decimal.NewFromInt(int64(n - 1))))
		}
		parts[i] = billing.Installment{
			ID:        billing.InstallmentID(uuid.NewString()),
			PaymentID: p.ID,
			Number:    i + 1,
			Value:     value,
		}
	}
	return parts
}

// ListInstallments returns the installments of one payment plan.
// GET /api/payments/{id}/installments
func (h *Handler) ListInstallments(w http.ResponseWriter, r *http.Request) {
	id := billing.PaymentID(chi.URLParam(r, "id"))
	ctx := r.Context()

	if _, err := h.Store.GetPayment(ctx, id); err != nil {
		writeDomainError(w, err)
		return
	}

	parts, err := h.Store.ListInstallments(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list installments", err)
		return
	}
	dtos := make([]InstallmentDTO, len(parts))
	for i, inst := range parts {
		dtos[i] = toInstallmentDTO(inst)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ReceiveInstallment marks one installment received.
// POST /api/installments/{id}/receive
func (h *Handler) ReceiveInstallment(w http.ResponseWriter, r *http.Request) {
	id := billing.InstallmentID(chi.URLParam(r, "id"))

	var req ReceiveInstallmentRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	receivedAt := h.Clock().UTC()
	if req.ReceivedAt != "" {
		var err error
		if receivedAt, err = parseTimestamp(req.ReceivedAt); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid received_at (use RFC3339)", err)
			return
		}
	}

	if err := h.Store.MarkInstallmentReceived(r.Context(), id, receivedAt); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func parseScope(r *http.Request) schedule.Scope {
	if r.URL.Query().Get("scope") == string(schedule.ScopeSeries) {
		return schedule.ScopeSeries
	}
	return schedule.ScopeSingle
}

func parseTimestamp(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// writeDomainError maps domain errors onto HTTP status codes. Conflict is
// checked before the generic client-error bucket so it keeps its 409.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case schedule.IsNotFound(err), errors.Is(err, billing.ErrNotFound):
		writeError(w, http.StatusNotFound, "Record not found", err)
	case errors.Is(err, schedule.ErrConflict):
		writeError(w, http.StatusConflict, "Shift overlaps an existing shift", err)
	case schedule.IsClientError(err), errors.Is(err, billing.ErrInvalidResetDay):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
