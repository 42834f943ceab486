/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Structural validation (required fields, date formats) happens in the
  handlers; domain rules (overlap, recurrence bounds) live in the
  schedule and billing packages.
*/
package api

import (
	"time"

	"github.com/anesta/shift-engine/billing"
	"github.com/anesta/shift-engine/schedule"
)

// =============================================================================
// SHIFT TYPES
// =============================================================================

// ShiftDTO represents a shift in API responses.
type ShiftDTO struct {
	ID              string `json:"id"`
	OwnerID         string `json:"owner_id"`
	Title           string `json:"title"`
	StartAt         string `json:"start_at"`
	EndAt           string `json:"end_at"`
	Kind            string `json:"kind"`
	HospitalName    string `json:"hospital_name,omitempty"`
	IsRecurring     bool   `json:"is_recurring,omitempty"`
	RecurrenceRule  string `json:"recurrence_rule,omitempty"`
	RecurrenceEndAt string `json:"recurrence_end_at,omitempty"`
	ParentShiftID   string `json:"parent_shift_id,omitempty"`
	PaymentStatus   string `json:"payment_status"`
	PaymentValue    string `json:"payment_value"`
	PaymentDate     string `json:"payment_date,omitempty"`
}

func toShiftDTO(s schedule.Shift) ShiftDTO {
	dto := ShiftDTO{
		ID:            string(s.ID),
		OwnerID:       string(s.OwnerID),
		Title:         s.Title,
		StartAt:       s.StartAt.UTC().Format(time.RFC3339),
		EndAt:         s.EndAt.UTC().Format(time.RFC3339),
		Kind:          string(s.Kind),
		HospitalName:  s.HospitalName,
		IsRecurring:   s.IsRecurring,
		ParentShiftID: string(s.ParentShiftID),
		PaymentStatus: string(s.PaymentStatus),
		PaymentValue:  s.PaymentValue.String(),
	}
	if s.IsRecurring {
		dto.RecurrenceRule = string(s.RecurrenceRule)
		dto.RecurrenceEndAt = s.RecurrenceEndAt.UTC().Format(time.RFC3339)
	}
	if !s.PaymentDate.IsZero() {
		dto.PaymentDate = s.PaymentDate.UTC().Format(time.RFC3339)
	}
	return dto
}

func toShiftDTOs(shifts []schedule.Shift) []ShiftDTO {
	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = toShiftDTO(s)
	}
	return dtos
}

// CreateShiftRequest is the request to create a shift or recurring series.
type CreateShiftRequest struct {
	OwnerID         string `json:"owner_id"`
	Title           string `json:"title"`
	StartAt         string `json:"start_at"`
	EndAt           string `json:"end_at"`
	Kind            string `json:"kind"`
	HospitalName    string `json:"hospital_name,omitempty"`
	IsRecurring     bool   `json:"is_recurring,omitempty"`
	RecurrenceRule  string `json:"recurrence_rule,omitempty"`
	RecurrenceEndAt string `json:"recurrence_end_at,omitempty"`
	PaymentValue    string `json:"payment_value,omitempty"`
}

// UpdateShiftRequest is a partial shift edit. Omitted fields are unchanged.
type UpdateShiftRequest struct {
	Title        *string `json:"title,omitempty"`
	StartAt      *string `json:"start_at,omitempty"`
	EndAt        *string `json:"end_at,omitempty"`
	Kind         *string `json:"kind,omitempty"`
	HospitalName *string `json:"hospital_name,omitempty"`
}

// UpdatePaymentRequest mutates a shift's financial attributes only.
type UpdatePaymentRequest struct {
	Status *string `json:"status,omitempty"`
	Value  *string `json:"value,omitempty"`
	Date   *string `json:"date,omitempty"`
}

// =============================================================================
// AGENDA TYPES
// =============================================================================

// AgendaCellDTO is one calendar grid cell with shifts grouped by time block.
type AgendaCellDTO struct {
	Date           string                `json:"date"`
	IsCurrentMonth bool                  `json:"is_current_month"`
	Blocks         map[string][]ShiftDTO `json:"blocks,omitempty"`
}

func toAgendaDTOs(cells []schedule.AgendaCell) []AgendaCellDTO {
	dtos := make([]AgendaCellDTO, len(cells))
	for i, cell := range cells {
		dto := AgendaCellDTO{
			Date:           cell.Date.Format("2006-01-02"),
			IsCurrentMonth: cell.IsCurrentMonth,
		}
		if len(cell.Blocks) > 0 {
			dto.Blocks = make(map[string][]ShiftDTO, len(cell.Blocks))
			for block, shifts := range cell.Blocks {
				dto.Blocks[string(block)] = toShiftDTOs(shifts)
			}
		}
		dtos[i] = dto
	}
	return dtos
}

// =============================================================================
// BILLING TYPES
// =============================================================================

// PaymentDTO represents a standalone payment in API responses.
type PaymentDTO struct {
	ID           string `json:"id"`
	OwnerID      string `json:"owner_id"`
	Description  string `json:"description,omitempty"`
	Value        string `json:"value"`
	Status       string `json:"status"`
	PaidAt       string `json:"paid_at,omitempty"`
	Installments bool   `json:"installments"`
}

func toPaymentDTO(p billing.Payment) PaymentDTO {
	dto := PaymentDTO{
		ID:           string(p.ID),
		OwnerID:      string(p.OwnerID),
		Description:  p.Description,
		Value:        p.Value.String(),
		Status:       string(p.Status),
		Installments: p.Installments,
	}
	if !p.PaidAt.IsZero() {
		dto.PaidAt = p.PaidAt.UTC().Format(time.RFC3339)
	}
	return dto
}

// CreatePaymentRequest records a payment, optionally split into a plan of
// equal installments when Installments > 1.
type CreatePaymentRequest struct {
	OwnerID      string `json:"owner_id"`
	Description  string `json:"description,omitempty"`
	Value        string `json:"value"`
	Status       string `json:"status,omitempty"`
	PaidAt       string `json:"paid_at,omitempty"`
	Installments int    `json:"installments,omitempty"`
}

// InstallmentDTO represents one installment of a plan.
type InstallmentDTO struct {
	ID         string `json:"id"`
	PaymentID  string `json:"payment_id"`
	Number     int    `json:"number"`
	Value      string `json:"value"`
	Received   bool   `json:"received"`
	ReceivedAt string `json:"received_at,omitempty"`
}

func toInstallmentDTO(inst billing.Installment) InstallmentDTO {
	dto := InstallmentDTO{
		ID:        string(inst.ID),
		PaymentID: string(inst.PaymentID),
		Number:    inst.Number,
		Value:     inst.Value.String(),
		Received:  inst.Received,
	}
	if !inst.ReceivedAt.IsZero() {
		dto.ReceivedAt = inst.ReceivedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

// ReceiveInstallmentRequest marks an installment received. ReceivedAt
// defaults to now when omitted.
type ReceiveInstallmentRequest struct {
	ReceivedAt string `json:"received_at,omitempty"`
}

// =============================================================================
// GOAL TYPES
// =============================================================================

// GoalStatusDTO is the evaluated goal state for an owner.
type GoalStatusDTO struct {
	State         string `json:"state"`
	TargetValue   string `json:"target_value,omitempty"`
	CurrentValue  string `json:"current_value,omitempty"`
	PeriodStart   string `json:"period_start,omitempty"`
	PeriodEnd     string `json:"period_end,omitempty"`
	DaysRemaining int    `json:"days_remaining"`
}

func toGoalStatusDTO(st billing.GoalStatus) GoalStatusDTO {
	dto := GoalStatusDTO{
		State:         string(st.State),
		DaysRemaining: st.DaysRemaining,
	}
	if st.State == billing.GoalDisabled {
		return dto
	}
	dto.TargetValue = st.TargetValue.String()
	dto.CurrentValue = st.CurrentValue.String()
	dto.PeriodStart = st.Period.Start.UTC().Format(time.RFC3339Nano)
	dto.PeriodEnd = st.Period.End.UTC().Format(time.RFC3339Nano)
	return dto
}

// SaveGoalRequest configures an owner's monthly goal.
type SaveGoalRequest struct {
	Enabled     bool   `json:"enabled"`
	TargetValue string `json:"target_value"`
	ResetDay    int    `json:"reset_day"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
