/*
Package billing provides payment tracking and monthly goal-period
accounting for an anesthesiologist's practice.

PURPOSE:
  Payments record what a procedure or shift earned; installment plans
  split a payment into independently-received parts ("parcelas"). The
  goal tracker sums what was received inside a rolling monthly window
  bounded by a configurable reset day.

KEY CONCEPTS IN THIS FILE (types.go):
  - Payment: A billed value, optionally split into installments
  - Installment: One scheduled partial payment, tracked independently
  - Goal: A monthly revenue target with a reset day

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for all money, never float64
  2. Determinism: every computation takes its reference date as a
     parameter; nothing here calls time.Now()
  3. Derived periods: GoalPeriod is recomputed on every read, never stored

SEE ALSO:
  - period.go: Reset-day window arithmetic
  - payments.go: In-period aggregation
  - goal.go: Goal state evaluation
*/
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PaymentID string
type InstallmentID string
type OwnerID string

// =============================================================================
// PAYMENT - A billed value
// =============================================================================

type PaymentStatus string

const (
	StatusPending PaymentStatus = "pending"
	StatusPaid    PaymentStatus = "paid"
)

// Payment is a billed amount for a procedure or shift. When Installments
// is true the payment is a plan: its own PaidAt is ignored for period
// accounting and each installment's ReceivedAt governs instead.
type Payment struct {
	ID           PaymentID
	OwnerID      OwnerID
	Description  string
	Value        decimal.Decimal
	Status       PaymentStatus
	PaidAt       time.Time
	Installments bool
	CreatedAt    time.Time
}

// Installment is one scheduled partial payment ("parcela") of a plan.
type Installment struct {
	ID         InstallmentID
	PaymentID  PaymentID
	Number     int
	Value      decimal.Decimal
	Received   bool
	ReceivedAt time.Time
}

// =============================================================================
// GOAL - Monthly revenue target
// =============================================================================

// LastDayOfMonth is the ResetDay sentinel meaning "last day of month".
const LastDayOfMonth = 31

// Goal is an owner's monthly revenue target. Disabled goals keep their
// configuration but are not evaluated.
type Goal struct {
	OwnerID     OwnerID
	Enabled     bool
	TargetValue decimal.Decimal
	ResetDay    int // 1-31; 31 means last day of month
}
