/*
goal.go - Goal state evaluation

PURPOSE:
  Evaluates an owner's monthly revenue goal for a reference date:
  disabled -> enabled(target, resetDay) -> in_progress | completed.
  The active period is recomputed on every evaluation; crossing a period
  boundary archives nothing, the previous cycle's result is simply gone.
*/
package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// GoalState is the evaluated state of a goal.
type GoalState string

const (
	GoalDisabled   GoalState = "disabled"
	GoalInProgress GoalState = "in_progress"
	GoalCompleted  GoalState = "completed"
)

// GoalStatus is the read-side result of evaluating a goal.
type GoalStatus struct {
	State         GoalState
	TargetValue   decimal.Decimal
	CurrentValue  decimal.Decimal
	Period        Period
	DaysRemaining int
}

// PaymentSource lists an owner's payments. The sqlite store implements it.
type PaymentSource interface {
	ListPayments(ctx context.Context, ownerID OwnerID) ([]Payment, error)
}

// Tracker evaluates goals against stored payments.
type Tracker struct {
	payments     PaymentSource
	installments InstallmentSource
}

func NewTracker(payments PaymentSource, installments InstallmentSource) *Tracker {
	return &Tracker{payments: payments, installments: installments}
}

// Evaluate computes the goal status as of ref. Disabled goals return
// GoalDisabled with zero values and no period.
func (t *Tracker) Evaluate(ctx context.Context, goal Goal, ref time.Time) (GoalStatus, error) {
	if !goal.Enabled {
		return GoalStatus{State: GoalDisabled}, nil
	}

	period, err := ComputePeriod(goal.ResetDay, ref)
	if err != nil {
		return GoalStatus{}, err
	}

	payments, err := t.payments.ListPayments(ctx, goal.OwnerID)
	if err != nil {
		return GoalStatus{}, err
	}

	current, err := SumPaidInPeriod(ctx, payments, period, t.installments)
	if err != nil {
		return GoalStatus{}, err
	}

	state := GoalInProgress
	if current.GreaterThanOrEqual(goal.TargetValue) {
		state = GoalCompleted
	}

	return GoalStatus{
		State:         state,
		TargetValue:   goal.TargetValue,
		CurrentValue:  current,
		Period:        period,
		DaysRemaining: period.DaysRemaining(ref),
	}, nil
}
