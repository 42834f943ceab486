package billing

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned for operations on missing payment, installment
// or goal records.
var ErrNotFound = errors.New("billing record not found")

// PaymentStore handles persistence of payments and installment plans.
type PaymentStore interface {
	PaymentSource
	InstallmentSource

	CreatePayment(ctx context.Context, p Payment) error
	GetPayment(ctx context.Context, id PaymentID) (Payment, error)
	CreateInstallments(ctx context.Context, parts []Installment) error

	// CreatePaymentWithInstallments persists a plan and its parts in one
	// atomic write. Either the payment and every installment land, or
	// nothing does.
	CreatePaymentWithInstallments(ctx context.Context, p Payment, parts []Installment) error

	// MarkInstallmentReceived flips one installment to received at the
	// given instant, or returns ErrNotFound.
	MarkInstallmentReceived(ctx context.Context, id InstallmentID, receivedAt time.Time) error
}

// GoalStore persists goal configuration. Evaluated periods are derived,
// never stored.
type GoalStore interface {
	GetGoal(ctx context.Context, ownerID OwnerID) (Goal, error)
	SaveGoal(ctx context.Context, g Goal) error
}
