/*
payments.go - In-period payment aggregation

PURPOSE:
  Sums what an owner actually received inside a goal period. Plain
  payments count by their own PaidAt; installment plans count each
  received installment by its ReceivedAt, never by the parent's date.
*/
package billing

import (
	"context"

	"github.com/shopspring/decimal"
)

// InstallmentSource looks up the installments of a payment plan. The
// sqlite store implements it; tests use an in-memory fake.
type InstallmentSource interface {
	ListInstallments(ctx context.Context, paymentID PaymentID) ([]Installment, error)
}

// SumPaidInPeriod returns the total received inside the period.
//
// Non-installment payments contribute Value when Status is paid and
// PaidAt falls in the window. For installment plans the parent's PaidAt
// is ignored: each installment contributes its own Value only when it
// was received inside the window.
func SumPaidInPeriod(ctx context.Context, payments []Payment, period Period, installments InstallmentSource) (decimal.Decimal, error) {
	total := decimal.Zero

	for _, p := range payments {
		if !p.Installments {
			if p.Status == StatusPaid && period.Contains(p.PaidAt) {
				total = total.Add(p.Value)
			}
			continue
		}

		parts, err := installments.ListInstallments(ctx, p.ID)
		if err != nil {
			return decimal.Zero, err
		}
		for _, inst := range parts {
			if inst.Received && period.Contains(inst.ReceivedAt) {
				total = total.Add(inst.Value)
			}
		}
	}

	return total, nil
}
