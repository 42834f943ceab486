package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anesta/shift-engine/billing"
)

// =============================================================================
// TEST SETUP - In-memory fakes
// =============================================================================

type fakePayments struct {
	payments     []billing.Payment
	installments map[billing.PaymentID][]billing.Installment
}

func (f *fakePayments) ListPayments(_ context.Context, ownerID billing.OwnerID) ([]billing.Payment, error) {
	var result []billing.Payment
	for _, p := range f.payments {
		if p.OwnerID == ownerID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakePayments) ListInstallments(_ context.Context, paymentID billing.PaymentID) ([]billing.Installment, error) {
	return f.installments[paymentID], nil
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func paidPayment(owner, id, value string, paidAt time.Time) billing.Payment {
	return billing.Payment{
		ID:      billing.PaymentID(id),
		OwnerID: billing.OwnerID(owner),
		Value:   money(value),
		Status:  billing.StatusPaid,
		PaidAt:  paidAt,
	}
}

// =============================================================================
// GOAL EVALUATION
// =============================================================================

func TestTracker_DisabledGoal(t *testing.T) {
	tracker := billing.NewTracker(&fakePayments{}, &fakePayments{})

	status, err := tracker.Evaluate(context.Background(), billing.Goal{OwnerID: "dr-ana"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, billing.GoalDisabled, status.State)
	assert.True(t, status.CurrentValue.IsZero())
}

func TestTracker_InProgressAndCompleted(t *testing.T) {
	// GIVEN: A 10000 target with 6000 received inside the window
	// WHEN: Evaluating, then receiving another 4000
	// THEN: in_progress first, completed once current >= target

	ref := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
	fake := &fakePayments{payments: []billing.Payment{
		paidPayment("dr-ana", "p-1", "6000.00", time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)),
	}}
	tracker := billing.NewTracker(fake, fake)

	goal := billing.Goal{
		OwnerID:     "dr-ana",
		Enabled:     true,
		TargetValue: money("10000.00"),
		ResetDay:    1,
	}

	status, err := tracker.Evaluate(context.Background(), goal, ref)
	require.NoError(t, err)
	assert.Equal(t, billing.GoalInProgress, status.State)
	assert.True(t, status.CurrentValue.Equal(money("6000.00")))

	fake.payments = append(fake.payments,
		paidPayment("dr-ana", "p-2", "4000.00", time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC)))

	status, err = tracker.Evaluate(context.Background(), goal, ref)
	require.NoError(t, err)
	assert.Equal(t, billing.GoalCompleted, status.State)
	assert.True(t, status.CurrentValue.Equal(money("10000.00")))
}

func TestTracker_IgnoresPaymentsOutsidePeriod(t *testing.T) {
	ref := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
	fake := &fakePayments{payments: []billing.Payment{
		paidPayment("dr-ana", "p-old", "5000.00", time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC)),
		paidPayment("dr-ana", "p-now", "1000.00", time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)),
		paidPayment("dr-bruno", "p-other", "9000.00", time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)),
	}}
	tracker := billing.NewTracker(fake, fake)

	status, err := tracker.Evaluate(context.Background(), billing.Goal{
		OwnerID: "dr-ana", Enabled: true, TargetValue: money("10000.00"), ResetDay: 1,
	}, ref)
	require.NoError(t, err)
	assert.True(t, status.CurrentValue.Equal(money("1000.00")),
		"only dr-ana's in-window payment counts")
}

func TestTracker_PendingPayments_NotCounted(t *testing.T) {
	ref := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
	pending := paidPayment("dr-ana", "p-1", "5000.00", time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC))
	pending.Status = billing.StatusPending

	fake := &fakePayments{payments: []billing.Payment{pending}}
	tracker := billing.NewTracker(fake, fake)

	status, err := tracker.Evaluate(context.Background(), billing.Goal{
		OwnerID: "dr-ana", Enabled: true, TargetValue: money("10000.00"), ResetDay: 1,
	}, ref)
	require.NoError(t, err)
	assert.True(t, status.CurrentValue.IsZero())
}

// =============================================================================
// INSTALLMENT PLANS
// =============================================================================

func TestTracker_InstallmentPlan_CountsReceivedPartsOnly(t *testing.T) {
	// GIVEN: A 3000 plan in 3 parts; parts 1 and 2 received in March,
	//        part 3 still open; the parent carries its own PaidAt
	// WHEN: Evaluating a March window
	// THEN: 2000 counts; the parent's date and value are ignored

	ref := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

	plan := paidPayment("dr-ana", "plan-1", "3000.00", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	plan.Installments = true

	fake := &fakePayments{
		payments: []billing.Payment{plan},
		installments: map[billing.PaymentID][]billing.Installment{
			"plan-1": {
				{ID: "i-1", PaymentID: "plan-1", Number: 1, Value: money("1000.00"),
					Received: true, ReceivedAt: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)},
				{ID: "i-2", PaymentID: "plan-1", Number: 2, Value: money("1000.00"),
					Received: true, ReceivedAt: time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)},
				{ID: "i-3", PaymentID: "plan-1", Number: 3, Value: money("1000.00")},
			},
		},
	}
	tracker := billing.NewTracker(fake, fake)

	status, err := tracker.Evaluate(context.Background(), billing.Goal{
		OwnerID: "dr-ana", Enabled: true, TargetValue: money("10000.00"), ResetDay: 1,
	}, ref)
	require.NoError(t, err)
	assert.True(t, status.CurrentValue.Equal(money("2000.00")))
}

func TestTracker_InstallmentReceivedOutsideWindow_NotCounted(t *testing.T) {
	ref := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

	plan := paidPayment("dr-ana", "plan-1", "2000.00", time.Time{})
	plan.Installments = true

	fake := &fakePayments{
		payments: []billing.Payment{plan},
		installments: map[billing.PaymentID][]billing.Installment{
			"plan-1": {
				{ID: "i-1", PaymentID: "plan-1", Number: 1, Value: money("1000.00"),
					Received: true, ReceivedAt: time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)},
				{ID: "i-2", PaymentID: "plan-1", Number: 2, Value: money("1000.00"),
					Received: true, ReceivedAt: time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC)},
			},
		},
	}
	tracker := billing.NewTracker(fake, fake)

	status, err := tracker.Evaluate(context.Background(), billing.Goal{
		OwnerID: "dr-ana", Enabled: true, TargetValue: money("10000.00"), ResetDay: 1,
	}, ref)
	require.NoError(t, err)
	assert.True(t, status.CurrentValue.IsZero())
}
