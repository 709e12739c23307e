package etorder

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"takeout/internal/app/pkg/errorx"
)

var allStatuses = []Status{
	StatusPendingPayment,
	StatusToBeConfirmed,
	StatusConfirmed,
	StatusDeliveryInProgress,
	StatusCompleted,
	StatusCancelled,
}

func TestPlanLegalTransitions(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		action Action
		from   Status
		pay    PayStatus
		to     Status
		toPay  PayStatus
		refund bool
	}{
		{ActionConfirmPaid, StatusPendingPayment, PayStatusUnpaid, StatusToBeConfirmed, PayStatusPaid, false},
		{ActionAccept, StatusToBeConfirmed, PayStatusPaid, StatusConfirmed, PayStatusPaid, false},
		{ActionReject, StatusToBeConfirmed, PayStatusPaid, StatusCancelled, PayStatusRefunded, true},
		{ActionStaffCancel, StatusConfirmed, PayStatusPaid, StatusCancelled, PayStatusRefunded, true},
		{ActionStaffCancel, StatusPendingPayment, PayStatusUnpaid, StatusCancelled, PayStatusUnpaid, false},
		{ActionUserCancel, StatusPendingPayment, PayStatusUnpaid, StatusCancelled, PayStatusUnpaid, false},
		{ActionUserCancel, StatusToBeConfirmed, PayStatusPaid, StatusCancelled, PayStatusRefunded, true},
		{ActionDispatch, StatusConfirmed, PayStatusPaid, StatusDeliveryInProgress, PayStatusPaid, false},
		{ActionDeliver, StatusDeliveryInProgress, PayStatusPaid, StatusCompleted, PayStatusPaid, false},
		{ActionTimeoutCancel, StatusPendingPayment, PayStatusUnpaid, StatusCancelled, PayStatusUnpaid, false},
		{ActionTimeoutComplete, StatusDeliveryInProgress, PayStatusPaid, StatusCompleted, PayStatusPaid, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.action)+"/"+tc.from.String(), func(t *testing.T) {
			o := &Order{ID: 1, Status: tc.from, PayStatus: tc.pay}
			c, err := o.Plan(tc.action, "out of stock", now)
			require.NoError(t, err)
			assert.Equal(t, tc.from, c.FromStatus)
			assert.Equal(t, tc.pay, c.FromPayStatus)
			assert.Equal(t, tc.to, c.ToStatus)
			assert.Equal(t, tc.toPay, c.ToPayStatus)
			assert.Equal(t, tc.refund, c.Refund)
			if tc.to == StatusCancelled {
				require.NotNil(t, c.CancelTime)
				assert.Equal(t, now, *c.CancelTime)
			} else {
				assert.Nil(t, c.CancelTime)
			}
		})
	}
}

func TestPlanRejectsEverythingElse(t *testing.T) {
	now := time.Now()
	for action, r := range transitions {
		legal := make(map[Status]bool, len(r.from))
		for _, s := range r.from {
			legal[s] = true
		}
		for _, s := range allStatuses {
			if legal[s] {
				continue
			}
			o := &Order{ID: 1, Status: s, PayStatus: PayStatusPaid}
			_, err := o.Plan(action, "", now)
			require.Error(t, err, "%s from %s", action, s)
			if action == ActionStaffCancel && s == StatusCompleted {
				assert.ErrorIs(t, err, errorx.ErrOrderCompleted)
			} else {
				assert.ErrorIs(t, err, errorx.ErrInvalidState, "%s from %s", action, s)
			}
		}
	}
}

func TestPlanReasons(t *testing.T) {
	now := time.Now()

	o := &Order{Status: StatusToBeConfirmed, PayStatus: PayStatusPaid}
	c, err := o.Plan(ActionReject, "kitchen closed", now)
	require.NoError(t, err)
	require.NotNil(t, c.RejectionReason)
	assert.Equal(t, "kitchen closed", *c.RejectionReason)
	assert.Nil(t, c.CancelReason)

	c, err = o.Plan(ActionUserCancel, "ignored", now)
	require.NoError(t, err)
	assert.Equal(t, ReasonUserCancelled, *c.CancelReason)

	o = &Order{Status: StatusPendingPayment}
	c, err = o.Plan(ActionTimeoutCancel, "", now)
	require.NoError(t, err)
	assert.Equal(t, ReasonPaymentTimeout, *c.CancelReason)
}

func TestPlanConfirmPaidRequiresUnpaid(t *testing.T) {
	o := &Order{Status: StatusPendingPayment, PayStatus: PayStatusPaid}
	_, err := o.Plan(ActionConfirmPaid, "", time.Now())
	assert.ErrorIs(t, err, errorx.ErrInvalidState)
}

func TestPlanDeliverStampsDeliveryTime(t *testing.T) {
	now := time.Now()
	for _, action := range []Action{ActionDeliver, ActionTimeoutComplete} {
		o := &Order{Status: StatusDeliveryInProgress, PayStatus: PayStatusPaid}
		c, err := o.Plan(action, "", now)
		require.NoError(t, err)
		require.NotNil(t, c.DeliveryTime)
		assert.Equal(t, now, *c.DeliveryTime)
	}
}

func TestApply(t *testing.T) {
	now := time.Now()
	o := &Order{ID: 5, Status: StatusToBeConfirmed, PayStatus: PayStatusPaid}
	c, err := o.Plan(ActionStaffCancel, "customer called", now)
	require.NoError(t, err)

	o.Apply(c)
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Equal(t, PayStatusRefunded, o.PayStatus)
	assert.Equal(t, "customer called", o.CancelReason)
	assert.Equal(t, &now, o.CancelTime)
}

func TestSumAmount(t *testing.T) {
	lines := []*Line{
		{UnitPrice: decimal.RequireFromString("12.50"), Quantity: 2},
		{UnitPrice: decimal.RequireFromString("3.30"), Quantity: 3},
	}
	assert.True(t, decimal.RequireFromString("34.90").Equal(SumAmount(lines)))
	assert.True(t, SumAmount(nil).IsZero())
}

func TestOlderThan(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	o := &Order{OrderTime: now.Add(-16 * time.Minute)}
	assert.True(t, o.OlderThan(now, 15*time.Minute))
	o.OrderTime = now.Add(-14 * time.Minute)
	assert.False(t, o.OlderThan(now, 15*time.Minute))
}
