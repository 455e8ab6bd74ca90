package step

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/orderflow/pkg/inject"
	"github.com/jzx17/orderflow/pkg/order"
)

type brokenCharger struct {
	err error
}

func (c *brokenCharger) Charge(ctx context.Context, orderID string, amount float64) (order.PaymentOutcome, error) {
	return order.PaymentOutcome{}, c.err
}

func TestPaymentCapture_Amount(t *testing.T) {
	s := NewPaymentCapture(nil)

	assert.InDelta(t, 30.0, s.Amount(testOrder(t, "ORDER-1", 3)), 0.001)
	assert.InDelta(t, 50.0, s.Amount(testOrder(t, "ORDER-1", 2, 3)), 0.001)

	custom := NewPaymentCapture(nil, WithUnitPrice(2.5))
	assert.InDelta(t, 10.0, custom.Amount(testOrder(t, "ORDER-1", 4)), 0.001)
}

func TestPaymentCapture_SuccessfulCharge(t *testing.T) {
	injector, err := inject.New(0.0)
	require.NoError(t, err)
	s := NewPaymentCapture(NewFakeCardCharger(injector))

	res, err := s.Execute(context.Background(), testOrder(t, "ORDER-1", 3))
	require.NoError(t, err)
	require.True(t, res.OK())

	outcome := res.Value()
	assert.True(t, outcome.Success)
	assert.True(t, strings.HasPrefix(outcome.ChargeReference, "CHG-"),
		"charge reference %q should have CHG- prefix", outcome.ChargeReference)
	assert.InDelta(t, 30.0, outcome.AmountCharged, 0.001)
	assert.Contains(t, outcome.Message, "attempt 1")
}

func TestPaymentCapture_DeclineIsRetryableFailure(t *testing.T) {
	injector, err := inject.New(1.0, inject.WithSeed(1))
	require.NoError(t, err)
	s := NewPaymentCapture(NewFakeCardCharger(injector))

	res, err := s.Execute(context.Background(), testOrder(t, "ORDER-1", 3))
	require.NoError(t, err, "a decline is a business failure, not an error")
	assert.False(t, res.OK())
	assert.Contains(t, res.Reason(), "card declined (attempt 1)")
}

func TestPaymentCapture_DeclineMessageTracksAttempts(t *testing.T) {
	injector := inject.NewScripted(true, true, false)
	s := NewPaymentCapture(NewFakeCardCharger(injector))
	ord := testOrder(t, "ORDER-1", 3)

	for want := 1; want <= 2; want++ {
		res, err := s.Execute(context.Background(), ord)
		require.NoError(t, err)
		require.False(t, res.OK())
		assert.Contains(t, res.Reason(), "attempt")
	}

	res, err := s.Execute(context.Background(), ord)
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Contains(t, res.Value().Message, "attempt 3")
	assert.EqualValues(t, 3, injector.Attempts())
}

func TestPaymentCapture_BrokenChargerPropagates(t *testing.T) {
	broken := errors.New("gateway credentials missing")
	s := NewPaymentCapture(&brokenCharger{err: broken})

	_, err := s.Execute(context.Background(), testOrder(t, "ORDER-1", 1))
	assert.ErrorIs(t, err, broken)
}

func TestPaymentCapture_CancelledOrderPropagates(t *testing.T) {
	injector, err := inject.New(0.0)
	require.NoError(t, err)
	s := NewPaymentCapture(NewFakeCardCharger(injector))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Execute(ctx, testOrder(t, "ORDER-1", 1))
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 0, injector.Attempts(), "no charge attempt after cancellation")
}

func TestFakeCardCharger_CustomChargeRef(t *testing.T) {
	injector, err := inject.New(0.0)
	require.NoError(t, err)
	charger := NewFakeCardCharger(injector, WithChargeRef(func() string { return "CHG-FIXED" }))

	outcome, err := charger.Charge(context.Background(), "ORDER-1", 10)
	require.NoError(t, err)
	assert.Equal(t, "CHG-FIXED", outcome.ChargeReference)
}
