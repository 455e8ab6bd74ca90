package step

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/orderflow/pkg/order"
	"github.com/jzx17/orderflow/pkg/retry"
)

type stubAdvice struct {
	msg      order.ConfirmationMessage
	err      error
	failures int32 // fail this many calls before succeeding
	calls    int32
}

func (s *stubAdvice) Generate(ctx context.Context, out order.Outcome) (order.ConfirmationMessage, error) {
	call := atomic.AddInt32(&s.calls, 1)
	if s.err != nil && call <= s.failures {
		return order.ConfirmationMessage{}, s.err
	}
	if s.err != nil && s.failures == 0 {
		return order.ConfirmationMessage{}, s.err
	}
	return s.msg, nil
}

func riskRejectedOutcome(t *testing.T) order.Outcome {
	t.Helper()
	out, err := order.NewRiskRejected("ORDER-1", order.RiskAssessment{
		Approved: false, RiskScore: 0.95, RiskLevel: order.RiskHigh,
	})
	require.NoError(t, err)
	return out
}

func approvedOutcome(t *testing.T) order.Outcome {
	t.Helper()
	out, err := order.NewApproved("ORDER-1",
		order.RiskAssessment{Approved: true, RiskScore: 0.1, RiskLevel: order.RiskLow},
		order.PaymentOutcome{Success: true, ChargeReference: "CHG-1", AmountCharged: 30})
	require.NoError(t, err)
	return out
}

func lightExecutor(t *testing.T, maxAttempts int) *retry.Executor {
	t.Helper()
	policy, err := retry.NewFixedDelay(maxAttempts, time.Millisecond)
	require.NoError(t, err)
	return retry.NewExecutor(policy)
}

func TestTemplateMessage(t *testing.T) {
	tests := []struct {
		name        string
		outcome     order.Outcome
		wantSubject string
		wantTone    order.Tone
	}{
		{
			name:        "approved",
			outcome:     approvedOutcome(t),
			wantSubject: "Order Confirmed: ORDER-1",
			wantTone:    order.TonePositive,
		},
		{
			name:        "risk rejected",
			outcome:     riskRejectedOutcome(t),
			wantSubject: "Order Review Required: ORDER-1",
			wantTone:    order.ToneApologetic,
		},
		{
			name: "payment rejected",
			outcome: func() order.Outcome {
				out, err := order.NewPaymentRejected("ORDER-1",
					order.RiskAssessment{Approved: true, RiskScore: 0.1, RiskLevel: order.RiskLow},
					order.PaymentOutcome{Success: false, Message: "card declined"})
				require.NoError(t, err)
				return out
			}(),
			wantSubject: "Payment Failed: ORDER-1",
			wantTone:    order.ToneApologetic,
		},
		{
			name:        "cancelled",
			outcome:     order.NewCancelled("ORDER-1", nil),
			wantSubject: "Order Cancelled: ORDER-1",
			wantTone:    order.ToneNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := TemplateMessage(tt.outcome)
			assert.Equal(t, tt.wantSubject, msg.Subject)
			assert.Equal(t, tt.wantTone, msg.Tone)
			assert.NotEmpty(t, msg.Body)
		})
	}
}

func TestConfirmation_TemplatesWithoutGenerator(t *testing.T) {
	s := NewConfirmation()

	res := s.Execute(context.Background(), riskRejectedOutcome(t))
	require.True(t, res.OK(), "confirmation can never fail")
	assert.Equal(t, "Order Review Required: ORDER-1", res.Value().Subject)
}

func TestConfirmation_UsesGeneratorResult(t *testing.T) {
	want := order.ConfirmationMessage{
		Subject: "Thanks!",
		Body:    "Your order is on its way.",
		Tone:    order.TonePositive,
	}
	s := NewConfirmation(
		WithAdviceGenerator(&stubAdvice{msg: want}),
		WithConfirmationExecutor(lightExecutor(t, 3)))

	res := s.Execute(context.Background(), approvedOutcome(t))
	require.True(t, res.OK())
	assert.Equal(t, want, res.Value())
}

func TestConfirmation_RetriesGeneratorThenSucceeds(t *testing.T) {
	want := order.ConfirmationMessage{Subject: "Thanks!", Body: "b", Tone: order.TonePositive}
	advice := &stubAdvice{msg: want, err: errors.New("transient"), failures: 2}
	s := NewConfirmation(
		WithAdviceGenerator(advice),
		WithConfirmationExecutor(lightExecutor(t, 3)))

	res := s.Execute(context.Background(), approvedOutcome(t))
	require.True(t, res.OK())
	assert.Equal(t, want, res.Value())
	assert.EqualValues(t, 3, atomic.LoadInt32(&advice.calls))
}

func TestConfirmation_FallsBackWhenGeneratorExhausted(t *testing.T) {
	advice := &stubAdvice{err: errors.New("model overloaded")}
	s := NewConfirmation(
		WithAdviceGenerator(advice),
		WithConfirmationExecutor(lightExecutor(t, 3)))

	res := s.Execute(context.Background(), approvedOutcome(t))
	require.True(t, res.OK(), "fallback keeps the contract: confirmation never fails")
	assert.Equal(t, "Order Confirmed: ORDER-1", res.Value().Subject)
	assert.EqualValues(t, 3, atomic.LoadInt32(&advice.calls))
}

func TestConfirmation_FallsBackOnMalformedMessage(t *testing.T) {
	advice := &stubAdvice{msg: order.ConfirmationMessage{}}
	s := NewConfirmation(
		WithAdviceGenerator(advice),
		WithConfirmationExecutor(lightExecutor(t, 2)))

	res := s.Execute(context.Background(), riskRejectedOutcome(t))
	require.True(t, res.OK())
	assert.Equal(t, "Order Review Required: ORDER-1", res.Value().Subject)
}

func TestConfirmation_FallsBackOnCancelledContext(t *testing.T) {
	advice := &stubAdvice{msg: order.ConfirmationMessage{Subject: "s", Body: "b"}}
	s := NewConfirmation(
		WithAdviceGenerator(advice),
		WithConfirmationExecutor(lightExecutor(t, 2)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := s.Execute(ctx, riskRejectedOutcome(t))
	require.True(t, res.OK())
	assert.Equal(t, "Order Review Required: ORDER-1", res.Value().Subject)
}
