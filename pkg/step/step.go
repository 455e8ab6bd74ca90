// Package step implements the pipeline's units of work: risk assessment,
// payment capture, and confirmation-message generation. Each step reports
// business outcomes through a StepResult and surfaces an error only when its
// collaborator is unrecoverably broken.
package step

import (
	"context"
	"time"

	"github.com/jzx17/orderflow/pkg/order"
)

// RiskScorer is an external collaborator producing a risk assessment for an
// order. Its unavailability fails closed to approve with medium risk; it is
// never allowed to silently reject a legitimate order.
type RiskScorer interface {
	Score(ctx context.Context, o order.Order) (order.RiskAssessment, error)
}

// CardCharger is an external collaborator charging a payment card. A decline
// is a business outcome (Success false), not an error.
type CardCharger interface {
	Charge(ctx context.Context, orderID string, amount float64) (order.PaymentOutcome, error)
}

// AdviceGenerator is an external collaborator turning a terminal outcome into
// a customer-facing message. The pipeline never surfaces its failures; a
// deterministic template fallback applies instead.
type AdviceGenerator interface {
	Generate(ctx context.Context, out order.Outcome) (order.ConfirmationMessage, error)
}

// withAttemptTimeout bounds one attempt. A zero timeout leaves ctx untouched.
func withAttemptTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
