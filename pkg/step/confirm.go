package step

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jzx17/orderflow/pkg/order"
	"github.com/jzx17/orderflow/pkg/retry"
	"github.com/jzx17/orderflow/pkg/types"
)

// DefaultConfirmationTimeout bounds one advice-generation attempt
const DefaultConfirmationTimeout = 30 * time.Second

// ConfirmationStep produces the customer message for a terminal outcome.
// By contract it cannot fail: the advice collaborator is retried lightly and
// the deterministic template fallback covers everything else.
type ConfirmationStep struct {
	advice   AdviceGenerator
	executor *retry.Executor
	timeout  time.Duration
	logger   *slog.Logger
}

// NewConfirmation creates a confirmation step. Without an advice generator it
// renders templates directly.
func NewConfirmation(opts ...ConfirmationOption) *ConfirmationStep {
	s := &ConfirmationStep{
		timeout: DefaultConfirmationTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.executor == nil {
		// light retry: the fallback makes aggressive retrying pointless
		policy, _ := retry.NewExponentialBackoff(3, time.Second,
			retry.WithMaxInterval(10*time.Second))
		s.executor = retry.NewExecutor(policy)
	}

	return s
}

// Execute generates the confirmation message for out. The result is always a
// success; collaborator problems degrade to the template fallback.
func (s *ConfirmationStep) Execute(ctx context.Context, out order.Outcome) types.StepResult[order.ConfirmationMessage] {
	if s.advice == nil {
		return types.Success(TemplateMessage(out))
	}

	res, attempts, err := retry.Execute(s.executor, ctx, "confirmation",
		func(ctx context.Context) (types.StepResult[order.ConfirmationMessage], error) {
			attemptCtx, cancel := withAttemptTimeout(ctx, s.timeout)
			defer cancel()

			msg, genErr := s.advice.Generate(attemptCtx, out)
			if genErr != nil {
				return types.Failure[order.ConfirmationMessage](
					fmt.Sprintf("advice generation failed: %v", genErr)), nil
			}
			if msg.Subject == "" && msg.Body == "" {
				return types.Failure[order.ConfirmationMessage]("advice generator returned empty message"), nil
			}
			return types.Success(msg), nil
		})

	if err != nil || !res.OK() {
		s.log().Warn("advice collaborator failed, falling back to template",
			"order_id", out.OrderID, "status", out.Status.String(),
			"attempts", attempts, "error", err, "reason", res.Reason())
		return types.Success(TemplateMessage(out))
	}

	return res
}

func (s *ConfirmationStep) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

// TemplateMessage renders the deterministic fallback message for a terminal
// status.
func TemplateMessage(out order.Outcome) order.ConfirmationMessage {
	switch out.Status {
	case order.StatusApproved:
		return order.ConfirmationMessage{
			Subject: "Order Confirmed: " + out.OrderID,
			Body:    "Your order has been confirmed and is being processed.",
			Tone:    order.TonePositive,
		}
	case order.StatusRejectedRisk:
		return order.ConfirmationMessage{
			Subject: "Order Review Required: " + out.OrderID,
			Body:    "Your order requires additional security verification.",
			Tone:    order.ToneApologetic,
		}
	case order.StatusRejectedPayment:
		return order.ConfirmationMessage{
			Subject: "Payment Failed: " + out.OrderID,
			Body:    "We couldn't process your payment. Please try again.",
			Tone:    order.ToneApologetic,
		}
	case order.StatusCancelled:
		return order.ConfirmationMessage{
			Subject: "Order Cancelled: " + out.OrderID,
			Body:    "Your order was cancelled before processing completed.",
			Tone:    order.ToneNeutral,
		}
	default:
		return order.ConfirmationMessage{
			Subject: "Order Status: " + out.OrderID,
			Body:    "We're reviewing your order.",
			Tone:    order.ToneNeutral,
		}
	}
}

// ConfirmationOption is a configuration option for the confirmation step
type ConfirmationOption func(*ConfirmationStep)

// WithAdviceGenerator delegates message generation to an external
// collaborator
func WithAdviceGenerator(advice AdviceGenerator) ConfirmationOption {
	return func(s *ConfirmationStep) {
		s.advice = advice
	}
}

// WithConfirmationExecutor sets the retry executor for the collaborator
func WithConfirmationExecutor(executor *retry.Executor) ConfirmationOption {
	return func(s *ConfirmationStep) {
		s.executor = executor
	}
}

// WithConfirmationTimeout bounds one advice-generation attempt
func WithConfirmationTimeout(d time.Duration) ConfirmationOption {
	return func(s *ConfirmationStep) {
		s.timeout = d
	}
}

// WithConfirmationLogger sets the logger
func WithConfirmationLogger(logger *slog.Logger) ConfirmationOption {
	return func(s *ConfirmationStep) {
		s.logger = logger
	}
}
