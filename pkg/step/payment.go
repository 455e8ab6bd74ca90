package step

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jzx17/orderflow/pkg/inject"
	"github.com/jzx17/orderflow/pkg/order"
	"github.com/jzx17/orderflow/pkg/types"
)

const (
	// DefaultUnitPrice is the reference price per item
	DefaultUnitPrice = 10.0

	// DefaultPaymentTimeout bounds one charge attempt
	DefaultPaymentTimeout = 5 * time.Second
)

// PaymentCaptureStep charges the order amount through a CardCharger. The
// amount is computed deterministically from order contents; a decline is a
// retryable business failure.
type PaymentCaptureStep struct {
	charger   CardCharger
	unitPrice float64
	timeout   time.Duration
	logger    *slog.Logger
}

// NewPaymentCapture creates a payment capture step
func NewPaymentCapture(charger CardCharger, opts ...PaymentOption) *PaymentCaptureStep {
	s := &PaymentCaptureStep{
		charger:   charger,
		unitPrice: DefaultUnitPrice,
		timeout:   DefaultPaymentTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Amount computes the charge amount: sum of quantity times unit price
func (s *PaymentCaptureStep) Amount(ord order.Order) float64 {
	total := 0.0
	for _, item := range ord.Items {
		total += float64(item.Quantity) * s.unitPrice
	}
	return total
}

// Execute attempts one charge. Declines and attempt timeouts come back as
// failures feeding the retry policy; anything else from the charger is
// unrecoverable.
func (s *PaymentCaptureStep) Execute(ctx context.Context, ord order.Order) (types.StepResult[order.PaymentOutcome], error) {
	if err := ctx.Err(); err != nil {
		return types.Failure[order.PaymentOutcome]("payment interrupted"), err
	}

	attemptCtx, cancel := withAttemptTimeout(ctx, s.timeout)
	defer cancel()

	amount := s.Amount(ord)
	outcome, err := s.charger.Charge(attemptCtx, ord.ID, amount)
	switch {
	case err == nil && outcome.Success:
		return types.Success(outcome), nil

	case err == nil:
		s.log().Debug("charge declined", "order_id", ord.ID, "message", outcome.Message)
		return types.Failure[order.PaymentOutcome](outcome.Message), nil

	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return types.Failure[order.PaymentOutcome]("payment attempt timed out"), nil

	case ctx.Err() != nil:
		return types.Failure[order.PaymentOutcome]("payment interrupted"), ctx.Err()

	default:
		return types.Failure[order.PaymentOutcome](fmt.Sprintf("payment failed: %v", err)), err
	}
}

func (s *PaymentCaptureStep) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

// PaymentOption is a configuration option for the payment capture step
type PaymentOption func(*PaymentCaptureStep)

// WithUnitPrice sets the per-item price
func WithUnitPrice(price float64) PaymentOption {
	return func(s *PaymentCaptureStep) {
		s.unitPrice = price
	}
}

// WithPaymentTimeout bounds one charge attempt
func WithPaymentTimeout(d time.Duration) PaymentOption {
	return func(s *PaymentCaptureStep) {
		s.timeout = d
	}
}

// WithPaymentLogger sets the logger
func WithPaymentLogger(logger *slog.Logger) PaymentOption {
	return func(s *PaymentCaptureStep) {
		s.logger = logger
	}
}

// FakeCardCharger simulates an unreliable payment provider using a failure
// injector. One instance is owned by one order-processing call; the injector
// attempt counter doubles as the charge attempt number.
type FakeCardCharger struct {
	injector     inject.Injector
	newChargeRef func() string
}

// NewFakeCardCharger creates a fake charger driven by injector
func NewFakeCardCharger(injector inject.Injector, opts ...FakeChargerOption) *FakeCardCharger {
	c := &FakeCardCharger{
		injector:     injector,
		newChargeRef: defaultChargeRef,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Charge simulates one charge attempt
func (c *FakeCardCharger) Charge(ctx context.Context, orderID string, amount float64) (order.PaymentOutcome, error) {
	if err := ctx.Err(); err != nil {
		return order.PaymentOutcome{}, err
	}

	failed := c.injector.ShouldFail()
	attempt := c.injector.Attempts()

	if failed {
		return order.PaymentOutcome{
			Success: false,
			Message: fmt.Sprintf("card declined (attempt %d)", attempt),
		}, nil
	}

	return order.PaymentOutcome{
		Success:         true,
		ChargeReference: c.newChargeRef(),
		Message:         fmt.Sprintf("charge succeeded on attempt %d", attempt),
		AmountCharged:   amount,
	}, nil
}

// Attempts returns the number of charge attempts so far
func (c *FakeCardCharger) Attempts() int64 {
	return c.injector.Attempts()
}

func defaultChargeRef() string {
	return "CHG-" + strings.ToUpper(uuid.NewString()[:8])
}

// FakeChargerOption is a configuration option for the fake charger
type FakeChargerOption func(*FakeCardCharger)

// WithChargeRef sets the charge reference generator
func WithChargeRef(fn func() string) FakeChargerOption {
	return func(c *FakeCardCharger) {
		c.newChargeRef = fn
	}
}
