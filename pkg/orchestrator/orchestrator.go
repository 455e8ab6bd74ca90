package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jzx17/orderflow/pkg/inject"
	"github.com/jzx17/orderflow/pkg/order"
	"github.com/jzx17/orderflow/pkg/retry"
	"github.com/jzx17/orderflow/pkg/step"
	"github.com/jzx17/orderflow/pkg/types"
)

// Orchestrator runs one linear step sequence per order: risk assessment,
// payment capture, confirmation. It alone decides termination; steps never
// drive pipeline-level control flow. An orchestrator holds no per-order
// state, so independent orders may be processed concurrently through the
// same instance.
type Orchestrator struct {
	risk    *step.RiskAssessmentStep
	payment *step.PaymentCaptureStep
	confirm *step.ConfirmationStep

	riskPolicy    retry.Policy
	paymentPolicy retry.Policy

	clock  types.Clock
	logger *slog.Logger
}

// New creates an orchestrator. Defaults: rule-based risk assessment, a fake
// charger that never declines, template confirmations, risk retry
// 3 attempts / 1s initial / 10s cap, payment retry 5 attempts / 1s initial /
// 5s cap, both with coefficient 2.0.
func New(opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		clock: types.NewRealClock(),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.riskPolicy == nil {
		policy, err := retry.NewExponentialBackoff(3, time.Second,
			retry.WithMaxInterval(10*time.Second))
		if err != nil {
			return nil, err
		}
		o.riskPolicy = policy
	}
	if o.paymentPolicy == nil {
		policy, err := retry.NewExponentialBackoff(5, time.Second,
			retry.WithMaxInterval(5*time.Second))
		if err != nil {
			return nil, err
		}
		o.paymentPolicy = policy
	}

	if o.risk == nil {
		o.risk = step.NewRiskAssessment(step.WithRiskLogger(o.logger))
	}
	if o.payment == nil {
		injector, err := inject.New(0.0)
		if err != nil {
			return nil, err
		}
		o.payment = step.NewPaymentCapture(step.NewFakeCardCharger(injector),
			step.WithPaymentLogger(o.logger))
	}
	if o.confirm == nil {
		o.confirm = step.NewConfirmation(step.WithConfirmationLogger(o.logger))
	}

	return o, nil
}

// Process runs the pipeline for one order to its terminal outcome. Business
// failures, retry exhaustion, and caller cancellation are contained in the
// outcome status; a non-nil error means a collaborator was unrecoverably
// broken and no terminal outcome exists.
func (o *Orchestrator) Process(ctx context.Context, ord order.Order) (order.Outcome, error) {
	state := StateStart
	o.transition(ord.ID, &state, StateRiskPending)

	riskExec := retry.NewExecutor(o.riskPolicy,
		retry.WithClock(o.clock), retry.WithLogger(o.logger))
	riskRes, riskAttempts, err := retry.Execute(riskExec, ctx, "risk-assessment",
		func(ctx context.Context) (types.StepResult[order.RiskAssessment], error) {
			return o.risk.Execute(ctx, ord)
		})
	if err != nil {
		if isCancellation(err) {
			return o.cancelled(ctx, ord, &state, nil)
		}
		return order.Outcome{}, err
	}

	var assessment order.RiskAssessment
	if riskRes.OK() {
		assessment = riskRes.Value()
	} else {
		// risk retries exhausted: fail closed, never reject on our own error
		o.log().Warn("risk assessment exhausted retries, approving with medium risk",
			"order_id", ord.ID, "attempts", riskAttempts, "reason", riskRes.Reason())
		assessment = order.RiskAssessment{
			Approved:  true,
			RiskScore: 0.5,
			Reason:    "risk assessment unavailable, approved with medium risk",
			RiskLevel: order.RiskMedium,
		}
	}

	o.log().Info("risk assessed",
		"order_id", ord.ID,
		"approved", assessment.Approved,
		"risk_score", assessment.RiskScore,
		"risk_level", assessment.RiskLevel.String(),
		"reason", assessment.Reason)

	if !assessment.Approved {
		o.transition(ord.ID, &state, StateRiskRejected)
		out, err := order.NewRiskRejected(ord.ID, assessment)
		if err != nil {
			return order.Outcome{}, err
		}
		return o.finalize(ctx, &state, out), nil
	}
	o.transition(ord.ID, &state, StateRiskApproved)

	o.transition(ord.ID, &state, StatePaymentPending)
	payExec := retry.NewExecutor(o.paymentPolicy,
		retry.WithClock(o.clock), retry.WithLogger(o.logger))
	payRes, payAttempts, err := retry.Execute(payExec, ctx, "payment-capture",
		func(ctx context.Context) (types.StepResult[order.PaymentOutcome], error) {
			return o.payment.Execute(ctx, ord)
		})
	if err != nil {
		if isCancellation(err) {
			return o.cancelled(ctx, ord, &state, &assessment)
		}
		return order.Outcome{}, err
	}

	if !payRes.OK() {
		o.transition(ord.ID, &state, StatePaymentRejected)
		o.log().Warn("payment rejected after retries",
			"order_id", ord.ID, "attempts", payAttempts, "reason", payRes.Reason())
		out, err := order.NewPaymentRejected(ord.ID, assessment, order.PaymentOutcome{
			Success: false,
			Message: payRes.Reason(),
		})
		if err != nil {
			return order.Outcome{}, err
		}
		return o.finalize(ctx, &state, out), nil
	}
	o.transition(ord.ID, &state, StatePaymentApproved)

	payment := payRes.Value()
	o.log().Info("payment captured",
		"order_id", ord.ID,
		"charge_ref", payment.ChargeReference,
		"amount", payment.AmountCharged,
		"attempts", payAttempts)

	out, err := order.NewApproved(ord.ID, assessment, payment)
	if err != nil {
		return order.Outcome{}, err
	}
	return o.finalize(ctx, &state, out), nil
}

// ProcessAsync runs Process in its own goroutine and delivers the outcome on
// the returned channel.
func (o *Orchestrator) ProcessAsync(ctx context.Context, ord order.Order) <-chan types.Result[order.Outcome] {
	resultChan := make(chan types.Result[order.Outcome], 1)

	go func() {
		defer close(resultChan)

		start := o.clock.Now()
		out, err := o.Process(ctx, ord)
		resultChan <- types.Result[order.Outcome]{
			Value:    out,
			Error:    err,
			Duration: o.clock.Since(start),
		}
	}()

	return resultChan
}

// ProcessBatch processes independent orders concurrently, at most limit at a
// time (unlimited when limit <= 0). Outcomes are returned in input order; the
// first unrecoverable error cancels the remaining orders.
func (o *Orchestrator) ProcessBatch(ctx context.Context, orders []order.Order, limit int) ([]order.Outcome, error) {
	outcomes := make([]order.Outcome, len(orders))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, ord := range orders {
		g.Go(func() error {
			out, err := o.Process(gctx, ord)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// finalize routes a terminal outcome through the confirmation step. Every
// terminal path, success or rejection, produces a customer message.
func (o *Orchestrator) finalize(ctx context.Context, state *State, out order.Outcome) order.Outcome {
	o.transition(out.OrderID, state, StateConfirming)

	msg := o.confirm.Execute(ctx, out).Value()
	out = out.WithConfirmation(msg)

	o.transition(out.OrderID, state, StateDone)
	o.log().Info("order resolved",
		"order_id", out.OrderID, "status", out.Status.String())
	return out
}

// cancelled resolves a caller-cancelled order. Pending retries are dropped;
// the advice collaborator still gets a chance to produce a cancellation
// message on a detached context.
func (o *Orchestrator) cancelled(ctx context.Context, ord order.Order, state *State, risk *order.RiskAssessment) (order.Outcome, error) {
	o.log().Info("order cancelled by caller", "order_id", ord.ID, "state", state.String())

	out := order.NewCancelled(ord.ID, risk)
	return o.finalize(context.WithoutCancel(ctx), state, out), nil
}

func (o *Orchestrator) transition(orderID string, state *State, to State) {
	o.log().Debug("state transition",
		"order_id", orderID, "from", state.String(), "to", to.String())
	*state = to
}

func (o *Orchestrator) log() *slog.Logger {
	if o.logger == nil {
		return slog.Default()
	}
	return o.logger
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Option is a configuration option for the orchestrator
type Option func(*Orchestrator)

// WithRiskStep sets the risk assessment step
func WithRiskStep(s *step.RiskAssessmentStep) Option {
	return func(o *Orchestrator) {
		o.risk = s
	}
}

// WithPaymentStep sets the payment capture step
func WithPaymentStep(s *step.PaymentCaptureStep) Option {
	return func(o *Orchestrator) {
		o.payment = s
	}
}

// WithConfirmationStep sets the confirmation step
func WithConfirmationStep(s *step.ConfirmationStep) Option {
	return func(o *Orchestrator) {
		o.confirm = s
	}
}

// WithRiskPolicy sets the risk step retry policy
func WithRiskPolicy(p retry.Policy) Option {
	return func(o *Orchestrator) {
		o.riskPolicy = p
	}
}

// WithPaymentPolicy sets the payment step retry policy
func WithPaymentPolicy(p retry.Policy) Option {
	return func(o *Orchestrator) {
		o.paymentPolicy = p
	}
}

// WithClock sets the clock used for backoff waits
func WithClock(clock types.Clock) Option {
	return func(o *Orchestrator) {
		o.clock = clock
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}
