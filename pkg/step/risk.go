package step

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jzx17/orderflow/pkg/order"
	"github.com/jzx17/orderflow/pkg/types"
)

const (
	// DefaultQuantityThreshold is the total quantity above which an order
	// is flagged as high risk
	DefaultQuantityThreshold = 100

	// DefaultFraudMarker is the order-id token that flags an order
	DefaultFraudMarker = "fraud"

	// DefaultRiskTimeout bounds one risk-scoring attempt
	DefaultRiskTimeout = 30 * time.Second
)

// RiskAssessmentStep computes approval from order attributes. Without a
// scorer it applies the rule-based reference behavior; with one it delegates
// and fails closed to approve with medium risk when the scorer is
// unavailable.
type RiskAssessmentStep struct {
	scorer            RiskScorer
	fraudMarker       string
	quantityThreshold int
	timeout           time.Duration
	logger            *slog.Logger
}

// NewRiskAssessment creates a risk assessment step
func NewRiskAssessment(opts ...RiskOption) *RiskAssessmentStep {
	s := &RiskAssessmentStep{
		fraudMarker:       DefaultFraudMarker,
		quantityThreshold: DefaultQuantityThreshold,
		timeout:           DefaultRiskTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Execute assesses one order. A rejection is a successful assessment with
// Approved false, not a failure; failures are transient scoring problems that
// feed the retry policy.
func (s *RiskAssessmentStep) Execute(ctx context.Context, ord order.Order) (types.StepResult[order.RiskAssessment], error) {
	if err := ctx.Err(); err != nil {
		return types.Failure[order.RiskAssessment]("risk assessment interrupted"), err
	}

	if s.scorer == nil {
		return types.Success(s.assessByRules(ord)), nil
	}

	attemptCtx, cancel := withAttemptTimeout(ctx, s.timeout)
	defer cancel()

	assessment, err := s.scorer.Score(attemptCtx, ord)
	switch {
	case err == nil:
		return types.Success(assessment), nil

	case isUnavailable(err):
		// fail closed: approve with medium risk rather than reject or crash
		s.log().Warn("risk scorer unavailable, approving with medium risk",
			"order_id", ord.ID, "error", err)
		return types.Success(order.RiskAssessment{
			Approved:  true,
			RiskScore: 0.5,
			Reason:    "risk scoring unavailable, approved with medium risk",
			RiskLevel: order.RiskMedium,
		}), nil

	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		// the attempt timed out, the order did not; retryable
		return types.Failure[order.RiskAssessment]("risk assessment timed out"), nil

	case ctx.Err() != nil:
		return types.Failure[order.RiskAssessment]("risk assessment interrupted"), ctx.Err()

	default:
		return types.Failure[order.RiskAssessment](fmt.Sprintf("risk scoring failed: %v", err)), nil
	}
}

// assessByRules applies the rule-based reference heuristics
func (s *RiskAssessmentStep) assessByRules(ord order.Order) order.RiskAssessment {
	if strings.Contains(strings.ToLower(ord.ID), s.fraudMarker) {
		return order.RiskAssessment{
			Approved:  false,
			RiskScore: 0.95,
			Reason:    "order id contains fraud indicators",
			RiskLevel: order.RiskHigh,
		}
	}

	if total := ord.TotalQuantity(); total > s.quantityThreshold {
		return order.RiskAssessment{
			Approved:  false,
			RiskScore: 0.85,
			Reason:    fmt.Sprintf("unusually high quantity: %d items", total),
			RiskLevel: order.RiskHigh,
		}
	}

	return order.RiskAssessment{
		Approved:  true,
		RiskScore: 0.1,
		Reason:    "no fraud indicators detected",
		RiskLevel: order.RiskLow,
	}
}

func (s *RiskAssessmentStep) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

func isUnavailable(err error) bool {
	var unavailable *types.CollaboratorUnavailableError
	return errors.As(err, &unavailable)
}

// RiskOption is a configuration option for the risk assessment step
type RiskOption func(*RiskAssessmentStep)

// WithRiskScorer delegates assessment to an external scorer
func WithRiskScorer(scorer RiskScorer) RiskOption {
	return func(s *RiskAssessmentStep) {
		s.scorer = scorer
	}
}

// WithQuantityThreshold sets the total-quantity rejection threshold
func WithQuantityThreshold(threshold int) RiskOption {
	return func(s *RiskAssessmentStep) {
		s.quantityThreshold = threshold
	}
}

// WithFraudMarker sets the order-id token that flags an order
func WithFraudMarker(marker string) RiskOption {
	return func(s *RiskAssessmentStep) {
		s.fraudMarker = strings.ToLower(marker)
	}
}

// WithRiskTimeout bounds one scoring attempt
func WithRiskTimeout(d time.Duration) RiskOption {
	return func(s *RiskAssessmentStep) {
		s.timeout = d
	}
}

// WithRiskLogger sets the logger
func WithRiskLogger(logger *slog.Logger) RiskOption {
	return func(s *RiskAssessmentStep) {
		s.logger = logger
	}
}
