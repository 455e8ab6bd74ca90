package order

import (
	"github.com/jzx17/orderflow/pkg/types"
)

// RiskLevel grades the assessed fraud risk
type RiskLevel int

const (
	// RiskLow indicates no fraud indicators
	RiskLow RiskLevel = iota
	// RiskMedium indicates an inconclusive assessment
	RiskMedium
	// RiskHigh indicates strong fraud indicators
	RiskHigh
)

// String returns the string representation of the risk level
func (l RiskLevel) String() string {
	switch l {
	case RiskLow:
		return "LOW"
	case RiskMedium:
		return "MEDIUM"
	case RiskHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// RiskAssessment is the immutable result of the risk step, produced once per
// order.
type RiskAssessment struct {
	Approved  bool
	RiskScore float64 // 0.0 (safe) to 1.0 (definite fraud)
	Reason    string
	RiskLevel RiskLevel
}

// PaymentOutcome is the final payment attempt's result, produced at most once
// per order after internal retries.
type PaymentOutcome struct {
	Success         bool
	ChargeReference string // present iff Success
	Message         string
	AmountCharged   float64 // 0 iff not Success
}

// Tone classifies the register of a customer message
type Tone int

const (
	// TonePositive for confirmed orders
	TonePositive Tone = iota
	// ToneNeutral for status updates
	ToneNeutral
	// ToneApologetic for rejections
	ToneApologetic
)

// String returns the string representation of the tone
func (t Tone) String() string {
	switch t {
	case TonePositive:
		return "POSITIVE"
	case ToneNeutral:
		return "NEUTRAL"
	case ToneApologetic:
		return "APOLOGETIC"
	default:
		return "UNKNOWN"
	}
}

// ConfirmationMessage is the customer-facing message generated after the
// pipeline reaches a terminal state.
type ConfirmationMessage struct {
	Subject string
	Body    string
	Tone    Tone
}

// Status is the terminal status of an order's pipeline execution
type Status int

const (
	// StatusApproved means risk passed and payment captured
	StatusApproved Status = iota
	// StatusRejectedRisk means the risk step rejected the order
	StatusRejectedRisk
	// StatusRejectedPayment means payment retries were exhausted
	StatusRejectedPayment
	// StatusCancelled means the caller cancelled the in-flight order
	StatusCancelled
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case StatusApproved:
		return "APPROVED"
	case StatusRejectedRisk:
		return "REJECTED_RISK"
	case StatusRejectedPayment:
		return "REJECTED_PAYMENT"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Outcome records how far an order's pipeline execution progressed. Populated
// fields reflect the stage reached: Risk is present once the risk step has
// run, Payment iff risk approved, Confirmation always by the time the outcome
// reaches the caller. Outcomes are immutable snapshots; each stage derives a
// new record from the previous one.
type Outcome struct {
	OrderID      string
	Status       Status
	Risk         *RiskAssessment
	Payment      *PaymentOutcome
	Confirmation *ConfirmationMessage
}

// NewRiskRejected builds the terminal outcome for an order rejected by the
// risk step. Payment is absent by invariant.
func NewRiskRejected(orderID string, risk RiskAssessment) (Outcome, error) {
	if risk.Approved {
		return Outcome{}, types.NewValidationError("risk",
			"risk-rejected outcome requires a non-approved assessment")
	}
	return Outcome{
		OrderID: orderID,
		Status:  StatusRejectedRisk,
		Risk:    &risk,
	}, nil
}

// NewPaymentRejected builds the terminal outcome for an order whose payment
// retries were exhausted. The risk assessment must be approved.
func NewPaymentRejected(orderID string, risk RiskAssessment, payment PaymentOutcome) (Outcome, error) {
	if !risk.Approved {
		return Outcome{}, types.NewValidationError("risk",
			"payment-rejected outcome requires an approved assessment")
	}
	if payment.Success {
		return Outcome{}, types.NewValidationError("payment",
			"payment-rejected outcome requires a failed payment")
	}
	return Outcome{
		OrderID: orderID,
		Status:  StatusRejectedPayment,
		Risk:    &risk,
		Payment: &payment,
	}, nil
}

// NewApproved builds the terminal outcome for a fully processed order
func NewApproved(orderID string, risk RiskAssessment, payment PaymentOutcome) (Outcome, error) {
	if !risk.Approved {
		return Outcome{}, types.NewValidationError("risk",
			"approved outcome requires an approved assessment")
	}
	if !payment.Success {
		return Outcome{}, types.NewValidationError("payment",
			"approved outcome requires a successful payment")
	}
	return Outcome{
		OrderID: orderID,
		Status:  StatusApproved,
		Risk:    &risk,
		Payment: &payment,
	}, nil
}

// NewCancelled builds the terminal outcome for a caller-cancelled order.
// Risk may be nil when cancellation landed before the risk step completed.
func NewCancelled(orderID string, risk *RiskAssessment) Outcome {
	out := Outcome{
		OrderID: orderID,
		Status:  StatusCancelled,
	}
	if risk != nil {
		r := *risk
		out.Risk = &r
	}
	return out
}

// WithConfirmation derives a new snapshot carrying the confirmation message
func (o Outcome) WithConfirmation(msg ConfirmationMessage) Outcome {
	o.Confirmation = &msg
	return o
}
