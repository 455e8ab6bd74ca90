// Package orchestrator sequences the order pipeline steps
package orchestrator

// State identifies a position in the pipeline state machine
type State int

const (
	// StateStart is the initial state
	StateStart State = iota
	// StateRiskPending while the risk step runs
	StateRiskPending
	// StateRiskRejected when the risk step rejected the order
	StateRiskRejected
	// StateRiskApproved when the risk step approved the order
	StateRiskApproved
	// StatePaymentPending while the payment step runs
	StatePaymentPending
	// StatePaymentRejected when payment retries were exhausted
	StatePaymentRejected
	// StatePaymentApproved when payment was captured
	StatePaymentApproved
	// StateConfirming while the confirmation message is generated
	StateConfirming
	// StateDone is the final state
	StateDone
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateRiskPending:
		return "RISK_PENDING"
	case StateRiskRejected:
		return "RISK_REJECTED"
	case StateRiskApproved:
		return "RISK_APPROVED"
	case StatePaymentPending:
		return "PAYMENT_PENDING"
	case StatePaymentRejected:
		return "PAYMENT_REJECTED"
	case StatePaymentApproved:
		return "PAYMENT_APPROVED"
	case StateConfirming:
		return "CONFIRMING"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}
