package errors

import (
	"fmt"
	"strings"
)

// PaymentRequestError represents errors related to payment request operations
type PaymentRequestError struct {
	Type      string
	Message   string
	RequestID string
	Plan      string
	Cause     error
}

func (e *PaymentRequestError) Error() string {
	subject := e.RequestID
	if subject == "" {
		subject = e.Plan
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%s) - %v", e.Type, e.Message, subject, e.Cause)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, subject)
}

func (e *PaymentRequestError) Unwrap() error {
	return e.Cause
}

// Payment request error types
const (
	ErrTypeInvalidPlan        = "INVALID_PLAN"
	ErrTypePricingConfig      = "PRICING_CONFIG"
	ErrTypeRequestNotFound    = "REQUEST_NOT_FOUND"
	ErrTypeRequestExpired     = "REQUEST_EXPIRED"
	ErrTypeDuplicateReference = "DUPLICATE_REFERENCE"
	ErrTypeStatusConflict     = "STATUS_CONFLICT"
	ErrTypeInconsistency      = "RECONCILIATION_INCONSISTENCY"
)

// NewInvalidPlanError creates an error for a plan that cannot be purchased
func NewInvalidPlanError(plan string) *PaymentRequestError {
	return &PaymentRequestError{
		Type:    ErrTypeInvalidPlan,
		Message: "plan must be one of personal, pro, pro_max",
		Plan:    plan,
	}
}

// NewPricingConfigError creates an error for a paid plan without a configured price
func NewPricingConfigError(plan string) *PaymentRequestError {
	return &PaymentRequestError{
		Type:    ErrTypePricingConfig,
		Message: "no price configured for plan",
		Plan:    plan,
	}
}

// NewRequestNotFoundError creates a not found error
func NewRequestNotFoundError(requestID string) *PaymentRequestError {
	return &PaymentRequestError{
		Type:      ErrTypeRequestNotFound,
		Message:   "payment request not found",
		RequestID: requestID,
	}
}

// NewRequestExpiredError creates an error for a request past its expiry
func NewRequestExpiredError(requestID string) *PaymentRequestError {
	return &PaymentRequestError{
		Type:      ErrTypeRequestExpired,
		Message:   "payment request has expired, create a new one",
		RequestID: requestID,
	}
}

// NewDuplicateReferenceError wraps a unique violation on the reference code
func NewDuplicateReferenceError(cause error) *PaymentRequestError {
	return &PaymentRequestError{
		Type:    ErrTypeDuplicateReference,
		Message: "reference code already exists",
		Cause:   cause,
	}
}

// PaymentStatusError is returned when a guarded transition finds the request in
// an unexpected status, including when a concurrent writer got there first.
type PaymentStatusError struct {
	RequestID string
	Current   string
	Target    string
}

func (e *PaymentStatusError) Error() string {
	if e.Current == "" {
		return fmt.Sprintf("%s: request %s changed status before transition to %s", ErrTypeStatusConflict, e.RequestID, e.Target)
	}
	return fmt.Sprintf("%s: request %s cannot move from %s to %s", ErrTypeStatusConflict, e.RequestID, e.Current, e.Target)
}

// NewPaymentStatusError creates a status conflict error
func NewPaymentStatusError(requestID, current, target string) *PaymentStatusError {
	return &PaymentStatusError{
		RequestID: requestID,
		Current:   current,
		Target:    target,
	}
}

// ReconciliationInconsistencyError means a payment was verified but fulfillment
// failed. The request stays verified and needs manual remediation.
type ReconciliationInconsistencyError struct {
	RequestID string
	UserID    string
	Plan      string
	Cause     error
}

func (e *ReconciliationInconsistencyError) Error() string {
	return fmt.Sprintf("%s: request %s verified but plan %s not activated for user %s - %v",
		ErrTypeInconsistency, e.RequestID, e.Plan, e.UserID, e.Cause)
}

func (e *ReconciliationInconsistencyError) Unwrap() error {
	return e.Cause
}

// NewReconciliationInconsistencyError creates an inconsistency error
func NewReconciliationInconsistencyError(requestID, userID, plan string, cause error) *ReconciliationInconsistencyError {
	return &ReconciliationInconsistencyError{
		RequestID: requestID,
		UserID:    userID,
		Plan:      plan,
		Cause:     cause,
	}
}

// JoinReasons renders rejection reasons for last_error.
func JoinReasons(reasons []string) string {
	return strings.Join(reasons, "; ")
}
