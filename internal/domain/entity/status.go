package entity

// PaymentStatus is the lifecycle state of a payment request.
type PaymentStatus string

const (
	StatusGenerated     PaymentStatus = "generated"
	StatusUserUploaded  PaymentStatus = "user_uploaded"
	StatusAIParsed      PaymentStatus = "ai_parsed"
	StatusAdminUploaded PaymentStatus = "admin_uploaded"
	StatusVerified      PaymentStatus = "verified"
	StatusRejected      PaymentStatus = "rejected"
	StatusExpired       PaymentStatus = "expired"
)

// statusRank orders the states along the workflow. Terminal states share the top rank.
var statusRank = map[PaymentStatus]int{
	StatusGenerated:     0,
	StatusUserUploaded:  1,
	StatusAIParsed:      2,
	StatusAdminUploaded: 3,
	StatusVerified:      4,
	StatusRejected:      4,
	StatusExpired:       4,
}

// IsValid reports whether s is a known status.
func (s PaymentStatus) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// IsTerminal reports whether no transition may leave s.
func (s PaymentStatus) IsTerminal() bool {
	return s == StatusVerified || s == StatusRejected || s == StatusExpired
}

// IsDecided reports whether reconciliation already produced an outcome.
func (s PaymentStatus) IsDecided() bool {
	return s == StatusVerified || s == StatusRejected
}

// CanTransitionTo reports whether moving from s to next keeps the status monotonic.
// A repeated upload may re-enter user_uploaded or admin_uploaded.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if s.IsTerminal() || !next.IsValid() {
		return false
	}
	switch next {
	case StatusUserUploaded:
		return s == StatusGenerated || s == StatusUserUploaded
	case StatusAIParsed:
		return s == StatusUserUploaded
	case StatusAdminUploaded:
		return s == StatusAIParsed || s == StatusAdminUploaded
	case StatusVerified, StatusRejected:
		return s == StatusAdminUploaded
	case StatusExpired:
		return true
	}
	return false
}

// Rank exposes the ordering used by monotonicity checks.
func (s PaymentStatus) Rank() int {
	return statusRank[s]
}

// PayerStatus is the coarse state shown to payers. Internal diagnostics never reach them.
func (s PaymentStatus) PayerStatus() string {
	switch s {
	case StatusGenerated:
		return "awaiting_payment"
	case StatusUserUploaded, StatusAIParsed, StatusAdminUploaded:
		return "waiting_for_verification"
	default:
		return string(s)
	}
}
