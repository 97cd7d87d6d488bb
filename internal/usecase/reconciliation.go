package usecase

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stashway/stashway-backend/internal/domain/entity"
)

// Rejection reasons. Tests and the admin UI match on these strings.
const (
	ReasonPayerExtractionMissing = "payer extraction missing"
	ReasonAdminExtractionMissing = "admin extraction missing"
	ReasonPayerReferenceMissing  = "payer reference code missing"
	ReasonAdminReferenceMissing  = "admin reference code missing"
	ReasonPayerReferenceMismatch = "payer reference code mismatch"
	ReasonAdminReferenceMismatch = "admin reference code mismatch"
	ReasonPayerAmountMissing     = "payer amount missing"
	ReasonAdminAmountMissing     = "admin amount missing"
	ReasonTransactionIDMismatch  = "transaction id mismatch between payer and admin"
	ReasonTimestampOutOfWindow   = "payer timestamp outside allowed window"
	ReasonRequestExpired         = "payment request expired"
	ReasonAlreadyDecided         = "payment request already finalized"
	ReasonSecretInvalid          = "reference secret missing or too short"
)

// ReconciliationRules are the tunable thresholds of the decision.
type ReconciliationRules struct {
	AmountTolerance decimal.Decimal
	TimestampWindow time.Duration
	// Location is the zone MMG screens display times in
	Location *time.Location
}

// Reconciler decides whether two independent extractions prove a payment.
type Reconciler struct {
	rules ReconciliationRules
}

func NewReconciler(rules ReconciliationRules) *Reconciler {
	return &Reconciler{rules: rules}
}

// Verify runs every check and collects all failures. It has no side effects.
func (r *Reconciler) Verify(req *entity.PaymentRequest, payer, admin *entity.Extraction, now time.Time) entity.VerificationResult {
	var errs []string
	fail := func(reason string) { errs = append(errs, reason) }

	if payer == nil {
		fail(ReasonPayerExtractionMissing)
	}
	if admin == nil {
		fail(ReasonAdminExtractionMissing)
	}

	// Reference code, both sides
	if payer != nil {
		if reason := checkReference(req.ReferenceCode, payer.ReferenceCode, ReasonPayerReferenceMissing, ReasonPayerReferenceMismatch); reason != "" {
			fail(reason)
		}
	}
	if admin != nil {
		if reason := checkReference(req.ReferenceCode, admin.ReferenceCode, ReasonAdminReferenceMissing, ReasonAdminReferenceMismatch); reason != "" {
			fail(reason)
		}
	}

	// Amount within absolute tolerance
	if payer != nil {
		if reason := r.checkAmount("payer", req.AmountExpected, payer.Amount, ReasonPayerAmountMissing); reason != "" {
			fail(reason)
		}
	}
	if admin != nil {
		if reason := r.checkAmount("admin", req.AmountExpected, admin.Amount, ReasonAdminAmountMissing); reason != "" {
			fail(reason)
		}
	}

	// Transaction id only when both sides have one
	if payer != nil && admin != nil && payer.TransactionID != nil && admin.TransactionID != nil {
		if *payer.TransactionID != *admin.TransactionID {
			fail(ReasonTransactionIDMismatch)
		}
	}

	if payer != nil {
		if ts, ok := payer.ParsedTimestamp(r.rules.Location); ok {
			if absDuration(ts.Sub(req.CreatedAt)) > r.rules.TimestampWindow {
				fail(ReasonTimestampOutOfWindow)
			}
		}
	}

	if req.IsExpiredAt(now) {
		fail(ReasonRequestExpired)
	}

	if req.Status.IsDecided() {
		fail(ReasonAlreadyDecided)
	}

	if len(req.ReferenceSecret) < MinSecretLength {
		fail(ReasonSecretInvalid)
	}

	return entity.VerificationResult{
		Verified: len(errs) == 0,
		Errors:   errs,
	}
}

func checkReference(expected string, got *string, missing, mismatch string) string {
	if got == nil || *got == "" {
		return missing
	}
	if *got != expected {
		return mismatch
	}
	return ""
}

func (r *Reconciler) checkAmount(side string, expected decimal.Decimal, got *decimal.Decimal, missing string) string {
	if got == nil {
		return missing
	}
	if got.Sub(expected).Abs().GreaterThan(r.rules.AmountTolerance) {
		return fmt.Sprintf("%s amount %s does not match expected %s", side, got.String(), expected.String())
	}
	return ""
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
