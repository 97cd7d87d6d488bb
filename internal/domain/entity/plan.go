package entity

import "strings"

// Plan is a subscription tier a payment request can buy.
type Plan string

const (
	PlanNone     Plan = "none"
	PlanPersonal Plan = "personal"
	PlanPro      Plan = "pro"
	PlanProMax   Plan = "pro_max"
)

// PaidPlans lists every tier that can be purchased through MMG.
var PaidPlans = []Plan{PlanPersonal, PlanPro, PlanProMax}

// ParsePlan normalizes raw input and reports whether it names a paid tier.
func ParsePlan(raw string) (Plan, bool) {
	p := Plan(strings.ToLower(strings.TrimSpace(raw)))
	for _, paid := range PaidPlans {
		if p == paid {
			return p, true
		}
	}
	return p, false
}

// Label is the upper-cased form used in payment messages, e.g. PRO_MAX.
func (p Plan) Label() string {
	return strings.ToUpper(string(p))
}

func (p Plan) String() string {
	return string(p)
}
