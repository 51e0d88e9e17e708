package enums

import "fmt"

// SubscriptionPlan is the billing cadence a subscriber requested.
type SubscriptionPlan string

const (
	SubscriptionPlanNone    SubscriptionPlan = "none"
	SubscriptionPlanWeekly  SubscriptionPlan = "weekly"
	SubscriptionPlanMonthly SubscriptionPlan = "monthly"
)

var validSubscriptionPlans = []SubscriptionPlan{
	SubscriptionPlanNone,
	SubscriptionPlanWeekly,
	SubscriptionPlanMonthly,
}

// String implements fmt.Stringer.
func (p SubscriptionPlan) String() string {
	return string(p)
}

// IsValid reports whether the value is a known SubscriptionPlan.
func (p SubscriptionPlan) IsValid() bool {
	for _, candidate := range validSubscriptionPlans {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseSubscriptionPlan converts raw input into a SubscriptionPlan.
func ParseSubscriptionPlan(value string) (SubscriptionPlan, error) {
	for _, candidate := range validSubscriptionPlans {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid subscription plan %q", value)
}
