package entitlements

// Plan is the entitlement tier gating which operations are permitted.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// FreeLimit is the number of usage-counted operations a free-tier user gets.
const FreeLimit = 10

// Premium reports whether the plan bypasses the free usage counter.
func (p Plan) Premium() bool {
	return p == PlanPremium
}

// ParsePlan normalizes a raw plan string; anything unknown is free.
func ParsePlan(raw string) Plan {
	if raw == string(PlanPremium) {
		return PlanPremium
	}
	return PlanFree
}

// Snapshot is the per-request view of a user's plan and usage counter.
// It is valid only for the lifetime of the request that fetched it.
type Snapshot struct {
	UserID    string `json:"userId"`
	Plan      Plan   `json:"plan"`
	FreeUsage int    `json:"freeUsage"`
}
