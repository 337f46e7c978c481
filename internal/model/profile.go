package model

import (
	"fmt"
	"time"
)

// Plan is the subscription tier stored on a profile.
type Plan string

const (
	PlanFree   Plan = "free"
	PlanPro    Plan = "pro"
	PlanAgency Plan = "agency"
)

// ParsePlan converts a string into a known Plan.
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(s); p {
	case PlanFree, PlanPro, PlanAgency:
		return p, nil
	default:
		return "", fmt.Errorf("unknown plan %q", s)
	}
}

// Profile is the per-user account row carrying the subscription plan.
type Profile struct {
	ID              string    `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`
	Plan            Plan      `db:"plan" json:"plan"`
	AILimitOverride *int      `db:"ai_limit_override" json:"ai_limit_override,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
