package risk

import (
	"fmt"

	dErrors "safereturn/pkg/domain-errors"
)

// Tier is the coarse risk level derived from a check-in.
type Tier string

const (
	TierRed    Tier = "RED"
	TierYellow Tier = "YELLOW"
	TierGreen  Tier = "GREEN"
)

var Tiers = []Tier{TierRed, TierYellow, TierGreen}

// Severity orders tiers: GREEN < YELLOW < RED.
func (t Tier) Severity() int {
	switch t {
	case TierRed:
		return 2
	case TierYellow:
		return 1
	default:
		return 0
	}
}

func (t Tier) IsValid() bool {
	return t == TierRed || t == TierYellow || t == TierGreen
}

func (t Tier) String() string { return string(t) }

func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidEnum, fmt.Sprintf("risk_tier: unknown value %q", s))
	}
	return t, nil
}
