// Package risk classifies a monthly check-in into a risk tier.
//
// Classification is an ordered rule list evaluated top-down; the first
// matching rule wins. The last rule always matches, so Classify is total.
package risk

// Rule maps a predicate over an assessment to a tier.
type Rule struct {
	Name    string
	Matches func(Assessment) bool
	Tier    Tier
}

// Rules is the classification table. Order matters.
var Rules = []Rule{
	{
		Name: "critical_need",
		Matches: func(a Assessment) bool {
			return a.Mental == MentalBad || a.Housing == HousingHomeless
		},
		Tier: TierRed,
	},
	{
		Name: "instability",
		Matches: func(a Assessment) bool {
			return a.Job == JobUnemployed || a.Family == FamilyProblematic
		},
		Tier: TierYellow,
	},
	{
		Name:    "stable",
		Matches: func(Assessment) bool { return true },
		Tier:    TierGreen,
	},
}

// Classify returns the tier of the first matching rule.
func Classify(a Assessment) Tier {
	tier, _ := Explain(a)
	return tier
}

// Explain returns the tier and the name of the rule that produced it.
func Explain(a Assessment) (Tier, string) {
	for _, r := range Rules {
		if r.Matches(a) {
			return r.Tier, r.Name
		}
	}
	return TierGreen, "stable"
}
