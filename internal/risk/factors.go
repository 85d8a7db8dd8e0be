package risk

// Factor is one observed risk condition and the follow-up it calls for.
type Factor struct {
	Code           string `json:"code"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// FirstCheckInRecommendation is returned when a profile has no check-ins.
const FirstCheckInRecommendation = "complete the first monthly check-in"

// Factors lists the conditions present in a. no_contact is reported as a
// factor even though it does not raise the tier.
func Factors(a Assessment) []Factor {
	var out []Factor
	if a.Mental == MentalBad {
		out = append(out, Factor{"mental_bad", "poor mental state", "refer to psychological support line"})
	}
	if a.Housing == HousingHomeless {
		out = append(out, Factor{"homeless", "no stable shelter", "coordinate with charitable housing association"})
	}
	if a.Job == JobUnemployed {
		out = append(out, Factor{"unemployed", "unemployed", "present available job openings in the region"})
	}
	if a.Family == FamilyProblematic {
		out = append(out, Factor{"family_problematic", "family conflict", "schedule a family counselling session"})
	}
	if a.Family == FamilyNoContact {
		out = append(out, Factor{"family_no_contact", "no contact with family", "work on rebuilding family ties"})
	}
	return out
}

// Recommendations flattens the recommendations of fs.
func Recommendations(fs []Factor) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Recommendation)
	}
	return out
}
